package main

import (
	"os"

	"github.com/grovetools/linkpicker/cli"
	"github.com/grovetools/linkpicker/cmd"
)

func main() {
	os.Exit(cli.Execute(cmd.NewRootCmd()))
}
