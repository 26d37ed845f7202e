// Command schema-generator writes the JSON Schema of linkpicker.yml. With
// -check it only verifies that the committed file is current.
package main

import (
	"bytes"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/linkpicker/config"
)

func main() {
	out := flag.String("o", "schema/linkpicker.schema.json", "schema file")
	check := flag.Bool("check", false, "fail if the schema file is out of date instead of writing it")
	flag.Parse()
	log.SetFlags(0)

	data, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("generate schema: %v", err)
	}
	data = append(data, '\n')

	if *check {
		current, err := os.ReadFile(*out)
		if err != nil {
			log.Fatalf("read %s: %v", *out, err)
		}
		if !bytes.Equal(current, data) {
			log.Fatalf("%s is stale; run go generate ./config", *out)
		}
		return
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("create %s: %v", filepath.Dir(*out), err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	log.Printf("wrote %s", *out)
}
