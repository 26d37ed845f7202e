// Package cmd implements the linkpicker command line.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/grovetools/linkpicker/cli"
)

// NewRootCmd assembles the linkpicker command tree.
func NewRootCmd() *cobra.Command {
	root := cli.NewStandardCommand(
		"linkpicker",
		"Pick which application opens a link",
	)
	root.Long = `linkpicker receives URLs from the desktop and lets you choose the browser or
application that opens them. A background daemon owns the state; the picker
and preferences windows are terminal surfaces attached to it.

Examples:
  linkpicker daemon start
  linkpicker open https://example.com
  linkpicker pick
  linkpicker prefs`

	root.AddCommand(
		NewDaemonCmd(),
		NewOpenCmd(),
		NewPickCmd(),
		NewPrefsCmd(),
		NewDispatchCmd(),
		NewStateCmd(),
		NewLogCmd(),
		NewLogsCmd(),
		NewConfigCmd(),
		cli.NewVersionCommand("linkpicker"),
	)
	return root
}
