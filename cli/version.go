package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/linkpicker/version"
)

// NewVersionCommand creates a standard version command. --json prints the
// full build information.
func NewVersionCommand(componentName string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: fmt.Sprintf("Print the version number of %s", componentName),
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()
			if GetOptions(cmd).JSONOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", componentName, info.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  Commit:    %s\n", info.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  Built:     %s\n", info.BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "  Platform:  %s\n", info.Platform)
			return nil
		},
	}
}
