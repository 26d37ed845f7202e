package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/linkpicker/cli"
	"github.com/grovetools/linkpicker/config"
)

// NewConfigCmd groups the configuration helpers.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the linkpicker configuration",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigSchemaCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with defaults applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			cfg, path, err := config.Resolve(opts.ConfigFile, nil)
			if err != nil {
				return err
			}
			if opts.JSONOutput {
				return printJSON(cmd.OutOrStdout(), cfg)
			}

			source := path
			if source == "" {
				source = "built-in defaults"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# Source: %s\n", source)
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of linkpicker.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
