// Package cli holds the cobra conventions shared by every linkpicker
// command: standard flags, styled help and error reporting.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/linkpicker/logging"
)

// CommandOptions holds common options for linkpicker commands
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a new command with standard linkpicker flags
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to linkpicker.yml config file")

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if opts := GetOptions(cmd); opts.ConfigFile != "" {
			logging.SetConfigPath(opts.ConfigFile)
		}
	}

	SetStyledHelp(cmd)
	return cmd
}

// GetLogger returns the component logger adjusted for --verbose and --json.
func GetLogger(cmd *cobra.Command, component string) *logrus.Entry {
	entry := logging.NewLogger(component)
	opts := GetOptions(cmd)
	if opts.Verbose {
		entry.Logger.SetLevel(logrus.DebugLevel)
	}
	if opts.JSONOutput {
		entry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return entry
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// Execute runs root and reports a failure through the error handler. The
// returned value is the process exit code.
func Execute(root *cobra.Command) int {
	ApplyStyledHelpRecursive(root)
	cmd, err := root.ExecuteC()
	if err == nil {
		return 0
	}
	if cmd == nil {
		cmd = root
	}
	NewErrorHandler(GetOptions(cmd).Verbose).WithWriter(cmd.ErrOrStderr()).Handle(cmd, err)
	return 1
}
