package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/linkpicker/errors"
)

func TestNewStandardCommandFlags(t *testing.T) {
	cmd := NewStandardCommand("linkpicker", "Pick a browser")
	cmd.Run = func(*cobra.Command, []string) {}
	cmd.SetArgs([]string{"--verbose", "--json"})
	require.NoError(t, cmd.Execute())

	opts := GetOptions(cmd)
	assert.True(t, opts.Verbose)
	assert.True(t, opts.JSONOutput)
	assert.Empty(t, opts.ConfigFile)
}

func TestStyledHelp(t *testing.T) {
	root := NewStandardCommand("linkpicker", "Pick a browser for every link")
	root.AddCommand(&cobra.Command{Use: "open <url>", Short: "Hand a URL to the daemon", Run: func(*cobra.Command, []string) {}})
	root.Long = "Routes links to browsers.\nExamples:\n# open a link\nlinkpicker open https://example.com"

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})
	ApplyStyledHelpRecursive(root)
	require.NoError(t, root.Execute())

	help := out.String()
	for _, want := range []string{"LINKPICKER", "USAGE", "COMMANDS", "open", "EXAMPLES", "open a link"} {
		assert.Contains(t, help, want)
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four five", 9)
	assert.Equal(t, "one two\nthree\nfour five", got)
	assert.Equal(t, "short", wrapText("short", 0))
}

func TestParseDescription(t *testing.T) {
	desc, ex := parseDescription("Does things.\nExamples:\nlinkpicker pick")
	assert.Equal(t, "Does things.", desc)
	assert.Equal(t, "linkpicker pick", ex)

	desc, ex = parseDescription("No examples here")
	assert.Equal(t, "No examples here", desc)
	assert.Empty(t, ex)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"daemon down", errors.DaemonNotRunning("/tmp/lp.sock"), "linkpicker daemon start"},
		{"already running", errors.DaemonAlreadyRunning(42), "PID 42"},
		{"unknown target", fmt.Errorf("launch: %w", errors.UnknownTarget("safari")), "Unknown target 'safari'"},
		{"config", errors.ConfigInvalid("bad"), "config schema"},
		{"plain", fmt.Errorf("boom"), "Error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			got := NewErrorHandler(false).WithWriter(&buf).Handle(&cobra.Command{Use: "x"}, tt.err)
			assert.Equal(t, tt.err, got)
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestErrorHandlerVerbose(t *testing.T) {
	var buf bytes.Buffer
	NewErrorHandler(true).WithWriter(&buf).Handle(nil, errors.UnknownTarget("x"))
	assert.Contains(t, buf.String(), `"UNKNOWN_TARGET"`)
}

func TestExecuteReturnsExitCode(t *testing.T) {
	root := NewStandardCommand("linkpicker", "test")
	root.RunE = func(*cobra.Command, []string) error { return errors.DaemonNotRunning("/x") }
	var errOut bytes.Buffer
	root.SetErr(&errOut)
	root.SetArgs(nil)

	assert.Equal(t, 1, Execute(root))
	assert.Contains(t, errOut.String(), "not running")
}

func TestVersionCommandJSON(t *testing.T) {
	root := NewStandardCommand("linkpicker", "test")
	root.AddCommand(NewVersionCommand("linkpicker"))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--json"})
	require.NoError(t, root.Execute())

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "goVersion")
}
