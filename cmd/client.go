package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/grovetools/linkpicker/cli"
	"github.com/grovetools/linkpicker/command"
	"github.com/grovetools/linkpicker/config"
	lperrors "github.com/grovetools/linkpicker/errors"
	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/daemon"
	"github.com/grovetools/linkpicker/pkg/paths"
)

// socketPath returns the daemon socket from the configuration, falling back
// to the default location when the configuration cannot be read.
func socketPath(cmd *cobra.Command) string {
	cfg, _, err := config.Resolve(cli.GetOptions(cmd).ConfigFile, nil)
	if err != nil {
		return paths.SocketPath()
	}
	return cfg.Daemon.Socket
}

// connect returns a client for a daemon that is known to answer.
func connect(cmd *cobra.Command) (*daemon.RemoteClient, error) {
	client, err := daemon.New(socketPath(cmd))
	if err != nil {
		return nil, err
	}
	return client.WithLogger(cli.GetLogger(cmd, "linkpicker")), nil
}

// startDaemon launches `linkpicker daemon start` detached from this
// process. Tests replace it.
var startDaemon = func(cmd *cobra.Command) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate linkpicker binary: %w", err)
	}
	args := []string{"daemon", "start"}
	if file := cli.GetOptions(cmd).ConfigFile; file != "" {
		args = append(args, "--config", file)
	}
	proc := (&command.RealExecutor{}).Command(exe, args...)
	if err := proc.Start(); err != nil {
		return lperrors.Wrap(err, lperrors.ErrCodeDaemonNotRunning, "failed to start daemon")
	}
	return proc.Process.Release()
}

// connectOrStart returns a client, starting the daemon when none answers
// and waiting up to wait for its socket. A zero wait never starts one.
func connectOrStart(cmd *cobra.Command, wait time.Duration) (*daemon.RemoteClient, error) {
	client, err := connect(cmd)
	if err == nil || wait <= 0 || !lperrors.Is(err, lperrors.ErrCodeDaemonNotRunning) {
		return client, err
	}
	cli.GetLogger(cmd, "linkpicker").Debug("No daemon answering, starting one")
	if err := startDaemon(cmd); err != nil {
		return nil, err
	}

	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-cmd.Context().Done():
			return nil, cmd.Context().Err()
		case <-deadline.C:
			return nil, err
		case <-tick.C:
			if client, err = connect(cmd); err == nil {
				return client, nil
			}
		}
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewOpenCmd hands a URL to the daemon, as the desktop does. A daemon that
// is not running is started first, so the URL is not lost.
func NewOpenCmd() *cobra.Command {
	var (
		pick bool
		wait time.Duration
	)
	cmd := &cobra.Command{
		Use:   "open <url>",
		Short: "Send a URL to the daemon",
		Long: `Sends a URL to the daemon, starting it when it is not running. Register this
command as the desktop URL handler so every link clicked elsewhere arrives in
linkpicker.

Examples:
  linkpicker open https://example.com
  linkpicker open --pick https://example.com
  # fail instead of starting a daemon
  linkpicker open --wait 0 https://example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectOrStart(cmd, wait)
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.OpenURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if pick {
				return runPicker(cmd)
			}
			if cli.GetOptions(cmd).JSONOutput {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&pick, "pick", "p", false, "Show the picker after sending the URL")
	cmd.Flags().DurationVar(&wait, "wait", 3*time.Second, "How long to wait for a daemon started by this command; 0 disables starting one")
	return cmd
}

// NewDispatchCmd sends one encoded action.
func NewDispatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch <type> [payload-json]",
		Short: "Dispatch an action to the daemon",
		Long: `Sends a single action to the canonical store. The payload is the JSON object
of the action kind, if it has fields.

Examples:
  linkpicker dispatch apps/scan-requested
  linkpicker dispatch target/favourite-set '{"target_id":"firefox"}'
  linkpicker dispatch target/hotkey-changed '{"target_id":"chrome","key":"c"}'`,
		Args: cobra.RangeArgs(1, 2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var out []string
			for _, t := range action.Types() {
				out = append(out, string(t))
			}
			return out, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseAction(args)
			if err != nil {
				return err
			}

			client, err := connect(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.Dispatch(cmd.Context(), a)
			if err != nil {
				return err
			}
			if cli.GetOptions(cmd).JSONOutput {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dispatched %s\n", resp.Type)
			return nil
		},
	}
}

// NewStateCmd prints the canonical tree.
func NewStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the daemon state tree as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			st, err := client.GetState(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
}

// NewLogCmd prints the dispatch log.
func NewLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show recently applied actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			entries, err := client.DispatchLog(cmd.Context())
			if err != nil {
				return err
			}
			if cli.GetOptions(cmd).JSONOutput {
				return printJSON(cmd.OutOrStdout(), entries)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "REV\tTIME\tTYPE\tORIGIN\tSEQ")
			for _, e := range entries {
				origin := e.Origin
				if origin == "" {
					origin = "daemon"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", e.Rev, e.At.Format("15:04:05.000"), e.Type, origin, e.Seq)
			}
			return w.Flush()
		},
	}
}

// parseAction builds an action from the dispatch arguments. Unknown types
// and control actions are rejected before anything is sent.
func parseAction(args []string) (action.Action, error) {
	t := action.Type(args[0])
	if !action.Known(t) {
		return nil, lperrors.New(lperrors.ErrCodeInvalidInput, fmt.Sprintf("unknown action type '%s'", t)).
			WithDetail("type", string(t))
	}
	var payload json.RawMessage
	if len(args) > 1 {
		payload = json.RawMessage(args[1])
	}
	a, err := action.Decode(t, payload)
	if err != nil {
		return nil, lperrors.Wrap(err, lperrors.ErrCodeInvalidInput, "invalid action payload")
	}
	if action.IsControl(a) {
		return nil, lperrors.New(lperrors.ErrCodeInvalidInput, fmt.Sprintf("'%s' is a channel control action", t))
	}
	return a, nil
}
