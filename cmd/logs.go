package cmd

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"time"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"

	"github.com/grovetools/linkpicker/logging"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	var (
		follow    bool
		component string
		lines     int
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the daemon log",
		Long: `Prints today's log file of a component, by default the daemon.

Examples:
  # Follow the daemon log
  linkpicker logs -f

  # Last 50 lines of the picker log
  linkpicker logs --component linkpicker -n 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := logging.FilePath(component, time.Now())
			if _, err := os.Stat(path); err != nil && !follow {
				return fmt.Errorf("no log file at %s", path)
			}
			return tailLog(cmd, path, follow, lines)
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().StringVar(&component, "component", "linkpickerd", "Component whose log to show")
	cmd.Flags().IntVarP(&lines, "lines", "n", -1, "Number of lines to show from the end (default: all)")
	return cmd
}

func tailLog(cmd *cobra.Command, path string, follow bool, lines int) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    follow,
		ReOpen:    follow,
		MustExist: !follow,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekStart},
		Logger:    stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return fmt.Errorf("cannot tail %s: %w", path, err)
	}
	defer t.Cleanup()

	var ring []string
	out := cmd.OutOrStdout()
	emit := func(line string) {
		if follow || lines < 0 {
			fmt.Fprintln(out, line)
			return
		}
		ring = append(ring, line)
		if len(ring) > lines {
			ring = ring[1:]
		}
	}

	done := cmd.Context().Done()
	for {
		select {
		case <-done:
			return t.Stop()
		case line, ok := <-t.Lines:
			if !ok {
				for _, l := range ring {
					fmt.Fprintln(out, l)
				}
				return t.Err()
			}
			if line.Err != nil {
				continue
			}
			emit(line.Text)
		}
	}
}
