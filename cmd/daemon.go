package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/linkpicker/cli"
	"github.com/grovetools/linkpicker/command"
	"github.com/grovetools/linkpicker/config"
	lperrors "github.com/grovetools/linkpicker/errors"
	"github.com/grovetools/linkpicker/internal/daemon/collector"
	"github.com/grovetools/linkpicker/internal/daemon/engine"
	"github.com/grovetools/linkpicker/internal/daemon/pidfile"
	"github.com/grovetools/linkpicker/internal/daemon/server"
	"github.com/grovetools/linkpicker/internal/daemon/store"
	"github.com/grovetools/linkpicker/internal/persist"
	"github.com/grovetools/linkpicker/logging"
	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/clipboard"
	"github.com/grovetools/linkpicker/pkg/daemon"
	"github.com/grovetools/linkpicker/pkg/models"
	"github.com/grovetools/linkpicker/pkg/paths"
	"github.com/grovetools/linkpicker/pkg/process"
	"github.com/grovetools/linkpicker/pkg/registrar"
	"github.com/grovetools/linkpicker/pkg/scanner"
)

const shutdownTimeout = 5 * time.Second

// NewDaemonCmd returns the daemon command with subcommands.
func NewDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the linkpicker daemon",
		Long:  "The daemon owns the canonical state and runs scans, launches and clipboard copies.",
	}

	cmd.AddCommand(newDaemonStartCmd())
	cmd.AddCommand(newDaemonStopCmd())
	cmd.AddCommand(newDaemonStatusCmd())
	return cmd
}

// serveOptions are the daemon settings that do not come from the config file.
type serveOptions struct {
	ConfigFile string
	NoScan     bool
	Clipboard  clipboard.Writer
	Launcher   collector.Launcher
	Adapter    persist.Adapter // replaces the configured backend
	Ready      func(*store.Store)
}

func newDaemonStartCmd() *cobra.Command {
	var noScan bool
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cli.GetLogger(cmd, "linkpickerd")
			cfg, cfgPath, err := config.Resolve(cli.GetOptions(cmd).ConfigFile, logger)
			if err != nil {
				return err
			}
			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}

			pidPath := paths.PidFilePath()
			if err := pidfile.Acquire(pidPath); err != nil {
				return err
			}
			defer func() {
				if err := pidfile.Release(pidPath); err != nil {
					logger.Errorf("Failed to release pidfile: %v", err)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, serveOptions{ConfigFile: cfgPath, NoScan: noScan}, logger)
		},
	}
	cmd.Flags().BoolVar(&noScan, "no-scan", false, "Treat every configured application as installed instead of probing")
	return cmd
}

// serve runs the daemon until ctx is done or the server fails.
func serve(ctx context.Context, cfg *config.Config, opts serveOptions, logger *logrus.Entry) error {
	adapter := opts.Adapter
	if adapter == nil {
		var err error
		if adapter, err = persist.Open(cfg.Persistence.Adapter()); err != nil {
			return err
		}
	}
	st := store.New(adapter, store.Options{
		FlushDebounce: cfg.Daemon.FlushDebounce.Std(),
		FlushInterval: cfg.Daemon.FlushInterval.Std(),
		Logger:        logger.WithField("part", "store"),
	})

	eng := engine.New(st, logger.WithField("part", "engine"))
	scan := collector.NewScanHandler(newScanner(cfg, opts.NoScan), cfg.Catalog(), cfg.Daemon.ScanTimeout.Std(), logger)
	eng.Register(scan)

	launcher := opts.Launcher
	if launcher == nil {
		launcher = command.NewRunner(nil, logger).WithSettle(cfg.Daemon.LaunchTimeout.Std())
	}
	eng.Register(collector.NewLaunchHandler(launcher, 0, logger))

	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.System{}
	}
	eng.Register(collector.NewClipboardHandler(clip, logger))
	eng.Register(&collector.VersionHandler{})
	eng.Register(collector.NewRegistrationHandler(
		registrar.New(cfg.Registration.Command, cfg.Registration.Check),
		st.FirstRun,
		logger,
	))

	srv := server.New(st, logger.WithField("part", "server"))
	srv.SetRunningConfig(&models.RunningConfig{
		ConfigFile:    opts.ConfigFile,
		Socket:        cfg.Daemon.Socket,
		Backend:       cfg.Persistence.Backend,
		StatePath:     cfg.Persistence.Path,
		Catalog:       len(cfg.Targets),
		FlushDebounce: cfg.Daemon.FlushDebounce.Std(),
		FlushInterval: cfg.Daemon.FlushInterval.Std(),
		ScanTimeout:   cfg.Daemon.ScanTimeout.Std(),
		Scanning:      !opts.NoScan,
		PID:           os.Getpid(),
		StartedAt:     time.Now(),
	})

	engineCtx, stopEngine := context.WithCancel(context.Background())
	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		eng.Start(engineCtx)
	}()
	defer func() {
		stopEngine()
		<-engineDone
	}()

	// Listen before loading: OS URL hand-offs that arrive while persisted
	// state loads are queued by the store and replayed once it is Ready.
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe(cfg.Daemon.Socket) }()

	if err := st.Start(ctx); err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = st.Shutdown(shutdownCtx)
		_ = os.Remove(cfg.Daemon.Socket)
		return err
	}

	watchDir := paths.ConfigDir()
	if opts.ConfigFile != "" {
		watchDir = filepath.Dir(opts.ConfigFile)
	}
	reload := func(file string) {
		if opts.ConfigFile != "" && file != opts.ConfigFile {
			return
		}
		next, err := config.Load(file)
		if err != nil {
			logger.WithError(err).WithField("file", file).Warn("Ignoring invalid configuration")
			return
		}
		logger.WithField("file", file).Info("Configuration changed, rescanning")
		scan.SetCatalog(newScanner(next, opts.NoScan), next.Catalog())
		if err := st.Dispatch(action.AppsScanRequested{}); err != nil {
			logger.WithError(err).Warn("Failed to request rescan")
		}
	}
	if watcher, err := daemon.NewConfigWatcher(watchDir, daemon.DefaultDebounce, reload); err != nil {
		logger.WithError(err).Warn("Config watching disabled")
	} else {
		defer watcher.Close()
		go watcher.Start(ctx)
	}

	logger.WithField("pid", os.Getpid()).Info("Starting daemon")
	if opts.Ready != nil {
		opts.Ready(st)
	}

	var result error
	select {
	case <-ctx.Done():
		logger.Info("Received stop signal")
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			result = fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}
	if err := st.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Store shutdown error: %v", err)
		if result == nil {
			result = err
		}
	}
	_ = os.Remove(cfg.Daemon.Socket)
	return result
}

// newScanner probes the configured applications, or with noScan reports
// each of them as installed.
func newScanner(cfg *config.Config, noScan bool) scanner.Scanner {
	probes := cfg.Probes()
	if !noScan {
		return scanner.NewPathScanner(probes)
	}
	installed := make(map[string]models.Presence, len(probes))
	for _, p := range probes {
		installed[p.AppID] = models.Presence{AppID: p.AppID, Path: p.Path}
	}
	return scanner.Static{Installed: installed}
}

func newDaemonStopCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			running, pid, err := pidfile.IsRunning(paths.PidFilePath())
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}
			out := logging.NewStatus(cmd.OutOrStdout())
			if !running {
				out.Warn("Daemon is not running")
				return nil
			}
			if err := process.Terminate(pid, timeout); err != nil {
				out.Error("Failed to stop daemon", err)
				return err
			}
			out.Success("Stopped daemon (PID: %d)", pid)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", shutdownTimeout+time.Second, "How long to wait for the daemon to exit")
	return cmd
}

// daemonStatus is the --json output of daemon status.
type daemonStatus struct {
	Running bool                  `json:"running"`
	PID     int                   `json:"pid,omitempty"`
	Socket  string                `json:"socket"`
	State   *models.StateResponse `json:"state,omitempty"`
}

func newDaemonStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			running, pid, err := pidfile.IsRunning(paths.PidFilePath())
			if err != nil {
				return fmt.Errorf("error: %w", err)
			}
			status := daemonStatus{Running: running, PID: pid, Socket: socketPath(cmd)}
			if running {
				client := daemon.NewRemoteClient(status.Socket)
				defer client.Close()
				if st, err := client.GetState(cmd.Context()); err == nil {
					status.State = st
				}
			}

			if cli.GetOptions(cmd).JSONOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(status); err != nil {
					return err
				}
			} else if out := logging.NewStatus(cmd.OutOrStdout()); running {
				out.Success("Running (PID: %d)", pid)
				out.Field("socket", status.Socket)
				if status.State != nil {
					out.Field("phase", status.State.Phase)
					out.Field("rev", status.State.Rev)
					out.Field("surfaces", status.State.Subscribers)
				}
			} else {
				out.Warn("Stopped")
			}

			if !running {
				return lperrors.DaemonNotRunning(status.Socket)
			}
			return nil
		},
	}
}
