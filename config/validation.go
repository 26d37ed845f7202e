package config

import (
	"fmt"
	"runtime"
	"time"
	"unicode/utf8"

	"github.com/grovetools/linkpicker/command"
	"github.com/grovetools/linkpicker/errors"
	"github.com/grovetools/linkpicker/internal/persist"
	"github.com/grovetools/linkpicker/pkg/models"
	"github.com/grovetools/linkpicker/pkg/paths"
	"github.com/grovetools/linkpicker/pkg/scanner"
)

// Default daemon timings.
const (
	DefaultFlushDebounce = 250 * time.Millisecond
	DefaultScanTimeout   = 5 * time.Second
	DefaultLaunchTimeout = command.DefaultSettle
)

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = CurrentVersion
	}
	if len(c.Targets) == 0 {
		c.Targets = DefaultCatalog(runtime.GOOS)
	}

	if c.Daemon.Socket == "" {
		c.Daemon.Socket = paths.SocketPath()
	}
	if c.Daemon.FlushDebounce == 0 {
		c.Daemon.FlushDebounce = Duration(DefaultFlushDebounce)
	}
	if c.Daemon.ScanTimeout == 0 {
		c.Daemon.ScanTimeout = Duration(DefaultScanTimeout)
	}
	if c.Daemon.LaunchTimeout == 0 {
		c.Daemon.LaunchTimeout = Duration(DefaultLaunchTimeout)
	}

	if c.Persistence.Backend == "" {
		c.Persistence.Backend = persist.BackendYAML
	}
	if c.Persistence.Path == "" {
		switch c.Persistence.Backend {
		case persist.BackendYAML:
			c.Persistence.Path = paths.StateFilePath()
		case persist.BackendSQLite:
			c.Persistence.Path = paths.DatabasePath()
		}
	}
}

// Validate checks what the schema cannot express.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Targets))
	for i, target := range c.Targets {
		if target.ID == "" {
			return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("targets[%d]: id is required", i)).
				WithDetail("index", i)
		}
		if _, dup := seen[target.ID]; dup {
			return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("duplicate target id '%s'", target.ID)).
				WithDetail("target", target.ID)
		}
		seen[target.ID] = struct{}{}

		if _, err := command.Split(target.Command); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation, fmt.Sprintf("invalid command for target '%s'", target.ID)).
				WithDetail("target", target.ID)
		}
		if n := utf8.RuneCountInString(target.DefaultHotkey); n > 1 {
			return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("default_hotkey for target '%s' must be a single character", target.ID)).
				WithDetail("target", target.ID)
		}
	}

	if c.Daemon.FlushDebounce < 0 || c.Daemon.FlushInterval < 0 || c.Daemon.ScanTimeout < 0 || c.Daemon.LaunchTimeout < 0 {
		return errors.New(errors.ErrCodeConfigValidation, "daemon durations cannot be negative")
	}

	switch c.Persistence.Backend {
	case persist.BackendYAML, persist.BackendSQLite, persist.BackendMemory:
	default:
		return errors.New(errors.ErrCodePersistBackend, fmt.Sprintf("unknown persistence backend '%s'", c.Persistence.Backend)).
			WithDetail("backend", c.Persistence.Backend)
	}

	if c.Registration.Command != "" {
		if _, err := command.Split(c.Registration.Command); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid registration.command")
		}
	}
	return nil
}

// Catalog converts the configured targets to the shared model.
func (c *Config) Catalog() []models.Target {
	out := make([]models.Target, 0, len(c.Targets))
	for _, t := range c.Targets {
		out = append(out, models.Target{
			ID:            t.ID,
			Name:          t.Name,
			Command:       t.Command,
			AppID:         t.AppID,
			DefaultHotkey: t.DefaultHotkey,
		})
	}
	return out
}

// Probes returns one scanner probe per target that depends on an app. The
// probe path defaults to the program of the launch command.
func (c *Config) Probes() []scanner.Probe {
	var out []scanner.Probe
	for _, t := range c.Targets {
		if t.AppID == "" {
			continue
		}
		path := t.Probe
		if path == "" {
			if argv, err := command.Split(t.Command); err == nil && len(argv) > 0 {
				path = argv[0]
			}
		}
		if path == "" {
			continue
		}
		out = append(out, scanner.Probe{AppID: t.AppID, Path: path})
	}
	return out
}

// DefaultCatalog lists common browsers for goos. On Linux it also offers the
// desktop's own handler, which needs no scan.
func DefaultCatalog(goos string) []TargetConfig {
	if goos == "darwin" {
		return []TargetConfig{
			{ID: "safari", Name: "Safari", Command: "open -a Safari {URL}", AppID: "com.apple.Safari", Probe: "/Applications/Safari.app", DefaultHotkey: "s"},
			{ID: "firefox", Name: "Firefox", Command: "open -a Firefox {URL}", AppID: "org.mozilla.firefox", Probe: "/Applications/Firefox.app", DefaultHotkey: "f"},
			{ID: "chrome", Name: "Google Chrome", Command: `open -a "Google Chrome" {URL}`, AppID: "com.google.Chrome", Probe: "/Applications/Google Chrome.app", DefaultHotkey: "c"},
			{ID: "brave", Name: "Brave", Command: `open -a "Brave Browser" {URL}`, AppID: "com.brave.Browser", Probe: "/Applications/Brave Browser.app", DefaultHotkey: "b"},
			{ID: "edge", Name: "Microsoft Edge", Command: `open -a "Microsoft Edge" {URL}`, AppID: "com.microsoft.edgemac", Probe: "/Applications/Microsoft Edge.app", DefaultHotkey: "e"},
		}
	}
	return []TargetConfig{
		{ID: "firefox", Name: "Firefox", Command: "firefox {URL}", AppID: "org.mozilla.firefox", DefaultHotkey: "f"},
		{ID: "chrome", Name: "Google Chrome", Command: "google-chrome {URL}", AppID: "com.google.Chrome", DefaultHotkey: "c"},
		{ID: "chromium", Name: "Chromium", Command: "chromium {URL}", AppID: "org.chromium.Chromium", DefaultHotkey: "m"},
		{ID: "brave", Name: "Brave", Command: "brave-browser {URL}", AppID: "com.brave.Browser", DefaultHotkey: "b"},
		{ID: "edge", Name: "Microsoft Edge", Command: "microsoft-edge {URL}", AppID: "com.microsoft.Edge", DefaultHotkey: "e"},
		{ID: "xdg-open", Name: "System default", Command: "xdg-open {URL}", DefaultHotkey: "o"},
	}
}
