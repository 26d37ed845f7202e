// Package paths resolves where linkpicker keeps its files.
//
// LINKPICKER_HOME, when set, roots everything at $LINKPICKER_HOME/{config,
// state,run}. Otherwise the XDG base directories apply, with the usual
// ~/.config and ~/.local/state fallbacks.
package paths

import (
	"os"
	"path/filepath"
)

const (
	appName = "linkpicker"
	homeEnv = "LINKPICKER_HOME"
)

// xdgDir is one XDG base directory kind.
type xdgDir struct {
	portable string   // subdirectory of LINKPICKER_HOME
	env      string   // XDG variable
	fallback []string // path under the user's home
}

var (
	configKind = xdgDir{portable: "config", env: "XDG_CONFIG_HOME", fallback: []string{".config"}}
	stateKind  = xdgDir{portable: "state", env: "XDG_STATE_HOME", fallback: []string{".local", "state"}}
)

// resolve returns the linkpicker directory of kind d, or "" when no home
// directory can be found.
func (d xdgDir) resolve() string {
	if home := os.Getenv(homeEnv); home != "" {
		return filepath.Join(home, d.portable)
	}
	if base := os.Getenv(d.env); base != "" {
		return filepath.Join(base, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append(append([]string{home}, d.fallback...), appName)...)
}

// ConfigDir holds linkpicker.yml.
func ConfigDir() string { return configKind.resolve() }

// StateDir holds the preferences, the database, the pid file and logs.
func StateDir() string { return stateKind.resolve() }

// LogDir is read by `linkpicker logs`.
func LogDir() string {
	if dir := StateDir(); dir != "" {
		return filepath.Join(dir, "logs")
	}
	return ""
}

// RuntimeDir holds the daemon socket. Without XDG_RUNTIME_DIR (macOS) it is
// the state directory.
func RuntimeDir() string {
	if home := os.Getenv(homeEnv); home != "" {
		return filepath.Join(home, "run")
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return StateDir()
}

func SocketPath() string    { return filepath.Join(RuntimeDir(), "linkpickerd.sock") }
func PidFilePath() string   { return filepath.Join(StateDir(), "linkpickerd.pid") }
func StateFilePath() string { return filepath.Join(StateDir(), "prefs.yml") }
func DatabasePath() string  { return filepath.Join(StateDir(), "linkpicker.db") }

// EnsureDirs creates every directory above.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), StateDir(), LogDir(), RuntimeDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
