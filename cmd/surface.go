package cmd

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/grovetools/linkpicker/cli"
	"github.com/grovetools/linkpicker/config"
	"github.com/grovetools/linkpicker/pkg/models"
	"github.com/grovetools/linkpicker/pkg/surface"
	"github.com/grovetools/linkpicker/tui"
	"github.com/grovetools/linkpicker/tui/keymap"
	"github.com/grovetools/linkpicker/tui/picker"
	"github.com/grovetools/linkpicker/tui/prefs"
	"github.com/grovetools/linkpicker/tui/theme"
)

// drainTimeout bounds how long a closing surface waits for its pending
// actions to be confirmed.
const drainTimeout = 500 * time.Millisecond

// surfaceSettings are the tui options read from the configuration.
type surfaceSettings struct {
	theme     theme.Config
	overrides keymap.Overrides
}

func loadSurfaceSettings(cmd *cobra.Command, name string) surfaceSettings {
	var s surfaceSettings
	cfg, _, err := config.Resolve(cli.GetOptions(cmd).ConfigFile, nil)
	if err != nil {
		return s
	}
	_ = cfg.UnmarshalExtension("tui", &s.theme)
	s.overrides = keymap.OverridesFrom(cfg, name)
	return s
}

// NewPickCmd opens the picker surface.
func NewPickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose the application that opens the current URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPicker(cmd)
		},
	}
}

func runPicker(cmd *cobra.Command) error {
	s := loadSurfaceSettings(cmd, "picker")
	return runSurface(cmd, func(d tui.Dispatcher, watch <-chan models.Tree) tea.Model {
		return picker.New(d, watch, picker.Options{
			ThemeName: s.theme.Theme,
			Accent:    s.theme.Accent,
			Overrides: s.overrides,
		})
	})
}

// NewPrefsCmd opens the preferences surface.
func NewPrefsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prefs",
		Short: "Edit favourites, hidden applications and hotkeys",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := loadSurfaceSettings(cmd, "prefs")
			return runSurface(cmd, func(d tui.Dispatcher, watch <-chan models.Tree) tea.Model {
				return prefs.New(d, watch, prefs.Options{
					ThemeName: s.theme.Theme,
					Accent:    s.theme.Accent,
					Overrides: s.overrides,
				})
			})
		},
	}
}

// runSurface attaches a surface store to the daemon over the bus websocket
// and runs the model built on it. The model quits when the daemon goes away.
func runSurface(cmd *cobra.Command, build func(tui.Dispatcher, <-chan models.Tree) tea.Model) error {
	logger := cli.GetLogger(cmd, "linkpicker")

	client, err := connect(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	conn, err := client.Connect(cmd.Context())
	if err != nil {
		return err
	}
	defer conn.Close()

	surf := surface.New(logger)
	surf.Attach(conn)
	conn.Start()
	watch, stopWatch := surf.Watch()
	defer stopWatch()
	go func() {
		<-conn.Done()
		stopWatch()
	}()

	restore := tui.InitializeTUI()
	defer restore()

	_, err = tea.NewProgram(build(surf, watch), tea.WithAltScreen()).Run()

	deadline := time.Now().Add(drainTimeout)
	for surf.Pending() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	surf.Close()
	return err
}
