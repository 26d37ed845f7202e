// Package theme holds the lipgloss styles shared by the picker, the
// preferences screen and CLI output.
package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/grovetools/linkpicker/config"
)

const defaultThemeName = "kanagawa"

// EnvTheme selects a palette regardless of configuration.
const EnvTheme = "LINKPICKER_THEME"

// palette is one colour per role, for one background.
type palette struct {
	Green, Yellow, Red, Orange, Cyan, Violet string
	Text, Muted, Border, Selected             string
}

// --- Kanagawa Dragon (dark) / Wave (light) ---
var (
	kanagawaDark = palette{
		Green: "#98BB6C", Yellow: "#FF9E3B", Red: "#FF5D62", Orange: "#FFA066",
		Cyan: "#7E9CD8", Violet: "#957FB8",
		Text: "#DCD7BA", Muted: "#727169", Border: "#363646", Selected: "#223249",
	}
	kanagawaLight = palette{
		Green: "#4E7C5A", Yellow: "#A68A64", Red: "#C34043", Orange: "#CC6B4E",
		Cyan: "#5B8BBE", Violet: "#674D7A",
		Text: "#2B2F42", Muted: "#6C7086", Border: "#B5BDC5", Selected: "#E2E6F3",
	}
)

// --- Gruvbox ---
var (
	gruvboxDark = palette{
		Green: "#B8BB26", Yellow: "#FABD2F", Red: "#FB4934", Orange: "#FE8019",
		Cyan: "#83A598", Violet: "#B16286",
		Text: "#EBDBB2", Muted: "#BDAE93", Border: "#504945", Selected: "#32302F",
	}
	gruvboxLight = palette{
		Green: "#98971A", Yellow: "#D79921", Red: "#CC241D", Orange: "#D65D0E",
		Cyan: "#458588", Violet: "#8F3F71",
		Text: "#3C3836", Muted: "#928374", Border: "#D5C4A1", Selected: "#F2E5BC",
	}
)

// --- Terminal (ANSI-friendly), same for both backgrounds ---
var terminalPalette = palette{
	Green: "2", Yellow: "3", Red: "1", Orange: "208", Cyan: "6", Violet: "5",
	Text: "7", Muted: "8", Border: "8", Selected: "8",
}

var themeRegistry = map[string][2]palette{
	"kanagawa": {kanagawaDark, kanagawaLight},
	"gruvbox":  {gruvboxDark, gruvboxLight},
	"terminal": {terminalPalette, terminalPalette},
}

var themeAliases = map[string]string{
	"kanagawa-dark":   "kanagawa",
	"kanagawa-dragon": "kanagawa",
	"kanagawa-wave":   "kanagawa",
	"gruvbox-dark":    "gruvbox",
	"gruvbox-light":   "gruvbox",
	"ansi":            "terminal",
}

// Colors are the resolved colours of a theme.
type Colors struct {
	Green, Yellow, Red, Orange, Cyan, Accent lipgloss.TerminalColor
	Text, Muted, Border, Selected            lipgloss.TerminalColor
}

// Theme holds all the pre-configured styles.
type Theme struct {
	Name   string
	Dark   bool
	Colors Colors

	Header lipgloss.Style
	Title  lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Bold     lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style

	TableHeader lipgloss.Style
	Box         lipgloss.Style

	URLBar      lipgloss.Style
	Placeholder lipgloss.Style
	Hotkey      lipgloss.Style
	Favourite   lipgloss.Style
	Hidden      lipgloss.Style
	Highlight   lipgloss.Style
	Accent      lipgloss.Style
}

// DefaultTheme uses adaptive colours until a surface learns the real
// background from the host.
var DefaultTheme = initDefaultTheme()

// New builds the named palette for a known background. A non-empty accent
// (any lipgloss colour string) replaces the palette accent.
func New(name string, dark bool, accent string) *Theme {
	pair := resolvePalette(name)
	p := pair[1]
	if dark {
		p = pair[0]
	}
	c := Colors{
		Green:    lipgloss.Color(p.Green),
		Yellow:   lipgloss.Color(p.Yellow),
		Red:      lipgloss.Color(p.Red),
		Orange:   lipgloss.Color(p.Orange),
		Cyan:     lipgloss.Color(p.Cyan),
		Accent:   lipgloss.Color(p.Violet),
		Text:     lipgloss.Color(p.Text),
		Muted:    lipgloss.Color(p.Muted),
		Border:   lipgloss.Color(p.Border),
		Selected: lipgloss.Color(p.Selected),
	}
	if accent != "" {
		c.Accent = lipgloss.Color(accent)
	}
	return newThemeFromColors(normalizedName(name), dark, c)
}

// RenderHeader renders a header with the default styling.
func RenderHeader(title string) string {
	return DefaultTheme.Header.Render(title)
}

// RenderStatus renders text with the appropriate status style.
func RenderStatus(status, text string) string {
	switch status {
	case "success":
		return DefaultTheme.Success.Render(text)
	case "error":
		return DefaultTheme.Error.Render(text)
	case "warning":
		return DefaultTheme.Warning.Render(text)
	case "info":
		return DefaultTheme.Info.Render(text)
	default:
		return text
	}
}

func initDefaultTheme() *Theme {
	name := getThemeName()
	pair := resolvePalette(name)
	adaptive := func(pick func(palette) string) lipgloss.TerminalColor {
		return lipgloss.AdaptiveColor{Light: pick(pair[1]), Dark: pick(pair[0])}
	}
	c := Colors{
		Green:    adaptive(func(p palette) string { return p.Green }),
		Yellow:   adaptive(func(p palette) string { return p.Yellow }),
		Red:      adaptive(func(p palette) string { return p.Red }),
		Orange:   adaptive(func(p palette) string { return p.Orange }),
		Cyan:     adaptive(func(p palette) string { return p.Cyan }),
		Accent:   adaptive(func(p palette) string { return p.Violet }),
		Text:     adaptive(func(p palette) string { return p.Text }),
		Muted:    adaptive(func(p palette) string { return p.Muted }),
		Border:   adaptive(func(p palette) string { return p.Border }),
		Selected: adaptive(func(p palette) string { return p.Selected }),
	}
	return newThemeFromColors(normalizedName(name), lipgloss.HasDarkBackground(), c)
}

func newThemeFromColors(name string, dark bool, c Colors) *Theme {
	return &Theme{
		Name:   name,
		Dark:   dark,
		Colors: c,

		Header: lipgloss.NewStyle().Bold(true).MarginBottom(1),
		Title:  lipgloss.NewStyle().Bold(true).Underline(true),

		Success: lipgloss.NewStyle().Foreground(c.Green).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(c.Red).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(c.Yellow).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(c.Cyan).Bold(true),

		Bold:   lipgloss.NewStyle().Bold(true),
		Normal: lipgloss.NewStyle(),
		Muted:  lipgloss.NewStyle().Foreground(c.Muted),
		Selected: lipgloss.NewStyle().
			Background(c.Selected).
			Foreground(c.Text),

		TableHeader: lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(c.Border),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.Border).
			Padding(0, 1),

		URLBar: lipgloss.NewStyle().
			Foreground(c.Text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.Accent).
			Padding(0, 1),
		Placeholder: lipgloss.NewStyle().Foreground(c.Muted).Italic(true),
		Hotkey: lipgloss.NewStyle().
			Foreground(c.Orange).
			Bold(true),
		Favourite: lipgloss.NewStyle().Foreground(c.Yellow),
		Hidden:    lipgloss.NewStyle().Foreground(c.Muted).Strikethrough(true),
		Highlight: lipgloss.NewStyle().Foreground(c.Orange).Bold(true),
		Accent:    lipgloss.NewStyle().Foreground(c.Accent).Bold(true),
	}
}

func resolvePalette(name string) [2]palette {
	return themeRegistry[normalizedName(name)]
}

// normalizedName maps aliases and unknown names onto a registered palette.
func normalizedName(name string) string {
	key := normalizeThemeName(name)
	if alias, ok := themeAliases[key]; ok {
		key = alias
	}
	if _, ok := themeRegistry[key]; ok {
		return key
	}
	return defaultThemeName
}

func normalizeThemeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = strings.ReplaceAll(normalized, "_", "-")
	return normalized
}

// Config is the `tui` section of linkpicker.yml.
type Config struct {
	Theme  string `yaml:"theme"`
	Icons  string `yaml:"icons"`
	Accent string `yaml:"accent"`
}

// LoadConfig reads the `tui` section, returning zero values on any error.
func LoadConfig() Config {
	var tuiCfg Config
	cfg, err := config.LoadDefault()
	if err != nil || cfg == nil {
		return tuiCfg
	}
	_ = cfg.UnmarshalExtension("tui", &tuiCfg)
	return tuiCfg
}

func getThemeName() string {
	if theme := normalizeThemeName(os.Getenv(EnvTheme)); theme != "" {
		return theme
	}
	if theme := normalizeThemeName(LoadConfig().Theme); theme != "" {
		return theme
	}
	return defaultThemeName
}
