package theme

import "os"

// Nerd Font Icons (Private Constants)
const (
	nerdIconSuccess   = "󰄬" // md-check (U+F012C)
	nerdIconError     = "" // cod-error (U+EA87)
	nerdIconWarning   = "" // fa-warning (U+F071)
	nerdIconInfo      = "󰋼" // md-information (U+F02FC)
	nerdIconArrow     = "󰁔" // md-arrow_right (U+F0054)
	nerdIconFavourite = "" // fa-star (U+F005)
	nerdIconHidden    = "󰈉" // md-eye_off (U+F0209)
	nerdIconLink      = "" // fa-link (U+F0C1)
)

// ASCII Icons (Private Constants)
const (
	asciiIconSuccess   = "✓"
	asciiIconError     = "x"
	asciiIconWarning   = "!"
	asciiIconInfo      = "i"
	asciiIconArrow     = ">"
	asciiIconFavourite = "*"
	asciiIconHidden    = "-"
	asciiIconLink      = "@"
)

// EnvIcons set to "ascii" avoids Nerd Font glyphs.
const EnvIcons = "LINKPICKER_ICONS"

// Public icon variables, set by init.
var (
	IconSuccess   string
	IconError     string
	IconWarning   string
	IconInfo      string
	IconArrow     string
	IconFavourite string
	IconHidden    string
	IconLink      string
)

func init() {
	mode := os.Getenv(EnvIcons)
	if mode == "" {
		mode = LoadConfig().Icons
	}
	SetIcons(mode == "ascii")
}

// SetIcons switches between the ASCII and Nerd Font sets.
func SetIcons(ascii bool) {
	if ascii {
		IconSuccess = asciiIconSuccess
		IconError = asciiIconError
		IconWarning = asciiIconWarning
		IconInfo = asciiIconInfo
		IconArrow = asciiIconArrow
		IconFavourite = asciiIconFavourite
		IconHidden = asciiIconHidden
		IconLink = asciiIconLink
		return
	}
	IconSuccess = nerdIconSuccess
	IconError = nerdIconError
	IconWarning = nerdIconWarning
	IconInfo = nerdIconInfo
	IconArrow = nerdIconArrow
	IconFavourite = nerdIconFavourite
	IconHidden = nerdIconHidden
	IconLink = nerdIconLink
}
