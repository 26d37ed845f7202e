package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestNormalizedName(t *testing.T) {
	tests := map[string]string{
		"":                "kanagawa",
		"Gruvbox Light":   "gruvbox",
		"kanagawa_wave":   "kanagawa",
		"ANSI":            "terminal",
		"no-such-palette": "kanagawa",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizedName(in), in)
	}
}

func TestNewPicksBackground(t *testing.T) {
	dark := New("gruvbox", true, "")
	light := New("gruvbox", false, "")

	assert.True(t, dark.Dark)
	assert.False(t, light.Dark)
	assert.NotEqual(t, dark.Colors.Text, light.Colors.Text)
	assert.Equal(t, "gruvbox", dark.Name)
}

func TestNewAccentOverride(t *testing.T) {
	th := New("kanagawa", true, "#ff00ff")
	assert.Equal(t, lipgloss.Color("#ff00ff"), th.Colors.Accent)
}

func TestSetIcons(t *testing.T) {
	SetIcons(true)
	assert.Equal(t, "*", IconFavourite)
	SetIcons(false)
	assert.NotEqual(t, "*", IconFavourite)
}
