package table

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grovetools/linkpicker/tui/theme"
)

func TestNew(t *testing.T) {
	out := New(theme.New("", true, ""), 1).
		Headers("KEY", "APPLICATION").
		Row("f", "Firefox").
		Row("c", "Chrome").
		String()

	assert.Contains(t, out, "APPLICATION")
	assert.Contains(t, out, "Firefox")
	assert.Contains(t, out, "Chrome")
	assert.Contains(t, out, "╭")
}

func TestNewNilTheme(t *testing.T) {
	out := New(nil, -1).Headers("A").Row("x").String()
	assert.Contains(t, out, "x")
}
