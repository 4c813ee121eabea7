package layout

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	c, s := Split(40)
	assert.Equal(t, 40, c)
	assert.Equal(t, 0, s)

	c, s = Split(120)
	assert.Equal(t, 40, s)
	assert.Equal(t, 79, c)

	_, s = Split(200)
	assert.Equal(t, SidebarMax, s)
}

func TestPadToWidth(t *testing.T) {
	assert.Equal(t, "ab   ", PadToWidth("ab", 5))
	assert.Equal(t, "abc", PadToWidth("abcdef", 3))
	assert.Equal(t, "", PadToWidth("abc", 0))
}

func TestFit(t *testing.T) {
	out := Fit("a\nb\nc\nd", 4, 2)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "a   ", lines[0])
	assert.Contains(t, lines[1], "↓")

	out = Fit("a", 3, 3)
	assert.Equal(t, "a  \n   \n   ", out)
}

func TestSideBySide(t *testing.T) {
	out := SideBySide("L", 2, "R", 3, 2)
	for _, line := range strings.Split(out, "\n") {
		assert.Equal(t, 6, lipgloss.Width(line))
	}
}
