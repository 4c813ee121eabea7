// Package layout fits pre-rendered TUI blocks into fixed-size boxes.
package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/user/framereview/tui/styles"
)

// SidebarMin and SidebarMax bound the comment sidebar width.
const (
	SidebarMin = 28
	SidebarMax = 48
)

// Split divides the terminal width between the canvas and the sidebar. The
// sidebar takes about a third, within its bounds; narrow terminals get no
// sidebar.
func Split(termWidth int) (canvas, sidebar int) {
	if termWidth < SidebarMin*2 {
		return termWidth, 0
	}
	sidebar = termWidth / 3
	if sidebar < SidebarMin {
		sidebar = SidebarMin
	}
	if sidebar > SidebarMax {
		sidebar = SidebarMax
	}
	return termWidth - sidebar - 1, sidebar
}

// PadToWidth pads or truncates s to exactly width cells, ANSI-aware.
func PadToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := lipgloss.Width(s)
	if w > width {
		s = ansi.Truncate(s, width, "")
		w = lipgloss.Width(s)
	}
	if w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// Fit constrains content to exactly width x height. Content cut off at the
// bottom ends with a "more" marker.
func Fit(content string, width, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
		lines[height-1] = lipgloss.NewStyle().Foreground(styles.Border).Render("↓ more")
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, l := range lines {
		lines[i] = PadToWidth(l, width)
	}
	return strings.Join(lines, "\n")
}

// SideBySide joins two blocks of equal height with a border column.
func SideBySide(left string, leftW int, right string, rightW int, height int) string {
	if rightW <= 0 {
		return Fit(left, leftW, height)
	}
	sep := lipgloss.NewStyle().Foreground(styles.Border).Render("│")
	l := strings.Split(Fit(left, leftW, height), "\n")
	r := strings.Split(Fit(right, rightW, height), "\n")
	rows := make([]string, height)
	for i := range rows {
		rows[i] = l[i] + sep + r[i]
	}
	return strings.Join(rows, "\n")
}
