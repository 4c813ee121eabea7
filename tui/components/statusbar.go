// Package components renders the blocks of the review TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/framereview/review"
	"github.com/user/framereview/tui/styles"
)

// StatusBarState is what the status bar shows.
type StatusBarState struct {
	Title      string
	Playing    bool
	Muted      bool
	Fullscreen bool
	Annotating bool
	Status     review.Status
	Filter     string
	Connected  bool
}

// StatusBar renders the top line: play state, title, mode badge and
// comment counts.
func StatusBar(s StatusBarState, width int) string {
	icon := "⏸"
	if s.Playing {
		icon = "▶"
	}
	left := fmt.Sprintf(" %s %s", icon, s.Title)
	if s.Annotating {
		left += " " + lipgloss.NewStyle().Background(styles.Pink).Foreground(styles.Text).Bold(true).Render(" ANNOTATE ")
	}

	var flags []string
	if s.Muted {
		flags = append(flags, "muted")
	}
	if s.Fullscreen {
		flags = append(flags, "fullscreen")
	}
	if !s.Connected {
		flags = append(flags, styles.Warning.Render("mpv offline"))
	}
	right := fmt.Sprintf("%d open · %d resolved · %s ", s.Status.Open, s.Status.Resolved, s.Filter)
	if len(flags) > 0 {
		right = strings.Join(flags, " ") + "  " + right
	}

	pad := width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return lipgloss.NewStyle().
		Background(styles.Panel).
		Foreground(styles.Text).
		Bold(true).
		Width(width).
		Render(left + strings.Repeat(" ", pad) + right)
}

// Notice renders a dismissible notice line, or nothing.
func Notice(text string, width int) string {
	if text == "" {
		return ""
	}
	return styles.Warning.Width(width).Render(" " + text + "  (esc to dismiss)")
}
