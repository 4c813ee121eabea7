package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/framereview/tui/styles"
)

type binding struct{ key, desc string }

var helpGroups = []struct {
	title    string
	bindings []binding
}{
	{"Playback", []binding{
		{"space", "play / pause"},
		{"← / →", "skip 5s back / forward"},
		{"m", "mute"},
		{"f", "fullscreen"},
		{"click bar", "seek"},
	}},
	{"Annotate", []binding{
		{"a", "enter / leave annotation mode"},
		{"drag", "draw on the canvas"},
		{"p r c", "pen, rectangle, circle"},
		{"1-4", "colour"},
		{"u / x", "undo / clear"},
		{"s", "save frame with comment"},
	}},
	{"Comments", []binding{
		{"n", "add a comment here"},
		{"[ / ]", "previous / next comment"},
		{"enter", "jump to selected"},
		{"v", "resolve / reopen"},
		{"d", "delete"},
		{"tab", "filter all / open / resolved"},
		{"R", "reload"},
	}},
	{"", []binding{
		{"?", "this help"},
		{"q", "quit"},
	}},
}

// HelpOverlay renders the key bindings centred in width x height.
func HelpOverlay(width, height int) string {
	keyStyle := lipgloss.NewStyle().Foreground(styles.Dim).Bold(true).Width(12)
	var lines []string
	lines = append(lines, lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true).Render("Keys"))
	for _, g := range helpGroups {
		if g.title != "" {
			lines = append(lines, "", styles.Header.Render(g.title))
		} else {
			lines = append(lines, "")
		}
		for _, b := range g.bindings {
			lines = append(lines, "  "+keyStyle.Render(b.key)+styles.PrimaryText.Render(b.desc))
		}
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(styles.Dim).Italic(true).Render("any key closes"))

	panel := lipgloss.NewStyle().
		Background(styles.Panel).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Accent).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}
