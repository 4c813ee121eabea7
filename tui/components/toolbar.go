package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/framereview/annotate"
	"github.com/user/framereview/tui/styles"
)

// ToolbarState is the drawing selection and what can be done with it.
type ToolbarState struct {
	Annotating bool
	Tool       annotate.Tool
	Color      annotate.Color
	Shapes     int
}

var toolKeys = []struct {
	key  string
	tool annotate.Tool
}{
	{"p", annotate.ToolPen},
	{"r", annotate.ToolRect},
	{"c", annotate.ToolCircle},
}

// Toolbar renders the annotation tools, or a hint to start annotating.
func Toolbar(s ToolbarState, width int) string {
	if !s.Annotating {
		return styles.SecondaryText.Width(width).Render(" " + styles.Key.Render("[a]") + " annotate   " +
			styles.Key.Render("[n]") + " comment   " + styles.Key.Render("[?]") + " help")
	}

	var parts []string
	for _, tk := range toolKeys {
		label := "[" + tk.key + "] " + tk.tool.String()
		if tk.tool == s.Tool {
			parts = append(parts, styles.Selected.Render(label))
		} else {
			parts = append(parts, styles.SecondaryText.Render(label))
		}
	}
	parts = append(parts, " ")
	for i, c := range annotate.Palette {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(string(c))).Render("■")
		key := string(rune('1' + i))
		if c == s.Color {
			parts = append(parts, styles.Selected.Render(key)+swatch)
		} else {
			parts = append(parts, styles.SecondaryText.Render(key)+swatch)
		}
	}
	parts = append(parts, " ")

	action := func(key, label string, enabled bool) string {
		st := styles.SecondaryText
		if !enabled {
			st = lipgloss.NewStyle().Foreground(styles.Border)
		}
		return st.Render("[" + key + "] " + label)
	}
	parts = append(parts,
		action("u", "undo", s.Shapes > 0),
		action("x", "clear", s.Shapes > 0),
		action("s", "save", true),
		action("a", "done", true),
	)
	return lipgloss.NewStyle().Width(width).Render(" " + strings.Join(parts, " "))
}
