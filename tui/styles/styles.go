// Package styles holds the Lipgloss palette and shared styles of the review
// TUI (Ciapre colours).
package styles

import "github.com/charmbracelet/lipgloss"

// Palette.
const (
	Base      = lipgloss.Color("#191C27")
	Panel     = lipgloss.Color("#181818")
	Border    = lipgloss.Color("#5C4F4B")
	Accent    = lipgloss.Color("#724D7C")
	Dim       = lipgloss.Color("#AEA47A")
	Text      = lipgloss.Color("#F3DBB2")
	Pink      = lipgloss.Color("#D33061")
	Cyan      = lipgloss.Color("#3097C6")
	Amber     = lipgloss.Color("#CC8B3F")
	Red       = lipgloss.Color("#AC3835")
	Green     = lipgloss.Color("#A6A75D")
	CanvasBg  = lipgloss.Color("#0E0F14")
	CanvasDot = lipgloss.Color("#2A2D3A")
)

// Marker colours on the seek bar and in the comment list.
const (
	Unresolved = Amber
	Resolved   = Green
)

var (
	Header = lipgloss.NewStyle().Foreground(Pink).Bold(true)

	Boxed = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)

	Selected = lipgloss.NewStyle().
			Background(Accent).
			Foreground(Text).
			Bold(true)

	// ActiveRow marks the comment under the playhead.
	ActiveRow = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

	PrimaryText   = lipgloss.NewStyle().Foreground(Text)
	SecondaryText = lipgloss.NewStyle().Foreground(Dim)

	Warning = lipgloss.NewStyle().Foreground(Red).Bold(true)
	Success = lipgloss.NewStyle().Foreground(Green).Bold(true)

	// Key renders a key hint such as "[a]".
	Key = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
)
