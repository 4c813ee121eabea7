package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/framereview/pkg/timeutil"
	"github.com/user/framereview/timeline"
	"github.com/user/framereview/tui/styles"
)

// SeekBarInset is the number of cells before the bar starts on its line.
const SeekBarInset = 1

// SeekBar renders the progress bar with one marker per comment and the
// current/total time. Markers outside the video are not drawn. The marker of
// the active comment is highlighted.
func SeekBar(current, duration float64, markers []timeline.Marker, activeID int64, width int) string {
	timeText := " " + timeutil.FormatProgress(current, duration)
	barWidth := SeekBarWidth(width, lipgloss.Width(timeText))
	if barWidth <= 0 {
		return styles.PrimaryText.Render(timeText)
	}

	fill := 0
	if duration > 0 && !math.IsNaN(current) {
		fill = int(math.Round(float64(barWidth) * current / duration))
	}
	fill = max(0, min(fill, barWidth))

	cells := make([]string, barWidth)
	for i := range cells {
		switch {
		case i < fill:
			cells[i] = lipgloss.NewStyle().Foreground(styles.Accent).Render("━")
		case i == fill:
			cells[i] = lipgloss.NewStyle().Foreground(styles.Pink).Bold(true).Render("╸")
		default:
			cells[i] = lipgloss.NewStyle().Foreground(styles.Border).Render("─")
		}
	}
	for _, mk := range markers {
		if mk.Percent < 0 || mk.Percent > 100 {
			continue
		}
		pos := int(math.Round(float64(barWidth-1) * mk.Percent / 100))
		cells[pos] = markerGlyph(mk, mk.CommentID == activeID)
	}

	return strings.Repeat(" ", SeekBarInset) + strings.Join(cells, "") + styles.PrimaryText.Bold(true).Render(timeText)
}

// SeekBarWidth is the number of bar cells for a line of the given width.
func SeekBarWidth(width, timeTextWidth int) int {
	return width - SeekBarInset - timeTextWidth
}

// SeekBarTime maps a click column on the seek bar line to a time. It
// reports false for clicks off the bar or while the duration is unknown.
func SeekBarTime(col, barWidth int, duration float64) (float64, bool) {
	i := col - SeekBarInset
	if barWidth <= 1 || i < 0 || i >= barWidth || !(duration > 0) || math.IsInf(duration, 0) {
		return 0, false
	}
	return duration * float64(i) / float64(barWidth-1), true
}

func markerGlyph(mk timeline.Marker, active bool) string {
	glyph, c := "◆", styles.Unresolved
	if mk.State == timeline.Resolved {
		glyph, c = "●", styles.Resolved
	}
	st := lipgloss.NewStyle().Foreground(c)
	if active {
		st = st.Foreground(styles.Cyan).Bold(true)
	}
	return st.Render(glyph)
}
