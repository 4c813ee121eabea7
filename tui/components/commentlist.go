package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/user/framereview/pkg/timeutil"
	"github.com/user/framereview/review"
	"github.com/user/framereview/tui/styles"
)

// rowsPerComment is the height of one comment entry.
const rowsPerComment = 2

// CommentListState is the sidebar content.
type CommentListState struct {
	Comments []review.Comment
	// Selected indexes Comments, -1 for none.
	Selected int
	// ActiveID is the comment under the playhead, 0 for none.
	ActiveID int64
	Now      time.Time
}

// CommentList renders the sidebar, scrolled so the selected (or else the
// active) comment is visible.
func CommentList(s CommentListState, width, height int) string {
	lines := []string{styles.Header.Render(fmt.Sprintf(" Comments (%d)", len(s.Comments)))}
	if len(s.Comments) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.Border).Italic(true).Render(" No comments yet"))
		return strings.Join(lines, "\n")
	}

	capacity := (height - 1) / rowsPerComment
	if capacity < 1 {
		capacity = 1
	}
	focus := s.Selected
	if focus < 0 {
		for i, c := range s.Comments {
			if c.ID == s.ActiveID {
				focus = i
			}
		}
	}
	offset := scrollOffset(focus, len(s.Comments), capacity)

	for i := offset; i < len(s.Comments) && i < offset+capacity; i++ {
		lines = append(lines, commentRows(s.Comments[i], i == s.Selected, s.Comments[i].ID == s.ActiveID, s.Now, width)...)
	}
	return strings.Join(lines, "\n")
}

// scrollOffset keeps focus in view, roughly a third from the top.
func scrollOffset(focus, n, capacity int) int {
	if focus < capacity || n <= capacity {
		return 0
	}
	off := focus - capacity/3
	return min(off, n-capacity)
}

func commentRows(c review.Comment, selected, active bool, now time.Time, width int) []string {
	dot := lipgloss.NewStyle().Foreground(styles.Unresolved).Render("◆")
	if c.Resolved {
		dot = lipgloss.NewStyle().Foreground(styles.Resolved).Render("●")
	}
	when := ""
	if !c.CreatedAt.IsZero() && !now.IsZero() {
		when = " · " + humanize.RelTime(c.CreatedAt, now, "ago", "from now")
	}
	clip := ""
	if c.HasAttachment() {
		clip = " [img]"
	}
	head := fmt.Sprintf(" %s %s %s%s%s", dot, timeutil.FormatTime(c.TimestampSeconds), c.Author, when, clip)

	text := strings.Join(strings.Fields(c.Text), " ")
	if text == "" && c.HasAttachment() {
		text = "(annotation)"
	}
	body := "   " + text

	st := styles.PrimaryText
	switch {
	case selected:
		st = styles.Selected
	case active:
		st = styles.ActiveRow
	}
	return []string{
		st.Width(width).Render(truncate(head, width)),
		st.Width(width).Render(truncate(body, width)),
	}
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
