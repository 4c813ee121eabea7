// Package timeline derives seek-bar markers and the active comment from the
// comment list and the playhead. Everything here is a pure function of its
// inputs and cheap enough to run on every time update.
package timeline

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/user/framereview/review"
)

// ActiveWindow is how close (in seconds) the playhead must be to a comment
// for it to be active.
const ActiveWindow = 2.0

// MarkerState is the two-valued visual state of a marker.
type MarkerState int

const (
	Unresolved MarkerState = iota
	Resolved
)

// Marker is one comment's position on the seek bar.
type Marker struct {
	CommentID int64
	// Percent is the position along the bar, 0–100 for in-range timestamps.
	Percent float64
	State   MarkerState
	Text    string
}

// Result is the reconciled timeline view.
type Result struct {
	Markers []Marker
	// Active is the index into the input comments of the active comment, or
	// -1 when none is within ActiveWindow.
	Active int
}

// ActiveID returns the active comment id.
func (r Result) ActiveID(comments []review.Comment) (int64, bool) {
	if r.Active < 0 || r.Active >= len(comments) {
		return 0, false
	}
	return comments[r.Active].ID, true
}

// Reconcile computes markers and the active comment. No markers are produced
// while the duration is unknown, zero or not finite.
func Reconcile(comments []review.Comment, current, duration float64) Result {
	return Result{
		Markers: Markers(comments, duration),
		Active:  ActiveIndex(comments, current),
	}
}

// Markers places one marker per comment at timestamp/duration percent.
func Markers(comments []review.Comment, duration float64) []Marker {
	if !(duration > 0) || math.IsInf(duration, 0) {
		return nil
	}
	out := make([]Marker, 0, len(comments))
	for _, c := range comments {
		state := Unresolved
		if c.Resolved {
			state = Resolved
		}
		out = append(out, Marker{
			CommentID: c.ID,
			Percent:   c.TimestampSeconds / duration * 100,
			State:     state,
			Text:      c.Text,
		})
	}
	return out
}

// ActiveIndex returns the last comment, in list order, whose timestamp is
// strictly within ActiveWindow of current; -1 if none.
func ActiveIndex(comments []review.Comment, current float64) int {
	active := -1
	if math.IsNaN(current) {
		return active
	}
	for i, c := range comments {
		if math.Abs(c.TimestampSeconds-current) < ActiveWindow {
			active = i
		}
	}
	return active
}

// Filter selects which comments the sidebar lists.
type Filter int

const (
	FilterAll Filter = iota
	FilterOpen
	FilterResolved
)

// String returns the filter label.
func (f Filter) String() string {
	switch f {
	case FilterOpen:
		return "open"
	case FilterResolved:
		return "resolved"
	}
	return "all"
}

// ParseFilter reads a filter label as printed by String.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "open":
		return FilterOpen, nil
	case "resolved":
		return FilterResolved, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q (want all, open or resolved)", s)
}

// Next cycles all → open → resolved → all.
func (f Filter) Next() Filter {
	return (f + 1) % 3
}

// Visible returns the comments matching f, stably sorted by timestamp.
func Visible(comments []review.Comment, f Filter) []review.Comment {
	out := make([]review.Comment, 0, len(comments))
	for _, c := range comments {
		switch {
		case f == FilterOpen && c.Resolved:
			continue
		case f == FilterResolved && !c.Resolved:
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampSeconds < out[j].TimestampSeconds
	})
	return out
}

// CountStatus tallies open and resolved comments.
func CountStatus(comments []review.Comment) review.Status {
	var s review.Status
	for _, c := range comments {
		if c.Resolved {
			s.Resolved++
		} else {
			s.Open++
		}
	}
	s.Total = len(comments)
	return s
}
