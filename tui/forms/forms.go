// Package forms holds the huh forms of the review TUI.
package forms

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/user/framereview/pkg/timeutil"
)

// MaxCommentLength bounds comment text.
const MaxCommentLength = 2000

// CaptureInfo describes the captured frame shown in the save form.
type CaptureInfo struct {
	Width, Height int
	// FrameCaptured is false when only the annotations could be captured.
	FrameCaptured bool
	// Size is the encoded PNG size in bytes, 0 if unknown.
	Size int
}

func (c CaptureInfo) String() string {
	s := fmt.Sprintf("%d×%d frame", c.Width, c.Height)
	if !c.FrameCaptured {
		s = fmt.Sprintf("%d×%d annotations on black (frame unavailable)", c.Width, c.Height)
	}
	if c.Size > 0 {
		s += ", " + humanize.Bytes(uint64(c.Size))
	}
	return s
}

// NewSaveAnnotationForm asks for the comment that goes with a captured
// annotation. Text may be empty: the image alone is a valid comment.
func NewSaveAnnotationForm(timestamp float64, info CaptureInfo, text *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(fmt.Sprintf("Save annotation @ %s", timeutil.FormatTime(timestamp))).
				Description(info.String()),
			huh.NewText().
				Title("Comment").
				Description("Optional. ctrl+j for a new line, enter to save, esc to go back.").
				CharLimit(MaxCommentLength).
				Value(text),
		),
	).WithTheme(Theme()).WithShowHelp(false)
}

// NewCommentForm asks for a plain text comment at timestamp.
func NewCommentForm(timestamp float64, text *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(fmt.Sprintf("Comment @ %s", timeutil.FormatTime(timestamp))),
			huh.NewText().
				Title("Text").
				Description("Required").
				CharLimit(MaxCommentLength).
				Value(text).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("text is required")
					}
					return nil
				}),
		),
	).WithTheme(Theme()).WithShowHelp(false)
}

// NewConfirmDeleteForm asks before a comment is deleted.
func NewConfirmDeleteForm(summary string, confirm *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete comment?").
				Description(summary).
				Affirmative("Delete").
				Negative("Keep").
				Value(confirm),
		),
	).WithTheme(Theme()).WithShowHelp(false)
}
