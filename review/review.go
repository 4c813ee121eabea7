// Package review defines the comment entities and the narrow service the
// player core talks to. Implementations live in api (remote HTTP) and db
// (local SQLite).
package review

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a video or comment does not exist.
	ErrNotFound = errors.New("review: not found")
	// ErrInvalidDraft is returned for drafts with neither text nor attachment.
	ErrInvalidDraft = errors.New("review: invalid draft")
)

// Comment is a timestamped piece of feedback. The player core only reads
// comments.
type Comment struct {
	ID                 int64
	VideoID            int64
	Author             string
	TimestampSeconds   float64
	Text               string
	AttachmentURL      string
	AttachmentFilename string
	Resolved           bool
	CreatedAt          time.Time
}

// HasAttachment reports whether the comment carries an image.
func (c Comment) HasAttachment() bool {
	return c.AttachmentURL != ""
}

// Video is a reviewable video and its playable URL.
type Video struct {
	ID        int64
	URL       string
	Name      string
	Type      string
	CreatedAt time.Time
}

// Title is the display name: the explicit name, else the last path segment
// of the URL, else "Video #<id>".
func (v Video) Title() string {
	if v.Name != "" {
		return v.Name
	}
	if v.URL != "" {
		p := v.URL
		if u, err := url.Parse(v.URL); err == nil && u.Path != "" {
			p = u.Path
		} else if i := strings.IndexByte(p, '?'); i >= 0 {
			p = p[:i]
		}
		if base := path.Base(p); base != "" && base != "." && base != "/" {
			if dec, err := url.PathUnescape(base); err == nil {
				return dec
			}
			return base
		}
	}
	return fmt.Sprintf("Video #%d", v.ID)
}

// Status counts open and resolved comments on a video.
type Status struct {
	Open     int
	Resolved int
	Total    int
}

// Bundle is everything the player needs for one video. It is always
// fetched whole.
type Bundle struct {
	Video    Video
	Comments []Comment
	Status   Status
}

// Draft is a comment assembled by the player before submission.
type Draft struct {
	Author           string
	TimestampSeconds float64
	Text             string
	// Attachment is an opaque image reference, normally a PNG data URL.
	Attachment string
	// AttachmentFilename is optional metadata.
	AttachmentFilename string
}

// Validate checks that the draft has something to say.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Text) == "" && d.Attachment == "" {
		return fmt.Errorf("%w: text or attachment required", ErrInvalidDraft)
	}
	if d.TimestampSeconds < 0 {
		return fmt.Errorf("%w: negative timestamp", ErrInvalidDraft)
	}
	return nil
}

// Service is the collaborator that stores comments.
type Service interface {
	FetchVideoBundle(ctx context.Context, videoID int64) (Bundle, error)
	SubmitComment(ctx context.Context, videoID int64, draft Draft) (Comment, error)
	SetCommentResolved(ctx context.Context, commentID int64, resolved bool) error
	DeleteComment(ctx context.Context, commentID int64) error
}
