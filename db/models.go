package db

import (
	"database/sql"
	"time"

	"github.com/user/framereview/review"
)

// Video represents a row in the videos table.
type Video struct {
	ID        int64
	URL       string
	Name      string
	Type      string
	CreatedAt time.Time
}

// Comment represents a row in the comments table.
type Comment struct {
	ID                 int64
	VideoID            int64
	UserID             string
	TimestampSeconds   float64
	CommentText        string
	AttachmentURL      sql.NullString
	AttachmentFilename sql.NullString
	Resolved           int
	CreatedAt          time.Time
}

// Review converts the row to the service entity.
func (v Video) Review() review.Video {
	return review.Video{
		ID:        v.ID,
		URL:       v.URL,
		Name:      v.Name,
		Type:      v.Type,
		CreatedAt: v.CreatedAt,
	}
}

// Review converts the row to the service entity.
func (c Comment) Review() review.Comment {
	return review.Comment{
		ID:                 c.ID,
		VideoID:            c.VideoID,
		Author:             c.UserID,
		TimestampSeconds:   c.TimestampSeconds,
		Text:               c.CommentText,
		AttachmentURL:      c.AttachmentURL.String,
		AttachmentFilename: c.AttachmentFilename.String,
		Resolved:           c.Resolved != 0,
		CreatedAt:          c.CreatedAt,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(row scanner) (Video, error) {
	var v Video
	err := row.Scan(&v.ID, &v.URL, &v.Name, &v.Type, &v.CreatedAt)
	return v, err
}

func scanComment(row scanner) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.VideoID, &c.UserID, &c.TimestampSeconds, &c.CommentText,
		&c.AttachmentURL, &c.AttachmentFilename, &c.Resolved, &c.CreatedAt)
	return c, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
