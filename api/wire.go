package api

import (
	"time"

	"github.com/user/framereview/review"
)

// CommentDTO is a comment as it travels over the review API. Field names and
// the integer resolved flag follow the API's existing clients.
type CommentDTO struct {
	ID                 int64   `json:"id"`
	VideoID            int64   `json:"video_id"`
	UserID             string  `json:"user_id"`
	TimestampSeconds   float64 `json:"timestamp_seconds"`
	CommentText        string  `json:"comment_text"`
	AttachmentURL      *string `json:"attachment_url,omitempty"`
	AttachmentFilename *string `json:"attachment_filename,omitempty"`
	Resolved           int     `json:"resolved"`
	CreatedAt          string  `json:"created_at"`
}

// VideoDTO is a video record.
type VideoDTO struct {
	ID        int64  `json:"id"`
	VideoURL  string `json:"video_url"`
	VideoName string `json:"video_name,omitempty"`
	VideoType string `json:"video_type,omitempty"`
	CreatedAt string `json:"created_at"`
}

// StatusDTO counts comments.
type StatusDTO struct {
	Open     int `json:"open"`
	Resolved int `json:"resolved"`
	Total    int `json:"total"`
}

// VideoResponse is the body of GET /api/video/{id}.
type VideoResponse struct {
	Video    VideoDTO     `json:"video"`
	Comments []CommentDTO `json:"comments"`
	Status   StatusDTO    `json:"status"`
}

// AddCommentRequest is the body of POST /api/video/{id}/comments.
type AddCommentRequest struct {
	UserName           string  `json:"userName"`
	TimestampSeconds   float64 `json:"timestampSeconds"`
	CommentText        string  `json:"commentText"`
	AttachmentURL      *string `json:"attachmentUrl,omitempty"`
	AttachmentFilename *string `json:"attachmentFilename,omitempty"`
}

// AddCommentResponse is the reply to AddCommentRequest.
type AddCommentResponse struct {
	Success bool       `json:"success"`
	Comment CommentDTO `json:"comment"`
}

// SuccessResponse is the reply to resolve, unresolve and delete.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Times are RFC 3339 with milliseconds on the wire. SQLite-style
// "2006-01-02 15:04:05" is accepted on input.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

var inputLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CommentFromReview converts a service comment to its wire form.
func CommentFromReview(c review.Comment) CommentDTO {
	resolved := 0
	if c.Resolved {
		resolved = 1
	}
	return CommentDTO{
		ID:                 c.ID,
		VideoID:            c.VideoID,
		UserID:             c.Author,
		TimestampSeconds:   c.TimestampSeconds,
		CommentText:        c.Text,
		AttachmentURL:      optional(c.AttachmentURL),
		AttachmentFilename: optional(c.AttachmentFilename),
		Resolved:           resolved,
		CreatedAt:          formatTime(c.CreatedAt),
	}
}

// Review converts the wire comment to the service entity.
func (d CommentDTO) Review() review.Comment {
	return review.Comment{
		ID:                 d.ID,
		VideoID:            d.VideoID,
		Author:             d.UserID,
		TimestampSeconds:   d.TimestampSeconds,
		Text:               d.CommentText,
		AttachmentURL:      deref(d.AttachmentURL),
		AttachmentFilename: deref(d.AttachmentFilename),
		Resolved:           d.Resolved != 0,
		CreatedAt:          parseTime(d.CreatedAt),
	}
}

// VideoFromReview converts a service video to its wire form.
func VideoFromReview(v review.Video) VideoDTO {
	return VideoDTO{
		ID:        v.ID,
		VideoURL:  v.URL,
		VideoName: v.Name,
		VideoType: v.Type,
		CreatedAt: formatTime(v.CreatedAt),
	}
}

// Review converts the wire video to the service entity.
func (d VideoDTO) Review() review.Video {
	return review.Video{
		ID:        d.ID,
		URL:       d.VideoURL,
		Name:      d.VideoName,
		Type:      d.VideoType,
		CreatedAt: parseTime(d.CreatedAt),
	}
}

// BundleFromReview converts a bundle to the GET /api/video/{id} body.
func BundleFromReview(b review.Bundle) VideoResponse {
	resp := VideoResponse{
		Video:    VideoFromReview(b.Video),
		Comments: make([]CommentDTO, 0, len(b.Comments)),
		Status:   StatusDTO{Open: b.Status.Open, Resolved: b.Status.Resolved, Total: b.Status.Total},
	}
	for _, c := range b.Comments {
		resp.Comments = append(resp.Comments, CommentFromReview(c))
	}
	return resp
}

// Review converts the response body to a bundle.
func (r VideoResponse) Review() review.Bundle {
	b := review.Bundle{
		Video:    r.Video.Review(),
		Comments: make([]review.Comment, 0, len(r.Comments)),
		Status:   review.Status{Open: r.Status.Open, Resolved: r.Status.Resolved, Total: r.Status.Total},
	}
	for _, c := range r.Comments {
		b.Comments = append(b.Comments, c.Review())
	}
	return b
}

// DraftRequest converts a draft to the POST body.
func DraftRequest(d review.Draft) AddCommentRequest {
	return AddCommentRequest{
		UserName:           d.Author,
		TimestampSeconds:   d.TimestampSeconds,
		CommentText:        d.Text,
		AttachmentURL:      optional(d.Attachment),
		AttachmentFilename: optional(d.AttachmentFilename),
	}
}

// Draft converts the POST body back to a draft.
func (r AddCommentRequest) Draft() review.Draft {
	return review.Draft{
		Author:             r.UserName,
		TimestampSeconds:   r.TimestampSeconds,
		Text:               r.CommentText,
		Attachment:         deref(r.AttachmentURL),
		AttachmentFilename: deref(r.AttachmentFilename),
	}
}
