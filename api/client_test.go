package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/framereview/review"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewHTTPClient(srv.URL, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient("ftp://example.com", zerolog.Nop())
	assert.Error(t, err)
	_, err = NewHTTPClient("::", zerolog.Nop())
	assert.Error(t, err)
}

func TestHTTPClient_FetchVideoBundle(t *testing.T) {
	var gotPath, gotReqID, gotBuster string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotReqID = r.Header.Get(RequestIDHeader)
		gotBuster = r.URL.Query().Get("_t")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"video": {"id": 3, "video_url": "/api/video/3/stream", "video_name": "cut.mp4", "created_at": "2026-10-19 08:00:00"},
			"comments": [
				{"id": 1, "video_id": 3, "user_id": "sam", "timestamp_seconds": 5, "comment_text": "a", "resolved": 0, "created_at": "2026-10-19T08:01:00.000Z"},
				{"id": 2, "video_id": 3, "user_id": "kim", "timestamp_seconds": 50, "comment_text": "b", "attachment_url": "data:image/png;base64,AA", "resolved": 1, "created_at": ""}
			],
			"status": {"open": 1, "resolved": 1, "total": 2}
		}`))
	})
	c.now = func() time.Time { return time.UnixMilli(1700000000123) }

	b, err := c.FetchVideoBundle(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, "/api/video/3", gotPath)
	assert.NotEmpty(t, gotReqID)
	assert.Equal(t, "1700000000123", gotBuster)

	assert.Equal(t, "cut.mp4", b.Video.Title())
	assert.Contains(t, b.Video.URL, "http://")
	assert.Contains(t, b.Video.URL, "/api/video/3/stream")
	assert.Equal(t, 2026, b.Video.CreatedAt.Year())

	require.Len(t, b.Comments, 2)
	assert.False(t, b.Comments[0].Resolved)
	assert.True(t, b.Comments[1].Resolved)
	assert.True(t, b.Comments[1].HasAttachment())
	assert.Equal(t, "kim", b.Comments[1].Author)
	assert.Equal(t, review.Status{Open: 1, Resolved: 1, Total: 2}, b.Status)
}

func TestHTTPClient_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Video not found"}`))
	})

	_, err := c.FetchVideoBundle(context.Background(), 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, review.ErrNotFound)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "Video not found", se.Body)
}

func TestHTTPClient_ServerError(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := c.DeleteComment(context.Background(), 4)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "boom", se.Body)
	assert.Equal(t, 1, calls, "no retries")
	assert.False(t, errors.Is(err, review.ErrNotFound))
}

func TestHTTPClient_SubmitComment(t *testing.T) {
	var got AddCommentRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/video/3/comments", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(AddCommentResponse{
			Success: true,
			Comment: CommentDTO{ID: 11, VideoID: 3, UserID: got.UserName, TimestampSeconds: got.TimestampSeconds, CommentText: got.CommentText},
		})
	})

	cmt, err := c.SubmitComment(context.Background(), 3, review.Draft{
		Author:             "dana",
		TimestampSeconds:   12,
		Text:               "fix logo position",
		Attachment:         "data:image/png;base64,AAAA",
		AttachmentFilename: "annotation-x.png",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), cmt.ID)
	assert.Equal(t, "dana", got.UserName)
	assert.Equal(t, 12.0, got.TimestampSeconds)
	require.NotNil(t, got.AttachmentURL)
	assert.Equal(t, "data:image/png;base64,AAAA", *got.AttachmentURL)
	require.NotNil(t, got.AttachmentFilename)
	assert.Equal(t, "annotation-x.png", *got.AttachmentFilename)
}

func TestHTTPClient_SubmitRejectsEmptyDraft(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.SubmitComment(context.Background(), 3, review.Draft{})
	assert.ErrorIs(t, err, review.ErrInvalidDraft)
}

func TestHTTPClient_BadRequestIsInvalidDraftOnlyOnSubmit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Missing required fields"}`))
	})
	ctx := context.Background()

	_, err := c.SubmitComment(ctx, 3, review.Draft{Text: "looks off"})
	assert.ErrorIs(t, err, review.ErrInvalidDraft)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Missing required fields", se.Body)

	err = c.SetCommentResolved(ctx, 7, true)
	require.Error(t, err)
	assert.False(t, errors.Is(err, review.ErrInvalidDraft))

	err = c.DeleteComment(ctx, 7)
	require.Error(t, err)
	assert.False(t, errors.Is(err, review.ErrInvalidDraft))
}

func TestHTTPClient_ResolveRoutes(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		w.Write([]byte(`{"success":true}`))
	})

	ctx := context.Background()
	require.NoError(t, c.SetCommentResolved(ctx, 7, true))
	require.NoError(t, c.SetCommentResolved(ctx, 7, false))
	require.NoError(t, c.DeleteComment(ctx, 7))
	assert.Equal(t, []string{
		"PATCH /api/comments/7/resolve",
		"PATCH /api/comments/7/unresolve",
		"DELETE /api/comments/7",
	}, seen)
}

func TestWire_CommentRoundTrip(t *testing.T) {
	created := time.Date(2026, 10, 19, 8, 30, 5, 123e6, time.UTC)
	c := review.Comment{ID: 1, VideoID: 2, Author: "a", TimestampSeconds: 10.5, Text: "t", Resolved: true, CreatedAt: created}
	dto := CommentFromReview(c)
	assert.Equal(t, 1, dto.Resolved)
	assert.Nil(t, dto.AttachmentURL)
	assert.Equal(t, "2026-10-19T08:30:05.123Z", dto.CreatedAt)
	back := dto.Review()
	assert.True(t, created.Equal(back.CreatedAt))
	back.CreatedAt = created
	assert.Equal(t, c, back)
}
