package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/framereview/api"
	"github.com/user/framereview/db"
	"github.com/user/framereview/review"
)

type fixture struct {
	store  *db.Store
	srv    *httptest.Server
	client *api.HTTPClient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := db.OpenStore(filepath.Join(t.TempDir(), "data.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(NewRouter(store, zerolog.Nop()))
	t.Cleanup(srv.Close)

	client, err := api.NewHTTPClient(srv.URL, zerolog.Nop())
	require.NoError(t, err)
	return &fixture{store: store, srv: srv, client: client}
}

func TestAPI_RoundTripThroughClient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v, err := f.store.AddVideo(ctx, "/srv/cut.mp4", "")
	require.NoError(t, err)

	c, err := f.client.SubmitComment(ctx, v.ID, review.Draft{
		Author:             "dana",
		TimestampSeconds:   12,
		Text:               "fix logo position",
		Attachment:         "data:image/png;base64,AAAA",
		AttachmentFilename: "annotation.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "dana", c.Author)
	assert.True(t, c.HasAttachment())

	_, err = f.client.SubmitComment(ctx, v.ID, review.Draft{TimestampSeconds: 50, Text: "music too loud"})
	require.NoError(t, err)

	b, err := f.client.FetchVideoBundle(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, b.Comments, 2)
	assert.Equal(t, "web-user", b.Comments[1].Author)
	assert.Equal(t, f.srv.URL+"/api/video/1/stream", b.Video.URL)
	assert.Equal(t, review.Status{Open: 2, Total: 2}, b.Status)

	require.NoError(t, f.client.SetCommentResolved(ctx, c.ID, true))
	b, err = f.client.FetchVideoBundle(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, b.Comments[0].Resolved)
	assert.Equal(t, review.Status{Open: 1, Resolved: 1, Total: 2}, b.Status)

	require.NoError(t, f.client.DeleteComment(ctx, c.ID))
	assert.ErrorIs(t, f.client.DeleteComment(ctx, c.ID), review.ErrNotFound)
	assert.ErrorIs(t, f.client.SetCommentResolved(ctx, 999, true), review.ErrNotFound)
	_, err = f.client.FetchVideoBundle(ctx, 999)
	assert.ErrorIs(t, err, review.ErrNotFound)
}

func TestAPI_RejectsBadBodies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.store.AddVideo(ctx, "/srv/cut.mp4", "")
	require.NoError(t, err)

	url := f.srv.URL + "/api/video/1/comments"
	resp, err := http.Post(url, "application/json", strings.NewReader("{nope"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(url, "application/json", strings.NewReader(`{"userName":"a","timestampSeconds":3,"commentText":""}`))
	require.NoError(t, err)
	var e api.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing required fields", e.Error)
}

func TestAPI_RequestIDEchoed(t *testing.T) {
	f := newFixture(t)
	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set(api.RequestIDHeader, "abc123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc123", resp.Header.Get(api.RequestIDHeader))

	resp, err = http.Get(f.srv.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get(api.RequestIDHeader))
}

func TestAPI_ListVideos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.store.AddVideo(ctx, "/srv/a.mp4", "A")
	require.NoError(t, err)

	resp, err := http.Get(f.srv.URL + "/api/videos")
	require.NoError(t, err)
	defer resp.Body.Close()
	var out []api.VideoDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0].VideoName)
	assert.Equal(t, "/api/video/1/stream", out[0].VideoURL)

	videos, err := f.client.ListVideos(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, f.srv.URL+"/api/video/1/stream", videos[0].URL)
}

func TestStream_LocalFileSupportsRanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))
	v, err := f.store.AddVideo(ctx, path, "")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/api/video/1/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Range", "bytes=2-5")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusPartialContent, resp.StatusCode)
	assert.Equal(t, "2345", string(body))
	assert.Equal(t, int64(1), v.ID)
}

func TestStream_RemoteRedirects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.store.AddVideo(ctx, "https://cdn.example.com/v.mp4", "")
	require.NoError(t, err)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(f.srv.URL + "/api/video/1/stream")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://cdn.example.com/v.mp4", resp.Header.Get("Location"))
}

func TestStream_Missing(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.srv.URL + "/api/video/42/stream")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
