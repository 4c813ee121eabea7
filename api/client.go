// Package api talks to a remote review service over its JSON HTTP API and
// defines the wire format shared with the server package.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/user/framereview/review"
)

// RequestIDHeader carries a per-request id for log correlation.
const RequestIDHeader = "X-Request-Id"

// maxErrorBody caps how much of an error reply is kept.
const maxErrorBody = 4096

// StatusError is a non-2xx reply from the review API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("review api: HTTP %d: %s", e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match review.ErrNotFound on 404.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return review.ErrNotFound
	}
	return nil
}

// HTTPClient is a review.Service backed by a remote review API. Requests are
// not retried.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// NewHTTPClient returns a client for the API rooted at baseURL, for example
// "http://localhost:8080".
func NewHTTPClient(baseURL string, logger zerolog.Logger) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q: scheme must be http or https", baseURL)
	}
	return &HTTPClient{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger.With().Str("component", "api").Logger(),
		now:    time.Now,
	}, nil
}

// FetchVideoBundle loads a video, its comments and their counts. A relative
// video URL, such as the server's stream route, is resolved against the
// base URL.
func (c *HTTPClient) FetchVideoBundle(ctx context.Context, videoID int64) (review.Bundle, error) {
	q := url.Values{}
	// Cache buster: intermediaries must not serve a stale comment list.
	q.Set("_t", strconv.FormatInt(c.now().UnixMilli(), 10))

	var resp VideoResponse
	if err := c.do(ctx, http.MethodGet, videoPath(videoID), q, nil, &resp); err != nil {
		return review.Bundle{}, err
	}
	b := resp.Review()
	b.Video.URL = c.resolve(b.Video.URL)
	return b, nil
}

// SubmitComment posts a draft and returns the stored comment.
func (c *HTTPClient) SubmitComment(ctx context.Context, videoID int64, draft review.Draft) (review.Comment, error) {
	if err := draft.Validate(); err != nil {
		return review.Comment{}, err
	}
	var resp AddCommentResponse
	if err := c.do(ctx, http.MethodPost, videoPath(videoID)+"/comments", nil, DraftRequest(draft), &resp); err != nil {
		// The server answers 400 only for drafts it considers incomplete.
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusBadRequest {
			return review.Comment{}, fmt.Errorf("%w: %w", review.ErrInvalidDraft, err)
		}
		return review.Comment{}, err
	}
	if !resp.Success {
		return review.Comment{}, fmt.Errorf("add comment to video %d: server reported failure", videoID)
	}
	return resp.Comment.Review(), nil
}

// SetCommentResolved resolves or reopens a comment.
func (c *HTTPClient) SetCommentResolved(ctx context.Context, commentID int64, resolved bool) error {
	action := "unresolve"
	if resolved {
		action = "resolve"
	}
	var resp SuccessResponse
	return c.do(ctx, http.MethodPatch, commentPath(commentID)+"/"+action, nil, nil, &resp)
}

// DeleteComment deletes a comment.
func (c *HTTPClient) DeleteComment(ctx context.Context, commentID int64) error {
	var resp SuccessResponse
	return c.do(ctx, http.MethodDelete, commentPath(commentID), nil, nil, &resp)
}

// ListVideos returns every video the server knows about, with stream URLs
// resolved against the base URL.
func (c *HTTPClient) ListVideos(ctx context.Context) ([]review.Video, error) {
	var resp []VideoDTO
	if err := c.do(ctx, http.MethodGet, "/api/videos", nil, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]review.Video, 0, len(resp))
	for _, d := range resp {
		v := d.Review()
		v.URL = c.resolve(v.URL)
		out = append(out, v)
	}
	return out, nil
}

func videoPath(id int64) string {
	return "/api/video/" + strconv.FormatInt(id, 10)
}

func commentPath(id int64) string {
	return "/api/comments/" + strconv.FormatInt(id, 10)
}

func (c *HTTPClient) resolve(ref string) string {
	if ref == "" {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	return c.baseURL.ResolveReference(u).String()
}

// do sends one request. in, when non-nil, is sent as JSON; a 2xx body is
// decoded into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", reqID).
		Int("status", resp.StatusCode).
		Dur("took", c.now().Sub(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: errorMessage(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage prefers the "error" field of a JSON error body.
func errorMessage(raw []byte) string {
	var e ErrorResponse
	if err := json.Unmarshal(raw, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(raw))
}
