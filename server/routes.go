package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/user/framereview/api"
	"github.com/user/framereview/review"
)

// NewRouter mounts the review API for svc.
func NewRouter(svc review.Service, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))

	h := &handlers{svc: svc, logger: logger}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/videos", h.listVideos)
		r.Get("/video/{id}", h.getVideo)
		r.Get("/video/{id}/stream", h.streamVideo)
		r.Post("/video/{id}/comments", h.addComment)
		r.Patch("/comments/{id}/resolve", h.setResolved(true))
		r.Patch("/comments/{id}/unresolve", h.setResolved(false))
		r.Delete("/comments/{id}", h.deleteComment)
	})

	return r
}

type handlers struct {
	svc    review.Service
	logger zerolog.Logger
}

// WriteJSON writes data as a JSON body.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes {"error": message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, api.ErrorResponse{Error: message})
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// fail maps service errors to status codes.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, review.ErrNotFound):
		WriteError(w, http.StatusNotFound, notFound)
	case errors.Is(err, review.ErrInvalidDraft):
		WriteError(w, http.StatusBadRequest, "Missing required fields")
	default:
		requestID, _ := r.Context().Value(RequestIDKey).(string)
		h.logger.Error().Err(err).Str("request_id", requestID).Str("path", r.URL.Path).Msg("API error")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) listVideos(w http.ResponseWriter, r *http.Request) {
	lister, ok := h.svc.(VideoLister)
	if !ok {
		WriteError(w, http.StatusNotImplemented, "Video listing not supported")
		return
	}
	videos, err := lister.ListVideos(r.Context())
	if err != nil {
		h.fail(w, r, err, "Video not found")
		return
	}
	out := make([]api.VideoDTO, 0, len(videos))
	for _, v := range videos {
		dto := api.VideoFromReview(v)
		dto.VideoURL = streamPath(v.ID)
		out = append(out, dto)
	}
	WriteJSON(w, http.StatusOK, out)
}

// getVideo returns the video, its comments and counts. The video URL is
// replaced by this server's stream route so clients never need direct
// access to the source.
func (h *handlers) getVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		WriteError(w, http.StatusNotFound, "Video not found")
		return
	}
	b, err := h.svc.FetchVideoBundle(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Video not found")
		return
	}
	resp := api.BundleFromReview(b)
	resp.Video.VideoURL = streamPath(id)
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, resp)
}

func streamPath(id int64) string {
	return fmt.Sprintf("/api/video/%d/stream", id)
}

// streamVideo serves a local file with range support or redirects to a
// remote URL.
func (h *handlers) streamVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "Video not found", http.StatusNotFound)
		return
	}
	b, err := h.svc.FetchVideoBundle(r.Context(), id)
	if err != nil || b.Video.URL == "" {
		http.Error(w, "Video not found", http.StatusNotFound)
		return
	}

	src := b.Video.URL
	if u, err := url.Parse(src); err == nil {
		switch u.Scheme {
		case "http", "https":
			http.Redirect(w, r, src, http.StatusFound)
			return
		case "file":
			src = u.Path
		}
	}

	f, err := os.Open(src)
	if err != nil {
		h.logger.Warn().Err(err).Int64("video", id).Msg("stream source unavailable")
		http.Error(w, "Video not found", http.StatusNotFound)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.Error(w, "Video not found", http.StatusNotFound)
		return
	}
	http.ServeContent(w, r, filepath.Base(src), info.ModTime(), f)
}

func (h *handlers) addComment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		WriteError(w, http.StatusNotFound, "Video not found")
		return
	}
	var req api.AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	draft := req.Draft()
	if strings.TrimSpace(draft.Author) == "" {
		draft.Author = "web-user"
	}
	c, err := h.svc.SubmitComment(r.Context(), id, draft)
	if err != nil {
		h.fail(w, r, err, "Video not found")
		return
	}
	WriteJSON(w, http.StatusOK, api.AddCommentResponse{Success: true, Comment: api.CommentFromReview(c)})
}

func (h *handlers) setResolved(resolved bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r)
		if !ok {
			WriteError(w, http.StatusNotFound, "Comment not found")
			return
		}
		if err := h.svc.SetCommentResolved(r.Context(), id, resolved); err != nil {
			h.fail(w, r, err, "Comment not found")
			return
		}
		WriteJSON(w, http.StatusOK, api.SuccessResponse{Success: true})
	}
}

func (h *handlers) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		WriteError(w, http.StatusNotFound, "Comment not found")
		return
	}
	if err := h.svc.DeleteComment(r.Context(), id); err != nil {
		h.fail(w, r, err, "Comment not found")
		return
	}
	WriteJSON(w, http.StatusOK, api.SuccessResponse{Success: true})
}
