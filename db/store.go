package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/framereview/review"
)

// Store is a local review.Service backed by SQLite.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// NewStore wraps an open database.
func NewStore(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
		now:    time.Now,
	}
}

// OpenStore opens the database at dbPath and wraps it.
func OpenStore(dbPath string, logger zerolog.Logger) (*Store, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", dbPath, err)
	}
	return NewStore(db, logger), nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddVideo registers a video URL or path, returning the existing entry if
// it is already known. The type defaults to the file extension.
func (s *Store) AddVideo(ctx context.Context, url, name string) (review.Video, error) {
	videoType := strings.TrimPrefix(path.Ext(strings.SplitN(url, "?", 2)[0]), ".")
	id, err := EnsureVideo(ctx, s.db, url, name, videoType)
	if err != nil {
		return review.Video{}, err
	}
	v, err := SelectVideoByID(ctx, s.db, id)
	if err != nil {
		return review.Video{}, fmt.Errorf("select video %d: %w", id, err)
	}
	s.logger.Info().Int64("video", id).Str("url", url).Msg("video registered")
	return v.Review(), nil
}

// ListVideos returns every known video, newest first.
func (s *Store) ListVideos(ctx context.Context) ([]review.Video, error) {
	rows, err := SelectVideos(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	out := make([]review.Video, 0, len(rows))
	for _, v := range rows {
		out = append(out, v.Review())
	}
	return out, nil
}

// FetchVideoBundle loads a video with its comments and counts.
func (s *Store) FetchVideoBundle(ctx context.Context, videoID int64) (review.Bundle, error) {
	v, err := SelectVideoByID(ctx, s.db, videoID)
	if err != nil {
		return review.Bundle{}, notFound(err, "video %d", videoID)
	}
	rows, err := SelectCommentsByVideo(ctx, s.db, videoID)
	if err != nil {
		return review.Bundle{}, fmt.Errorf("select comments for video %d: %w", videoID, err)
	}
	open, resolved, total, err := CountCommentsByVideo(ctx, s.db, videoID)
	if err != nil {
		return review.Bundle{}, err
	}

	b := review.Bundle{
		Video:    v.Review(),
		Comments: make([]review.Comment, 0, len(rows)),
		Status:   review.Status{Open: open, Resolved: resolved, Total: total},
	}
	for _, c := range rows {
		b.Comments = append(b.Comments, c.Review())
	}
	return b, nil
}

// SubmitComment stores a draft as a new open comment.
func (s *Store) SubmitComment(ctx context.Context, videoID int64, draft review.Draft) (review.Comment, error) {
	if err := draft.Validate(); err != nil {
		return review.Comment{}, err
	}
	if _, err := SelectVideoByID(ctx, s.db, videoID); err != nil {
		return review.Comment{}, notFound(err, "video %d", videoID)
	}

	row := Comment{
		VideoID:            videoID,
		UserID:             draft.Author,
		TimestampSeconds:   draft.TimestampSeconds,
		CommentText:        draft.Text,
		AttachmentURL:      nullString(draft.Attachment),
		AttachmentFilename: nullString(draft.AttachmentFilename),
		CreatedAt:          s.now(),
	}
	id, err := InsertComment(ctx, s.db, row)
	if err != nil {
		return review.Comment{}, err
	}
	c, err := SelectCommentByID(ctx, s.db, id)
	if err != nil {
		return review.Comment{}, fmt.Errorf("select comment %d: %w", id, err)
	}
	s.logger.Info().
		Int64("video", videoID).
		Int64("comment", id).
		Float64("at", draft.TimestampSeconds).
		Bool("attachment", draft.Attachment != "").
		Msg("comment added")
	return c.Review(), nil
}

// SetCommentResolved marks a comment resolved or open.
func (s *Store) SetCommentResolved(ctx context.Context, commentID int64, resolved bool) error {
	if err := UpdateCommentResolved(ctx, s.db, commentID, resolved); err != nil {
		return notFound(err, "comment %d", commentID)
	}
	s.logger.Info().Int64("comment", commentID).Bool("resolved", resolved).Msg("comment updated")
	return nil
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(ctx context.Context, commentID int64) error {
	if err := DeleteComment(ctx, s.db, commentID); err != nil {
		return notFound(err, "comment %d", commentID)
	}
	s.logger.Info().Int64("comment", commentID).Msg("comment deleted")
	return nil
}

// notFound maps sql.ErrNoRows to review.ErrNotFound.
func notFound(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, review.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
