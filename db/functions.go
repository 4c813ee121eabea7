package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// InsertVideo inserts a new video and returns its ID.
func InsertVideo(ctx context.Context, db *sql.DB, url, name, videoType string, createdAt time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, InsertVideoSQL, url, name, videoType, createdAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert video: %w", err)
	}
	return result.LastInsertId()
}

// EnsureVideo returns the existing video ID for the given URL, or inserts a
// new row and returns its ID.
func EnsureVideo(ctx context.Context, db *sql.DB, url, name, videoType string) (int64, error) {
	var videoID int64
	err := db.QueryRowContext(ctx, SelectVideoByURLSQL, url).Scan(&videoID)
	if err == nil {
		return videoID, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("select video by url: %w", err)
	}
	return InsertVideo(ctx, db, url, name, videoType, time.Now())
}

// SelectVideoByID returns a single video by ID.
func SelectVideoByID(ctx context.Context, db *sql.DB, id int64) (*Video, error) {
	v, err := scanVideo(db.QueryRowContext(ctx, SelectVideoByIDSQL, id))
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// SelectVideos returns all videos, newest first.
func SelectVideos(ctx context.Context, db *sql.DB) ([]Video, error) {
	rows, err := db.QueryContext(ctx, SelectVideosSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// InsertComment inserts an open comment and returns its ID.
func InsertComment(ctx context.Context, db *sql.DB, c Comment) (int64, error) {
	result, err := db.ExecContext(ctx, InsertCommentSQL,
		c.VideoID, c.UserID, c.TimestampSeconds, c.CommentText,
		c.AttachmentURL, c.AttachmentFilename, c.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}
	return result.LastInsertId()
}

// SelectCommentByID returns a single comment by ID.
func SelectCommentByID(ctx context.Context, db *sql.DB, id int64) (*Comment, error) {
	c, err := scanComment(db.QueryRowContext(ctx, SelectCommentByIDSQL, id))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SelectCommentsByVideo returns a video's comments ordered by timestamp.
func SelectCommentsByVideo(ctx context.Context, db *sql.DB, videoID int64) ([]Comment, error) {
	rows, err := db.QueryContext(ctx, SelectCommentsByVideoSQL, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CountCommentsByVideo returns the open, resolved and total comment counts.
func CountCommentsByVideo(ctx context.Context, db *sql.DB, videoID int64) (open, resolved, total int, err error) {
	err = db.QueryRowContext(ctx, CountCommentsByVideoSQL, videoID).Scan(&open, &resolved, &total)
	if err != nil {
		err = fmt.Errorf("count comments: %w", err)
	}
	return open, resolved, total, err
}

// UpdateCommentResolved sets the resolved flag. Returns sql.ErrNoRows if the
// comment does not exist.
func UpdateCommentResolved(ctx context.Context, db *sql.DB, id int64, resolved bool) error {
	flag := 0
	if resolved {
		flag = 1
	}
	result, err := db.ExecContext(ctx, UpdateCommentResolvedSQL, flag, id)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return expectOneRow(result)
}

// DeleteComment deletes a comment by ID. Returns sql.ErrNoRows if it does
// not exist.
func DeleteComment(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, DeleteCommentSQL, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return expectOneRow(result)
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
