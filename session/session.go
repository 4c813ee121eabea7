// Package session wires the drawing surface, the playback controller, the
// capture engine and the comment list into one player session for a single
// video.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/framereview/annotate"
	"github.com/user/framereview/capture"
	"github.com/user/framereview/playback"
	"github.com/user/framereview/review"
	"github.com/user/framereview/timeline"
)

// SkipSeconds is the arrow-key skip distance.
const SkipSeconds = 5.0

// ErrNotAnnotating is returned when the save modal is requested outside
// annotation mode.
var ErrNotAnnotating = errors.New("session: not in annotation mode")

// ErrModalClosed is returned when submitting without an open modal.
var ErrModalClosed = errors.New("session: save modal is not open")

// Key is a discrete key press the session understands.
type Key int

const (
	KeyTogglePlay Key = iota
	KeySkipBack
	KeySkipForward
	KeyMute
	KeyFullscreen
)

// Options configures a Session.
type Options struct {
	VideoID int64
	Author  string
	Service review.Service
	Player  playback.Player
	Frames  capture.FrameSource
	Logger  zerolog.Logger
	// Now is used for capture filenames; defaults to time.Now.
	Now func() time.Time
}

// Session is the player state for one video. It is not safe for concurrent
// use; callers run it on a single goroutine and post results back to it.
type Session struct {
	videoID int64
	author  string
	service review.Service
	now     func() time.Time
	logger  zerolog.Logger

	surface  *annotate.Surface
	player   *playback.Controller
	engine   *capture.Engine
	controls *playback.ControlsTimer
	modal    SaveModal

	video    review.Video
	comments []review.Comment
	status   review.Status
	view     timeline.Result
	filter   timeline.Filter
	selected int

	// issued is the sequence number of the newest refresh started;
	// applied is the newest one whose result has been taken.
	issued  uint64
	applied uint64

	notice string

	surfaceW, surfaceH int
}

// New builds a session and wires its parts together: entering annotation
// mode pauses the controller, and seeking discards annotations.
func New(opts Options) *Session {
	s := &Session{
		videoID:  opts.VideoID,
		author:   opts.Author,
		service:  opts.Service,
		now:      opts.Now,
		logger:   opts.Logger.With().Str("component", "session").Logger(),
		controls: playback.NewControlsTimer(),
		view:     timeline.Result{Active: -1},
		selected: -1,
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.player = playback.NewController(opts.Player, nil)
	s.surface = annotate.NewSurface(s.player)
	s.player.SetAnnotations(s.surface)
	s.engine = capture.NewEngine(opts.Frames, s.surface, opts.Logger)
	s.engine.SetClock(s.now)
	s.player.OnTick(func(st playback.State) {
		s.reconcile()
	})
	return s
}

// VideoID returns the video this session reviews.
func (s *Session) VideoID() int64 { return s.videoID }

// Surface returns the drawing surface.
func (s *Session) Surface() *annotate.Surface { return s.surface }

// Playback returns the playback controller.
func (s *Session) Playback() *playback.Controller { return s.player }

// Controls returns the controls visibility timer.
func (s *Session) Controls() *playback.ControlsTimer { return s.controls }

// Modal returns the save modal.
func (s *Session) Modal() *SaveModal { return &s.modal }

// Service returns the review service.
func (s *Session) Service() review.Service { return s.service }

// Video returns the loaded video.
func (s *Session) Video() review.Video { return s.video }

// Comments returns the comment list as last fetched.
func (s *Session) Comments() []review.Comment { return s.comments }

// Status returns the open/resolved counts.
func (s *Session) Status() review.Status { return s.status }

// Timeline returns the reconciled markers and active comment.
func (s *Session) Timeline() timeline.Result { return s.view }

// Notice returns the current non-blocking notice, if any.
func (s *Session) Notice() string { return s.notice }

// ClearNotice dismisses the notice.
func (s *Session) ClearNotice() { s.notice = "" }

// SetNotice shows a non-blocking notice.
func (s *Session) SetNotice(format string, args ...any) {
	s.notice = fmt.Sprintf(format, args...)
}

// SetSurfaceSize records the displayed video size in pixels. Captures use it
// as their output size.
func (s *Session) SetSurfaceSize(w, h int) {
	s.surfaceW, s.surfaceH = w, h
}

// SurfaceSize returns the displayed video size.
func (s *Session) SurfaceSize() (int, int) {
	return s.surfaceW, s.surfaceH
}

// Annotating reports whether annotation mode is on.
func (s *Session) Annotating() bool {
	return s.surface.Enabled()
}

// ToggleAnnotation enters or leaves annotation mode. Leaving drops every
// shape. It does nothing while the save modal is open.
func (s *Session) ToggleAnnotation() {
	if s.modal.IsOpen() {
		return
	}
	if s.surface.Enabled() {
		s.surface.ExitAnnotationMode()
		s.controls.Show()
		return
	}
	s.surface.EnterAnnotationMode()
	s.controls.Show()
}

// HandlePointer routes a pointer event to the surface. Events are dropped
// unless annotation mode is on and no modal is open.
func (s *Session) HandlePointer(ev annotate.PointerEvent) bool {
	if !s.surface.Enabled() || s.modal.IsOpen() {
		return false
	}
	return s.surface.HandlePointer(ev)
}

// HandleKey applies a transport key. Keys are ignored while the save modal
// is open.
func (s *Session) HandleKey(k Key) error {
	if s.modal.IsOpen() {
		return nil
	}
	switch k {
	case KeyTogglePlay:
		return s.player.Toggle()
	case KeySkipBack:
		return s.player.Skip(-SkipSeconds)
	case KeySkipForward:
		return s.player.Skip(SkipSeconds)
	case KeyMute:
		return s.player.ToggleMute()
	case KeyFullscreen:
		return s.player.ToggleFullscreen()
	}
	return nil
}

// OpenSaveModal captures the current frame with annotations at the surface
// size and opens the modal with empty text. A stroke still being drawn is
// discarded: pointer input stops reaching the surface while the modal is
// open, so its release would never arrive.
func (s *Session) OpenSaveModal(ctx context.Context) error {
	if !s.surface.Enabled() {
		return ErrNotAnnotating
	}
	s.surface.CancelStroke()
	if s.modal.IsOpen() {
		return nil
	}
	res := s.engine.CaptureFrame(ctx, s.surfaceW, s.surfaceH)
	if !res.FrameCaptured {
		s.logger.Warn().Msg("frame unavailable, saving annotations over black")
	}
	s.modal.open(res)
	s.controls.Show()
	return nil
}

// SetText updates the modal's comment text.
func (s *Session) SetText(text string) {
	if s.modal.IsOpen() {
		s.modal.text = text
	}
}

// CancelSaveModal closes the modal and drops the capture. Annotations stay.
func (s *Session) CancelSaveModal() {
	if !s.modal.IsOpen() {
		return
	}
	s.modal.finish(ModalCancelled)
}

// TakeDraft packages the modal into a draft and cleans up: shapes are
// cleared, annotation mode exits, the capture is dropped and the controls
// are shown. Cleanup happens before the draft is submitted, so a failed
// submission never reopens the modal.
func (s *Session) TakeDraft() (review.Draft, error) {
	if !s.modal.IsOpen() {
		return review.Draft{}, ErrModalClosed
	}
	res, _ := s.modal.Capture()
	draft := review.Draft{
		Author:           s.author,
		TimestampSeconds: math.Floor(s.player.State().CurrentTime),
		Text:             s.modal.Text(),
	}
	if res.Image != nil {
		uri, err := res.DataURL()
		if err != nil {
			s.logger.Error().Err(err).Msg("encode capture")
		} else {
			draft.Attachment = uri
			draft.AttachmentFilename = capture.Filename(res.CapturedAt)
		}
	}

	s.modal.finish(ModalSubmitted)
	s.surface.Clear()
	s.surface.ExitAnnotationMode()
	s.controls.Show()
	return draft, nil
}

// SubmitSaveModal takes the draft and submits it. On success the comment
// list is refreshed. On failure the error is also set as the notice.
func (s *Session) SubmitSaveModal(ctx context.Context) (review.Comment, error) {
	draft, err := s.TakeDraft()
	if err != nil {
		return review.Comment{}, err
	}
	return s.submit(ctx, draft)
}

// CommentDraft builds a plain comment at the current time. Annotations are
// not touched.
func (s *Session) CommentDraft(text, attachment string) (review.Draft, error) {
	draft := review.Draft{
		Author:           s.author,
		TimestampSeconds: math.Floor(s.player.State().CurrentTime),
		Text:             text,
		Attachment:       attachment,
	}
	if err := draft.Validate(); err != nil {
		return review.Draft{}, err
	}
	return draft, nil
}

// AddComment submits a plain comment at the current time.
func (s *Session) AddComment(ctx context.Context, text, attachment string) (review.Comment, error) {
	draft, err := s.CommentDraft(text, attachment)
	if err != nil {
		return review.Comment{}, err
	}
	return s.submit(ctx, draft)
}

func (s *Session) submit(ctx context.Context, draft review.Draft) (review.Comment, error) {
	c, err := s.service.SubmitComment(ctx, s.videoID, draft)
	if err := s.FinishMutation(ctx, "save comment", err); err != nil {
		return review.Comment{}, err
	}
	return c, nil
}

// FinishMutation records the outcome of a mutating call made against the
// service. A failure becomes the notice; a success refreshes the comments.
func (s *Session) FinishMutation(ctx context.Context, what string, err error) error {
	if err != nil {
		s.logger.Error().Err(err).Str("action", what).Msg("mutation failed")
		s.SetNotice("Could not %s: %v", what, err)
		return fmt.Errorf("%s: %w", what, err)
	}
	return s.Refresh(ctx)
}

// SetResolved marks a comment resolved or open and refreshes.
func (s *Session) SetResolved(ctx context.Context, commentID int64, resolved bool) error {
	err := s.service.SetCommentResolved(ctx, commentID, resolved)
	return s.FinishMutation(ctx, "update comment", err)
}

// ToggleResolved flips the resolved flag of a loaded comment.
func (s *Session) ToggleResolved(ctx context.Context, commentID int64) error {
	c, ok := s.comment(commentID)
	if !ok {
		return fmt.Errorf("comment %d: %w", commentID, review.ErrNotFound)
	}
	return s.SetResolved(ctx, commentID, !c.Resolved)
}

// DeleteComment deletes a comment and refreshes.
func (s *Session) DeleteComment(ctx context.Context, commentID int64) error {
	err := s.service.DeleteComment(ctx, commentID)
	return s.FinishMutation(ctx, "delete comment", err)
}

// SeekToComment jumps to a comment's timestamp through the controller, so
// annotations are discarded as on any other seek.
func (s *Session) SeekToComment(commentID int64) error {
	c, ok := s.comment(commentID)
	if !ok {
		return fmt.Errorf("comment %d: %w", commentID, review.ErrNotFound)
	}
	return s.player.Seek(c.TimestampSeconds)
}

func (s *Session) comment(id int64) (review.Comment, bool) {
	for _, c := range s.comments {
		if c.ID == id {
			return c, true
		}
	}
	return review.Comment{}, false
}

// BeginRefresh issues a new refresh sequence number. Pass it to ApplyBundle
// with the fetch result.
func (s *Session) BeginRefresh() uint64 {
	s.issued++
	return s.issued
}

// ApplyBundle takes a fetch result tagged with seq. Results older than the
// newest applied one are discarded and reported as false.
func (s *Session) ApplyBundle(seq uint64, b review.Bundle, err error) bool {
	if seq <= s.applied {
		s.logger.Debug().Uint64("seq", seq).Uint64("applied", s.applied).Msg("stale refresh dropped")
		return false
	}
	s.applied = seq
	if err != nil {
		s.logger.Error().Err(err).Int64("video", s.videoID).Msg("refresh failed")
		s.SetNotice("Could not load comments: %v", err)
		return true
	}
	s.video = b.Video
	s.comments = b.Comments
	s.status = b.Status
	if s.status.Total == 0 && len(s.comments) > 0 {
		s.status = timeline.CountStatus(s.comments)
	}
	s.clampSelection()
	s.reconcile()
	return true
}

// Refresh fetches the bundle and applies it.
func (s *Session) Refresh(ctx context.Context) error {
	seq := s.BeginRefresh()
	b, err := s.service.FetchVideoBundle(ctx, s.videoID)
	s.ApplyBundle(seq, b, err)
	if err != nil {
		return fmt.Errorf("fetch video %d: %w", s.videoID, err)
	}
	return nil
}

// Reset switches the session to another video. Annotation mode ends, the
// modal closes and in-flight refreshes for the previous video are dropped.
func (s *Session) Reset(videoID int64) {
	s.videoID = videoID
	s.surface.ExitAnnotationMode()
	s.modal.finish(ModalHidden)
	s.player.Reset()
	s.controls.Show()
	s.video = review.Video{}
	s.comments = nil
	s.status = review.Status{}
	s.selected = -1
	s.notice = ""
	s.applied = s.issued
	s.reconcile()
}

func (s *Session) reconcile() {
	st := s.player.State()
	s.view = timeline.Reconcile(s.comments, st.CurrentTime, st.Duration)
}

// Filter returns the sidebar filter.
func (s *Session) Filter() timeline.Filter { return s.filter }

// CycleFilter moves to the next sidebar filter.
func (s *Session) CycleFilter() {
	s.filter = s.filter.Next()
	s.clampSelection()
}

// VisibleComments lists the comments passing the filter, sorted by time.
func (s *Session) VisibleComments() []review.Comment {
	return timeline.Visible(s.comments, s.filter)
}

// Selected returns the selected sidebar comment.
func (s *Session) Selected() (review.Comment, bool) {
	vis := s.VisibleComments()
	if s.selected < 0 || s.selected >= len(vis) {
		return review.Comment{}, false
	}
	return vis[s.selected], true
}

// SelectedIndex returns the selected position in VisibleComments, or -1.
func (s *Session) SelectedIndex() int { return s.selected }

// MoveSelection moves the sidebar selection by delta, wrapping around.
func (s *Session) MoveSelection(delta int) {
	n := len(s.VisibleComments())
	if n == 0 {
		s.selected = -1
		return
	}
	if s.selected < 0 {
		if delta < 0 {
			s.selected = n - 1
		} else {
			s.selected = 0
		}
		return
	}
	s.selected = ((s.selected+delta)%n + n) % n
}

func (s *Session) clampSelection() {
	n := len(s.VisibleComments())
	if s.selected >= n {
		s.selected = n - 1
	}
}
