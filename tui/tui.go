// Package tui is the terminal front end of framereview: mpv plays the
// video, the terminal shows comments and a drawing canvas mapped onto the
// mpv window.
package tui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/user/framereview/annotate"
	"github.com/user/framereview/mpv"
	"github.com/user/framereview/pkg/timeutil"
	"github.com/user/framereview/playback"
	"github.com/user/framereview/review"
	"github.com/user/framereview/session"
	"github.com/user/framereview/tui/components"
	"github.com/user/framereview/tui/forms"
	"github.com/user/framereview/tui/layout"
	"github.com/user/framereview/tui/styles"
)

const (
	// tickInterval is the mpv polling interval.
	tickInterval = 100 * time.Millisecond
	// sizeEvery is how many ticks pass between OSD size checks.
	sizeEvery = 10
	// requestTimeout bounds service and mpv calls made from commands.
	requestTimeout = 10 * time.Second
	savedNoticeMs  = 1500

	defaultSurfaceWidth  = 1280
	defaultSurfaceHeight = 720

	// Fixed rows: status bar, notice, seek bar, toolbar.
	headerRows = 2
	footerRows = 2
)

type formKind int

const (
	formNone formKind = iota
	formSave
	formComment
	formDelete
)

type (
	tickMsg   time.Time
	statusMsg struct {
		status mpv.Status
		err    error
	}
	sizeMsg struct {
		w, h int
	}
	bundleMsg struct {
		seq    uint64
		bundle review.Bundle
		err    error
	}
	mutationMsg struct {
		what string
		err  error
	}
	hideControlsMsg struct {
		gen uint64
	}
	overlayMsg struct {
		err error
	}
)

// Options configures the TUI.
type Options struct {
	Session *session.Session
	// Client is the mpv connection; nil runs without a player window.
	Client *mpv.Client
	// Videos enables switching between videos with N and P.
	Videos []review.Video
	Logger zerolog.Logger
}

// Model is the bubbletea model.
type Model struct {
	sess   *session.Session
	client *mpv.Client
	videos []review.Video
	logger zerolog.Logger

	width, height int
	connected     bool
	eof           bool
	ticks         int

	// drawing is true between a press and release on the canvas.
	drawing bool
	// dirty marks the overlay for re-rasterization; pushOverlay marks it
	// for sending to mpv.
	dirty       bool
	pushOverlay bool
	overlay     *image.RGBA
	version     uint64

	canvasKey   [3]uint64
	canvasCache string

	form          *huh.Form
	formKind      formKind
	formText      string
	confirm       bool
	pendingDelete int64

	showHelp bool
	quitting bool
	now      func() time.Time
}

// NewModel builds the model and hooks surface changes to overlay redraws.
func NewModel(opts Options) *Model {
	m := &Model{
		sess:      opts.Session,
		client:    opts.Client,
		videos:    opts.Videos,
		logger:    opts.Logger.With().Str("component", "tui").Logger(),
		connected: opts.Client != nil && opts.Client.IsConnected(),
		now:       time.Now,
	}
	if w, h := m.sess.SurfaceSize(); w <= 0 || h <= 0 {
		m.sess.SetSurfaceSize(defaultSurfaceWidth, defaultSurfaceHeight)
	}
	m.sess.Surface().OnChange(func() { m.dirty = true })
	return m
}

// Init starts polling and loads the comments.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.refreshCmd(), m.sizeCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) pollCmd() tea.Cmd {
	client := m.client
	if client == nil {
		return tickCmd()
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mpv.DefaultTimeout)
		defer cancel()
		st, err := client.Poll(ctx)
		return statusMsg{status: st, err: err}
	}
}

// sizeCmd reads the mpv OSD size, which is the drawing surface size. The
// video size is the fallback, then a fixed default.
func (m *Model) sizeCmd() tea.Cmd {
	client := m.client
	if client == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mpv.DefaultTimeout)
		defer cancel()
		if w, h, err := client.GetOSDSize(ctx); err == nil && w > 0 && h > 0 {
			return sizeMsg{w, h}
		}
		if w, h, err := client.GetVideoSize(ctx); err == nil && w > 0 && h > 0 {
			return sizeMsg{w, h}
		}
		return nil
	}
}

// refreshCmd fetches the comment bundle. The sequence number is taken now,
// on the UI goroutine, so older replies lose to newer ones.
func (m *Model) refreshCmd() tea.Cmd {
	seq := m.sess.BeginRefresh()
	svc, id := m.sess.Service(), m.sess.VideoID()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		b, err := svc.FetchVideoBundle(ctx, id)
		return bundleMsg{seq: seq, bundle: b, err: err}
	}
}

func (m *Model) mutationCmd(what string, fn func(ctx context.Context, svc review.Service) error) tea.Cmd {
	svc := m.sess.Service()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return mutationMsg{what: what, err: fn(ctx, svc)}
	}
}

// submitCmd sends draft and, once stored, confirms it on the mpv OSD.
func (m *Model) submitCmd(draft review.Draft) tea.Cmd {
	id, client := m.sess.VideoID(), m.client
	return m.mutationCmd("save comment", func(ctx context.Context, svc review.Service) error {
		if _, err := svc.SubmitComment(ctx, id, draft); err != nil {
			return err
		}
		if client != nil && client.IsConnected() {
			_ = client.ShowText(ctx, "Comment saved", savedNoticeMs)
		}
		return nil
	})
}

// flushOverlay pushes the current overlay to mpv, or removes it when there
// is nothing to draw.
func (m *Model) flushOverlay() tea.Cmd {
	if !m.pushOverlay || m.client == nil || !m.connected {
		return nil
	}
	m.pushOverlay = false
	img, client := m.overlay, m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mpv.DefaultTimeout)
		defer cancel()
		if img == nil {
			return overlayMsg{err: client.HideOverlay(ctx)}
		}
		return overlayMsg{err: client.ShowImageOverlay(ctx, img)}
	}
}

func (m *Model) scheduleHide() tea.Cmd {
	gen := m.sess.Controls().PointerMoved()
	return tea.Tick(playback.IdleHideDelay, func(time.Time) tea.Msg {
		return hideControlsMsg{gen: gen}
	})
}

// Update handles one message and re-rasterizes the overlay if the surface
// changed.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.redraw()
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return nil

	case tickMsg:
		m.ticks++
		var size tea.Cmd
		if m.ticks%sizeEvery == 0 && !m.sess.Annotating() {
			size = m.sizeCmd()
		}
		return tea.Batch(m.pollCmd(), size)

	case statusMsg:
		m.applyStatus(msg)
		return tea.Batch(tickCmd(), m.flushOverlay())

	case sizeMsg:
		if w, h := m.sess.SurfaceSize(); (w != msg.w || h != msg.h) && !m.sess.Annotating() {
			m.sess.SetSurfaceSize(msg.w, msg.h)
			m.logger.Debug().Int("width", msg.w).Int("height", msg.h).Msg("surface resized")
		}
		return nil

	case bundleMsg:
		m.sess.ApplyBundle(msg.seq, msg.bundle, msg.err)
		return nil

	case mutationMsg:
		if msg.err != nil {
			m.sess.FinishMutation(context.Background(), msg.what, msg.err)
			return nil
		}
		return m.refreshCmd()

	case hideControlsMsg:
		m.sess.Controls().Expire(msg.gen, m.sess.Annotating(), m.sess.Modal().IsOpen(), m.sess.Playback().Playing())
		return nil

	case overlayMsg:
		if msg.err != nil {
			m.logger.Warn().Err(msg.err).Msg("overlay update failed")
		}
		return nil

	case tea.MouseMsg:
		if m.form != nil || m.showHelp {
			return nil
		}
		return tea.Batch(m.handleMouse(msg), m.scheduleHide())

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.showHelp {
			m.showHelp = false
			return nil
		}
		return tea.Batch(m.handleKey(msg), m.scheduleHide())
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return nil
}

// applyStatus mirrors a polled mpv status into the playback controller.
func (m *Model) applyStatus(msg statusMsg) {
	if msg.err != nil {
		if m.connected {
			m.logger.Warn().Err(msg.err).Msg("mpv poll failed")
		}
		m.connected = false
		return
	}
	if !m.connected {
		m.pushOverlay = m.overlay != nil
	}
	m.connected = true

	pc := m.sess.Playback()
	st := msg.status
	if st.Duration != pc.State().Duration {
		pc.OnLoadedMetadata(st.Duration)
	}
	pc.OnPlayStateChanged(!st.Paused)
	pc.OnMuteChanged(st.Muted)
	pc.OnTimeUpdate(st.TimePos)
	if st.EOF && !m.eof {
		pc.OnEnded()
	}
	m.eof = st.EOF
}

func (m *Model) redraw() {
	if !m.dirty {
		return
	}
	m.dirty = false
	w, h := m.sess.SurfaceSize()
	m.overlay = overlayImage(m.sess.Surface().Visible(), w, h)
	m.version++
	m.pushOverlay = true
}

func (m *Model) bodyHeight() int {
	return max(m.height-headerRows-footerRows, 1)
}

func (m *Model) grid() (annotate.Scaler, bool) {
	canvasW, _ := layout.Split(m.width)
	w, h := m.sess.SurfaceSize()
	cols, rows := canvasGrid(w, h, canvasW, m.bodyHeight())
	sc := annotate.Scaler{GridWidth: cols, GridHeight: rows, SurfaceWidth: w, SurfaceHeight: h}
	return sc, cols > 0 && rows > 0
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	row := msg.Y - headerRows

	if msg.Y == headerRows+m.bodyHeight() && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		return m.seekToColumn(msg.X)
	}
	if !m.sess.Annotating() {
		return nil
	}
	sc, ok := m.grid()
	if !ok {
		return nil
	}
	inside := sc.Contains(msg.X, row)
	pt := sc.Map(msg.X, row)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && inside {
			m.drawing = m.sess.HandlePointer(annotate.PointerEvent{Kind: annotate.PointerDown, Point: pt})
		}
	case tea.MouseActionMotion:
		if !m.drawing {
			return nil
		}
		if !inside {
			m.sess.HandlePointer(annotate.PointerEvent{Kind: annotate.PointerLeave})
			m.drawing = false
			return nil
		}
		m.sess.HandlePointer(annotate.PointerEvent{Kind: annotate.PointerMove, Point: pt})
	case tea.MouseActionRelease:
		if m.drawing {
			if inside {
				m.sess.HandlePointer(annotate.PointerEvent{Kind: annotate.PointerMove, Point: pt})
			}
			m.sess.HandlePointer(annotate.PointerEvent{Kind: annotate.PointerUp})
			m.drawing = false
		}
	}
	return nil
}

// dropStroke discards a stroke in progress. Forms and the help overlay take
// the mouse, so the release that would end it never reaches the canvas.
func (m *Model) dropStroke() {
	m.sess.Surface().CancelStroke()
	m.drawing = false
}

func (m *Model) seekToColumn(col int) tea.Cmd {
	st := m.sess.Playback().State()
	timeText := " " + timeutil.FormatProgress(st.CurrentTime, st.Duration)
	barWidth := components.SeekBarWidth(m.width, lipgloss.Width(timeText))
	t, ok := components.SeekBarTime(col, barWidth, st.Duration)
	if !ok {
		return nil
	}
	m.drawing = false
	m.report(m.sess.Playback().Seek(t))
	return nil
}

func (m *Model) report(err error) {
	if err != nil {
		m.logger.Error().Err(err).Msg("playback")
		m.sess.SetNotice("%v", err)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	s := m.sess
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		m.quitting = true
		return tea.Quit
	case "?":
		m.dropStroke()
		m.showHelp = true
	case "esc":
		s.ClearNotice()
	case " ":
		m.report(s.HandleKey(session.KeyTogglePlay))
	case "left":
		m.report(s.HandleKey(session.KeySkipBack))
	case "right":
		m.report(s.HandleKey(session.KeySkipForward))
	case "m":
		m.report(s.HandleKey(session.KeyMute))
	case "f":
		m.report(s.HandleKey(session.KeyFullscreen))

	case "a":
		m.drawing = false
		s.ToggleAnnotation()
	case "p":
		s.Surface().SetTool(annotate.ToolPen)
	case "r":
		s.Surface().SetTool(annotate.ToolRect)
	case "c":
		s.Surface().SetTool(annotate.ToolCircle)
	case "1", "2", "3", "4":
		s.Surface().SetColor(annotate.Palette[key[0]-'1'])
	case "u":
		s.Surface().Undo()
	case "x":
		s.Surface().Clear()
	case "s":
		return m.openSaveForm()

	case "n":
		return m.openCommentForm()
	case "[":
		s.MoveSelection(-1)
	case "]":
		s.MoveSelection(1)
	case "enter":
		if c, ok := s.Selected(); ok {
			m.drawing = false
			m.report(s.SeekToComment(c.ID))
		}
	case "v":
		if c, ok := s.Selected(); ok {
			return m.mutationCmd("update comment", func(ctx context.Context, svc review.Service) error {
				return svc.SetCommentResolved(ctx, c.ID, !c.Resolved)
			})
		}
	case "d":
		if c, ok := s.Selected(); ok {
			return m.openDeleteForm(c)
		}
	case "tab":
		s.CycleFilter()
	case "R":
		return m.refreshCmd()
	case "N":
		return m.switchVideo(1)
	case "P":
		return m.switchVideo(-1)
	}
	return nil
}

func (m *Model) openSaveForm() tea.Cmd {
	if err := m.sess.OpenSaveModal(context.Background()); err != nil {
		if errors.Is(err, session.ErrNotAnnotating) {
			m.sess.SetNotice("Press a to annotate first")
		}
		return nil
	}
	res, _ := m.sess.Modal().Capture()
	info := forms.CaptureInfo{Width: res.Width(), Height: res.Height(), FrameCaptured: res.FrameCaptured}
	if data, err := res.PNG(); err == nil {
		info.Size = len(data)
	}
	m.formText = ""
	return m.openForm(formSave, forms.NewSaveAnnotationForm(m.sess.Playback().State().CurrentTime, info, &m.formText))
}

func (m *Model) openCommentForm() tea.Cmd {
	m.formText = ""
	return m.openForm(formComment, forms.NewCommentForm(m.sess.Playback().State().CurrentTime, &m.formText))
}

func (m *Model) openDeleteForm(c review.Comment) tea.Cmd {
	m.confirm = false
	m.pendingDelete = c.ID
	summary := fmt.Sprintf("%s %s: %s", timeutil.FormatTime(c.TimestampSeconds), c.Author, c.Text)
	return m.openForm(formDelete, forms.NewConfirmDeleteForm(summary, &m.confirm))
}

func (m *Model) openForm(kind formKind, f *huh.Form) tea.Cmd {
	m.dropStroke()
	m.form, m.formKind = f, kind
	return f.Init()
}

// updateForm forwards a message to the open form. Esc aborts it.
func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		return m.completeForm(huh.StateAborted)
	}
	model, cmd := m.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State != huh.StateNormal {
		return tea.Batch(cmd, m.completeForm(m.form.State))
	}
	return cmd
}

// completeForm acts on a finished form and closes it.
func (m *Model) completeForm(state huh.FormState) tea.Cmd {
	kind := m.formKind
	m.form, m.formKind = nil, formNone
	done := state == huh.StateCompleted

	switch kind {
	case formSave:
		if !done {
			m.sess.CancelSaveModal()
			return nil
		}
		m.sess.SetText(strings.TrimSpace(m.formText))
		draft, err := m.sess.TakeDraft()
		if err != nil {
			m.sess.SetNotice("Could not save annotation: %v", err)
			return nil
		}
		return m.submitCmd(draft)

	case formComment:
		if !done {
			return nil
		}
		draft, err := m.sess.CommentDraft(strings.TrimSpace(m.formText), "")
		if err != nil {
			m.sess.SetNotice("Could not save comment: %v", err)
			return nil
		}
		return m.submitCmd(draft)

	case formDelete:
		id := m.pendingDelete
		m.pendingDelete = 0
		if !done || !m.confirm {
			return nil
		}
		return m.mutationCmd("delete comment", func(ctx context.Context, svc review.Service) error {
			return svc.DeleteComment(ctx, id)
		})
	}
	return nil
}

// switchVideo loads the next or previous video into mpv and resets the
// session for it.
func (m *Model) switchVideo(delta int) tea.Cmd {
	n := len(m.videos)
	if n < 2 {
		return nil
	}
	cur := 0
	for i, v := range m.videos {
		if v.ID == m.sess.VideoID() {
			cur = i
		}
	}
	next := m.videos[((cur+delta)%n+n)%n]

	if m.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mpv.DefaultTimeout)
		defer cancel()
		if _, err := m.client.Command(ctx, "loadfile", next.URL); err != nil {
			m.sess.SetNotice("Could not open %s: %v", next.Title(), err)
			return nil
		}
	}
	m.drawing, m.eof = false, false
	m.form, m.formKind = nil, formNone
	m.sess.Reset(next.ID)
	m.logger.Info().Int64("video", next.ID).Msg("switched video")
	return tea.Batch(m.refreshCmd(), m.sizeCmd())
}

// View renders the whole screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading…"
	}
	if m.showHelp {
		return components.HelpOverlay(m.width, m.height)
	}

	s := m.sess
	st := s.Playback().State()
	title := s.Video().Title()
	if s.Video().ID == 0 {
		title = fmt.Sprintf("Video #%d", s.VideoID())
	}
	header := components.StatusBar(components.StatusBarState{
		Title:      title,
		Playing:    st.Playing,
		Muted:      st.Muted,
		Fullscreen: st.Fullscreen,
		Annotating: s.Annotating(),
		Status:     s.Status(),
		Filter:     s.Filter().String(),
		Connected:  m.connected,
	}, m.width)
	notice := layout.PadToWidth(components.Notice(s.Notice(), m.width), m.width)

	canvasW, sideW := layout.Split(m.width)
	bodyH := m.bodyHeight()
	activeID, _ := s.Timeline().ActiveID(s.Comments())
	sidebar := components.CommentList(components.CommentListState{
		Comments: s.VisibleComments(),
		Selected: s.SelectedIndex(),
		ActiveID: activeID,
		Now:      m.now(),
	}, sideW, bodyH)
	body := layout.SideBySide(m.mainPanel(canvasW, bodyH), canvasW, sidebar, sideW, bodyH)

	seek, tools := "", ""
	if s.Controls().Visible() {
		seek = components.SeekBar(st.CurrentTime, st.Duration, s.Timeline().Markers, activeID, m.width)
		tools = components.Toolbar(components.ToolbarState{
			Annotating: s.Annotating(),
			Tool:       s.Surface().Tool(),
			Color:      s.Surface().Color(),
			Shapes:     s.Surface().Len(),
		}, m.width)
	}
	return strings.Join([]string{header, notice, body, layout.PadToWidth(seek, m.width), layout.PadToWidth(tools, m.width)}, "\n")
}

// mainPanel is the open form, the drawing canvas while annotating, or the
// active comment otherwise.
func (m *Model) mainPanel(width, height int) string {
	if m.form != nil {
		return m.form.WithWidth(width).View()
	}
	if m.sess.Annotating() {
		return m.canvas()
	}

	s := m.sess
	lines := []string{""}
	if i := s.Timeline().Active; i >= 0 && i < len(s.Comments()) {
		c := s.Comments()[i]
		lines = append(lines,
			styles.ActiveRow.Render(fmt.Sprintf(" %s  %s", timeutil.FormatTime(c.TimestampSeconds), c.Author)),
			styles.PrimaryText.Width(width-2).Render(" "+c.Text),
		)
		if c.HasAttachment() {
			lines = append(lines, styles.SecondaryText.Render(" has an annotated frame"))
		}
	} else {
		lines = append(lines, styles.SecondaryText.Render(" No comment at this point."))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) canvas() string {
	sc, ok := m.grid()
	if !ok {
		return ""
	}
	key := [3]uint64{uint64(sc.GridWidth), uint64(sc.GridHeight), m.version}
	if key != m.canvasKey || m.canvasCache == "" {
		m.canvasCache = canvasView(m.overlay, sc.GridWidth, sc.GridHeight)
		m.canvasKey = key
	}
	return m.canvasCache
}

// Close removes the overlay from mpv and deletes its scratch file.
func (m *Model) Close() {
	if m.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), mpv.DefaultTimeout)
	defer cancel()
	if m.client.IsConnected() {
		_ = m.client.HideOverlay(ctx)
	}
	m.client.RemoveOverlayFile()
}

// Run starts the TUI and blocks until it exits.
func Run(opts Options) error {
	m := NewModel(opts)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
