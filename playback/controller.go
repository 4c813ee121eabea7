// Package playback owns video transport state and keeps it consistent with
// annotation mode: playback and annotation never overlap.
package playback

import (
	"fmt"
	"math"
)

// Player is the media backend the controller drives (mpv, a browser video
// element, a fake in tests).
type Player interface {
	Play() error
	Pause() error
	Seek(seconds float64) error
	SetMute(muted bool) error
	SetFullscreen(fullscreen bool) error
}

// Annotations is the controller's view of the drawing surface.
type Annotations interface {
	// Active reports whether annotation mode is on.
	Active() bool
	// DiscardAll drops every committed and in-progress shape.
	DiscardAll()
}

// State is the transport state snapshot.
type State struct {
	CurrentTime float64
	Duration    float64
	Playing     bool
	Muted       bool
	Fullscreen  bool
}

// TickFunc is called with the new state after every time update.
type TickFunc func(State)

// Controller tracks playback state and forwards user intent to a Player.
type Controller struct {
	player      Player
	annotations Annotations
	state       State
	listeners   []TickFunc
}

// NewController returns a paused controller. annotations may be nil until a
// surface is attached with SetAnnotations.
func NewController(player Player, annotations Annotations) *Controller {
	return &Controller{player: player, annotations: annotations}
}

// SetAnnotations attaches the drawing surface.
func (c *Controller) SetAnnotations(a Annotations) {
	c.annotations = a
}

// OnTick registers fn to run after every time update.
func (c *Controller) OnTick(fn TickFunc) {
	c.listeners = append(c.listeners, fn)
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// Playing reports whether the video is playing.
func (c *Controller) Playing() bool {
	return c.state.Playing
}

func (c *Controller) annotating() bool {
	return c.annotations != nil && c.annotations.Active()
}

// Play starts playback. It does nothing while annotation mode is on.
func (c *Controller) Play() error {
	if c.annotating() || c.state.Playing {
		return nil
	}
	if err := c.player.Play(); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	c.state.Playing = true
	return nil
}

// Pause stops playback.
func (c *Controller) Pause() error {
	if !c.state.Playing {
		return nil
	}
	c.state.Playing = false
	if err := c.player.Pause(); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	return nil
}

// Toggle flips between playing and paused.
func (c *Controller) Toggle() error {
	if c.state.Playing {
		return c.Pause()
	}
	return c.Play()
}

// ForcePause pauses unconditionally and ignores backend errors; the local
// state is paused either way. Entering annotation mode uses this.
func (c *Controller) ForcePause() {
	c.state.Playing = false
	_ = c.player.Pause()
}

// Seek jumps to seconds, clamped to [0, duration], discards every annotation
// and resumes playback.
func (c *Controller) Seek(seconds float64) error {
	t := c.clamp(seconds)
	if c.annotations != nil {
		c.annotations.DiscardAll()
	}
	if err := c.player.Seek(t); err != nil {
		return fmt.Errorf("seek to %.2f: %w", t, err)
	}
	c.state.CurrentTime = t
	c.notify()
	return c.Play()
}

// Skip seeks relative to the current position.
func (c *Controller) Skip(delta float64) error {
	return c.Seek(c.state.CurrentTime + delta)
}

func (c *Controller) clamp(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	d := c.state.Duration
	if d > 0 && !math.IsInf(d, 0) && t > d {
		return d
	}
	return t
}

// SetMuted mutes or unmutes audio.
func (c *Controller) SetMuted(muted bool) error {
	if err := c.player.SetMute(muted); err != nil {
		return fmt.Errorf("set mute: %w", err)
	}
	c.state.Muted = muted
	return nil
}

// ToggleMute flips the mute state.
func (c *Controller) ToggleMute() error {
	return c.SetMuted(!c.state.Muted)
}

// ToggleFullscreen flips fullscreen.
func (c *Controller) ToggleFullscreen() error {
	next := !c.state.Fullscreen
	if err := c.player.SetFullscreen(next); err != nil {
		return fmt.Errorf("set fullscreen: %w", err)
	}
	c.state.Fullscreen = next
	return nil
}

// OnTimeUpdate records a native time-advance and notifies tick listeners.
func (c *Controller) OnTimeUpdate(seconds float64) {
	if math.IsNaN(seconds) {
		return
	}
	c.state.CurrentTime = seconds
	c.notify()
}

// OnLoadedMetadata records the media duration and notifies tick listeners.
func (c *Controller) OnLoadedMetadata(duration float64) {
	if math.IsNaN(duration) || duration < 0 {
		duration = 0
	}
	c.state.Duration = duration
	c.notify()
}

// OnPlayStateChanged mirrors a native play/pause event. A native play while
// annotating is overridden with a pause.
func (c *Controller) OnPlayStateChanged(playing bool) {
	if playing && c.annotating() {
		c.ForcePause()
		return
	}
	c.state.Playing = playing
}

// OnMuteChanged mirrors a native mute change.
func (c *Controller) OnMuteChanged(muted bool) {
	c.state.Muted = muted
}

// OnEnded handles end of media.
func (c *Controller) OnEnded() {
	c.state.Playing = false
}

// Reset returns to a fresh paused state for a new video, keeping the mute
// preference.
func (c *Controller) Reset() {
	muted := c.state.Muted
	c.state = State{Muted: muted}
}

func (c *Controller) notify() {
	for _, fn := range c.listeners {
		fn(c.state)
	}
}
