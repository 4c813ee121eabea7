package playback

import "time"

// IdleHideDelay is how long the pointer must rest before controls hide.
const IdleHideDelay = 2 * time.Second

// ControlsTimer decides when player controls are shown. Every pointer move
// shows the controls and issues a new generation; a timer carrying an older
// generation is stale and does nothing when it fires.
type ControlsTimer struct {
	visible    bool
	generation uint64
}

// NewControlsTimer starts with the controls visible.
func NewControlsTimer() *ControlsTimer {
	return &ControlsTimer{visible: true}
}

// Visible reports whether controls are shown.
func (t *ControlsTimer) Visible() bool {
	return t.visible
}

// PointerMoved shows the controls and returns the generation the caller
// should pass to Expire after IdleHideDelay.
func (t *ControlsTimer) PointerMoved() uint64 {
	t.visible = true
	t.generation++
	return t.generation
}

// Show makes the controls visible and invalidates pending timers.
func (t *ControlsTimer) Show() {
	t.visible = true
	t.generation++
}

// Expire hides the controls if gen is still current, the video is playing,
// and neither annotation mode nor a modal is holding them open.
func (t *ControlsTimer) Expire(gen uint64, annotating, modalOpen, playing bool) bool {
	if gen != t.generation || annotating || modalOpen || !playing {
		return false
	}
	t.visible = false
	return true
}
