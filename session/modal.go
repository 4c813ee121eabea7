package session

import "github.com/user/framereview/capture"

// ModalState is the save-modal lifecycle.
type ModalState int

const (
	ModalHidden ModalState = iota
	ModalOpen
	ModalSubmitted
	ModalCancelled
)

// String returns a lowercase name for the state.
func (s ModalState) String() string {
	switch s {
	case ModalOpen:
		return "open"
	case ModalSubmitted:
		return "submitted"
	case ModalCancelled:
		return "cancelled"
	}
	return "hidden"
}

// SaveModal holds the capture and the comment text between "Add Comment"
// and submit or cancel.
type SaveModal struct {
	state   ModalState
	capture *capture.Result
	text    string
}

// State returns the lifecycle state.
func (m *SaveModal) State() ModalState {
	return m.state
}

// IsOpen reports whether the modal is showing.
func (m *SaveModal) IsOpen() bool {
	return m.state == ModalOpen
}

// Capture returns the stored capture while the modal is open.
func (m *SaveModal) Capture() (capture.Result, bool) {
	if m.capture == nil {
		return capture.Result{}, false
	}
	return *m.capture, true
}

// Text returns the comment text typed so far.
func (m *SaveModal) Text() string {
	return m.text
}

func (m *SaveModal) open(res capture.Result) {
	m.state = ModalOpen
	m.capture = &res
	m.text = ""
}

func (m *SaveModal) finish(state ModalState) {
	m.state = state
	m.capture = nil
	m.text = ""
}
