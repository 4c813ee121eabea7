package annotate

// State is the drawing surface interaction state.
type State int

const (
	// Disabled means annotation mode is off and pointer input is ignored.
	Disabled State = iota
	// Idle means annotation mode is on with no active pointer.
	Idle
	// Drawing means a pointer is down and a shape is in progress.
	Drawing
)

// String returns a lowercase name for the state.
func (s State) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	}
	return "unknown"
}

// Pauser is the part of playback the surface needs: entering annotation mode
// always stops the video.
type Pauser interface {
	ForcePause()
}

// Surface owns the annotation state machine: the committed shape list, the
// single in-progress shape and the current tool/colour selection.
//
// All methods are meant to be called from one event loop. Calls made in the
// wrong state are no-ops and report false.
type Surface struct {
	state     State
	tool      Tool
	color     Color
	committed []Shape
	current   *Shape
	pauser    Pauser

	// onChange is invoked after every mutation so a renderer can redraw.
	onChange func()
}

// NewSurface returns a disabled surface with the default tool and colour.
// pauser may be nil.
func NewSurface(pauser Pauser) *Surface {
	return &Surface{
		state:  Disabled,
		tool:   DefaultTool,
		color:  DefaultColor,
		pauser: pauser,
	}
}

// SetPauser replaces the playback collaborator.
func (s *Surface) SetPauser(p Pauser) {
	s.pauser = p
}

// OnChange registers fn to run after each state or shape mutation.
func (s *Surface) OnChange(fn func()) {
	s.onChange = fn
}

func (s *Surface) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// State returns the current interaction state.
func (s *Surface) State() State {
	return s.state
}

// Enabled reports whether annotation mode is on.
func (s *Surface) Enabled() bool {
	return s.state != Disabled
}

// Tool returns the tool the next stroke will use.
func (s *Surface) Tool() Tool {
	return s.tool
}

// Color returns the colour the next stroke will use.
func (s *Surface) Color() Color {
	return s.color
}

// SetTool changes the selection for the next stroke only.
func (s *Surface) SetTool(t Tool) {
	s.tool = t
}

// SetColor changes the selection for the next stroke only. Colours outside
// the palette are ignored.
func (s *Surface) SetColor(c Color) bool {
	if !c.Valid() {
		return false
	}
	s.color = c
	return true
}

// Shapes returns a copy of the committed shapes in commit order.
func (s *Surface) Shapes() []Shape {
	out := make([]Shape, len(s.committed))
	for i, sh := range s.committed {
		out[i] = sh.Clone()
	}
	return out
}

// Len returns the number of committed shapes.
func (s *Surface) Len() int {
	return len(s.committed)
}

// Current returns a copy of the in-progress shape, if any.
func (s *Surface) Current() (Shape, bool) {
	if s.current == nil {
		return Shape{}, false
	}
	return s.current.Clone(), true
}

// Visible returns the committed shapes followed by the in-progress shape,
// which is what a live overlay should draw.
func (s *Surface) Visible() []Shape {
	out := s.Shapes()
	if s.current != nil {
		out = append(out, s.current.Clone())
	}
	return out
}

// EnterAnnotationMode moves Disabled to Idle and pauses playback.
func (s *Surface) EnterAnnotationMode() bool {
	if s.state != Disabled {
		return false
	}
	s.state = Idle
	if s.pauser != nil {
		s.pauser.ForcePause()
	}
	s.changed()
	return true
}

// ExitAnnotationMode turns annotation mode off from any state, dropping the
// in-progress shape and every committed shape.
func (s *Surface) ExitAnnotationMode() bool {
	if s.state == Disabled {
		return false
	}
	s.state = Disabled
	s.current = nil
	s.committed = nil
	s.changed()
	return true
}

// BeginStroke starts a new in-progress shape at p.
func (s *Surface) BeginStroke(p Point, tool Tool, c Color) bool {
	if s.state != Idle {
		return false
	}
	sh := newShape(p, tool, c)
	s.current = &sh
	s.state = Drawing
	s.changed()
	return true
}

// ExtendStroke appends p to a freehand stroke or moves the end corner of a
// rectangle or circle.
func (s *Surface) ExtendStroke(p Point) bool {
	if s.state != Drawing || s.current == nil {
		return false
	}
	s.current.extend(p)
	s.changed()
	return true
}

// EndStroke commits the in-progress shape to the tail of the list.
func (s *Surface) EndStroke() bool {
	if s.state != Drawing || s.current == nil {
		return false
	}
	s.committed = append(s.committed, *s.current)
	s.current = nil
	s.state = Idle
	s.changed()
	return true
}

// CancelStroke discards the in-progress shape without committing it, as when
// the pointer leaves the surface mid-stroke.
func (s *Surface) CancelStroke() bool {
	if s.state != Drawing {
		return false
	}
	s.current = nil
	s.state = Idle
	s.changed()
	return true
}

// Undo removes the most recently committed shape.
func (s *Surface) Undo() bool {
	if len(s.committed) == 0 {
		return false
	}
	s.committed = s.committed[:len(s.committed)-1]
	s.changed()
	return true
}

// Clear empties the committed list. An in-progress stroke is left alone.
func (s *Surface) Clear() bool {
	if len(s.committed) == 0 {
		return false
	}
	s.committed = nil
	s.changed()
	return true
}

// DiscardAll drops committed and in-progress shapes but keeps annotation
// mode. Seeking calls this: annotations belong to a single frame.
func (s *Surface) DiscardAll() {
	if len(s.committed) == 0 && s.current == nil {
		return
	}
	s.committed = nil
	s.current = nil
	if s.state == Drawing {
		s.state = Idle
	}
	s.changed()
}

// Active reports whether annotation mode is on. It lets the surface stand in
// for playback's view of annotations.
func (s *Surface) Active() bool {
	return s.Enabled()
}
