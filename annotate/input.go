package annotate

// PointerKind identifies a pointer event.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerLeave
)

// PointerEvent is a pointer sample in surface-local pixels.
type PointerEvent struct {
	Kind  PointerKind
	Point Point
}

// PointerSource yields pointer events from a UI toolkit. Next returns false
// once the source is exhausted.
type PointerSource interface {
	Next() (PointerEvent, bool)
}

// HandlePointer routes one pointer event to the matching surface operation
// using the current tool and colour selection. It reports whether the event
// changed anything.
func (s *Surface) HandlePointer(ev PointerEvent) bool {
	switch ev.Kind {
	case PointerDown:
		return s.BeginStroke(ev.Point, s.tool, s.color)
	case PointerMove:
		return s.ExtendStroke(ev.Point)
	case PointerUp:
		return s.EndStroke()
	case PointerLeave:
		return s.CancelStroke()
	}
	return false
}

// Drain feeds every event from src into the surface.
func (s *Surface) Drain(src PointerSource) int {
	n := 0
	for {
		ev, ok := src.Next()
		if !ok {
			return n
		}
		if s.HandlePointer(ev) {
			n++
		}
	}
}

// EventList is a PointerSource over a fixed slice, handy for replaying input.
type EventList struct {
	events []PointerEvent
	pos    int
}

// NewEventList returns a source that yields events in order.
func NewEventList(events ...PointerEvent) *EventList {
	return &EventList{events: events}
}

// Next implements PointerSource.
func (l *EventList) Next() (PointerEvent, bool) {
	if l.pos >= len(l.events) {
		return PointerEvent{}, false
	}
	ev := l.events[l.pos]
	l.pos++
	return ev, true
}

// Scaler maps a toolkit grid (for example terminal cells) onto surface
// pixels. The centre of each cell maps to the corresponding pixel position.
type Scaler struct {
	GridWidth     int
	GridHeight    int
	SurfaceWidth  int
	SurfaceHeight int
}

// Map converts grid coordinates to a surface point. A degenerate grid maps
// everything to the origin.
func (sc Scaler) Map(col, row int) Point {
	if sc.GridWidth <= 0 || sc.GridHeight <= 0 {
		return Point{}
	}
	x := (float64(col) + 0.5) * float64(sc.SurfaceWidth) / float64(sc.GridWidth)
	y := (float64(row) + 0.5) * float64(sc.SurfaceHeight) / float64(sc.GridHeight)
	return Point{X: x, Y: y}
}

// Contains reports whether the grid coordinate lies on the surface.
func (sc Scaler) Contains(col, row int) bool {
	return col >= 0 && row >= 0 && col < sc.GridWidth && row < sc.GridHeight
}
