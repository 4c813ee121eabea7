package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPauser struct {
	calls int
}

func (p *countingPauser) ForcePause() { p.calls++ }

func drawRect(t *testing.T, s *Surface, from, to Point) {
	t.Helper()
	require.True(t, s.BeginStroke(from, ToolRect, ColorPink))
	require.True(t, s.ExtendStroke(to))
	require.True(t, s.EndStroke())
}

func TestSurface_EnterPausesOnce(t *testing.T) {
	p := &countingPauser{}
	s := NewSurface(p)

	assert.True(t, s.EnterAnnotationMode())
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 1, p.calls)

	assert.False(t, s.EnterAnnotationMode(), "second enter is a no-op")
	assert.Equal(t, 1, p.calls)
}

func TestSurface_StrokesRequireAnnotationMode(t *testing.T) {
	s := NewSurface(nil)

	assert.False(t, s.BeginStroke(Pt(1, 1), ToolPen, ColorPink))
	assert.False(t, s.ExtendStroke(Pt(2, 2)))
	assert.False(t, s.EndStroke())
	assert.Equal(t, Disabled, s.State())
	assert.Zero(t, s.Len())
}

func TestSurface_FreehandAccumulatesPoints(t *testing.T) {
	s := NewSurface(nil)
	s.EnterAnnotationMode()

	require.True(t, s.BeginStroke(Pt(0, 0), ToolPen, ColorBlue))
	assert.False(t, s.BeginStroke(Pt(5, 5), ToolPen, ColorBlue), "only one in-progress shape")
	s.ExtendStroke(Pt(1, 1))
	s.ExtendStroke(Pt(2, 3))

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, []Point{{0, 0}, {1, 1}, {2, 3}}, cur.Points)

	require.True(t, s.EndStroke())
	assert.Equal(t, Idle, s.State())
	_, ok = s.Current()
	assert.False(t, ok)

	shapes := s.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, ToolPen, shapes[0].Tool)
	assert.Equal(t, ColorBlue, shapes[0].Color)
	assert.Len(t, shapes[0].Points, 3)
}

func TestSurface_RectUpdatesEndWithoutNormalizing(t *testing.T) {
	s := NewSurface(nil)
	s.EnterAnnotationMode()
	drawRect(t, s, Pt(100, 80), Pt(10, 10))

	sh := s.Shapes()[0]
	assert.Equal(t, Pt(100, 80), sh.Start)
	assert.Equal(t, Pt(10, 10), sh.End)

	min, max := sh.Rect()
	assert.Equal(t, Pt(10, 10), min)
	assert.Equal(t, Pt(100, 80), max)
}

func TestSurface_CancelStrokeDiscards(t *testing.T) {
	s := NewSurface(nil)
	s.EnterAnnotationMode()
	drawRect(t, s, Pt(1, 1), Pt(4, 4))

	s.BeginStroke(Pt(0, 0), ToolCircle, ColorYellow)
	s.ExtendStroke(Pt(3, 4))
	assert.True(t, s.CancelStroke())

	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 1, s.Len())
}

func TestSurface_EndStrokeThenUndoRestoresList(t *testing.T) {
	tools := []Tool{ToolPen, ToolRect, ToolCircle}
	for _, tool := range tools {
		t.Run(tool.String(), func(t *testing.T) {
			s := NewSurface(nil)
			s.EnterAnnotationMode()
			drawRect(t, s, Pt(1, 2), Pt(3, 4))
			before := s.Shapes()

			require.True(t, s.BeginStroke(Pt(9, 9), tool, ColorWhite))
			s.ExtendStroke(Pt(10, 12))
			s.ExtendStroke(Pt(14, 2))
			require.True(t, s.EndStroke())
			require.True(t, s.Undo())

			assert.Equal(t, before, s.Shapes())
		})
	}
}

func TestSurface_UndoAndClearOnEmptyAreNoops(t *testing.T) {
	s := NewSurface(nil)
	s.EnterAnnotationMode()
	assert.False(t, s.Undo())
	assert.False(t, s.Clear())
}

func TestSurface_ExitClearsEverything(t *testing.T) {
	s := NewSurface(nil)
	s.EnterAnnotationMode()
	drawRect(t, s, Pt(1, 1), Pt(2, 2))
	s.BeginStroke(Pt(0, 0), ToolPen, ColorPink)

	assert.True(t, s.ExitAnnotationMode())
	assert.Equal(t, Disabled, s.State())
	assert.Zero(t, s.Len())
	_, ok := s.Current()
	assert.False(t, ok)

	assert.False(t, s.ExitAnnotationMode())
}

func TestSurface_DiscardAllKeepsMode(t *testing.T) {
	s := NewSurface(nil)
	s.EnterAnnotationMode()
	drawRect(t, s, Pt(1, 1), Pt(2, 2))
	s.BeginStroke(Pt(0, 0), ToolPen, ColorPink)

	s.DiscardAll()
	assert.Equal(t, Idle, s.State())
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Visible())
}

func TestSurface_SelectionAppliesToNextStrokeOnly(t *testing.T) {
	s := NewSurface(nil)
	s.EnterAnnotationMode()

	s.HandlePointer(PointerEvent{Kind: PointerDown, Point: Pt(0, 0)})
	s.HandlePointer(PointerEvent{Kind: PointerMove, Point: Pt(5, 5)})
	s.HandlePointer(PointerEvent{Kind: PointerUp})

	s.SetTool(ToolCircle)
	assert.True(t, s.SetColor(ColorYellow))
	assert.False(t, s.SetColor("#123456"))

	shapes := s.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, ToolPen, shapes[0].Tool)
	assert.Equal(t, ColorPink, shapes[0].Color)

	s.HandlePointer(PointerEvent{Kind: PointerDown, Point: Pt(10, 10)})
	s.HandlePointer(PointerEvent{Kind: PointerUp})
	shapes = s.Shapes()
	require.Len(t, shapes, 2)
	assert.Equal(t, ToolCircle, shapes[1].Tool)
	assert.Equal(t, ColorYellow, shapes[1].Color)
}

func TestSurface_ShapesAreCopies(t *testing.T) {
	s := NewSurface(nil)
	s.EnterAnnotationMode()
	s.BeginStroke(Pt(0, 0), ToolPen, ColorPink)
	s.ExtendStroke(Pt(1, 1))
	s.EndStroke()

	shapes := s.Shapes()
	shapes[0].Points[0] = Pt(99, 99)
	assert.Equal(t, Pt(0, 0), s.Shapes()[0].Points[0])
}

func TestSurface_DrainReplaysEvents(t *testing.T) {
	s := NewSurface(nil)
	s.EnterAnnotationMode()

	src := NewEventList(
		PointerEvent{Kind: PointerDown, Point: Pt(0, 0)},
		PointerEvent{Kind: PointerMove, Point: Pt(1, 0)},
		PointerEvent{Kind: PointerLeave},
		PointerEvent{Kind: PointerMove, Point: Pt(2, 0)},
		PointerEvent{Kind: PointerDown, Point: Pt(3, 3)},
		PointerEvent{Kind: PointerMove, Point: Pt(4, 4)},
		PointerEvent{Kind: PointerUp},
	)
	applied := s.Drain(src)

	assert.Equal(t, 6, applied, "move after leave is ignored")
	require.Equal(t, 1, s.Len())
	assert.Equal(t, []Point{{3, 3}, {4, 4}}, s.Shapes()[0].Points)
}

func TestSurface_OnChangeFires(t *testing.T) {
	s := NewSurface(nil)
	n := 0
	s.OnChange(func() { n++ })

	s.EnterAnnotationMode()
	s.BeginStroke(Pt(0, 0), ToolRect, ColorPink)
	s.EndStroke()
	s.Undo()
	assert.Equal(t, 4, n)
}
