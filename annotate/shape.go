// Package annotate holds the vector annotation model and the drawing surface
// state machine used while a video frame is paused for review.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
)

// Point is a position in surface-local pixels, origin at the top-left of the
// drawing surface.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Tool selects which kind of shape the next stroke produces.
type Tool int

const (
	// ToolPen draws freehand strokes.
	ToolPen Tool = iota
	// ToolRect draws axis-aligned rectangles.
	ToolRect
	// ToolCircle draws circles centred on the stroke start.
	ToolCircle
)

// String returns the short name of the tool.
func (t Tool) String() string {
	switch t {
	case ToolPen:
		return "pen"
	case ToolRect:
		return "rect"
	case ToolCircle:
		return "circle"
	default:
		return fmt.Sprintf("tool(%d)", int(t))
	}
}

// ParseTool parses "pen", "rect" or "circle".
func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pen", "freehand":
		return ToolPen, nil
	case "rect", "rectangle":
		return ToolRect, nil
	case "circle":
		return ToolCircle, nil
	}
	return ToolPen, fmt.Errorf("unknown tool %q", s)
}

// Color is one of the fixed annotation palette entries, stored as #RRGGBB.
type Color string

// Annotation palette.
const (
	ColorPink   Color = "#FF5BA3"
	ColorBlue   Color = "#0000EE"
	ColorWhite  Color = "#FFFFFF"
	ColorYellow Color = "#FACC15"
)

// Palette lists the selectable colours in toolbar order.
var Palette = []Color{ColorPink, ColorBlue, ColorWhite, ColorYellow}

// DefaultColor and DefaultTool are the selection a fresh surface starts with.
const (
	DefaultColor = ColorPink
	DefaultTool  = ToolPen
)

// Valid reports whether c is a palette colour.
func (c Color) Valid() bool {
	for _, p := range Palette {
		if strings.EqualFold(string(p), string(c)) {
			return true
		}
	}
	return false
}

// RGBA decodes the colour. Malformed values decode as opaque black.
func (c Color) RGBA() color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(string(c), "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Shape is a single annotation. Freehand shapes use Points; rectangles and
// circles use Start and End.
type Shape struct {
	Tool   Tool
	Color  Color
	Points []Point
	Start  Point
	End    Point
}

func newShape(p Point, tool Tool, c Color) Shape {
	if tool == ToolPen {
		return Shape{Tool: tool, Color: c, Points: []Point{p}}
	}
	return Shape{Tool: tool, Color: c, Start: p, End: p}
}

// extend applies the next pointer position to an in-progress shape.
func (s *Shape) extend(p Point) {
	if s.Tool == ToolPen {
		s.Points = append(s.Points, p)
		return
	}
	s.End = p
}

// Clone returns a deep copy of s.
func (s Shape) Clone() Shape {
	if s.Points != nil {
		pts := make([]Point, len(s.Points))
		copy(pts, s.Points)
		s.Points = pts
	}
	return s
}

// Renderable reports whether the shape produces any pixels. Freehand strokes
// need at least two points; rectangles and circles always render, possibly as
// a zero-size dot.
func (s Shape) Renderable() bool {
	if s.Tool == ToolPen {
		return len(s.Points) >= 2
	}
	return true
}

// Radius is the circle radius: the distance from Start to End.
func (s Shape) Radius() float64 {
	return s.Start.Dist(s.End)
}

// Rect returns the rectangle spanned by Start and End with its corners
// normalized so Min <= Max on both axes.
func (s Shape) Rect() (min, max Point) {
	min = Point{X: math.Min(s.Start.X, s.End.X), Y: math.Min(s.Start.Y, s.End.Y)}
	max = Point{X: math.Max(s.Start.X, s.End.X), Y: math.Max(s.Start.Y, s.End.Y)}
	return min, max
}

// Bounds returns the integer pixel box covered by the shape's geometry,
// not including stroke width.
func (s Shape) Bounds() image.Rectangle {
	var min, max Point
	switch s.Tool {
	case ToolPen:
		if len(s.Points) == 0 {
			return image.Rectangle{}
		}
		min, max = s.Points[0], s.Points[0]
		for _, p := range s.Points[1:] {
			min.X, min.Y = math.Min(min.X, p.X), math.Min(min.Y, p.Y)
			max.X, max.Y = math.Max(max.X, p.X), math.Max(max.Y, p.Y)
		}
	case ToolCircle:
		r := s.Radius()
		min = Point{X: s.Start.X - r, Y: s.Start.Y - r}
		max = Point{X: s.Start.X + r, Y: s.Start.Y + r}
	default:
		min, max = s.Rect()
	}
	return image.Rect(int(math.Floor(min.X)), int(math.Floor(min.Y)), int(math.Ceil(max.X)), int(math.Ceil(max.Y)))
}
