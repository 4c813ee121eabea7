// Package raster projects annotation shapes onto pixels.
//
// Strokes are built as filled outlines: one quad per segment plus a disc at
// every vertex, which gives round caps and round joins. The outlines are
// filled with golang.org/x/image/vector so edges are anti-aliased.
package raster

import (
	"image"
	"image/draw"
	"math"

	"github.com/user/framereview/annotate"
	"golang.org/x/image/vector"
)

// StrokeWidth is the annotation line width in pixels.
const StrokeWidth = 4.0

// discSegments is the polygon resolution used for round caps and joins.
const discSegments = 16

// Polygon is a closed outline in surface pixels.
type Polygon []annotate.Point

// DrawShapes renders every renderable shape onto dst in order, each in its own
// colour. Coordinates are relative to dst.Bounds().Min.
func DrawShapes(dst draw.Image, shapes []annotate.Shape) {
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	for _, s := range shapes {
		if !s.Renderable() {
			continue
		}
		r.Reset(b.Dx(), b.Dy())
		for _, p := range Outline(s, StrokeWidth) {
			addPolygon(r, p)
		}
		r.Draw(dst, b, image.NewUniform(s.Color.RGBA()), image.Point{})
	}
}

// Outline returns the polygons whose union is the stroked outline of s.
func Outline(s annotate.Shape, width float64) []Polygon {
	switch s.Tool {
	case annotate.ToolPen:
		return strokePolyline(s.Points, width, false)
	case annotate.ToolRect:
		min, max := s.Rect()
		corners := []annotate.Point{
			min,
			{X: max.X, Y: min.Y},
			max,
			{X: min.X, Y: max.Y},
		}
		return strokePolyline(corners, width, true)
	case annotate.ToolCircle:
		return strokePolyline(circlePoints(s.Start, s.Radius()), width, true)
	}
	return nil
}

func circlePoints(c annotate.Point, radius float64) []annotate.Point {
	if radius <= 0 {
		return []annotate.Point{c}
	}
	n := int(math.Ceil(2 * math.Pi * radius / 3))
	if n < 24 {
		n = 24
	}
	pts := make([]annotate.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = annotate.Point{X: c.X + radius*math.Cos(a), Y: c.Y + radius*math.Sin(a)}
	}
	return pts
}

func strokePolyline(pts []annotate.Point, width float64, closed bool) []Polygon {
	pts = dedupe(pts)
	if len(pts) == 0 {
		return nil
	}
	half := width / 2
	var out []Polygon
	for _, p := range pts {
		out = append(out, disc(p, half))
	}
	segs := len(pts) - 1
	if closed && len(pts) > 2 {
		segs = len(pts)
	}
	for i := 0; i < segs; i++ {
		a, b := pts[i], pts[(i+1)%len(pts)]
		out = append(out, segmentQuad(a, b, half))
	}
	return out
}

func dedupe(pts []annotate.Point) []annotate.Point {
	out := make([]annotate.Point, 0, len(pts))
	for i, p := range pts {
		if i > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}

func disc(c annotate.Point, radius float64) Polygon {
	p := make(Polygon, discSegments)
	for i := range p {
		a := 2 * math.Pi * float64(i) / discSegments
		p[i] = annotate.Point{X: c.X + radius*math.Cos(a), Y: c.Y + radius*math.Sin(a)}
	}
	return orient(p)
}

func segmentQuad(a, b annotate.Point, half float64) Polygon {
	l := a.Dist(b)
	if l == 0 {
		return nil
	}
	nx := -(b.Y - a.Y) / l * half
	ny := (b.X - a.X) / l * half
	return orient(Polygon{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	})
}

// orient makes every polygon wind the same way so overlapping pieces add
// coverage instead of cancelling out.
func orient(p Polygon) Polygon {
	if signedArea(p) < 0 {
		for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
			p[i], p[j] = p[j], p[i]
		}
	}
	return p
}

func signedArea(p Polygon) float64 {
	var a float64
	for i := range p {
		q := p[(i+1)%len(p)]
		a += p[i].X*q.Y - q.X*p[i].Y
	}
	return a / 2
}

func addPolygon(r *vector.Rasterizer, p Polygon) {
	if len(p) < 3 {
		return
	}
	r.MoveTo(float32(p[0].X), float32(p[0].Y))
	for _, q := range p[1:] {
		r.LineTo(float32(q.X), float32(q.Y))
	}
	r.ClosePath()
}
