package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/framereview/annotate"
)

func rgbaAt(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func TestDrawShapes_RectangleOutline(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 100))
	DrawShapes(img, []annotate.Shape{{
		Tool:  annotate.ToolRect,
		Color: annotate.ColorPink,
		Start: annotate.Pt(100, 80),
		End:   annotate.Pt(10, 10),
	}})

	assert.Equal(t, annotate.ColorPink.RGBA(), rgbaAt(img, 10, 45), "left edge")
	assert.Equal(t, annotate.ColorPink.RGBA(), rgbaAt(img, 55, 79), "bottom edge")
	assert.Zero(t, rgbaAt(img, 55, 45).A, "interior stays empty")
	assert.Zero(t, rgbaAt(img, 2, 2).A, "outside stays empty")
}

func TestDrawShapes_CircleRing(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	DrawShapes(img, []annotate.Shape{{
		Tool:  annotate.ToolCircle,
		Color: annotate.ColorYellow,
		Start: annotate.Pt(50, 50),
		End:   annotate.Pt(50, 30),
	}})

	assert.Equal(t, annotate.ColorYellow.RGBA(), rgbaAt(img, 70, 50))
	assert.Equal(t, annotate.ColorYellow.RGBA(), rgbaAt(img, 49, 29))
	assert.Zero(t, rgbaAt(img, 50, 50).A)
}

func TestDrawShapes_FreehandNeedsTwoPoints(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	DrawShapes(img, []annotate.Shape{{
		Tool:   annotate.ToolPen,
		Color:  annotate.ColorWhite,
		Points: []annotate.Point{{X: 10, Y: 10}},
	}})
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			require.Zero(t, rgbaAt(img, x, y).A)
		}
	}

	DrawShapes(img, []annotate.Shape{{
		Tool:   annotate.ToolPen,
		Color:  annotate.ColorWhite,
		Points: []annotate.Point{{X: 2, Y: 10}, {X: 18, Y: 10}},
	}})
	assert.Equal(t, annotate.ColorWhite.RGBA(), rgbaAt(img, 10, 10))
	assert.Equal(t, annotate.ColorWhite.RGBA(), rgbaAt(img, 1, 9), "round cap extends past the end point")
}

func TestDrawShapes_LaterShapesPaintOver(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	line := func(c annotate.Color) annotate.Shape {
		return annotate.Shape{Tool: annotate.ToolPen, Color: c, Points: []annotate.Point{{X: 5, Y: 20}, {X: 35, Y: 20}}}
	}
	DrawShapes(img, []annotate.Shape{line(annotate.ColorPink), line(annotate.ColorBlue)})
	assert.Equal(t, annotate.ColorBlue.RGBA(), rgbaAt(img, 20, 20))
}

func TestDrawShapes_DegenerateShapesDoNotPanic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	assert.NotPanics(t, func() {
		DrawShapes(img, []annotate.Shape{
			{Tool: annotate.ToolRect, Color: annotate.ColorPink, Start: annotate.Pt(4, 4), End: annotate.Pt(4, 4)},
			{Tool: annotate.ToolCircle, Color: annotate.ColorPink, Start: annotate.Pt(-50, -50), End: annotate.Pt(500, 500)},
			{Tool: annotate.ToolPen, Color: annotate.ColorPink, Points: []annotate.Point{{X: 3, Y: 3}, {X: 3, Y: 3}}},
		})
		DrawShapes(image.NewRGBA(image.Rectangle{}), []annotate.Shape{{Tool: annotate.ToolRect}})
	})
}

func TestOutline_OrientationIsConsistent(t *testing.T) {
	shapes := []annotate.Shape{
		{Tool: annotate.ToolPen, Points: []annotate.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 3}}},
		{Tool: annotate.ToolRect, Start: annotate.Pt(30, 30), End: annotate.Pt(0, 0)},
		{Tool: annotate.ToolCircle, Start: annotate.Pt(0, 0), End: annotate.Pt(5, 0)},
	}
	for _, s := range shapes {
		for _, p := range Outline(s, StrokeWidth) {
			if len(p) < 3 {
				continue
			}
			assert.GreaterOrEqual(t, signedArea(p), 0.0, s.Tool.String())
		}
	}
}
