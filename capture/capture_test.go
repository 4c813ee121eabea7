package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/framereview/annotate"
)

type solidFrame struct {
	w, h int
	c    color.RGBA
}

func (f solidFrame) Frame(context.Context) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, f.w, f.h))
	draw.Draw(img, img.Bounds(), image.NewUniform(f.c), image.Point{}, draw.Src)
	return img, nil
}

type deniedFrame struct{}

func (deniedFrame) Frame(context.Context) (image.Image, error) {
	return nil, errors.New("security error: tainted canvas")
}

type panickyFrame struct{}

func (panickyFrame) Frame(context.Context) (image.Image, error) {
	panic("read-back denied")
}

type shapeList []annotate.Shape

func (s shapeList) Shapes() []annotate.Shape { return s }

var black = color.RGBA{A: 0xff}
var green = color.RGBA{G: 0xff, A: 0xff}

func TestLetterbox(t *testing.T) {
	// 16:9 into 4:3 gets bars top and bottom.
	assert.Equal(t, image.Rect(0, 75, 800, 525), Letterbox(1920, 1080, 800, 600))
	// 4:3 into 16:9 gets bars left and right.
	assert.Equal(t, image.Rect(240, 0, 1680, 1080), Letterbox(640, 480, 1920, 1080))
	// Same ratio fills.
	assert.Equal(t, image.Rect(0, 0, 320, 180), Letterbox(1280, 720, 320, 180))
	assert.True(t, Letterbox(0, 10, 10, 10).Empty())
}

func TestCaptureFrame_LetterboxedFrameWithShapes(t *testing.T) {
	shapes := shapeList{{
		Tool:  annotate.ToolRect,
		Color: annotate.ColorPink,
		Start: annotate.Pt(10, 10),
		End:   annotate.Pt(100, 80),
	}}
	e := NewEngine(solidFrame{w: 1920, h: 1080, c: green}, shapes, zerolog.Nop())

	res := e.CaptureFrame(context.Background(), 160, 120)
	require.NotNil(t, res.Image)
	assert.True(t, res.FrameCaptured)
	assert.Equal(t, 160, res.Width())
	assert.Equal(t, 120, res.Height())

	// 16:9 in 160x120: frame occupies y in [15, 105).
	assert.Equal(t, black, res.Image.RGBAAt(80, 5), "letterbox bar")
	assert.Equal(t, green, res.Image.RGBAAt(80, 60), "frame")
	assert.Equal(t, annotate.ColorPink.RGBA(), res.Image.RGBAAt(10, 45), "rectangle edge")
}

func TestCaptureFrame_DeniedFrameDegradesToBlack(t *testing.T) {
	shapes := shapeList{{
		Tool:   annotate.ToolPen,
		Color:  annotate.ColorWhite,
		Points: []annotate.Point{{X: 5, Y: 20}, {X: 35, Y: 20}},
	}}
	for name, src := range map[string]FrameSource{
		"error": deniedFrame{},
		"panic": panickyFrame{},
		"nil":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			e := NewEngine(src, shapes, zerolog.Nop())
			var res Result
			require.NotPanics(t, func() {
				res = e.CaptureFrame(context.Background(), 40, 40)
			})
			assert.False(t, res.FrameCaptured)
			assert.Equal(t, black, res.Image.RGBAAt(2, 2))
			assert.Equal(t, annotate.ColorWhite.RGBA(), res.Image.RGBAAt(20, 20))
		})
	}
}

func TestCaptureFrame_NonPositiveSize(t *testing.T) {
	e := NewEngine(nil, nil, zerolog.Nop())
	res := e.CaptureFrame(context.Background(), 0, -3)
	assert.Equal(t, 1, res.Width())
	assert.Equal(t, 1, res.Height())
}

func TestResult_DataURLRoundTripsPNG(t *testing.T) {
	e := NewEngine(nil, nil, zerolog.Nop())
	res := e.CaptureFrame(context.Background(), 8, 4)

	url, err := res.DataURL()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())

	_, err = Result{}.PNG()
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	ts := time.Date(2026, 10, 19, 8, 30, 5, 123000000, time.UTC)
	assert.Equal(t, "annotation-2026-10-19T08-30-05-123Z.png", Filename(ts))
}
