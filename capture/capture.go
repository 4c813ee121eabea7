// Package capture flattens the current video frame and the committed
// annotations into a single image.
package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/user/framereview/annotate"
	"github.com/user/framereview/raster"
	xdraw "golang.org/x/image/draw"
)

// FrameSource returns the video frame currently on screen. It may fail, for
// example when the player refuses pixel read-back.
type FrameSource interface {
	Frame(ctx context.Context) (image.Image, error)
}

// ShapeSource supplies the committed annotations.
type ShapeSource interface {
	Shapes() []annotate.Shape
}

// Result is a flattened capture. It lives only between capture and
// submit/cancel.
type Result struct {
	Image         *image.RGBA
	FrameCaptured bool
	CapturedAt    time.Time
}

// Width returns the raster width in pixels.
func (r Result) Width() int {
	if r.Image == nil {
		return 0
	}
	return r.Image.Bounds().Dx()
}

// Height returns the raster height in pixels.
func (r Result) Height() int {
	if r.Image == nil {
		return 0
	}
	return r.Image.Bounds().Dy()
}

// PNG encodes the capture.
func (r Result) PNG() ([]byte, error) {
	if r.Image == nil {
		return nil, fmt.Errorf("capture: empty result")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Image); err != nil {
		return nil, fmt.Errorf("capture: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL encodes the capture as a data:image/png;base64 URL, the attachment
// form the review service accepts.
func (r Result) DataURL() (string, error) {
	data, err := r.PNG()
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Filename returns the attachment name for a capture taken at t.
func Filename(t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return "annotation-" + ts + ".png"
}

// Engine composites frames and annotations.
type Engine struct {
	frames FrameSource
	shapes ShapeSource
	logger zerolog.Logger
	now    func() time.Time
}

// NewEngine returns an engine. frames may be nil, in which case every
// capture is annotation-only.
func NewEngine(frames FrameSource, shapes ShapeSource, logger zerolog.Logger) *Engine {
	return &Engine{
		frames: frames,
		shapes: shapes,
		logger: logger.With().Str("component", "capture").Logger(),
		now:    time.Now,
	}
}

// SetClock replaces the capture timestamp source.
func (e *Engine) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// CaptureFrame renders a width×height image: opaque black, the video frame
// letterboxed to its native aspect ratio, then the committed shapes at their
// surface coordinates. Frame failures degrade to a black background; the
// call never fails.
func (e *Engine) CaptureFrame(ctx context.Context, width, height int) Result {
	if width <= 0 || height <= 0 {
		width, height = 1, 1
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	fillBlack(out)

	captured := e.drawFrame(ctx, out)
	if !captured {
		fillBlack(out)
	}

	if e.shapes != nil {
		raster.DrawShapes(out, e.shapes.Shapes())
	}

	return Result{Image: out, FrameCaptured: captured, CapturedAt: e.now()}
}

func (e *Engine) drawFrame(ctx context.Context, out *image.RGBA) (ok bool) {
	if e.frames == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn().Interface("panic", r).Msg("frame capture panicked, saving annotation only")
			ok = false
		}
	}()

	frame, err := e.frames.Frame(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("could not capture video frame, saving annotation only")
		return false
	}
	if frame == nil {
		return false
	}
	fb := frame.Bounds()
	dst := Letterbox(fb.Dx(), fb.Dy(), out.Bounds().Dx(), out.Bounds().Dy())
	if dst.Empty() {
		return false
	}
	xdraw.ApproxBiLinear.Scale(out, dst, frame, fb, draw.Over, nil)
	return true
}

// Letterbox fits a videoW×videoH frame inside outW×outH preserving aspect
// ratio and centring the shorter axis.
func Letterbox(videoW, videoH, outW, outH int) image.Rectangle {
	if videoW <= 0 || videoH <= 0 || outW <= 0 || outH <= 0 {
		return image.Rectangle{}
	}
	videoRatio := float64(videoW) / float64(videoH)
	outRatio := float64(outW) / float64(outH)

	drawW, drawH := float64(outW), float64(outH)
	var offX, offY float64
	if videoRatio > outRatio {
		drawH = float64(outW) / videoRatio
		offY = (float64(outH) - drawH) / 2
	} else {
		drawW = float64(outH) * videoRatio
		offX = (float64(outW) - drawW) / 2
	}
	x0 := int(math.Round(offX))
	y0 := int(math.Round(offY))
	return image.Rect(x0, y0, x0+int(math.Round(drawW)), y0+int(math.Round(drawH)))
}

func fillBlack(img *image.RGBA) {
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{A: 0xff}), image.Point{}, draw.Src)
}
