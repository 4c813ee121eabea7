package mpv

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
)

// overlayID is the overlay slot used for annotations. mpv allows 0-63.
const overlayID = 0

// Status is one poll of the properties the player needs every tick.
type Status struct {
	TimePos  float64
	Duration float64
	Paused   bool
	Muted    bool
	EOF      bool
}

// Poll reads the per-tick properties. time-pos and duration are reported as
// zero while unavailable.
func (c *Client) Poll(ctx context.Context) (Status, error) {
	var st Status
	var err error

	if st.TimePos, err = c.getFloat(ctx, "time-pos"); err != nil && !errors.Is(err, ErrPropertyUnavailable) {
		return st, err
	}
	if st.Duration, err = c.getFloat(ctx, "duration"); err != nil && !errors.Is(err, ErrPropertyUnavailable) {
		return st, err
	}
	if st.Paused, err = c.getBool(ctx, "pause"); err != nil {
		return st, err
	}
	if st.Muted, err = c.getBool(ctx, "mute"); err != nil {
		return st, err
	}
	if st.EOF, err = c.getBool(ctx, "eof-reached"); err != nil && !errors.Is(err, ErrPropertyUnavailable) {
		return st, err
	}
	return st, nil
}

// GetVideoSize returns the native video dimensions.
func (c *Client) GetVideoSize(ctx context.Context) (int, int, error) {
	return c.getSize(ctx, "width", "height")
}

// GetOSDSize returns the size of the video window in pixels. Annotation
// coordinates and overlays use this space.
func (c *Client) GetOSDSize(ctx context.Context) (int, int, error) {
	return c.getSize(ctx, "osd-width", "osd-height")
}

func (c *Client) getSize(ctx context.Context, wProp, hProp string) (int, int, error) {
	w, err := c.getFloat(ctx, wProp)
	if err != nil {
		return 0, 0, err
	}
	h, err := c.getFloat(ctx, hProp)
	if err != nil {
		return 0, 0, err
	}
	return int(w), int(h), nil
}

func (c *Client) short() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultTimeout)
}

// Play resumes playback.
func (c *Client) Play() error {
	ctx, cancel := c.short()
	defer cancel()
	return c.SetProperty(ctx, "pause", false)
}

// Pause pauses playback.
func (c *Client) Pause() error {
	ctx, cancel := c.short()
	defer cancel()
	return c.SetProperty(ctx, "pause", true)
}

// Seek jumps to an absolute position in seconds.
func (c *Client) Seek(seconds float64) error {
	ctx, cancel := c.short()
	defer cancel()
	_, err := c.Command(ctx, "seek", seconds, "absolute")
	return err
}

// SetMute mutes or unmutes audio.
func (c *Client) SetMute(muted bool) error {
	ctx, cancel := c.short()
	defer cancel()
	return c.SetProperty(ctx, "mute", muted)
}

// SetFullscreen enters or leaves fullscreen.
func (c *Client) SetFullscreen(fullscreen bool) error {
	ctx, cancel := c.short()
	defer cancel()
	return c.SetProperty(ctx, "fullscreen", fullscreen)
}

// ShowText displays a message on the OSD for durationMs milliseconds.
func (c *Client) ShowText(ctx context.Context, text string, durationMs int) error {
	_, err := c.Command(ctx, "show-text", text, durationMs)
	return err
}

// Frame grabs the current video frame at native resolution, without OSD or
// subtitles, by asking mpv to write a screenshot to a temporary PNG.
func (c *Client) Frame(ctx context.Context) (image.Image, error) {
	path := filepath.Join(os.TempDir(), "framereview-"+uuid.NewString()+".png")
	defer os.Remove(path)

	if _, err := c.Command(ctx, "screenshot-to-file", path, "video"); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open screenshot: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return img, nil
}

// ShowImageOverlay places img over the video window at the origin. The
// image is written as premultiplied BGRA to a temporary file that mpv reads
// when the command runs.
func (c *Client) ShowImageOverlay(ctx context.Context, img *image.RGBA) error {
	b := img.Bounds()
	if b.Empty() {
		return c.HideOverlay(ctx)
	}
	c.overlayMu.Lock()
	defer c.overlayMu.Unlock()
	if c.overlayPath == "" {
		c.overlayPath = filepath.Join(os.TempDir(), "framereview-overlay-"+uuid.NewString()+".bgra")
	}
	if err := os.WriteFile(c.overlayPath, toBGRA(img), 0o600); err != nil {
		return fmt.Errorf("write overlay: %w", err)
	}
	_, err := c.Command(ctx, "overlay-add", overlayID, 0, 0, c.overlayPath, 0, "bgra", b.Dx(), b.Dy(), b.Dx()*4)
	if err != nil {
		return fmt.Errorf("overlay-add: %w", err)
	}
	return nil
}

// HideOverlay removes the annotation overlay.
func (c *Client) HideOverlay(ctx context.Context) error {
	if _, err := c.Command(ctx, "overlay-remove", overlayID); err != nil {
		return fmt.Errorf("overlay-remove: %w", err)
	}
	return nil
}

// RemoveOverlayFile deletes the overlay scratch file, if any.
func (c *Client) RemoveOverlayFile() {
	c.overlayMu.Lock()
	defer c.overlayMu.Unlock()
	if c.overlayPath != "" {
		os.Remove(c.overlayPath)
		c.overlayPath = ""
	}
}

// toBGRA repacks premultiplied RGBA pixels into mpv's bgra layout: one
// little-endian uint32 per pixel with alpha in the top byte.
func toBGRA(img *image.RGBA) []byte {
	b := img.Bounds()
	out := make([]byte, b.Dx()*b.Dy()*4)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			p := row[x*4 : x*4+4]
			v := uint32(p[3])<<24 | uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
			binary.LittleEndian.PutUint32(out[i:], v)
			i += 4
		}
	}
	return out
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
