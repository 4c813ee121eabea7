package cmd

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/framereview/review"
)

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "x"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestVideoSource(t *testing.T) {
	got, err := videoSource("https://cdn.example.com/v.mp4")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/v.mp4", got)

	dir := t.TempDir()
	path := filepath.Join(dir, "cut.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	got, err = videoSource(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = videoSource(filepath.Join(dir, "missing.mp4"))
	assert.ErrorContains(t, err, "not found")
	_, err = videoSource(dir)
	assert.ErrorContains(t, err, "directory")
}

func TestPrintComments(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	printComments(&buf, []review.Comment{
		{ID: 1, Author: "sam", TimestampSeconds: 65, Text: "logo\nis off", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: 2, Author: "kim", TimestampSeconds: 3, Resolved: true, AttachmentURL: "data:image/png;base64,AA"},
	}, now)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "1:05")
	assert.Contains(t, lines[1], "2 hours ago")
	assert.Contains(t, lines[1], "logo is off")
	assert.Contains(t, lines[2], "resolved")
	assert.Contains(t, lines[2], "[image]")
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "a b", oneLine(" a\n\tb ", 10))
	assert.Equal(t, "abc…", oneLine("abcdefgh", 4))
}

func TestImageAttachment(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	src.Set(1, 1, color.NRGBA{R: 0xff, A: 0xff})
	path := filepath.Join(t.TempDir(), "still.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	res, err := imageAttachment(path)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Width())
	assert.Equal(t, 3, res.Height())
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, res.Image.RGBAAt(1, 1))

	uri, err := res.DataURL()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	_, err = imageAttachment(path)
	assert.Error(t, err)
}
