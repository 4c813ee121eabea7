package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/framereview/review"
)

func TestAttachmentPath(t *testing.T) {
	c := review.Comment{ID: 7, Author: "Dana K/QA", TimestampSeconds: 3725.9}
	assert.Equal(t, filepath.Join("out", "010205-Dana_K_QA-7.png"), AttachmentPath("out", c, "png"))

	c.Author = ""
	assert.Equal(t, filepath.Join("out", "010205-unknown-7.png"), AttachmentPath("out", c, "png"))
}

func TestOutputDir(t *testing.T) {
	assert.Equal(t, filepath.Join("/srv/cuts", "final_v2-annotations"),
		OutputDir(review.Video{URL: "/srv/cuts/final v2.mp4"}))
	assert.Equal(t, filepath.Join(".", "v-annotations"),
		OutputDir(review.Video{URL: "https://cdn.example.com/v.mp4"}))
}

func TestDecodeDataURL(t *testing.T) {
	data, ext, err := DecodeDataURL("data:image/jpeg;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
	assert.Equal(t, "jpg", ext)

	_, _, err = DecodeDataURL("https://files.example.com/a.png")
	assert.ErrorIs(t, err, ErrNotDataURL)

	_, _, err = DecodeDataURL("data:image/png;base64,@@@")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotDataURL)
}

func TestAttachments(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	comments := []review.Comment{
		{ID: 1, Author: "sam", TimestampSeconds: 5, AttachmentURL: "data:image/png;base64,aGk="},
		{ID: 2, Author: "kim", TimestampSeconds: 9, Text: "no image"},
		{ID: 3, Author: "kim", TimestampSeconds: 12, AttachmentURL: "https://files.example.com/a.png"},
	}

	res, err := Attachments(dir, comments)
	require.NoError(t, err)
	require.Len(t, res.Written, 1)
	assert.Equal(t, []int64{3}, res.Skipped)

	got, err := os.ReadFile(filepath.Join(dir, "000005-sam-1.png"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(got))
}

func TestAttachments_NothingToWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "unused")
	res, err := Attachments(dir, []review.Comment{{ID: 1, Text: "plain"}})
	require.NoError(t, err)
	assert.Empty(t, res.Written)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
