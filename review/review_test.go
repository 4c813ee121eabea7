package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVideo_Title(t *testing.T) {
	tests := []struct {
		name  string
		video Video
		want  string
	}{
		{"explicit name", Video{ID: 1, Name: "cut-3", URL: "https://x/y.mp4"}, "cut-3"},
		{"url path", Video{ID: 2, URL: "https://files.example.com/a/Final%20Cut.mp4?token=abc"}, "Final Cut.mp4"},
		{"local path", Video{ID: 3, URL: "/srv/videos/take1.mov"}, "take1.mov"},
		{"fallback", Video{ID: 4}, "Video #4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.video.Title())
		})
	}
}

func TestDraft_Validate(t *testing.T) {
	assert.NoError(t, Draft{Text: "fix logo position"}.Validate())
	assert.NoError(t, Draft{Attachment: "data:image/png;base64,AAAA"}.Validate())
	assert.ErrorIs(t, Draft{Text: "   "}.Validate(), ErrInvalidDraft)
	assert.ErrorIs(t, Draft{Text: "x", TimestampSeconds: -1}.Validate(), ErrInvalidDraft)
}
