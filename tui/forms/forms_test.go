package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaptureInfo_String(t *testing.T) {
	assert.Equal(t, "1280×720 frame", CaptureInfo{Width: 1280, Height: 720, FrameCaptured: true}.String())
	assert.Equal(t, "640×360 annotations on black (frame unavailable), 2.0 kB",
		CaptureInfo{Width: 640, Height: 360, Size: 2000}.String())
}

func TestFormsBuild(t *testing.T) {
	var text string
	var ok bool
	assert.NotNil(t, NewSaveAnnotationForm(12, CaptureInfo{Width: 2, Height: 2}, &text))
	assert.NotNil(t, NewCommentForm(12, &text))
	assert.NotNil(t, NewConfirmDeleteForm("0:12 fix logo", &ok))
}
