// Package export writes comment attachments out as image files.
package export

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/user/framereview/review"
)

// ErrNotDataURL is returned for attachments that are links rather than
// embedded images.
var ErrNotDataURL = errors.New("export: attachment is not a base64 data URL")

// unsafeChars matches characters not safe for filenames: / \ : * ? < > | and spaces
var unsafeChars = regexp.MustCompile(`[/\\:*?<>|"\s]`)

// sanitize replaces unsafe filename characters with underscores.
func sanitize(s string) string {
	if s == "" {
		return "unknown"
	}
	return unsafeChars.ReplaceAllString(s, "_")
}

// OutputDir returns the folder attachments for video are written to when
// no directory is given: {videoDir}/{videoName}-annotations for local files,
// ./{videoName}-annotations otherwise.
func OutputDir(video review.Video) string {
	name := sanitize(strings.TrimSuffix(video.Title(), filepath.Ext(video.Title())))
	dir := "."
	if filepath.IsAbs(video.URL) {
		dir = filepath.Dir(video.URL)
	}
	return filepath.Join(dir, name+"-annotations")
}

// AttachmentPath returns where c's attachment is written.
// Format: {dir}/{hhmmss}-{author}-{id}.{ext}
func AttachmentPath(dir string, c review.Comment, ext string) string {
	total := int(math.Floor(math.Max(c.TimestampSeconds, 0)))
	hhmmss := fmt.Sprintf("%02d%02d%02d", total/3600, (total%3600)/60, total%60)
	return filepath.Join(dir, fmt.Sprintf("%s-%s-%d.%s", hhmmss, sanitize(c.Author), c.ID, ext))
}

// DecodeDataURL returns the payload and file extension of a
// data:image/<type>;base64 URL.
func DecodeDataURL(uri string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, "", ErrNotDataURL
	}
	ext := strings.TrimSuffix(strings.TrimPrefix(header, "data:image/"), ";base64")
	if ext == "jpeg" {
		ext = "jpg"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("export: decode attachment: %w", err)
	}
	return data, sanitize(ext), nil
}

// Result lists what Attachments wrote and skipped.
type Result struct {
	Written []string
	// Skipped holds comments whose attachment is a link, not an image.
	Skipped []int64
}

// Attachments writes every embedded attachment in comments to dir,
// creating it if needed. Existing files are overwritten.
func Attachments(dir string, comments []review.Comment) (Result, error) {
	var res Result
	for _, c := range comments {
		if !c.HasAttachment() {
			continue
		}
		data, ext, err := DecodeDataURL(c.AttachmentURL)
		if errors.Is(err, ErrNotDataURL) {
			res.Skipped = append(res.Skipped, c.ID)
			continue
		}
		if err != nil {
			return res, fmt.Errorf("comment %d: %w", c.ID, err)
		}

		if err := os.MkdirAll(dir, 0755); err != nil {
			return res, fmt.Errorf("failed to create output directory: %w", err)
		}
		path := AttachmentPath(dir, c, ext)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return res, fmt.Errorf("failed to write %s: %w", path, err)
		}
		res.Written = append(res.Written, path)
	}
	return res, nil
}
