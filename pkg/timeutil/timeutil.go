package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatTime formats seconds as M:SS below an hour and H:MM:SS above
// (e.g. 0:05, 12:30, 1:02:03). Fractions are truncated; negative and NaN
// values show as 0:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	hours := total / 3600
	mins := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// FormatProgress renders "current / duration".
func FormatProgress(current, duration float64) string {
	return FormatTime(current) + " / " + FormatTime(duration)
}

// ParseTimeToSeconds parses H:MM:SS, M:SS, or raw seconds. Minute and
// second fields after the first must be below 60.
func ParseTimeToSeconds(timeStr string) (float64, error) {
	s := strings.TrimSpace(timeStr)
	parts := strings.Split(s, ":")
	if len(parts) > 3 || s == "" {
		return 0, fmt.Errorf("expected H:MM:SS, M:SS, or seconds, got '%s'", timeStr)
	}

	if len(parts) == 1 {
		secs, err := strconv.ParseFloat(s, 64)
		if err != nil || secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, fmt.Errorf("expected H:MM:SS, M:SS, or seconds, got '%s'", timeStr)
		}
		return secs, nil
	}

	var total float64
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || (i > 0 && n >= 60) {
			return 0, fmt.Errorf("expected H:MM:SS, M:SS, or seconds, got '%s'", timeStr)
		}
		total = total*60 + float64(n)
	}
	return total, nil
}
