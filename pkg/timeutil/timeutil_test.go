package timeutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{5.9, "0:05"},
		{750, "12:30"},
		{3723, "1:02:03"},
		{-4, "0:00"},
		{math.NaN(), "0:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTime(tt.in), "FormatTime(%v)", tt.in)
	}
	assert.Equal(t, "0:12 / 1:40", FormatProgress(12, 100))
}

func TestParseTimeToSeconds(t *testing.T) {
	valid := map[string]float64{
		"12.5":    12.5,
		"2:05":    125,
		"1:02:03": 3723,
		" 0:07 ":  7,
	}
	for in, want := range valid {
		got, err := ParseTimeToSeconds(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "1:75", "-3", "1:2:3:4", "1:-1"} {
		_, err := ParseTimeToSeconds(in)
		assert.Error(t, err, in)
	}
}
