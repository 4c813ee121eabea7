package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.TraceLevel, ParseLevel("TRACE"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("Error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info().Msg("hidden")
	logger.Warn().Str("component", "mpv").Msg("socket gone")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "socket gone")
	assert.Contains(t, out, "component=mpv")
	assert.NotContains(t, out, "\x1b[", "no colour codes")
}

func TestOpenFile_RotatesExisting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	start := time.Date(2026, 10, 19, 8, 30, 5, 0, time.UTC)

	f, err := OpenFile(dir, "framereview", start)
	require.NoError(t, err)
	f.WriteString("first run\n")
	f.Close()
	assert.Equal(t, filepath.Join(dir, "framereview.20261019_083005.log"), f.Name())

	f, err = OpenFile(dir, "framereview", start)
	require.NoError(t, err)
	f.Close()

	old, err := os.ReadFile(f.Name() + ".old")
	require.NoError(t, err)
	assert.Equal(t, "first run\n", string(old))
}

func TestSetup_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	logger, closeFn, err := Setup(dir, "debug", "test")
	require.NoError(t, err)
	logger.Debug().Msg("hello")
	require.NoError(t, closeFn())

	matches, err := filepath.Glob(filepath.Join(dir, "test.*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "Logging to file")
}
