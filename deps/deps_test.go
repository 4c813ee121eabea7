package deps

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_Missing(t *testing.T) {
	orig := lookPath
	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	t.Cleanup(func() { lookPath = orig })

	err := CheckMpv()
	var depErr *DependencyError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, "mpv", depErr.Name)
	assert.Contains(t, err.Error(), MpvInstallURL)

	st := Inspect(context.Background(), Mpv)
	assert.Error(t, st.Err)
	assert.Empty(t, st.Path)
}

func TestInspect_Found(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no sh in PATH")
	}
	tool := Tool{Name: "sh"}
	orig := lookPath
	lookPath = func(string) (string, error) { return sh, nil }
	t.Cleanup(func() { lookPath = orig })

	st := Inspect(context.Background(), tool)
	assert.Equal(t, sh, st.Path)
	assert.NoError(t, st.Err)
	assert.Empty(t, st.Version)
	assert.NoError(t, Check(tool))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "mpv 0.38.0 Copyright", firstLine([]byte("mpv 0.38.0 Copyright\nbuilt on ...\n")))
	assert.Equal(t, "", firstLine(nil))
}
