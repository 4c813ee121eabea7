package mpv

import (
	"context"
	"os"
	"os/exec"

	"github.com/user/framereview/deps"
)

// LaunchOptions configures the mpv process.
type LaunchOptions struct {
	// SocketPath is the IPC socket; DefaultSocketPath when empty.
	SocketPath string
	// Title sets the window title.
	Title string
	// Start is the initial position in seconds.
	Start float64
}

// Launch starts mpv paused on source (a file path or URL) with the IPC
// socket enabled. It checks that mpv is installed first. The returned
// command is killed when ctx is cancelled.
func Launch(ctx context.Context, source string, opts LaunchOptions) (*exec.Cmd, error) {
	if err := deps.CheckMpv(); err != nil {
		return nil, err
	}

	socket := opts.SocketPath
	if socket == "" {
		socket = DefaultSocketPath
	}
	// A stale socket from a crashed run would make mpv fail to listen.
	_ = os.Remove(socket)

	args := []string{
		"--input-ipc-server=" + socket,
		"--pause",
		"--keep-open=yes",
		"--force-window=yes",
		"--osd-level=0",
	}
	if opts.Title != "" {
		args = append(args, "--title="+opts.Title)
	}
	if opts.Start > 0 {
		args = append(args, "--start="+formatSeconds(opts.Start))
	}
	args = append(args, "--", source)

	cmd := exec.CommandContext(ctx, "mpv", args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return cmd, nil
}
