// Package mpv drives an mpv process over its JSON IPC socket. The client is
// the player backend for the terminal reviewer: it implements transport
// control, frame read-back through screenshots, and a raw image overlay used
// to show annotations on top of the video.
package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultSocketPath is the default Unix socket path for mpv IPC.
	DefaultSocketPath = "/tmp/framereview-mpv.sock"

	// DefaultTimeout bounds a command when the caller's context has no
	// deadline.
	DefaultTimeout = 2 * time.Second
)

var (
	// ErrNotConnected is returned when attempting operations on a disconnected client.
	ErrNotConnected = errors.New("mpv: not connected")
	// ErrSocketNotFound is returned when the socket cannot be dialled.
	ErrSocketNotFound = errors.New("mpv: socket not found - is mpv running with --input-ipc-server?")
	// ErrPropertyUnavailable is returned for properties mpv cannot report
	// yet, such as time-pos before a file is loaded.
	ErrPropertyUnavailable = errors.New("mpv: property unavailable")
)

// ipcRequest is a JSON IPC request to mpv.
type ipcRequest struct {
	Command   []any  `json:"command"`
	RequestID uint64 `json:"request_id"`
}

// ipcResponse is a JSON IPC reply or event from mpv.
type ipcResponse struct {
	Data      any    `json:"data"`
	RequestID uint64 `json:"request_id"`
	Error     string `json:"error"`
	Event     string `json:"event"`
}

// Client is an mpv IPC client that communicates via Unix socket. Commands
// are serialised; replies are matched on request_id and events are skipped.
type Client struct {
	socketPath string
	logger     zerolog.Logger

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	nextID atomic.Uint64

	overlayMu   sync.Mutex
	overlayPath string
}

// NewClient creates a new mpv IPC client.
// If socketPath is empty, DefaultSocketPath is used.
func NewClient(socketPath string, logger zerolog.Logger) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	return &Client{
		socketPath: socketPath,
		logger:     logger.With().Str("component", "mpv").Logger(),
	}
}

// Connect establishes a connection to the mpv IPC socket.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSocketNotFound, err)
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.logger.Debug().Str("socket", c.socketPath).Msg("connected")
	return nil
}

// ConnectRetry keeps dialling until mpv has created its socket or ctx ends.
// mpv creates the socket a little after the process starts.
func (c *Client) ConnectRetry(ctx context.Context, interval time.Duration) error {
	for {
		err := c.Connect(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(interval):
		}
	}
}

// Close closes the connection to mpv.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}

// IsConnected returns true if the client is connected to mpv.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// SocketPath returns the socket path this client is configured to use.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// GetProperty retrieves the value of an mpv property such as "time-pos".
func (c *Client) GetProperty(ctx context.Context, name string) (any, error) {
	return c.Command(ctx, "get_property", name)
}

// SetProperty sets the value of an mpv property such as "pause".
func (c *Client) SetProperty(ctx context.Context, name string, value any) error {
	_, err := c.Command(ctx, "set_property", name, value)
	return err
}

func (c *Client) getFloat(ctx context.Context, name string) (float64, error) {
	v, err := c.GetProperty(ctx, name)
	if err != nil {
		return 0, err
	}
	return toFloat64(v)
}

func (c *Client) getBool(ctx context.Context, name string) (bool, error) {
	v, err := c.GetProperty(ctx, name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("mpv: unexpected %s value type: %T", name, v)
	}
	return b, nil
}

// toFloat64 converts a decoded JSON number to float64.
func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("mpv: unexpected numeric value type: %T", v)
	}
}

// Command sends {"command": [name, args...], "request_id": n} and waits for
// the matching reply. The context deadline, or DefaultTimeout, bounds both
// the write and the wait.
func (c *Client) Command(ctx context.Context, name string, args ...any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}

	cmd := make([]any, 0, len(args)+1)
	cmd = append(cmd, name)
	cmd = append(cmd, args...)
	req := ipcRequest{Command: cmd, RequestID: c.nextID.Add(1)}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("mpv: failed to marshal command: %w", err)
	}
	data = append(data, '\n')

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultTimeout)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("mpv: set deadline: %w", err)
	}

	if _, err := c.conn.Write(data); err != nil {
		return nil, c.fail(fmt.Errorf("mpv: failed to send %s: %w", name, err))
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			return nil, c.fail(fmt.Errorf("mpv: failed to read %s reply: %w", name, err))
		}

		var resp ipcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}
		if resp.Event != "" || resp.RequestID != req.RequestID {
			continue
		}
		switch resp.Error {
		case "", "success":
			return resp.Data, nil
		case "property unavailable":
			return nil, ErrPropertyUnavailable
		default:
			return nil, fmt.Errorf("mpv: %s: %s", name, resp.Error)
		}
	}
}

// fail drops a broken connection so the next Connect starts fresh. Timeouts
// keep the connection since a late reply is skipped by request_id.
func (c *Client) fail(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return err
	}
	c.logger.Warn().Err(err).Msg("connection lost")
	c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}
