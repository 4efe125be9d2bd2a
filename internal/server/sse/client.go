package sse

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/agentstation/shotwatch/internal/server/events"
	"github.com/agentstation/shotwatch/internal/server/lifecycle"
	"github.com/agentstation/shotwatch/pkg/errors"
)

// Client is one open event stream. It implements events.Subscriber.
//
// Close never waits for a write in progress: it moves the connection to
// closing and expires the write deadline so a stalled write returns early.
// Release waits for that write and deregisters the connection, after which
// nothing touches the response again.
type Client struct {
	conn         *lifecycle.Connection
	w            io.Writer
	rc           *http.ResponseController
	writeTimeout time.Duration

	// mu serialises writes.
	mu sync.Mutex
	// ctl guards deadline changes made by Close against Release.
	ctl  sync.Mutex
	done chan struct{}
}

var _ events.Subscriber = (*Client)(nil)

// NewClient wraps w. conn must be registered before frames are accepted.
// A zero writeTimeout disables per-frame deadlines.
func NewClient(conn *lifecycle.Connection, w http.ResponseWriter, writeTimeout time.Duration) *Client {
	return &Client{
		conn:         conn,
		w:            w,
		rc:           http.NewResponseController(w),
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
}

// ID returns the subscriber id.
func (c *Client) ID() string { return c.conn.ID() }

// State returns the connection state.
func (c *Client) State() string { return c.conn.Current() }

// Send writes the frame payload and flushes it to the network.
func (c *Client) Send(f events.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.conn.Accepting() {
		return errors.ErrSubscriberClosed
	}

	if c.writeTimeout > 0 {
		if err := c.rc.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return errors.WrapIO("deadline", "", err)
		}
		defer func() { _ = c.rc.SetWriteDeadline(time.Time{}) }()
		// Close may have run between the check above and the new deadline.
		if !c.conn.Accepting() {
			return errors.ErrSubscriberClosed
		}
	}

	if _, err := c.w.Write(f.Payload); err != nil {
		return errors.WrapIO("write", "", err)
	}
	if err := c.rc.Flush(); err != nil {
		return errors.WrapIO("flush", "", err)
	}
	return nil
}

// Close marks the stream finished, wakes the owning handler and interrupts
// a pending write. Calls after the first are no-ops.
func (c *Client) Close() error {
	if err := c.conn.Close(context.Background()); err != nil {
		return nil
	}
	close(c.done)

	c.ctl.Lock()
	defer c.ctl.Unlock()
	if c.conn.Is(lifecycle.Closing) {
		_ = c.rc.SetWriteDeadline(time.Now())
	}
	return nil
}

// Release waits for any write in progress and deregisters the connection.
// It fails if the connection was already deregistered, so exactly one
// caller performs the registry cleanup.
func (c *Client) Release(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctl.Lock()
	defer c.ctl.Unlock()
	return c.conn.Deregister(ctx)
}

// Done is closed once the client has been closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
