package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/shotwatch/internal/server/events"
	"github.com/agentstation/shotwatch/internal/server/lifecycle"
	"github.com/agentstation/shotwatch/pkg/errors"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed for the close frame at shutdown.
	closeWait = time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Client is one WebSocket connection. It implements events.Subscriber;
// each frame is sent as a text message carrying only the file name.
type Client struct {
	lc     *lifecycle.Connection
	conn   *websocket.Conn
	logger *zerolog.Logger

	// mu serialises data writes; control frames and Close may run
	// concurrently with them.
	mu   sync.Mutex
	done chan struct{}
}

var _ events.Subscriber = (*Client)(nil)

// NewClient wraps an upgraded connection. lc must be registered before
// frames are accepted.
func NewClient(lc *lifecycle.Connection, conn *websocket.Conn, logger *zerolog.Logger) *Client {
	return &Client{
		lc:     lc,
		conn:   conn,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// ID returns the subscriber id.
func (c *Client) ID() string { return c.lc.ID() }

// Send writes the file name as a text message.
func (c *Client) Send(f events.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lc.Accepting() {
		return errors.ErrSubscriberClosed
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(f.Name)); err != nil {
		return errors.WrapIO("write", "", err)
	}
	return nil
}

// Close sends a close frame and tears down the connection, which also
// unblocks a pending write. Calls after the first are no-ops.
func (c *Client) Close() error {
	if err := c.lc.Close(context.Background()); err != nil {
		return nil
	}
	close(c.done)

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait))
	return c.conn.Close()
}

// Release waits for any write in progress and deregisters the connection.
// It fails if the connection was already deregistered.
func (c *Client) Release(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lc.Deregister(ctx)
}

// Done is closed once the client has been closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// readPump consumes inbound frames so control messages (pong, close) are
// processed. It returns when the peer goes away.
func (c *Client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Str("subscriber_id", c.ID()).Msg("WebSocket read error")
			}
			return
		}
	}
}

// pingLoop keeps the connection alive until the client is closed.
func (c *Client) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
