// Package websocket mirrors the file feed over WebSocket connections.
// Clients share the events.Registry with the SSE endpoint, so every
// broadcast reaches both transports.
package websocket

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/shotwatch/internal/server/events"
	"github.com/agentstation/shotwatch/internal/server/lifecycle"
)

// Handler upgrades requests and registers each connection as a subscriber.
type Handler struct {
	registry *events.Registry
	tracker  *lifecycle.Tracker
	done     <-chan struct{}
	upgrader websocket.Upgrader
	logger   *zerolog.Logger
}

// NewHandler creates a WebSocket handler. Any origin is accepted, matching
// the CORS policy of the SSE endpoint. tracker may be nil.
func NewHandler(registry *events.Registry, tracker *lifecycle.Tracker, done <-chan struct{}, logger *zerolog.Logger) *Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Handler{
		registry: registry,
		tracker:  tracker,
		done:     done,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the connection and blocks until it ends.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	logger := h.logger.With().
		Str("subscriber_id", id).
		Str("remote_addr", r.RemoteAddr).
		Logger()

	lc := context.WithoutCancel(r.Context())
	conn := h.tracker.New(id, &logger)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		_ = conn.Deregister(lc)
		return
	}

	client := NewClient(conn, ws, &logger)
	if err := conn.Register(lc); err != nil {
		logger.Error().Err(err).Msg("WebSocket client registration failed")
		_ = conn.Deregister(lc)
		_ = ws.Close()
		return
	}
	h.registry.Add(client)

	defer func() {
		_ = client.Close()
		if err := client.Release(lc); err != nil {
			logger.Debug().Err(err).Msg("WebSocket client already released")
			return
		}
		h.registry.Remove(client)
		logger.Debug().Msg("WebSocket client deregistered")
	}()

	peerGone := make(chan struct{})
	go func() {
		defer close(peerGone)
		client.readPump()
	}()
	go client.pingLoop()

	_ = conn.Open(lc)
	logger.Info().Msg("WebSocket client connected")

	select {
	case <-peerGone:
		logger.Debug().Msg("WebSocket client disconnected")
	case <-client.Done():
		logger.Debug().Msg("WebSocket client closed by broadcaster")
	case <-h.done:
		logger.Debug().Msg("Server shutting down, closing WebSocket")
	}
}
