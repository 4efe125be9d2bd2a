// Package sse serves the file feed as a Server-Sent Events stream.
//
// Each request becomes a Client registered with the shared events.Registry
// for as long as the request lives. The only frame ever written is
// "data: <file name>\n\n"; there are no comments, ids, retry hints or
// heartbeats.
package sse

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/shotwatch/internal/server/events"
	"github.com/agentstation/shotwatch/internal/server/lifecycle"
	"github.com/agentstation/shotwatch/pkg/errors"
)

// Handler serves one SSE stream per request.
type Handler struct {
	registry     *events.Registry
	tracker      *lifecycle.Tracker
	done         <-chan struct{}
	writeTimeout time.Duration
	logger       *zerolog.Logger
}

// NewHandler creates a stream handler. Closing done ends every open stream.
// tracker may be nil.
func NewHandler(registry *events.Registry, tracker *lifecycle.Tracker, done <-chan struct{}, writeTimeout time.Duration, logger *zerolog.Logger) *Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Handler{
		registry:     registry,
		tracker:      tracker,
		done:         done,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// ServeHTTP registers the caller as a subscriber and blocks until the
// client disconnects, the server shuts down, or a write to the client fails.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	logger := h.logger.With().
		Str("subscriber_id", id).
		Str("remote_addr", r.RemoteAddr).
		Logger()

	// Transitions must still run after the request context is cancelled.
	lc := context.WithoutCancel(r.Context())
	conn := h.tracker.New(id, &logger)

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := http.NewResponseController(w).Flush(); err != nil {
		logger.Error().Err(err).Msg("Streaming not supported by response writer")
		_ = conn.Deregister(lc)
		return
	}

	client := NewClient(conn, w, h.writeTimeout)
	if err := conn.Register(lc); err != nil {
		logger.Error().Err(err).Msg("SSE client registration failed")
		_ = conn.Deregister(lc)
		return
	}
	h.registry.Add(client)

	defer func() {
		_ = client.Close()
		if err := client.Release(lc); err != nil {
			logger.Debug().Err(err).Msg("SSE client already released")
			return
		}
		h.registry.Remove(client)
		logger.Debug().Msg("SSE client deregistered")
	}()

	_ = conn.Open(lc)
	logger.Info().Msg("SSE client connected")

	select {
	case <-r.Context().Done():
		if err := r.Context().Err(); errors.IsCanceled(err) {
			logger.Debug().Msg("SSE client disconnected")
		} else {
			logger.Warn().Err(err).Msg("SSE stream ended")
		}
	case <-client.Done():
		logger.Debug().Msg("SSE client closed by broadcaster")
	case <-h.done:
		logger.Debug().Msg("Server shutting down, closing SSE stream")
	}
}
