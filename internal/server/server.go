// Package server provides the HTTP server and event pipeline for shotwatch.
//
// The server consumes file-created events from a Source, fans each one out
// to every connected subscriber, then schedules the file for deletion.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/shotwatch/cmd/application"
	"github.com/agentstation/shotwatch/internal/metrics"
	"github.com/agentstation/shotwatch/internal/server/events"
	"github.com/agentstation/shotwatch/internal/server/lifecycle"
	"github.com/agentstation/shotwatch/internal/server/sse"
	ws "github.com/agentstation/shotwatch/internal/server/websocket"
	"github.com/agentstation/shotwatch/internal/sweeper"
	"github.com/agentstation/shotwatch/pkg/logging"
)

// Source produces file-created events. *watcher.Watcher satisfies it.
type Source interface {
	Events() <-chan events.FileCreatedEvent
	Folder() string
}

// Option configures a Server.
type Option func(*Server)

// WithFilesystem sets the filesystem used for deletion and readiness checks.
func WithFilesystem(fsys afero.Fs) Option {
	return func(s *Server) {
		s.fs = fsys
	}
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	app       application.Application
	source    Source
	fs        afero.Fs
	registry  *events.Registry
	tracker   *lifecycle.Tracker
	broker    *events.Broker
	sweeper   *sweeper.Sweeper
	metrics   *metrics.Metrics
	sse       *sse.Handler
	wsHandler *ws.Handler
	logger    *zerolog.Logger
	config    Config
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time

	startOnce  sync.Once
	stopOnce   sync.Once
	pumpDone   chan struct{}
	subsClosed chan struct{}
}

// New creates a new server instance with the given configuration.
func New(app application.Application, cfg Config, source Source, opts ...Option) (*Server, error) {
	base := app.Logger()
	logger := logging.Component(base, "server")

	logger.Debug().Msg("Creating new server instance")

	if cfg.StreamPath == "" {
		cfg.StreamPath = DefaultConfig().StreamPath
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		app:        app,
		source:     source,
		fs:         afero.NewOsFs(),
		registry:   events.NewRegistry(),
		tracker:    lifecycle.NewTracker(),
		logger:     logger,
		config:     cfg,
		ctx:        ctx,
		cancel:     cancel,
		startTime:  time.Now(),
		pumpDone:   make(chan struct{}),
		subsClosed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.metrics = metrics.New(s.registry.Len)

	logger.Debug().Msg("Creating event broker")
	s.broker = events.NewBroker(s.registry, s.metrics, logging.Component(base, "broker"))

	logger.Debug().Dur("delay", cfg.DeleteDelay).Msg("Creating sweeper")
	s.sweeper = sweeper.New(s.fs, cfg.DeleteDelay, s.metrics, logging.Component(base, "sweeper"))

	// Handlers end their streams when the server context is cancelled.
	s.sse = sse.NewHandler(s.registry, s.tracker, ctx.Done(), cfg.WriteTimeout, logging.Component(base, "sse"))
	if cfg.WebSocketEnabled {
		s.wsHandler = ws.NewHandler(s.registry, s.tracker, ctx.Done(), logging.Component(base, "websocket"))
	}

	logger.Debug().Msg("Server instance created successfully")
	return s, nil
}

// Start starts the event pump. Calling Start more than once has no effect.
func (s *Server) Start() {
	s.startOnce.Do(func() {
		if s.source == nil {
			s.logger.Warn().Msg("No event source configured")
			close(s.pumpDone)
			return
		}
		s.logger.Debug().Str("folder", s.source.Folder()).Msg("Starting event pump")
		go s.pump()
	})
}

// pump consumes source events one at a time so that every subscriber sees
// frames in detection order.
func (s *Server) pump() {
	defer close(s.pumpDone)

	in := s.source.Events()
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev, ok := <-in:
			if !ok {
				if s.ctx.Err() != nil {
					s.logger.Debug().Msg("Event source closed during shutdown")
				} else {
					s.logger.Warn().Msg("Event source closed, no further files will be published")
				}
				return
			}
			s.handleFile(ev)
		}
	}
}

// handleFile publishes one detected file and schedules its deletion.
func (s *Server) handleFile(ev events.FileCreatedEvent) events.Result {
	s.metrics.FileDetected()

	res := s.broker.OnEvent(s.ctx, ev)
	s.logger.Info().
		Str("file", ev.Name).
		Int("delivered", res.Delivered).
		Int("failed", res.Failed).
		Msg("File published")

	if ev.FullPath != "" {
		s.sweeper.Schedule(ev.FullPath)
	}
	return res
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown stops the pump, closes every subscriber and abandons pending
// deletions. It returns ctx.Err() if subscribers or the pump do not stop
// in time.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.logger.Info().Int("subscribers", s.registry.Len()).Msg("Shutting down server background services")
		s.cancel()
		go func() {
			defer close(s.subsClosed)
			s.registry.CloseAll()
		}()
		s.sweeper.Close()
	})

	// Start was never called.
	s.startOnce.Do(func() { close(s.pumpDone) })

	for _, done := range []<-chan struct{}{s.subsClosed, s.pumpDone} {
		select {
		case <-done:
		case <-ctx.Done():
			s.logger.Warn().Err(ctx.Err()).Msg("Background services shutdown timed out")
			return ctx.Err()
		}
	}
	s.logger.Info().Msg("Background services shut down successfully")
	return nil
}

// Context returns the server's base context. It is cancelled by Shutdown
// and is suitable for http.Server.BaseContext.
func (s *Server) Context() context.Context {
	return s.ctx
}

// Registry returns the subscriber registry.
func (s *Server) Registry() *events.Registry {
	return s.registry
}

// Connections returns the tracker counting stream connections by state.
func (s *Server) Connections() *lifecycle.Tracker {
	return s.tracker
}

// Broker returns the event broker.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// Metrics returns the server's metrics.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Config returns the server configuration.
func (s *Server) Config() Config {
	return s.config
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
