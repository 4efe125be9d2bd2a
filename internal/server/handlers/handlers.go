// Package handlers provides HTTP request handlers for the shotwatch server.
package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/shotwatch/cmd/application"
	"github.com/agentstation/shotwatch/internal/server/events"
	"github.com/agentstation/shotwatch/internal/server/lifecycle"
)

// Options carries the dependencies of Handlers.
type Options struct {
	App         application.Application
	Registry    *events.Registry
	Connections *lifecycle.Tracker
	Stream      http.Handler
	WebSocket   http.Handler // nil when the mirror is disabled
	Fs          afero.Fs
	Folder      string
	Done        <-chan struct{}
	StartTime   time.Time
	Logger      *zerolog.Logger
}

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	app         application.Application
	registry    *events.Registry
	connections *lifecycle.Tracker
	stream      http.Handler
	websocket   http.Handler
	fs          afero.Fs
	folder      string
	done        <-chan struct{}
	startTime   time.Time
	logger      *zerolog.Logger
}

// New creates a new Handlers instance.
func New(opts Options) *Handlers {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	if opts.StartTime.IsZero() {
		opts.StartTime = time.Now()
	}
	return &Handlers{
		app:         opts.App,
		registry:    opts.Registry,
		connections: opts.Connections,
		stream:      opts.Stream,
		websocket:   opts.WebSocket,
		fs:          opts.Fs,
		folder:      opts.Folder,
		done:        opts.Done,
		startTime:   opts.StartTime,
		logger:      opts.Logger,
	}
}

func (h *Handlers) subscribers() int {
	if h.registry == nil {
		return 0
	}
	return h.registry.Len()
}

func (h *Handlers) shuttingDown() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}
