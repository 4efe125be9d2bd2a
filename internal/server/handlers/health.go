package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/shotwatch/internal/server/response"
	"github.com/agentstation/shotwatch/pkg/constants"
	"github.com/agentstation/shotwatch/pkg/errors"
)

// HandleHealth handles GET /health (liveness check).
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	version := "dev"
	if h.app != nil {
		version = h.app.Version()
	}
	response.OK(w, map[string]any{
		"status":      "healthy",
		"service":     constants.AppName,
		"version":     version,
		"uptime":      time.Since(h.startTime).Round(time.Second).String(),
		"subscribers": h.subscribers(),
		"connections": h.connections.Counts(),
	})
}

// HandleReady handles GET /ready.
// The server is ready while it is not shutting down and the watched folder
// exists as a directory.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	if h.shuttingDown() {
		response.ServiceUnavailable(w, "Server is shutting down")
		return
	}

	info, err := h.fs.Stat(h.folder)
	if err != nil {
		response.ErrorFromType(w, errors.NewWatchError(h.folder, "stat", err))
		return
	}
	if !info.IsDir() {
		response.ErrorFromType(w, errors.NewWatchError(h.folder, "stat", errors.New("not a directory")))
		return
	}

	response.OK(w, map[string]any{
		"status":      "ready",
		"folder":      h.folder,
		"subscribers": h.subscribers(),
	})
}
