package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/agentstation/shotwatch/internal/server/handlers"
	"github.com/agentstation/shotwatch/internal/server/middleware"
	"github.com/agentstation/shotwatch/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()

	var wsHandler http.Handler
	if s.wsHandler != nil {
		wsHandler = s.wsHandler
	}

	h := handlers.New(handlers.Options{
		App:         s.app,
		Registry:    s.registry,
		Connections: s.tracker,
		Stream:      s.sse,
		WebSocket:   wsHandler,
		Fs:          s.fs,
		Folder:      s.folder(),
		Done:        s.ctx.Done(),
		StartTime:   s.startTime,
		Logger:      s.logger,
	})

	// Middleware must be registered before routes.
	s.applyMiddleware(r)
	s.registerRoutes(r, h)

	return r
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(r chi.Router, h *handlers.Handlers) {
	// Favicon handler (return 204 No Content to avoid 404 logs)
	r.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)

	// Real-time endpoints
	r.Get(s.config.StreamPath, h.HandleStream)
	if s.config.WebSocketEnabled {
		r.Get(s.config.WebSocketPath(), h.HandleWebSocket)
	}

	// Metrics endpoint (optional)
	if s.config.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, "Not found", "No route for "+req.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		response.MethodNotAllowed(w, req.Method)
	})
}

// applyMiddleware installs the middleware chain. CORS runs before routing
// so preflight requests are answered for every path.
func (s *Server) applyMiddleware(r chi.Router) {
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
		middleware.CORS(middleware.DefaultCORSConfig()),
	)
}

func (s *Server) folder() string {
	if s.source == nil {
		return ""
	}
	return s.source.Folder()
}
