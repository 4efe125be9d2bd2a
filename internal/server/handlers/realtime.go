package handlers

import (
	"net/http"

	"github.com/agentstation/shotwatch/internal/server/response"
)

// HandleStream handles GET /map, the Server-Sent Events feed of new file
// names.
func (h *Handlers) HandleStream(w http.ResponseWriter, r *http.Request) {
	h.stream.ServeHTTP(w, r)
}

// HandleWebSocket handles GET /map/ws, the WebSocket mirror of the feed.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.websocket == nil {
		response.NotFound(w, "WebSocket feed disabled", "")
		return
	}
	h.websocket.ServeHTTP(w, r)
}
