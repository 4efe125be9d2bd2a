package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/shotwatch/cmd/application"
	"github.com/agentstation/shotwatch/internal/server/events"
	"github.com/agentstation/shotwatch/internal/server/lifecycle"
	"github.com/agentstation/shotwatch/internal/server/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func newHandlers(fsys afero.Fs, done <-chan struct{}) *Handlers {
	return New(Options{
		App:         &application.Mock{VersionFunc: func() string { return "1.2.3" }},
		Registry:    events.NewRegistry(),
		Connections: lifecycle.NewTracker(),
		Stream: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
		Fs:     fsys,
		Folder: "/shots",
		Done:   done,
	})
}

func TestHandleHealth(t *testing.T) {
	h := newHandlers(afero.NewMemMapFs(), nil)
	rec := httptest.NewRecorder()

	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := decode(t, rec).Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "1.2.3", data["version"])
	assert.EqualValues(t, 0, data["subscribers"])
}

func TestHandleHealth_ConnectionStates(t *testing.T) {
	h := newHandlers(afero.NewMemMapFs(), nil)
	conn := h.connections.New("sub-1", nil)
	require.NoError(t, conn.Register(context.Background()))
	require.NoError(t, conn.Open(context.Background()))

	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	data, ok := decode(t, rec).Data.(map[string]any)
	require.True(t, ok)
	states, ok := data["connections"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, states[lifecycle.Open])
	assert.EqualValues(t, 0, states[lifecycle.Closing])
}

func TestHandleReady(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(afero.Fs)
		shutdown bool
		status   int
	}{
		{"folder present", func(fs afero.Fs) { _ = fs.MkdirAll("/shots", 0o755) }, false, http.StatusOK},
		{"folder missing", func(afero.Fs) {}, false, http.StatusServiceUnavailable},
		{"folder is a file", func(fs afero.Fs) { _ = afero.WriteFile(fs, "/shots", nil, 0o644) }, false, http.StatusServiceUnavailable},
		{"shutting down", func(fs afero.Fs) { _ = fs.MkdirAll("/shots", 0o755) }, true, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			tt.setup(fsys)
			done := make(chan struct{})
			if tt.shutdown {
				close(done)
			}

			rec := httptest.NewRecorder()
			newHandlers(fsys, done).HandleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.status, rec.Code)

			resp := decode(t, rec)
			if tt.status == http.StatusOK {
				assert.Nil(t, resp.Error)
			} else {
				require.NotNil(t, resp.Error)
				assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)
			}
		})
	}
}

func TestHandleStreamDelegates(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandlers(afero.NewMemMapFs(), nil).HandleStream(rec, httptest.NewRequest(http.MethodGet, "/map", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestHandleWebSocketDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandlers(afero.NewMemMapFs(), nil).HandleWebSocket(rec, httptest.NewRequest(http.MethodGet, "/map/ws", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
