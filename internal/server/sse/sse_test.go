package sse

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/shotwatch/internal/server/events"
	"github.com/agentstation/shotwatch/internal/server/lifecycle"
	"github.com/agentstation/shotwatch/pkg/errors"
)

func registered(t *testing.T, id string) *lifecycle.Connection {
	t.Helper()
	conn := lifecycle.New(id, nil)
	require.NoError(t, conn.Register(context.Background()))
	return conn
}

// stalledWriter blocks every Write until release is closed.
type stalledWriter struct {
	*httptest.ResponseRecorder
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newStalledWriter() *stalledWriter {
	return &stalledWriter{
		ResponseRecorder: httptest.NewRecorder(),
		started:          make(chan struct{}),
		release:          make(chan struct{}),
	}
}

func (w *stalledWriter) Write(p []byte) (int, error) {
	w.once.Do(func() { close(w.started) })
	<-w.release
	return w.ResponseRecorder.Write(p)
}

func TestClient_Send(t *testing.T) {
	rec := httptest.NewRecorder()
	c := NewClient(registered(t, "c1"), rec, time.Second)

	require.NoError(t, c.Send(events.FormatFrame("photo.jpg")))
	require.NoError(t, c.Send(events.FormatFrame("next.jpg")))

	assert.Equal(t, "data: photo.jpg\n\ndata: next.jpg\n\n", rec.Body.String())
	assert.True(t, rec.Flushed)
	assert.Equal(t, "c1", c.ID())
}

func TestClient_SendBeforeRegister(t *testing.T) {
	rec := httptest.NewRecorder()
	c := NewClient(lifecycle.New("c1", nil), rec, 0)

	assert.True(t, errors.IsSubscriberClosed(c.Send(events.FormatFrame("photo.jpg"))))
	assert.Empty(t, rec.Body.String())
}

func TestClient_SendAfterClose(t *testing.T) {
	rec := httptest.NewRecorder()
	c := NewClient(registered(t, "c1"), rec, 0)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "idempotent")
	assert.Equal(t, lifecycle.Closing, c.State())

	err := c.Send(events.FormatFrame("photo.jpg"))
	assert.True(t, errors.IsSubscriberClosed(err))
	assert.Empty(t, rec.Body.String())

	select {
	case <-c.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestClient_CloseDoesNotWaitForStalledWrite(t *testing.T) {
	ctx := context.Background()
	w := newStalledWriter()
	c := NewClient(registered(t, "c1"), w, time.Second)

	sent := make(chan error, 1)
	go func() { sent <- c.Send(events.FormatFrame("shot1.png")) }()
	select {
	case <-w.started:
	case <-time.After(2 * time.Second):
		t.Fatal("write never started")
	}

	closed := make(chan struct{})
	go func() {
		_ = c.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close waited for the stalled write")
	}

	released := make(chan error, 1)
	go func() { released <- c.Release(ctx) }()
	select {
	case <-released:
		t.Fatal("Release returned while a write was in progress")
	case <-time.After(50 * time.Millisecond):
	}

	close(w.release)
	require.NoError(t, <-sent)
	select {
	case err := <-released:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Release did not return after the write finished")
	}

	assert.Equal(t, lifecycle.Deregistered, c.State())
	assert.Error(t, c.Release(ctx), "released only once")
}

type streamFixture struct {
	registry *events.Registry
	tracker  *lifecycle.Tracker
	broker   *events.Broker
	server   *httptest.Server
	done     chan struct{}
	once     sync.Once
}

func (f *streamFixture) shutdown() {
	f.once.Do(func() { close(f.done) })
}

func newStreamFixture(t *testing.T) *streamFixture {
	t.Helper()
	logger := zerolog.Nop()
	f := &streamFixture{
		registry: events.NewRegistry(),
		tracker:  lifecycle.NewTracker(),
		done:     make(chan struct{}),
	}
	f.broker = events.NewBroker(f.registry, nil, &logger)
	f.server = httptest.NewServer(NewHandler(f.registry, f.tracker, f.done, time.Second, &logger))
	t.Cleanup(f.server.Close)
	t.Cleanup(f.shutdown)
	return f
}

func (f *streamFixture) connect(t *testing.T, ctx context.Context) (*http.Response, *bufio.Reader) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.server.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp, bufio.NewReader(resp.Body)
}

func (f *streamFixture) waitForSubscribers(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return f.registry.Len() == n }, 2*time.Second, 10*time.Millisecond)
}

func readFrame(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	type result struct {
		frame string
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := r.ReadString('\n')
		if err != nil {
			ch <- result{err: err}
			return
		}
		blank, err := r.ReadString('\n')
		ch <- result{frame: data + blank, err: err}
	}()
	select {
	case res := <-ch:
		require.NoError(t, res.err)
		return res.frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return ""
	}
}

func TestHandler_StreamsFrames(t *testing.T) {
	f := newStreamFixture(t)
	resp, body := f.connect(t, context.Background())

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	f.waitForSubscribers(t, 1)
	res := f.broker.OnEvent(context.Background(), events.FileCreatedEvent{Name: "photo.jpg"})
	assert.Equal(t, 1, res.Delivered)

	assert.Equal(t, "data: photo.jpg\n\n", readFrame(t, body))
}

func TestHandler_DisconnectDeregisters(t *testing.T) {
	f := newStreamFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	_, _ = f.connect(t, ctx)
	f.waitForSubscribers(t, 1)

	cancel()
	f.waitForSubscribers(t, 0)
	assert.Zero(t, f.tracker.Live())

	res := f.broker.OnEvent(context.Background(), events.FileCreatedEvent{Name: "photo.jpg"})
	assert.Equal(t, events.Result{}, res)
}

func TestHandler_ShutdownEndsStreams(t *testing.T) {
	f := newStreamFixture(t)
	_, body := f.connect(t, context.Background())
	_, body2 := f.connect(t, context.Background())
	f.waitForSubscribers(t, 2)

	f.shutdown()
	f.waitForSubscribers(t, 0)

	for _, b := range []*bufio.Reader{body, body2} {
		_, err := io.ReadAll(b)
		assert.NoError(t, err, "stream ends cleanly")
	}
}

func TestHandler_TwoSubscribersBothReceive(t *testing.T) {
	f := newStreamFixture(t)
	_, a := f.connect(t, context.Background())
	_, b := f.connect(t, context.Background())
	f.waitForSubscribers(t, 2)

	f.broker.OnEvent(context.Background(), events.FileCreatedEvent{Name: "shot1.png"})

	assert.Equal(t, "data: shot1.png\n\n", readFrame(t, a))
	assert.Equal(t, "data: shot1.png\n\n", readFrame(t, b))
}
