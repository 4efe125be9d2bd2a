package events

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// mockSubscriber records every frame it receives.
type mockSubscriber struct {
	id string

	mu     sync.Mutex
	frames []Frame
	closed bool

	failWith  error
	panicWith any
	onSend    func()
	closes    atomic.Int32
}

func newMockSubscriber(id string) *mockSubscriber {
	return &mockSubscriber{id: id}
}

func (m *mockSubscriber) ID() string { return m.id }

func (m *mockSubscriber) Send(f Frame) error {
	if m.onSend != nil {
		m.onSend()
	}
	if m.panicWith != nil {
		panic(m.panicWith)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if m.closed {
		return errors.New("closed")
	}
	m.frames = append(m.frames, f)
	return nil
}

func (m *mockSubscriber) Close() error {
	m.closes.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockSubscriber) payloads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.frames))
	for i, f := range m.frames {
		out[i] = string(f.Payload)
	}
	return out
}

func (m *mockSubscriber) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// countingRecorder implements Recorder.
type countingRecorder struct {
	delivered atomic.Int64
	failed    atomic.Int64
}

func (c *countingRecorder) FrameDelivered() { c.delivered.Add(1) }
func (c *countingRecorder) DeliveryFailed() { c.failed.Add(1) }

func subscriberIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("sub-%d", i)
	}
	return ids
}
