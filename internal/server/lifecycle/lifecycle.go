// Package lifecycle tracks the state of one streaming connection.
//
// Every SSE or WebSocket connection walks the same path:
//
//	connecting -> registered -> open -> closing -> deregistered
//
// Deregistration is reachable from any earlier state so that a connection
// which fails half way through setup still ends in a terminal state. It can
// only happen once; the caller that wins the transition owns the cleanup.
package lifecycle

import (
	"context"
	"sync"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"
)

// States.
const (
	Connecting   = "connecting"
	Registered   = "registered"
	Open         = "open"
	Closing      = "closing"
	Deregistered = "deregistered"
)

// Events.
const (
	EventRegister   = "register"
	EventOpen       = "open"
	EventClose      = "close"
	EventDeregister = "deregister"
)

// Connection is the state machine for one client connection.
type Connection struct {
	id  string
	fsm *fsm.FSM
}

// New returns an untracked machine in the Connecting state. Transitions are
// logged at trace level on logger, which may be nil.
func New(id string, logger *zerolog.Logger) *Connection {
	return newConnection(id, nil, logger)
}

func newConnection(id string, tracker *Tracker, logger *zerolog.Logger) *Connection {
	c := &Connection{id: id}
	c.fsm = fsm.NewFSM(
		Connecting,
		fsm.Events{
			{Name: EventRegister, Src: []string{Connecting}, Dst: Registered},
			{Name: EventOpen, Src: []string{Registered}, Dst: Open},
			{Name: EventClose, Src: []string{Registered, Open}, Dst: Closing},
			{Name: EventDeregister, Src: []string{Connecting, Registered, Open, Closing}, Dst: Deregistered},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				tracker.move(e.Src, e.Dst)
				if logger == nil {
					return
				}
				logger.Trace().
					Str("subscriber_id", id).
					Str("from", e.Src).
					Str("to", e.Dst).
					Msg("Connection state changed")
			},
		},
	)
	return c
}

// ID returns the connection id.
func (c *Connection) ID() string {
	return c.id
}

// Register marks the subscriber as added to the registry.
func (c *Connection) Register(ctx context.Context) error {
	return c.fsm.Event(ctx, EventRegister)
}

// Open marks the stream as ready to receive frames.
func (c *Connection) Open(ctx context.Context) error {
	return c.fsm.Event(ctx, EventOpen)
}

// Close marks the start of teardown. It fails if teardown already started.
func (c *Connection) Close(ctx context.Context) error {
	return c.fsm.Event(ctx, EventClose)
}

// Deregister marks the subscriber as removed from the registry. It fails
// with fsm.InvalidEventError if the connection is already deregistered.
func (c *Connection) Deregister(ctx context.Context) error {
	return c.fsm.Event(ctx, EventDeregister)
}

// Accepting reports whether frames may still be written.
func (c *Connection) Accepting() bool {
	state := c.fsm.Current()
	return state == Registered || state == Open
}

// Current returns the current state.
func (c *Connection) Current() string {
	return c.fsm.Current()
}

// Is reports whether the connection is in state.
func (c *Connection) Is(state string) bool {
	return c.fsm.Is(state)
}

// Tracker counts live connections by state. A nil *Tracker is valid and
// counts nothing.
type Tracker struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{counts: make(map[string]int)}
}

// New returns a machine in the Connecting state whose transitions are
// reflected in the tracker's counts.
func (t *Tracker) New(id string, logger *zerolog.Logger) *Connection {
	t.move("", Connecting)
	return newConnection(id, t, logger)
}

// Counts returns the number of connections in each live state. Every live
// state is present, zero or not; deregistered connections are not counted.
func (t *Tracker) Counts() map[string]int {
	out := map[string]int{Connecting: 0, Registered: 0, Open: 0, Closing: 0}
	if t == nil {
		return out
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for state, n := range t.counts {
		out[state] = n
	}
	return out
}

// Live returns the number of connections not yet deregistered.
func (t *Tracker) Live() int {
	n := 0
	for _, c := range t.Counts() {
		n += c
	}
	return n
}

func (t *Tracker) move(from, to string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if from != "" {
		t.counts[from]--
		if t.counts[from] <= 0 {
			delete(t.counts, from)
		}
	}
	if to != Deregistered {
		t.counts[to]++
	}
}
