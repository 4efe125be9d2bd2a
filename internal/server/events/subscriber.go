package events

// Subscriber is one connected streaming client.
// Implementations adapt a transport connection (SSE response, WebSocket)
// to the broadcast engine. Identity is the value itself, so implementations
// must be pointer types.
type Subscriber interface {
	// ID is a stable identifier used in logs.
	ID() string

	// Send writes one frame. It must be safe to call concurrently with
	// Close and must return an error once the connection is gone.
	Send(Frame) error

	// Close ends the connection. It must be idempotent.
	Close() error
}
