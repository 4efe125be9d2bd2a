// Package events is the broadcast core of shotwatch.
//
// A Registry tracks the set of currently connected subscribers and a Broker
// fans each detected file out to a snapshot of that set. Transports (SSE,
// WebSocket) adapt their connections to the Subscriber interface and own
// their lifetime; the Registry only holds non-owning references.
package events

import (
	"strings"
	"time"
)

// FileCreatedEvent describes one file that appeared in the watched folder.
type FileCreatedEvent struct {
	Name       string    `json:"name"`
	FullPath   string    `json:"full_path"`
	DetectedAt time.Time `json:"detected_at"`
}

// Frame is one message ready for delivery. Payload is the SSE encoding of
// Name; transports that carry their own framing use Name directly.
type Frame struct {
	Name    string
	Payload []byte
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// FormatFrame builds the frame for a file name: exactly "data: <name>\n\n".
// The name is sent as detected, except that line breaks (legal in POSIX
// file names) are folded to spaces so a name can never split the frame.
func FormatFrame(name string) Frame {
	name = lineBreaks.Replace(name)
	payload := make([]byte, 0, len(name)+8)
	payload = append(payload, "data: "...)
	payload = append(payload, name...)
	payload = append(payload, '\n', '\n')
	return Frame{Name: name, Payload: payload}
}

// Result summarises one broadcast.
type Result struct {
	Delivered int
	Failed    int
}
