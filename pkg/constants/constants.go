// Package constants provides shared constants used throughout shotwatch.
// This includes default bind address, timeouts, buffer sizes and file
// permissions that should be consistent across the application.
package constants

import "time"

// Application identity
const (
	// AppName is used for the binary name, env prefix and log fields
	AppName = "shotwatch"

	// EnvPrefix prefixes every environment override (SHOTWATCH_...)
	EnvPrefix = "SHOTWATCH"

	// SettingsFile is the configuration file searched for at startup
	SettingsFile = "appsettings"

	// SettingsSection is the top-level section holding all keys
	SettingsSection = "ApplicationSettings"
)

// Network defaults
const (
	// DefaultHost is bound when the configured host is not a valid IP
	DefaultHost = "127.0.0.1"

	// DefaultPort is bound when the configured port is outside 1..65535
	DefaultPort = 7543

	// StreamPath is the route serving the event stream
	StreamPath = "/map"

	// WebSocketSuffix is appended to StreamPath for the WebSocket mirror
	WebSocketSuffix = "/ws"
)

// Timeout constants
const (
	// DefaultDeleteDelay is how long a detected file lives after broadcast
	DefaultDeleteDelay = 3 * time.Second

	// FrameWriteTimeout bounds a single frame write to one subscriber
	FrameWriteTimeout = 10 * time.Second

	// ShutdownTimeout is the drain budget on SIGINT/SIGTERM
	ShutdownTimeout = 5 * time.Second

	// ReadHeaderTimeout guards against slow request headers
	ReadHeaderTimeout = 10 * time.Second

	// IdleTimeout closes idle keep-alive connections
	IdleTimeout = 120 * time.Second
)

// Limit constants
const (
	// EventBufferSize is the watcher output channel capacity
	EventBufferSize = 64
)

// Hotkey automation defaults
const (
	// KeyPollInterval is how often the toggle key state is sampled
	KeyPollInterval = 50 * time.Millisecond
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// WatchSubpath is joined onto the user's Documents folder to form the
// default watched folder.
var WatchSubpath = []string{"Escape from Tarkov", "Screenshots"}
