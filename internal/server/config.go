package server

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/shotwatch/pkg/constants"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// Stream settings
	StreamPath       string
	WebSocketEnabled bool
	WriteTimeout     time.Duration // per-frame write deadline

	// Pipeline settings
	DeleteDelay time.Duration

	// HTTP timeouts. There is no response WriteTimeout; streams stay open
	// and each frame gets its own deadline instead.
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration

	// Features
	MetricsEnabled bool
}

// DefaultConfig returns server configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:              constants.DefaultHost,
		Port:              constants.DefaultPort,
		StreamPath:        constants.StreamPath,
		WebSocketEnabled:  false,
		WriteTimeout:      constants.FrameWriteTimeout,
		DeleteDelay:       constants.DefaultDeleteDelay,
		ReadHeaderTimeout: constants.ReadHeaderTimeout,
		IdleTimeout:       constants.IdleTimeout,
		MetricsEnabled:    true,
	}
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// WebSocketPath returns the route of the WebSocket mirror.
func (c Config) WebSocketPath() string {
	return c.StreamPath + constants.WebSocketSuffix
}

// ResolveBind validates a configured host and port. The host must parse as
// an IP address and the port as an integer in 1..65535; if either fails the
// pair falls back to the default bind together and ok is false.
func ResolveBind(host, port string) (string, int, bool) {
	host = strings.TrimSpace(host)
	ip := net.ParseIP(strings.Trim(host, "[]"))
	p, err := strconv.Atoi(strings.TrimSpace(port))
	if ip == nil || err != nil || p < 1 || p > 65535 {
		return constants.DefaultHost, constants.DefaultPort, false
	}
	return ip.String(), p, true
}
