package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/shotwatch/pkg/constants"
)

func TestResolveBind(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		port     string
		wantHost string
		wantPort int
		wantOK   bool
	}{
		{"valid", "0.0.0.0", "8080", "0.0.0.0", 8080, true},
		{"loopback default", "127.0.0.1", "7543", "127.0.0.1", 7543, true},
		{"ipv6", "::1", "9000", "::1", 9000, true},
		{"bracketed ipv6", "[::1]", "9000", "::1", 9000, true},
		{"whitespace", " 10.0.0.5 ", " 81 ", "10.0.0.5", 81, true},
		{"hostname rejected", "localhost", "8080", constants.DefaultHost, constants.DefaultPort, false},
		{"empty host", "", "8080", constants.DefaultHost, constants.DefaultPort, false},
		{"port zero", "0.0.0.0", "0", constants.DefaultHost, constants.DefaultPort, false},
		{"port too large", "0.0.0.0", "65536", constants.DefaultHost, constants.DefaultPort, false},
		{"port not a number", "0.0.0.0", "http", constants.DefaultHost, constants.DefaultPort, false},
		{"both invalid", "nope", "-1", constants.DefaultHost, constants.DefaultPort, false},
		{"max port", "127.0.0.1", "65535", "127.0.0.1", 65535, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, ok := ResolveBind(tt.host, tt.port)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPort, port)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestConfigAddr(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "127.0.0.1:7543", cfg.Addr())
	assert.Equal(t, "/map/ws", cfg.WebSocketPath())

	cfg.Host = "::1"
	cfg.Port = 9000
	assert.Equal(t, "[::1]:9000", cfg.Addr())
}
