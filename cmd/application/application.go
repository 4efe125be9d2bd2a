// Package application provides the application interface for shotwatch commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            settings := app.Settings()
//	            app.Logger().Info().Str("folder", settings.WatchFolder).Msg("Starting")
//	            return nil
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{}
//	cmd := NewCommand(mock)
package application

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/shotwatch/internal/autopress"
)

// Settings is the effective ApplicationSettings section after config file,
// environment and flag overrides.
type Settings struct {
	Host        string        `yaml:"host"`
	Port        string        `yaml:"port"`
	WatchFolder string        `yaml:"watch_folder"`
	FilePattern string        `yaml:"file_pattern,omitempty"`
	DeleteDelay time.Duration `yaml:"delete_delay"`
	WebSocket   bool          `yaml:"websocket"`
	Metrics     bool          `yaml:"metrics"`
	Autopress   autopress.Raw `yaml:"autopress"`
}

// Application provides the application interface that commands need.
// The App struct from cmd/shotwatch/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Settings returns the effective application settings.
	Settings() Settings

	// Logger returns the configured logger instance.
	// Commands should use this for all logging operations.
	Logger() *zerolog.Logger

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}

// Mock is an Application for tests. Nil funcs fall back to zero values
// and a no-op logger.
type Mock struct {
	SettingsFunc func() Settings
	LoggerFunc   func() *zerolog.Logger
	VersionFunc  func() string
}

// Settings implements Application.
func (m *Mock) Settings() Settings {
	if m.SettingsFunc != nil {
		return m.SettingsFunc()
	}
	return Settings{}
}

// Logger implements Application.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// Version implements Application.
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit implements Application.
func (m *Mock) Commit() string { return "none" }

// Date implements Application.
func (m *Mock) Date() string { return "unknown" }

// BuiltBy implements Application.
func (m *Mock) BuiltBy() string { return "test" }
