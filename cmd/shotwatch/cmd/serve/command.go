// Package serve provides the serve command: watch the screenshot folder and
// stream new file names to map clients.
package serve

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/shotwatch/cmd/application"
	"github.com/agentstation/shotwatch/internal/autopress"
	"github.com/agentstation/shotwatch/internal/folders"
	"github.com/agentstation/shotwatch/internal/matcher"
	"github.com/agentstation/shotwatch/internal/server"
	"github.com/agentstation/shotwatch/internal/watcher"
	"github.com/agentstation/shotwatch/pkg/constants"
	"github.com/agentstation/shotwatch/pkg/errors"
	"github.com/agentstation/shotwatch/pkg/logging"
)

// NewCommand creates the serve command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Watch the screenshot folder and stream new files",
		Long: `Watch the screenshot folder and announce every new file over
Server-Sent Events.

Endpoints:
  - GET /map      text/event-stream, one "data: <file name>" frame per file
  - GET /map/ws   WebSocket mirror of the same feed (--websocket)
  - GET /health   liveness
  - GET /ready    readiness (watched folder present)
  - GET /metrics  Prometheus metrics (--metrics)

Each detected file is deleted after --delete-delay. Host and port come from
ApplicationSettings; an invalid host or port falls back to 127.0.0.1:7543.`,
		Example: `  # Serve with settings from appsettings.json
  shotwatch serve

  # Watch a different folder and keep files for 10 seconds
  shotwatch serve --folder ./shots --delete-delay 10s

  # Listen on all interfaces with the WebSocket mirror enabled
  shotwatch serve --host 0.0.0.0 --port 8080 --websocket`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, args, app)
		},
	}

	cmd.Flags().String("host", "", "Bind address (IP literal)")
	cmd.Flags().String("port", "", "Bind port (1-65535)")
	cmd.Flags().String("folder", "", "Folder to watch (default <Documents>/Escape from Tarkov/Screenshots)")
	cmd.Flags().String("pattern", "", "Only publish files matching these globs or regexes (comma-separated)")
	cmd.Flags().Duration("delete-delay", constants.DefaultDeleteDelay, "Delay before a detected file is deleted")
	cmd.Flags().Bool("websocket", false, "Enable the WebSocket mirror at /map/ws")
	cmd.Flags().Bool("metrics", true, "Enable metrics endpoint")

	return cmd
}

// runServer starts the watcher, the server and the optional hotkey helper.
func runServer(cmd *cobra.Command, _ []string, app application.Application) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := app.Logger()

	settings := applyFlags(cmd, app.Settings())
	cfg := buildServerConfig(settings, logger)

	folder, err := folders.Resolve(settings.WatchFolder)
	if err != nil {
		logger.Error().Err(err).Msg("Cannot determine watch folder")
		return err
	}

	filter, err := matcher.NewSet(matcher.SplitList(settings.FilePattern))
	if err != nil {
		logger.Error().Err(err).Str("pattern", settings.FilePattern).Msg("Invalid file pattern")
		return err
	}

	w, err := startWatcher(ctx, folder, filter, logger)
	if err != nil {
		logger.Error().Err(err).Str("folder", folder).Msg("Failed to start watcher")
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.Warn().Err(err).Msg("Watcher close failed")
		}
	}()

	logger.Info().
		Str("folder", w.Folder()).
		Strs("patterns", filter.Patterns()).
		Str("addr", cfg.Addr()).
		Dur("delete_delay", cfg.DeleteDelay).
		Bool("websocket", cfg.WebSocketEnabled).
		Bool("metrics", cfg.MetricsEnabled).
		Msg("Starting shotwatch server")

	srv, err := server.New(app, cfg, w)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Start()

	autoCtx, stopAuto := context.WithCancel(ctx)
	waitAuto := startAutopress(autoCtx, settings.Autopress, logger)
	defer func() {
		stopAuto()
		waitAuto()
	}()

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return srv.Context() },
	}

	return startWithGracefulShutdown(ctx, httpServer, srv, logger)
}

// startWatcher starts the folder watcher. It is detached from ctx
// cancellation: on a signal the server stops consuming first and the
// watcher is closed afterwards by the caller.
func startWatcher(ctx context.Context, folder string, filter watcher.Filter, logger *zerolog.Logger) (*watcher.Watcher, error) {
	return watcher.Start(context.WithoutCancel(ctx), folder, watcher.Options{
		Buffer: constants.EventBufferSize,
		Filter: filter,
		Logger: logging.Component(logger, "watcher"),
	})
}

// applyFlags overrides settings with flags that were set explicitly.
func applyFlags(cmd *cobra.Command, s application.Settings) application.Settings {
	flags := cmd.Flags()
	if flags.Changed("host") {
		s.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		s.Port, _ = flags.GetString("port")
	}
	if flags.Changed("folder") {
		s.WatchFolder, _ = flags.GetString("folder")
	}
	if flags.Changed("pattern") {
		s.FilePattern, _ = flags.GetString("pattern")
	}
	if flags.Changed("delete-delay") {
		s.DeleteDelay, _ = flags.GetDuration("delete-delay")
	}
	if flags.Changed("websocket") {
		s.WebSocket, _ = flags.GetBool("websocket")
	}
	if flags.Changed("metrics") {
		s.Metrics, _ = flags.GetBool("metrics")
	}
	return s
}

// buildServerConfig resolves the bind address and maps settings onto the
// server configuration.
func buildServerConfig(s application.Settings, logger *zerolog.Logger) server.Config {
	cfg := server.DefaultConfig()

	host, port, ok := server.ResolveBind(s.Host, s.Port)
	if !ok {
		logger.Warn().
			Str("host", s.Host).
			Str("port", s.Port).
			Str("fallback", cfg.Addr()).
			Msg("Invalid host or port, using default bind address")
	}
	cfg.Host = host
	cfg.Port = port

	// Zero deletes right after the broadcast.
	if s.DeleteDelay >= 0 {
		cfg.DeleteDelay = s.DeleteDelay
	} else {
		logger.Warn().
			Dur("delete_delay", s.DeleteDelay).
			Dur("fallback", cfg.DeleteDelay).
			Msg("Negative delete delay, using default")
	}
	cfg.WebSocketEnabled = s.WebSocket
	cfg.MetricsEnabled = s.Metrics

	return cfg
}

// startAutopress starts the hotkey helper when it is configured. Any
// problem disables only the helper. The returned func waits for it to stop.
func startAutopress(ctx context.Context, raw autopress.Raw, logger *zerolog.Logger) func() {
	noop := func() {}

	if !raw.Configured() {
		logger.Debug().Msg("Hotkey automation not configured")
		return noop
	}

	settings, err := autopress.ParseSettings(raw)
	if err != nil {
		logger.Error().Err(err).Msg("Hotkey automation disabled: invalid settings")
		return noop
	}

	desktop, err := autopress.NewDesktop()
	if err != nil {
		if errors.IsUnsupported(err) {
			logger.Warn().Err(err).Msg("Hotkey automation disabled on this platform")
		} else {
			logger.Error().Err(err).Msg("Hotkey automation disabled")
		}
		return noop
	}

	return runScheduler(ctx, autopress.NewScheduler(settings, desktop, logging.Component(logger, "autopress")))
}

func runScheduler(ctx context.Context, s *autopress.Scheduler) func() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return func() { <-done }
}

// startWithGracefulShutdown starts the HTTP server with graceful shutdown.
// The context is used to detect shutdown signals; when cancelled, the server
// shuts down gracefully.
func startWithGracefulShutdown(ctx context.Context, httpServer *http.Server, srv *server.Server, logger *zerolog.Logger) error {
	serverErr := make(chan error, 1)

	go func() {
		logger.Info().
			Str("addr", httpServer.Addr).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		logger.Error().Err(err).Msg("HTTP server failed")
		_ = srv.Shutdown(context.Background())
		return err
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received via context")

		// The parent context is already cancelled.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()

		// Streams only end once the server context is cancelled, so
		// background services go first.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Background services shutdown had issues")
		}

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("HTTP server did not drain in time")
			_ = httpServer.Close()
		}

		logger.Info().Dur("uptime", time.Since(srv.StartTime())).Msg("Server stopped gracefully")
		return nil
	}
}
