package autopress

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/agentstation/shotwatch/pkg/constants"
)

// Scheduler runs the toggle watcher and the press loop.
type Scheduler struct {
	settings Settings
	desktop  Desktop
	logger   *zerolog.Logger

	enabled atomic.Bool

	pollInterval time.Duration
	jitterN      func(n int64) int64
}

// NewScheduler creates a disabled scheduler.
func NewScheduler(settings Settings, desktop Desktop, logger *zerolog.Logger) *Scheduler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Scheduler{
		settings:     settings,
		desktop:      desktop,
		logger:       logger,
		pollInterval: constants.KeyPollInterval,
		jitterN:      rand.Int64N,
	}
}

// Enabled reports whether key presses are currently being sent.
func (s *Scheduler) Enabled() bool {
	return s.enabled.Load()
}

// Run blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info().
		Stringer("toggle_key", s.settings.ToggleKey).
		Stringer("trigger_key", s.settings.TriggerKey).
		Str("target_window", s.settings.TargetWindowTitle).
		Dur("interval", s.settings.Interval).
		Dur("jitter", s.settings.Jitter).
		Msg("Key press scheduler started")

	var wg conc.WaitGroup
	wg.Go(func() { s.watchToggle(ctx) })
	wg.Go(func() { s.pressLoop(ctx) })
	wg.Wait()
}

// watchToggle flips the enabled flag on each fresh press of the toggle key
// made while the target window is focused.
func (s *Scheduler) watchToggle(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	wasDown := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		down, err := s.desktop.KeyDown(s.settings.ToggleKey)
		if err != nil {
			s.logger.Debug().Err(err).Msg("Failed to read toggle key state")
			continue
		}
		if down && !wasDown && s.targetActive() {
			enabled := !s.enabled.Load()
			s.enabled.Store(enabled)
			status := "disabled"
			if enabled {
				status = "enabled"
			}
			s.logger.Info().Str("status", status).Msg("Key press scheduler toggled")
		}
		wasDown = down
	}
}

func (s *Scheduler) pressLoop(ctx context.Context) {
	timer := time.NewTimer(s.nextDelay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if s.enabled.Load() && s.targetActive() {
			if err := s.desktop.Press(s.settings.TriggerKey); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to send key press")
			}
		}
		timer.Reset(s.nextDelay())
	}
}

// nextDelay is Interval plus a uniform offset in [-Jitter, Jitter),
// never negative.
func (s *Scheduler) nextDelay() time.Duration {
	d := s.settings.Interval
	if j := int64(s.settings.Jitter); j > 0 {
		d += time.Duration(s.jitterN(2*j) - j)
	}
	if d < 0 {
		return 0
	}
	return d
}

// targetActive reports whether the focused window's title contains the
// configured title.
func (s *Scheduler) targetActive() bool {
	title, err := s.desktop.ForegroundWindowTitle()
	if err != nil {
		return false
	}
	return strings.Contains(title, s.settings.TargetWindowTitle)
}
