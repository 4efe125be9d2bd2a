// Package autopress periodically presses a key while a chosen window is in
// the foreground. A toggle hotkey, pressed while that window is focused,
// switches the behaviour on and off.
//
// The feature is independent of the file feed: invalid settings or an
// unsupported platform disable it without affecting anything else.
package autopress

import (
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/shotwatch/pkg/errors"
)

// Raw holds the settings as read from configuration.
type Raw struct {
	ToggleKey         string `yaml:"toggle_key"`
	TriggerKey        string `yaml:"trigger_key"`
	TargetWindowTitle string `yaml:"target_window_title"`
	IntervalMS        string `yaml:"interval_ms"`
	JitterMS          string `yaml:"jitter_ms"`
}

// Configured reports whether any automation key is set at all.
func (r Raw) Configured() bool {
	return r.ToggleKey != "" || r.TriggerKey != "" || r.TargetWindowTitle != "" ||
		r.IntervalMS != "" || r.JitterMS != ""
}

// Settings are validated automation settings.
type Settings struct {
	ToggleKey         Key
	TriggerKey        Key
	TargetWindowTitle string
	Interval          time.Duration
	Jitter            time.Duration
}

// ParseSettings validates raw. Every problem is reported; the returned
// error joins one ValidationError per invalid key.
func ParseSettings(raw Raw) (Settings, error) {
	var (
		s    Settings
		errs []error
		err  error
	)

	if s.ToggleKey, err = ParseKey(raw.ToggleKey); err != nil {
		errs = append(errs, errors.NewValidationError("ToggleKey", raw.ToggleKey, "invalid key"))
	}
	if s.TriggerKey, err = ParseKey(raw.TriggerKey); err != nil {
		errs = append(errs, errors.NewValidationError("TriggerKey", raw.TriggerKey, "invalid key"))
	}

	s.TargetWindowTitle = raw.TargetWindowTitle
	if strings.TrimSpace(s.TargetWindowTitle) == "" {
		errs = append(errs, errors.NewValidationError("TargetWindowTitle", raw.TargetWindowTitle, "is required"))
	}

	if ms, err := strconv.Atoi(strings.TrimSpace(raw.IntervalMS)); err != nil || ms <= 0 {
		errs = append(errs, errors.NewValidationError("Interval_MS", raw.IntervalMS, "must be a positive integer"))
	} else {
		s.Interval = time.Duration(ms) * time.Millisecond
	}

	if ms, err := strconv.Atoi(strings.TrimSpace(raw.JitterMS)); err != nil || ms < 0 {
		errs = append(errs, errors.NewValidationError("Jitter_MS", raw.JitterMS, "must be a non-negative integer"))
	} else {
		s.Jitter = time.Duration(ms) * time.Millisecond
	}

	if len(errs) > 0 {
		return Settings{}, errors.Join(errs...)
	}
	return s, nil
}
