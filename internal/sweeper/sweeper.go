// Package sweeper deletes detected files after a retention delay.
//
// Every scheduled path gets its own goroutine and timer; sweeps never
// depend on each other. Failures are logged and counted, never retried.
package sweeper

import (
	"context"
	"io/fs"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/shotwatch/pkg/errors"
)

// Recorder observes sweep outcomes. A nil Recorder is allowed.
type Recorder interface {
	SweepCompleted(err error)
}

// Sweeper removes files through an afero.Fs after Delay.
type Sweeper struct {
	fs       afero.Fs
	delay    time.Duration
	recorder Recorder
	logger   *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a sweeper. A delay of zero or less deletes immediately.
func New(fsys afero.Fs, delay time.Duration, recorder Recorder, logger *zerolog.Logger) *Sweeper {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		fs:       fsys,
		delay:    delay,
		recorder: recorder,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Delay returns the configured retention delay.
func (s *Sweeper) Delay() time.Duration {
	return s.delay
}

// Schedule deletes path after the delay. The returned channel receives the
// outcome once: nil on success, the delete error, or ErrCanceled when the
// sweeper was closed first. Callers that don't care may ignore it.
func (s *Sweeper) Schedule(path string) <-chan error {
	out := make(chan error, 1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		out <- s.sweep(path)
	}()
	return out
}

func (s *Sweeper) sweep(path string) error {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-s.ctx.Done():
			s.logger.Debug().Str("path", path).Msg("Sweep abandoned on shutdown")
			return errors.ErrCanceled
		}
	}

	err := s.fs.Remove(path)
	if s.recorder != nil {
		s.recorder.SweepCompleted(err)
	}

	switch {
	case err == nil:
		s.logger.Info().Str("path", path).Msg("File deleted")
		return nil
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Warn().Err(err).Str("path", path).Msg("File already gone before deletion")
	default:
		s.logger.Error().Err(err).Str("path", path).Msg("Failed to delete file")
	}
	return errors.WrapIO("delete", path, err)
}

// Close abandons pending sweeps. Files whose timer has not fired are left
// in place.
func (s *Sweeper) Close() {
	s.cancel()
}

// Wait blocks until every scheduled sweep has finished or been abandoned.
func (s *Sweeper) Wait() {
	s.wg.Wait()
}
