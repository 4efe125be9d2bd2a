package events

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/agentstation/shotwatch/pkg/errors"
)

// Recorder observes delivery outcomes. A nil Recorder is allowed.
type Recorder interface {
	FrameDelivered()
	DeliveryFailed()
}

// Broker delivers each detected file to every registered subscriber.
// It holds no queue: OnEvent writes to the current snapshot and returns
// once every write has finished.
type Broker struct {
	registry *Registry
	recorder Recorder
	logger   *zerolog.Logger
}

// NewBroker creates a broker over registry.
func NewBroker(registry *Registry, recorder Recorder, logger *zerolog.Logger) *Broker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Broker{
		registry: registry,
		recorder: recorder,
		logger:   logger,
	}
}

// OnEvent broadcasts event to a fresh snapshot of the registry. Writes run
// concurrently, one goroutine per subscriber, and are joined before
// returning. A subscriber whose write fails or panics is removed from the
// registry and closed; the others are unaffected.
func (b *Broker) OnEvent(ctx context.Context, event FileCreatedEvent) Result {
	if err := ctx.Err(); err != nil {
		return Result{}
	}

	subs := b.registry.Snapshot()
	if len(subs) == 0 {
		b.logger.Debug().
			Str("file", event.Name).
			Msg("No subscribers, frame not sent")
		return Result{}
	}

	frame := FormatFrame(event.Name)

	var delivered, failed atomic.Int64
	var wg conc.WaitGroup
	for _, sub := range subs {
		wg.Go(func() {
			if err := b.deliver(sub, frame); err != nil {
				failed.Add(1)
				b.drop(sub, err)
				return
			}
			delivered.Add(1)
			if b.recorder != nil {
				b.recorder.FrameDelivered()
			}
		})
	}
	wg.Wait()

	result := Result{Delivered: int(delivered.Load()), Failed: int(failed.Load())}
	b.logger.Debug().
		Str("file", event.Name).
		Int("delivered", result.Delivered).
		Int("failed", result.Failed).
		Msg("Frame broadcasted")
	return result
}

// deliver sends one frame, converting a panic in Send into an error.
func (b *Broker) deliver(sub Subscriber, frame Frame) (err error) {
	var catcher panics.Catcher
	catcher.Try(func() {
		err = sub.Send(frame)
	})
	if r := catcher.Recovered(); r != nil {
		err = r.AsError()
	}
	if err != nil {
		return errors.NewDeliveryError(sub.ID(), err)
	}
	return nil
}

func (b *Broker) drop(sub Subscriber, err error) {
	if b.recorder != nil {
		b.recorder.DeliveryFailed()
	}
	removed := b.registry.Remove(sub)
	_ = sub.Close()

	event := b.logger.Warn()
	if errors.IsSubscriberClosed(err) {
		event = b.logger.Debug()
	}
	event.Err(err).
		Str("subscriber_id", sub.ID()).
		Bool("removed", removed).
		Msg("Dropping subscriber after failed write")
}
