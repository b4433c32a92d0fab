package reconcile

import (
	"context"

	"cohort-indexer/core/address"
	"cohort-indexer/core/index"

	"go.uber.org/zap"
)

// Dispatcher routes index events into tracker updates.
type Dispatcher struct {
	tracker *Tracker
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher feeding tracker.
func NewDispatcher(tracker *Tracker, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{tracker: tracker, logger: logger}
}

// Run dispatches events until the channel closes or ctx is done.
func (d *Dispatcher) Run(ctx context.Context, events <-chan index.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			d.dispatchSafely(ev)
		}
	}
}

// dispatchSafely logs a panic raised while translating ev and keeps the
// dispatcher running.
func (d *Dispatcher) dispatchSafely(ev index.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Dispatch panicked",
				zap.String("kind", string(ev.Kind)),
				zap.String("address", ev.Address),
				zap.String("path", ev.Path),
				zap.Any("panic", r),
			)
		}
	}()
	d.Dispatch(ev)
}

// Dispatch translates a single event.
func (d *Dispatcher) Dispatch(ev index.Event) {
	eventsTotal.WithLabelValues(string(ev.Kind)).Inc()

	switch ev.Kind {
	case index.EventIndexed:
		d.tracker.Apply(Update{Kind: UpdateIndexed, Address: ev.Address, Version: ev.Version})

	case index.EventSourceFound:
		d.logger.Info("Source located after retry", zap.String("address", ev.Address))
		d.tracker.Apply(Update{Kind: UpdateFound, Address: ev.Address, Version: ev.Version})

	case index.EventSourceMissing:
		d.logger.Info("Source currently unreachable", zap.String("address", ev.Address), zap.Error(ev.Err))

	case index.EventSourceError:
		failure := Classify(StageSource, ev.Err)
		d.logger.Warn("Source failed", zap.String("address", ev.Address), zap.String("kind", string(failure.Kind)), zap.Error(ev.Err))
		d.tracker.Apply(Update{Kind: UpdateFailed, Address: ev.Address, Failure: failure})

	case index.EventIndexError:
		owner := address.Source(ev.Path)
		failure := Classify(StageIndex, ev.Err)
		d.logger.Warn("Document failed to index",
			zap.String("path", ev.Path),
			zap.String("address", owner),
			zap.String("kind", string(failure.Kind)),
			zap.Error(ev.Err),
		)
		d.tracker.Apply(Update{Kind: UpdateFailed, Address: owner, Failure: failure})

	default:
		d.logger.Debug("Ignoring unknown index event", zap.String("kind", string(ev.Kind)))
	}
}

// AttachOutcome converts the result of an attach call into an update.
func AttachOutcome(addr string, err error) Update {
	if err == nil {
		return Update{Kind: UpdateAttached, Address: addr}
	}
	return Update{Kind: UpdateFailed, Address: addr, Failure: Classify(StageAttach, err)}
}
