package reconcile

import (
	"context"
	"errors"
	"time"

	"cohort-indexer/core/blacklist"
	"cohort-indexer/core/index"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Attacher is the part of an index a pass drives. *index.Index satisfies it.
type Attacher interface {
	AddSource(ctx context.Context, addr string) error
	Events() <-chan index.Event
}

// Pass is the context of one reconciliation pass. It is built by the caller
// for each pass and not reused.
type Pass struct {
	// Name labels log lines and the summary.
	Name      string
	Index     Attacher
	Blacklist *blacklist.Filter
	Logger    *zap.Logger
	Settle    SettleConfig
	// Concurrency bounds in-flight attach calls. Zero means unbounded.
	Concurrency int
}

// Run attaches addrs, settles, and returns the pass summary. Per-address
// failures are recorded in the summary and never returned as errors.
func (p *Pass) Run(ctx context.Context, addrs []string) (*Summary, error) {
	if p.Index == nil {
		return nil, errors.New("pass has no index")
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("pass", p.Name))

	allowed, skipped := p.Blacklist.Partition(addrs)
	for _, a := range skipped {
		logger.Info("Skipping blacklisted address", zap.String("address", a))
	}

	tracker := NewTracker(allowed, logger)
	fetchers := tracker.Fetchers()
	tracker.Start()
	defer tracker.Stop()

	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		NewDispatcher(tracker, logger).Run(dispatchCtx, p.Index.Events())
	}()

	start := time.Now()
	attachCtx, stopAttach := context.WithCancel(ctx)
	attachDone := p.attachAll(attachCtx, tracker, fetchers, logger)

	res := Settle(ctx, p.Settle, tracker.Counts, logger)

	stopAttach()
	<-attachDone
	stopDispatch()
	<-dispatchDone

	summary := &Summary{
		Name:      p.Name,
		Counts:    res.Counts,
		Converged: res.Converged,
		Elapsed:   time.Since(start),
		Skipped:   skipped,
		Fetchers:  tracker.Snapshot(),
	}
	observePass(summary)

	for _, f := range summary.Unresolved() {
		logger.Info("Source unresolved at end of settle window",
			zap.Int("index", f.Index),
			zap.String("address", f.RawAddress),
			zap.Bool("fetched", f.Fetched),
		)
	}
	logger.Info("Pass settled",
		zap.Bool("converged", summary.Converged),
		zap.Int("indexed", res.Counts.Indexed),
		zap.Int("timed_out", res.Counts.TimedOut),
		zap.Int("errored", res.Counts.Errored),
		zap.Int("total", res.Counts.Total),
		zap.Int("skipped", len(skipped)),
	)
	return summary, nil
}

// attachAll issues every attach without waiting for individual results. The
// returned channel closes once all attach calls have returned.
func (p *Pass) attachAll(ctx context.Context, tracker *Tracker, fetchers []Fetcher, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})

	var g errgroup.Group
	if p.Concurrency > 0 {
		g.SetLimit(p.Concurrency)
	}

	go func() {
		defer close(done)
		for _, f := range fetchers {
			logger.Debug("Attaching source", zap.Int("index", f.Index), zap.String("address", f.RawAddress))
			g.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						logger.Error("Attach panicked", zap.String("address", f.RawAddress), zap.Any("panic", r))
					}
				}()
				err := p.Index.AddSource(ctx, f.RawAddress)
				if err != nil && ctx.Err() != nil {
					// abandoned when the settle window closed, left unresolved
					return nil
				}
				recordAttach(logger, f, err)
				tracker.Apply(AttachOutcome(f.NormalizedAddress, err))
				return nil
			})
		}
		_ = g.Wait()
	}()

	return done
}

func recordAttach(logger *zap.Logger, f Fetcher, err error) {
	if err == nil {
		attachTotal.WithLabelValues("ok").Inc()
		return
	}
	failure := Classify(StageAttach, err)
	attachTotal.WithLabelValues(string(failure.Kind)).Inc()
	if failure.Timeout() {
		logger.Info("Attach timed out", zap.Int("index", f.Index), zap.String("address", f.RawAddress))
		return
	}
	logger.Warn("Attach failed", zap.Int("index", f.Index), zap.String("address", f.RawAddress), zap.Error(err))
}
