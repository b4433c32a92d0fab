package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SettleConfig bounds the settlement loop.
type SettleConfig struct {
	// Tick is the polling interval.
	Tick time.Duration
	// Window bounds the whole settle loop.
	Window time.Duration
}

// DefaultSettle polls once per second for ten seconds.
var DefaultSettle = SettleConfig{Tick: time.Second, Window: 10 * time.Second}

func (c SettleConfig) ticks() int {
	if c.Tick <= 0 {
		return 0
	}
	n := int(c.Window / c.Tick)
	if c.Window%c.Tick != 0 {
		n++
	}
	return n
}

// SettleResult reports how settlement ended.
type SettleResult struct {
	Counts    Counts
	Ticks     int
	Elapsed   time.Duration
	Converged bool
}

// Settle calls counts once per tick until every address is resolved or the
// window elapses. It never returns an error: unresolved addresses are
// reported through the counts.
func Settle(ctx context.Context, cfg SettleConfig, counts func() Counts, logger *zap.Logger) SettleResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	c := counts()
	if c.Total == 0 || c.Settled() {
		return SettleResult{Counts: c, Converged: true, Elapsed: time.Since(start)}
	}

	logger.Info("Collecting data", zap.Duration("window", cfg.Window), zap.Int("total", c.Total))

	n := cfg.ticks()
	ticker := time.NewTicker(cfg.Tick)
	defer ticker.Stop()
	// The last wait is cut short when the window ends between ticks.
	deadline := time.NewTimer(cfg.Window)
	defer deadline.Stop()

	res := SettleResult{Counts: c}
	for i := 1; i <= n; i++ {
		last := i == n
		select {
		case <-ctx.Done():
			res.Elapsed = time.Since(start)
			return res
		case <-ticker.C:
		case <-deadline.C:
			last = true
		}

		res.Counts = counts()
		res.Ticks = i
		logger.Info("Settling",
			zap.Duration("elapsed", min(time.Duration(i)*cfg.Tick, cfg.Window)),
			zap.Int("fetched", res.Counts.Fetched),
			zap.Int("indexed", res.Counts.Indexed),
			zap.Int("timed_out", res.Counts.TimedOut),
			zap.Int("errored", res.Counts.Errored),
			zap.Int("total", res.Counts.Total),
		)
		if res.Counts.Settled() {
			res.Converged = true
			break
		}
		if last {
			break
		}
	}
	res.Elapsed = time.Since(start)
	return res
}
