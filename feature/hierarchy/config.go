package hierarchy

import (
	"time"

	"cohort-indexer/core/reconcile"
)

// Config holds configuration for a crawl.
type Config struct {
	// MasterAddress is the root of the hierarchy.
	MasterAddress string `mapstructure:"master_address" default:"dat://0c36c5c3b32f8c0b74f36d41344af2b99275c05701a2ef83a211340af987bc0e/"`
	// CohortPrefix selects cohort documents at level one.
	CohortPrefix string `mapstructure:"cohort_prefix" default:"cohort-"`
	// SettleSeconds is the settle window of each pass.
	SettleSeconds int `mapstructure:"settle_seconds" default:"10"`
	// TickMillis is the settle polling interval.
	TickMillis int `mapstructure:"tick_millis" default:"1000"`
	// Concurrency bounds in-flight attaches per pass. Zero is unbounded.
	Concurrency int `mapstructure:"concurrency" default:"0"`
	// IntervalMinutes schedules crawls in the start command. Zero disables it.
	IntervalMinutes int `mapstructure:"interval_minutes" default:"0"`
}

// Settle returns the settle bounds, falling back to reconcile.DefaultSettle.
func (c Config) Settle() reconcile.SettleConfig {
	s := reconcile.DefaultSettle
	if c.TickMillis > 0 {
		s.Tick = time.Duration(c.TickMillis) * time.Millisecond
	}
	if c.SettleSeconds > 0 {
		s.Window = time.Duration(c.SettleSeconds) * time.Second
	}
	return s
}

// Interval returns the crawl schedule, or zero when scheduling is off.
func (c Config) Interval() time.Duration {
	if c.IntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(c.IntervalMinutes) * time.Minute
}
