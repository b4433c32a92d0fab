package transport

import "time"

// Config holds configuration for the gateway transport.
type Config struct {
	// Gateway is the base URL of the peer gateway.
	Gateway string `mapstructure:"gateway" default:"http://localhost:3000"`
	// TimeoutSeconds bounds a single gateway request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"8"`
	// UserAgent is sent with every request.
	UserAgent string `mapstructure:"user_agent" default:"cohort-indexer/1.0"`
	// RetryInitialMillis is the first delay before re-resolving a missing source.
	RetryInitialMillis int `mapstructure:"retry_initial_millis" default:"500"`
	// RetryMaxMillis caps the retry delay.
	RetryMaxMillis int `mapstructure:"retry_max_millis" default:"8000"`
	// RetryMultiplier grows the delay between attempts.
	RetryMultiplier float64 `mapstructure:"retry_multiplier" default:"2"`
	// RetryAttempts is the number of background re-resolve attempts.
	RetryAttempts int `mapstructure:"retry_attempts" default:"5"`
}

// Timeout returns the request timeout, defaulting to 8 seconds.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 8 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Backoff returns the retry policy described by the config.
func (c Config) Backoff() BackoffConfig {
	return BackoffConfig{
		InitialDelay: time.Duration(c.RetryInitialMillis) * time.Millisecond,
		MaxDelay:     time.Duration(c.RetryMaxMillis) * time.Millisecond,
		Multiplier:   c.RetryMultiplier,
		MaxAttempts:  c.RetryAttempts,
	}
}
