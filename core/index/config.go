package index

import "time"

// Config holds configuration for index handles.
type Config struct {
	// AttachTimeoutSeconds bounds the synchronous part of AddSource.
	AttachTimeoutSeconds int `mapstructure:"attach_timeout_seconds" default:"10"`
	// FetchTimeoutSeconds bounds a single document fetch.
	FetchTimeoutSeconds int `mapstructure:"fetch_timeout_seconds" default:"10"`
	// EventBuffer is the capacity of the event channel.
	EventBuffer int `mapstructure:"event_buffer" default:"256"`
	// ResumeOnOpen re-syncs previously registered sources when an index opens.
	ResumeOnOpen bool `mapstructure:"resume_on_open" default:"true"`
}

func (c Config) attachTimeout() time.Duration {
	if c.AttachTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.AttachTimeoutSeconds) * time.Second
}

func (c Config) fetchTimeout() time.Duration {
	if c.FetchTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

func (c Config) eventBuffer() int {
	if c.EventBuffer <= 0 {
		return 256
	}
	return c.EventBuffer
}
