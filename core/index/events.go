package index

// EventKind identifies an asynchronous index notification.
type EventKind string

const (
	EventIndexed       EventKind = "indexed"
	EventSourceMissing EventKind = "source-missing"
	EventSourceFound   EventKind = "source-found"
	EventSourceError   EventKind = "source-error"
	EventIndexError    EventKind = "index-error"
)

// Event is emitted by background index work.
type Event struct {
	Kind EventKind
	// Address is the normalized source address. Empty for index-error events,
	// which carry Path instead.
	Address string
	// Path is the full document path (`dat://key/portal.json`) for index-error.
	Path string
	// Version is the source version for indexed events.
	Version int64
	// Err is the failure cause for error and missing events.
	Err error
}
