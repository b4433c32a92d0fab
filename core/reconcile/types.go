package reconcile

import "time"

// IndexState is the tri-state indexing outcome of a Fetcher.
type IndexState int

const (
	IndexUnknown IndexState = iota
	IndexDone
	IndexFailed
)

func (s IndexState) String() string {
	switch s {
	case IndexDone:
		return "indexed"
	case IndexFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Fetcher is the reconciliation state of one address within one pass.
type Fetcher struct {
	// Index is the 1-based ordinal in attach order.
	Index             int
	NormalizedAddress string
	RawAddress        string
	Fetched           bool
	Indexed           IndexState
	TimedOut          bool
	Errored           bool
	// Cause is the failure that set TimedOut or Errored, or the failure an
	// indexed Fetcher recovered from.
	Cause       error
	LastVersion int64
}

// Resolved reports whether the Fetcher reached a terminal state.
func (f Fetcher) Resolved() bool {
	return f.Indexed == IndexDone || f.TimedOut || f.Errored
}

// Counts aggregates Fetcher states of a pass.
type Counts struct {
	Total    int `json:"total"`
	Fetched  int `json:"fetched"`
	Indexed  int `json:"indexed"`
	TimedOut int `json:"timed_out"`
	Errored  int `json:"errored"`
}

// Resolved returns the number of Fetchers in a terminal state.
func (c Counts) Resolved() int {
	return c.Indexed + c.TimedOut + c.Errored
}

// Settled reports whether every tracked address reached a terminal state.
func (c Counts) Settled() bool {
	return c.Resolved() == c.Total
}

// Summary is the outcome of a pass.
type Summary struct {
	Name      string        `json:"name"`
	Counts    Counts        `json:"counts"`
	Converged bool          `json:"converged"`
	Elapsed   time.Duration `json:"elapsed"`
	// Skipped lists blacklisted addresses that were not attached.
	Skipped  []string  `json:"skipped,omitempty"`
	Fetchers []Fetcher `json:"-"`
}

// Unresolved returns the Fetchers that never reached a terminal state.
func (s *Summary) Unresolved() []Fetcher {
	var out []Fetcher
	for _, f := range s.Fetchers {
		if !f.Resolved() {
			out = append(out, f)
		}
	}
	return out
}
