package reconcile

import (
	"sync"

	"cohort-indexer/core/address"

	"go.uber.org/zap"
)

// UpdateKind identifies a tracker update.
type UpdateKind string

const (
	UpdateAttached UpdateKind = "attached"
	UpdateIndexed  UpdateKind = "indexed"
	UpdateFound    UpdateKind = "found"
	UpdateFailed   UpdateKind = "failed"
)

// Update is a state change for one address.
type Update struct {
	Kind    UpdateKind
	Address string
	Version int64
	Failure *Failure
}

type countsRequest struct{ reply chan Counts }

type snapshotRequest struct{ reply chan []Fetcher }

// Tracker owns the Fetcher map of one pass. All reads and writes are served
// by a single goroutine started with Start.
type Tracker struct {
	logger   *zap.Logger
	fetchers map[string]*Fetcher
	order    []string

	inbox    chan any
	stop     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewTracker seeds a tracker with addresses in attach order. Duplicate
// addresses (after normalization) keep their first occurrence.
func NewTracker(addrs []string, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		logger:   logger,
		fetchers: make(map[string]*Fetcher, len(addrs)),
		inbox:    make(chan any),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, raw := range addrs {
		n := address.Normalize(raw)
		if n == "" {
			continue
		}
		if _, dup := t.fetchers[n]; dup {
			logger.Debug("Ignoring duplicate address", zap.String("address", raw))
			continue
		}
		t.order = append(t.order, n)
		t.fetchers[n] = &Fetcher{
			Index:             len(t.order),
			NormalizedAddress: n,
			RawAddress:        raw,
		}
	}
	return t
}

// Total returns the number of tracked addresses.
func (t *Tracker) Total() int { return len(t.order) }

// Fetchers returns the seeded Fetchers in attach order. Only valid before
// Start; afterwards use Snapshot.
func (t *Tracker) Fetchers() []Fetcher {
	out := make([]Fetcher, 0, len(t.order))
	for _, n := range t.order {
		out = append(out, *t.fetchers[n])
	}
	return out
}

// Start launches the owning goroutine.
func (t *Tracker) Start() {
	go t.run()
}

// Stop ends the owning goroutine and waits for it. Pending updates are
// applied first.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
	<-t.stopped
}

// Apply queues an update. It returns false if the tracker has stopped.
func (t *Tracker) Apply(u Update) bool {
	select {
	case t.inbox <- u:
		return true
	case <-t.stop:
		return false
	}
}

// Counts returns the aggregate counts.
func (t *Tracker) Counts() Counts {
	req := countsRequest{reply: make(chan Counts, 1)}
	select {
	case t.inbox <- req:
		return <-req.reply
	case <-t.stopped:
		return t.count()
	}
}

// Snapshot returns copies of all Fetchers in attach order.
func (t *Tracker) Snapshot() []Fetcher {
	req := snapshotRequest{reply: make(chan []Fetcher, 1)}
	select {
	case t.inbox <- req:
		return <-req.reply
	case <-t.stopped:
		return t.Fetchers()
	}
}

func (t *Tracker) run() {
	defer close(t.stopped)
	for {
		select {
		case msg := <-t.inbox:
			t.handle(msg)
		case <-t.stop:
			for {
				select {
				case msg := <-t.inbox:
					t.handle(msg)
				default:
					return
				}
			}
		}
	}
}

func (t *Tracker) handle(msg any) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Tracker message panicked", zap.Any("panic", r))
		}
	}()
	switch m := msg.(type) {
	case Update:
		t.apply(m)
	case countsRequest:
		m.reply <- t.count()
	case snapshotRequest:
		m.reply <- t.Fetchers()
	}
}

func (t *Tracker) apply(u Update) {
	f, ok := t.fetchers[address.Normalize(u.Address)]
	if !ok {
		integrityMismatches.Inc()
		t.logger.Warn("Integrity mismatch",
			zap.String("address", u.Address),
			zap.String("update", string(u.Kind)),
			zap.Error(ErrIntegrityMismatch),
		)
		return
	}

	switch u.Kind {
	case UpdateAttached:
		f.Fetched = true

	case UpdateIndexed, UpdateFound:
		f.Fetched = true
		if u.Version > f.LastVersion {
			f.LastVersion = u.Version
		}
		if f.TimedOut || f.Errored {
			t.logger.Info("Source recovered",
				zap.Int("index", f.Index),
				zap.String("address", f.RawAddress),
				zap.NamedError("previous", f.Cause),
			)
		}
		f.Indexed = IndexDone
		f.TimedOut = false
		f.Errored = false

	case UpdateFailed:
		t.fail(f, u.Failure)
	}
}

func (t *Tracker) fail(f *Fetcher, failure *Failure) {
	if failure == nil {
		return
	}
	if f.Indexed == IndexDone || f.TimedOut || f.Errored {
		t.logger.Debug("Ignoring failure for resolved source",
			zap.String("address", f.RawAddress),
			zap.Error(failure),
		)
		return
	}

	f.Cause = failure
	if failure.Stage != StageAttach {
		f.Indexed = IndexFailed
	}
	if failure.Timeout() {
		f.TimedOut = true
	} else {
		f.Errored = true
	}
}

func (t *Tracker) count() Counts {
	c := Counts{Total: len(t.order)}
	for _, f := range t.fetchers {
		if f.Fetched {
			c.Fetched++
		}
		switch {
		case f.Indexed == IndexDone:
			c.Indexed++
		case f.TimedOut:
			c.TimedOut++
		case f.Errored:
			c.Errored++
		}
	}
	return c
}
