package transport

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cohort-indexer/core/address"
)

// Peer is one source held by a Memory transport.
type Peer struct {
	Version int64
	Files   map[string][]byte
	// Delay is applied to every Resolve and Fetch call.
	Delay time.Duration
	// Err, when set, is returned by every Resolve call.
	Err error
	// MissingFor makes the first N Resolve calls return ErrNotFound.
	MissingFor int
}

// Memory is an in-process Client keyed by source key.
type Memory struct {
	mu    sync.Mutex
	peers map[string]*Peer
	calls map[string]int
}

// NewMemory creates an empty in-process peer set.
func NewMemory() *Memory {
	return &Memory{
		peers: make(map[string]*Peer),
		calls: make(map[string]int),
	}
}

// Put registers or replaces a peer.
func (m *Memory) Put(addr string, p Peer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.Files == nil {
		p.Files = make(map[string][]byte)
	}
	m.peers[address.Key(addr)] = &p
}

// PutFile stores a file on a peer, creating the peer if needed, and bumps
// its version.
func (m *Memory) PutFile(addr, path string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := address.Key(addr)
	p, ok := m.peers[key]
	if !ok {
		p = &Peer{Files: make(map[string][]byte)}
		m.peers[key] = p
	}
	p.Files[path] = body
	p.Version++
}

// Calls returns how many Resolve calls reached addr.
func (m *Memory) Calls(addr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[address.Key(addr)]
}

// Resolve implements Client.
func (m *Memory) Resolve(ctx context.Context, addr string) (Manifest, error) {
	key := address.Key(addr)

	m.mu.Lock()
	m.calls[key]++
	p, ok := m.peers[key]
	var (
		delay   time.Duration
		err     error
		missing bool
		man     Manifest
	)
	if ok {
		delay = p.Delay
		err = p.Err
		if p.MissingFor > 0 {
			p.MissingFor--
			missing = true
		}
		man.Version = p.Version
		for path := range p.Files {
			man.Files = append(man.Files, path)
		}
		sort.Strings(man.Files)
	}
	m.mu.Unlock()

	if !ok || missing {
		return Manifest{}, fmt.Errorf("resolve %s: %w", addr, ErrNotFound)
	}
	if err := wait(ctx, delay); err != nil {
		return Manifest{}, classify("resolve", addr, err)
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("resolve %s: %w", addr, err)
	}
	return man, nil
}

// Fetch implements Client.
func (m *Memory) Fetch(ctx context.Context, addr, path string) ([]byte, error) {
	m.mu.Lock()
	p, ok := m.peers[address.Key(addr)]
	var (
		body  []byte
		found bool
		delay time.Duration
	)
	if ok {
		body, found = p.Files[path]
		delay = p.Delay
	}
	m.mu.Unlock()

	if err := wait(ctx, delay); err != nil {
		return nil, classify("fetch", addr+path, err)
	}
	if !found {
		return nil, fmt.Errorf("fetch %s%s: %w", addr, path, ErrNotFound)
	}
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
