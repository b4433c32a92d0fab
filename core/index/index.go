package index

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cohort-indexer/core/address"
	"cohort-indexer/core/transport"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

// Index is a handle on one named index. It is not reusable after Close.
type Index struct {
	store  *Store
	name   string
	logger *zap.Logger

	mu     sync.Mutex
	tables  map[string]Definition
	schemas map[string]*jsonschema.Schema
	jobs   map[string]*job
	open   bool
	ctx    context.Context
	cancel context.CancelFunc
	events chan Event
	wg     sync.WaitGroup
}

// job is the background sync of one source.
type job struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Name returns the index name.
func (ix *Index) Name() string { return ix.name }

// Define registers a table. Tables must be defined before Open.
func (ix *Index) Define(table string, def Definition) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.open {
		return ErrAlreadyOpen
	}
	schema, err := compileSchema(table, def.Schema)
	if err != nil {
		return err
	}
	ix.tables[table] = def
	ix.schemas[table] = schema
	return nil
}

// Open starts the index and, if configured, resumes known sources.
func (ix *Index) Open(ctx context.Context) error {
	ix.mu.Lock()
	if ix.open {
		ix.mu.Unlock()
		return ErrAlreadyOpen
	}
	ix.ctx, ix.cancel = context.WithCancel(context.WithoutCancel(ctx))
	ix.events = make(chan Event, ix.store.cfg.eventBuffer())
	ix.open = true
	ix.mu.Unlock()

	if !ix.store.cfg.ResumeOnOpen {
		return nil
	}

	known, err := ix.Sources(ctx)
	if err != nil {
		_ = ix.Close()
		return fmt.Errorf("failed to open index %s: %w", ix.name, err)
	}
	for _, addr := range known {
		ix.startJob(addr, nil, false)
	}
	if len(known) > 0 {
		ix.logger.Debug("Resumed registered sources", zap.Int("count", len(known)))
	}
	return nil
}

// Events returns the notification channel. It is closed by Close.
func (ix *Index) Events() <-chan Event {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.events
}

// Close stops background work and closes the event channel.
func (ix *Index) Close() error {
	ix.mu.Lock()
	if !ix.open {
		ix.mu.Unlock()
		return nil
	}
	ix.open = false
	ix.cancel()
	ix.mu.Unlock()

	ix.wg.Wait()
	close(ix.events)
	return nil
}

// AddSource registers a source, resolves it within the attach timeout and
// continues indexing in the background. A failed resolution is returned and
// retried in the background.
func (ix *Index) AddSource(ctx context.Context, raw string) error {
	addr := address.Normalize(raw)
	if addr == "" {
		return fmt.Errorf("attach: empty address")
	}
	if !ix.isOpen() {
		return ErrClosed
	}

	row := sourceRow{IndexName: ix.name, Address: addr}
	err := ix.store.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("attach %s: failed to register source: %w", addr, err)
	}

	rctx, cancel := context.WithTimeout(ctx, ix.store.cfg.attachTimeout())
	defer cancel()

	man, err := ix.store.client.Resolve(rctx, addr)
	if err != nil {
		ix.startJob(addr, nil, true)
		return fmt.Errorf("attach %s: %w", addr, err)
	}
	ix.startJob(addr, &man, false)
	return nil
}

// RemoveSource stops syncing a source and deletes its documents.
func (ix *Index) RemoveSource(ctx context.Context, raw string) error {
	addr := address.Normalize(raw)

	ix.mu.Lock()
	j := ix.jobs[addr]
	delete(ix.jobs, addr)
	ix.mu.Unlock()
	if j != nil {
		j.cancel()
		<-j.done
	}

	db := ix.store.db.WithContext(ctx)
	if err := db.Where("index_name = ? AND source = ?", ix.name, addr).Delete(&documentRow{}).Error; err != nil {
		return fmt.Errorf("remove %s: failed to delete documents: %w", addr, err)
	}
	if err := db.Where("index_name = ? AND address = ?", ix.name, addr).Delete(&sourceRow{}).Error; err != nil {
		return fmt.Errorf("remove %s: failed to delete source: %w", addr, err)
	}
	return nil
}

// Sources lists the addresses registered on this index.
func (ix *Index) Sources(ctx context.Context) ([]string, error) {
	var addrs []string
	err := ix.store.db.WithContext(ctx).
		Model(&sourceRow{}).
		Where("index_name = ?", ix.name).
		Order("id").
		Pluck("address", &addrs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return addrs, nil
}

func (ix *Index) isOpen() bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.open
}

func (ix *Index) startJob(addr string, man *transport.Manifest, wasMissing bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.open {
		return
	}
	if prev := ix.jobs[addr]; prev != nil {
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(ix.ctx)
	j := &job{cancel: cancel, done: make(chan struct{})}
	ix.jobs[addr] = j

	ix.wg.Add(1)
	go func() {
		defer ix.wg.Done()
		defer close(j.done)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				ix.logger.Error("Source job panicked", zap.String("address", addr), zap.Any("panic", r))
			}
		}()
		ix.runJob(ctx, addr, man, wasMissing)
	}()
}

func (ix *Index) runJob(ctx context.Context, addr string, man *transport.Manifest, wasMissing bool) {
	if man == nil {
		resolved, ok := ix.resolveWithRetry(ctx, addr, wasMissing)
		if !ok {
			return
		}
		man = &resolved
	}
	ix.indexSource(ctx, addr, *man)
}

func (ix *Index) resolveWithRetry(ctx context.Context, addr string, wasMissing bool) (transport.Manifest, bool) {
	policy := ix.store.backoff
	for attempt := 1; ; attempt++ {
		if wasMissing || attempt > 1 {
			if !sleep(ctx, transport.NextBackoffDelay(policy, attempt)) {
				return transport.Manifest{}, false
			}
		}

		rctx, cancel := context.WithTimeout(ctx, ix.store.cfg.attachTimeout())
		man, err := ix.store.client.Resolve(rctx, addr)
		cancel()
		if err == nil {
			if wasMissing || attempt > 1 {
				ix.emit(ctx, Event{Kind: EventSourceFound, Address: addr, Version: man.Version})
			}
			return man, true
		}
		if ctx.Err() != nil {
			return transport.Manifest{}, false
		}
		if attempt >= policy.MaxAttempts {
			ix.emit(ctx, Event{Kind: EventSourceError, Address: addr, Err: err})
			return transport.Manifest{}, false
		}
		ix.emit(ctx, Event{Kind: EventSourceMissing, Address: addr, Err: err})
	}
}

func (ix *Index) indexSource(ctx context.Context, addr string, man transport.Manifest) {
	db := ix.store.db.WithContext(ctx)
	seen := make([]string, 0, len(man.Files))
	stored, failed := 0, 0

	for _, file := range man.Files {
		table, ok := ix.tableFor(file)
		if !ok {
			continue
		}
		docPath := addr + file
		seen = append(seen, docPath)

		fctx, cancel := context.WithTimeout(ctx, ix.store.cfg.fetchTimeout())
		body, err := ix.store.client.Fetch(fctx, addr, file)
		cancel()
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			err = ix.validate(table, body)
		}
		if err != nil {
			failed++
			ix.emit(ctx, Event{Kind: EventIndexError, Path: docPath, Err: err})
			continue
		}

		row := documentRow{
			IndexName:  ix.name,
			Collection: table,
			Path:       docPath,
			Source:     addr,
			Version:    man.Version,
			Body:       string(body),
			UpdatedAt:  time.Now(),
		}
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "index_name"}, {Name: "collection"}, {Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"source", "version", "body", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			if ctx.Err() == nil {
				ix.emit(ctx, Event{Kind: EventSourceError, Address: addr, Err: fmt.Errorf("failed to store %s: %w", docPath, err)})
			}
			return
		}
		stored++
	}

	stale := db.Where("index_name = ? AND source = ?", ix.name, addr)
	if len(seen) > 0 {
		stale = stale.Where("path NOT IN ?", seen)
	}
	if err := stale.Delete(&documentRow{}).Error; err != nil && ctx.Err() == nil {
		ix.logger.Warn("Failed to delete stale documents", zap.String("address", addr), zap.Error(err))
	}
	if err := db.Model(&sourceRow{}).
		Where("index_name = ? AND address = ?", ix.name, addr).
		Update("version", man.Version).Error; err != nil && ctx.Err() == nil {
		ix.logger.Warn("Failed to record source version", zap.String("address", addr), zap.Error(err))
	}

	if ctx.Err() != nil {
		return
	}
	if stored > 0 || failed == 0 {
		ix.emit(ctx, Event{Kind: EventIndexed, Address: addr, Version: man.Version})
	}
}

func (ix *Index) validate(table string, body []byte) error {
	ix.mu.Lock()
	schema := ix.schemas[table]
	ix.mu.Unlock()
	return validateDocument(schema, body)
}

func (ix *Index) tableFor(docPath string) (string, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	names := make([]string, 0, len(ix.tables))
	for name := range ix.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ix.tables[name].Matches(docPath) {
			return name, true
		}
	}
	return "", false
}

// emit delivers an event unless the job was cancelled.
func (ix *Index) emit(ctx context.Context, ev Event) {
	select {
	case ix.events <- ev:
	case <-ctx.Done():
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
