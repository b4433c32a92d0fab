package blacklist

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cohort-indexer/core/address"

	"gopkg.in/yaml.v3"
)

// SourceRemover is the part of an index the filter needs to prune it.
type SourceRemover interface {
	Sources(ctx context.Context) ([]string, error)
	RemoveSource(ctx context.Context, addr string) error
}

// Filter is an immutable set of excluded addresses.
// A nil *Filter blacklists nothing.
type Filter struct {
	entries []string
	set     map[string]struct{}
}

type fileFormat struct {
	Addresses []string `yaml:"addresses"`
}

// New builds a filter from raw addresses, preserving their order.
func New(addresses []string) *Filter {
	f := &Filter{set: make(map[string]struct{}, len(addresses))}
	for _, a := range addresses {
		n := address.Normalize(a)
		if n == "" {
			continue
		}
		if _, dup := f.set[n]; dup {
			continue
		}
		f.set[n] = struct{}{}
		f.entries = append(f.entries, n)
	}
	return f
}

// Load reads a YAML blacklist file. A missing file yields an empty filter.
func Load(path string) (*Filter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("failed to read blacklist %s: %w", path, err)
	}

	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("failed to parse blacklist %s: %w", path, err)
	}
	return New(ff.Addresses), nil
}

// IsBlacklisted reports whether addr matches an entry.
func (f *Filter) IsBlacklisted(addr string) bool {
	if f == nil {
		return false
	}
	_, ok := f.set[address.Normalize(addr)]
	return ok
}

// Len returns the number of entries.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.entries)
}

// Entries returns the normalized entries in load order.
func (f *Filter) Entries() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.entries))
	copy(out, f.entries)
	return out
}

// Partition splits addrs into allowed and blacklisted, keeping input order.
func (f *Filter) Partition(addrs []string) (allowed, skipped []string) {
	for _, a := range addrs {
		if f.IsBlacklisted(a) {
			skipped = append(skipped, a)
			continue
		}
		allowed = append(allowed, a)
	}
	return allowed, skipped
}

// Prune removes every registered blacklisted source from r and returns the
// removed addresses. Removal continues past individual failures.
func (f *Filter) Prune(ctx context.Context, r SourceRemover) ([]string, error) {
	if f.Len() == 0 {
		return nil, nil
	}

	registered, err := r.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	var (
		removed []string
		errs    []error
	)
	for _, src := range registered {
		if !f.IsBlacklisted(src) {
			continue
		}
		if err := r.RemoveSource(ctx, src); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", src, err))
			continue
		}
		removed = append(removed, src)
	}
	return removed, errors.Join(errs...)
}
