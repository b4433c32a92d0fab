package portals

import (
	"context"
	"errors"
	"fmt"

	"cohort-indexer/core/blacklist"
	"cohort-indexer/core/index"

	"go.uber.org/zap"
)

// Stats counts persister outcomes for one cohort.
type Stats struct {
	Seen      int `json:"seen"`
	Written   int `json:"written"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Claims maps record identities to the cohort that persisted them during one
// crawl. The first cohort to claim an identity keeps it.
type Claims map[string]string

// Persister writes records that are new or changed.
type Persister struct {
	sink      Sink
	blacklist *blacklist.Filter
	logger    *zap.Logger
}

// NewPersister creates a persister over sink.
func NewPersister(sink Sink, bl *blacklist.Filter, logger *zap.Logger) *Persister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persister{sink: sink, blacklist: bl, logger: logger}
}

// Persist derives a record for each document and writes the deltas. Failures
// of single records are joined into the returned error; the remaining records
// are still processed. Records whose identity another cohort already claimed
// in claims are skipped; a nil claims disables the check.
func (p *Persister) Persist(ctx context.Context, cohort string, docs []index.Document, claims Claims) (Stats, error) {
	var (
		stats Stats
		errs  []error
	)
	for _, doc := range docs {
		stats.Seen++
		rec := FromDocument(cohort, doc)

		if p.blacklist.IsBlacklisted(rec.URL) {
			stats.Skipped++
			persistTotal.WithLabelValues("skipped").Inc()
			p.logger.Info("Skipping blacklisted portal", zap.String("url", rec.URL))
			continue
		}
		if rec.URL == "" || rec.Name == "" {
			stats.Skipped++
			persistTotal.WithLabelValues("skipped").Inc()
			p.logger.Debug("Skipping incomplete portal document", zap.String("path", doc.Path))
			continue
		}

		if claims != nil {
			id := rec.ID()
			if owner, ok := claims[id]; ok && owner != cohort {
				stats.Skipped++
				persistTotal.WithLabelValues("skipped").Inc()
				p.logger.Warn("Skipping portal claimed by another cohort",
					zap.String("id", id),
					zap.String("owner", owner),
				)
				continue
			}
			claims[id] = cohort
		}

		written, err := p.save(ctx, rec)
		switch {
		case err != nil:
			stats.Failed++
			persistTotal.WithLabelValues("failed").Inc()
			errs = append(errs, err)
		case written:
			stats.Written++
			persistTotal.WithLabelValues("written").Inc()
		default:
			stats.Unchanged++
			persistTotal.WithLabelValues("unchanged").Inc()
		}
	}
	return stats, errors.Join(errs...)
}

func (p *Persister) save(ctx context.Context, rec Record) (bool, error) {
	id := rec.ID()
	prior, err := p.sink.Load(ctx, id)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		p.logger.Info("Writing new portal record",
			zap.String("id", id),
			zap.String("name", rec.Name),
			zap.String("cohort", rec.CohortName),
		)
	case err != nil:
		return false, fmt.Errorf("load %s: %w", id, err)
	case prior == rec:
		return false, nil
	default:
		p.logger.Info("Updating portal record",
			zap.String("id", id),
			zap.String("name", rec.Name),
			zap.String("previous_name", prior.Name),
			zap.String("cohort", rec.CohortName),
			zap.String("previous_cohort", prior.CohortName),
		)
	}

	if err := p.sink.Save(ctx, id, rec); err != nil {
		return false, fmt.Errorf("save %s: %w", id, err)
	}
	return true, nil
}
