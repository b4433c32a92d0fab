package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cohort-indexer/core/address"
	"cohort-indexer/core/blacklist"
	"cohort-indexer/core/index"
	"cohort-indexer/core/reconcile"
	"cohort-indexer/feature/portals"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrMasterUnresolved is returned when the master list yields no document.
var ErrMasterUnresolved = errors.New("master list could not be resolved")

// Resolver runs crawls over the hierarchy.
type Resolver struct {
	store     *index.Store
	persister *portals.Persister
	blacklist *blacklist.Filter
	cfg       Config
	logger    *zap.Logger
}

// NewResolver creates a resolver.
func NewResolver(store *index.Store, persister *portals.Persister, bl *blacklist.Filter, cfg Config, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		store:     store,
		persister: persister,
		blacklist: bl,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run performs one crawl. An empty runID is replaced by a new one. The
// report is returned even when the crawl fails.
func (r *Resolver) Run(ctx context.Context, runID string) (*Report, error) {
	if runID == "" {
		runID = uuid.NewString()
	}
	report := &Report{RunID: runID, Started: time.Now()}
	logger := r.logger.With(zap.String("run_id", runID))
	defer func() { report.Finished = time.Now() }()

	logger.Info("Crawl started", zap.String("master", r.cfg.MasterAddress))

	lists, err := r.resolveMaster(ctx, logger, report)
	if err != nil {
		crawlsTotal.WithLabelValues("failed").Inc()
		return report, err
	}

	cohorts, err := r.resolveCohorts(ctx, logger, report, lists)
	if err != nil {
		crawlsTotal.WithLabelValues("failed").Inc()
		return report, err
	}

	claims := make(portals.Claims)
	for _, c := range cohorts {
		if err := ctx.Err(); err != nil {
			crawlsTotal.WithLabelValues("canceled").Inc()
			return report, err
		}
		report.Cohorts = append(report.Cohorts, r.resolveCohort(ctx, logger, c, claims))
	}

	crawlsTotal.WithLabelValues("completed").Inc()
	logger.Info("Crawl finished",
		zap.Int("cohorts", len(report.Cohorts)),
		zap.Int("written", report.Written()),
		zap.Duration("elapsed", time.Since(report.Started)),
	)
	return report, nil
}

func (r *Resolver) pass(name string, ix reconcile.Attacher, logger *zap.Logger) *reconcile.Pass {
	return &reconcile.Pass{
		Name:        name,
		Index:       ix,
		Blacklist:   r.blacklist,
		Logger:      logger,
		Settle:      r.cfg.Settle(),
		Concurrency: r.cfg.Concurrency,
	}
}

// openIndex opens a named index with the portal table.
func (r *Resolver) openIndex(ctx context.Context, name, table string) (*index.Index, error) {
	ix := r.store.Index(name)
	if err := ix.Define(table, PortalDefinition); err != nil {
		return nil, err
	}
	if err := ix.Open(ctx); err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", name, err)
	}
	return ix, nil
}

// resolveMaster returns the cohort list addresses named by the master list.
func (r *Resolver) resolveMaster(ctx context.Context, logger *zap.Logger, report *Report) ([]string, error) {
	ix, err := r.openIndex(ctx, MasterIndex, MasterIndex)
	if err != nil {
		return nil, err
	}
	defer ix.Close()

	summary, err := r.pass(MasterIndex, ix, logger).Run(ctx, []string{r.cfg.MasterAddress})
	if err != nil {
		return nil, err
	}
	report.Master = summary

	docs, err := ix.Query(MasterIndex).All(ctx)
	if err != nil {
		return nil, err
	}
	master := address.Normalize(r.cfg.MasterAddress)
	for _, doc := range docs {
		if doc.Source != master {
			continue
		}
		lists := doc.Strings("port")
		logger.Info("Master list resolved",
			zap.String("name", doc.String("name")),
			zap.Int("cohort_lists", len(lists)),
		)
		return lists, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrMasterUnresolved, r.cfg.MasterAddress)
}

// resolveCohorts attaches every cohort list address and returns the documents
// that name a cohort.
func (r *Resolver) resolveCohorts(ctx context.Context, logger *zap.Logger, report *Report, lists []string) ([]Cohort, error) {
	ix, err := r.openIndex(ctx, CohortsIndex, CohortsIndex)
	if err != nil {
		return nil, err
	}
	defer ix.Close()

	if removed, err := r.blacklist.Prune(ctx, ix); err != nil {
		logger.Warn("Failed to prune blacklisted cohort lists", zap.Error(err))
	} else if len(removed) > 0 {
		logger.Info("Pruned blacklisted cohort lists", zap.Strings("removed", removed))
	}

	summary, err := r.pass(CohortsIndex, ix, logger).Run(ctx, lists)
	if err != nil {
		return nil, err
	}
	report.Lists = summary

	docs, err := ix.Query(CohortsIndex).OrderBy("name").All(ctx)
	if err != nil {
		return nil, err
	}

	attached := make(map[string]struct{}, len(summary.Fetchers))
	for _, f := range summary.Fetchers {
		attached[f.NormalizedAddress] = struct{}{}
	}

	var cohorts []Cohort
	seen := make(map[string]struct{})
	for _, doc := range docs {
		if _, ok := attached[doc.Source]; !ok {
			continue
		}
		name := doc.String("name")
		if !strings.HasPrefix(name, r.cfg.CohortPrefix) {
			logger.Info("Skipping non-cohort list", zap.String("name", name), zap.String("address", doc.Source))
			report.NotCohorts = append(report.NotCohorts, name)
			continue
		}
		if _, dup := seen[name]; dup {
			logger.Warn("Skipping duplicate cohort name", zap.String("name", name), zap.String("address", doc.Source))
			continue
		}
		seen[name] = struct{}{}
		cohorts = append(cohorts, Cohort{Name: name, Address: doc.Source, Members: doc.Strings("port")})
	}
	logger.Info("Cohorts resolved", zap.Int("cohorts", len(cohorts)))
	return cohorts, nil
}

// resolveCohort runs the member pass of one cohort and persists its portals.
// Errors are recorded on the report rather than returned.
func (r *Resolver) resolveCohort(ctx context.Context, logger *zap.Logger, c Cohort, claims portals.Claims) CohortReport {
	logger = logger.With(zap.String("cohort", c.Name))
	out := CohortReport{Name: c.Name, Address: c.Address}
	fail := func(err error) CohortReport {
		logger.Error("Cohort failed", zap.Error(err))
		out.Error = err.Error()
		return out
	}

	logger.Info("Processing cohort", zap.Int("members", len(c.Members)))

	ix, err := r.openIndex(ctx, c.Name, PortalsTable)
	if err != nil {
		return fail(err)
	}
	defer ix.Close()

	removed, err := r.blacklist.Prune(ctx, ix)
	if err != nil {
		logger.Warn("Failed to prune blacklisted sources", zap.Error(err))
	}
	out.Removed = removed
	for _, a := range removed {
		logger.Info("Removed blacklisted source", zap.String("address", a))
	}

	summary, err := r.pass(c.Name, ix, logger).Run(ctx, c.Members)
	if err != nil {
		return fail(err)
	}
	out.Pass = summary

	docs, err := ix.Query(PortalsTable).OrderBy("name").All(ctx)
	if err != nil {
		return fail(err)
	}
	stats, err := r.persister.Persist(ctx, c.Name, docs, claims)
	out.Persist = stats
	if err != nil {
		return fail(err)
	}
	logger.Info("Cohort persisted",
		zap.Int("written", stats.Written),
		zap.Int("unchanged", stats.Unchanged),
		zap.Int("skipped", stats.Skipped),
	)
	return out
}
