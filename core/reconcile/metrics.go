package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// attachTotal counts attach calls by outcome
	attachTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cohort_indexer_attach_total",
		Help: "Attach calls by outcome (ok, timeout, other)",
	}, []string{"result"})

	// eventsTotal counts index events by kind
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cohort_indexer_index_events_total",
		Help: "Index events dispatched by kind",
	}, []string{"kind"})

	integrityMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cohort_indexer_integrity_mismatch_total",
		Help: "Notifications received for addresses outside the active pass",
	})

	// passDuration tracks settlement time per pass
	passDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cohort_indexer_pass_duration_seconds",
		Help:    "Pass duration from first attach to settlement",
		Buckets: prometheus.LinearBuckets(1, 2, 10),
	}, []string{"converged"})

	// passSources counts sources by final state at settlement
	passSources = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cohort_indexer_pass_sources_total",
		Help: "Sources by state at the end of a pass",
	}, []string{"state"})
)

func observePass(s *Summary) {
	converged := "false"
	if s.Converged {
		converged = "true"
	}
	passDuration.WithLabelValues(converged).Observe(s.Elapsed.Seconds())

	c := s.Counts
	passSources.WithLabelValues("indexed").Add(float64(c.Indexed))
	passSources.WithLabelValues("timed_out").Add(float64(c.TimedOut))
	passSources.WithLabelValues("errored").Add(float64(c.Errored))
	passSources.WithLabelValues("unresolved").Add(float64(c.Total - c.Resolved()))
}
