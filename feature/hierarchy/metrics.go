package hierarchy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var crawlsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cohort_indexer_crawls_total",
	Help: "Crawls by result (completed, failed, canceled)",
}, []string{"result"})
