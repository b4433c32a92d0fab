package portals

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var persistTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cohort_indexer_portal_records_total",
	Help: "Portal records seen by the persister, by result",
}, []string{"result"})
