package analyses

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindFull = "full"
	kindDemo = "demo"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "semantic_guard_submissions_total",
		Help: "Committed submissions by kind.",
	}, []string{"kind"})

	collisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "semantic_guard_id_collisions_total",
		Help: "Submissions that replaced an existing record under the same id.",
	}, []string{"kind"})

	archiveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "semantic_guard_archive_failures_total",
		Help: "Archive uploads that failed after a committed submission.",
	})
)
