package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the attendance feature.
type Metrics struct {
	ClockIns       prometheus.Counter
	ClockOuts      prometheus.Counter
	BreaksStarted  prometheus.Counter
	BreaksEnded    prometheus.Counter
	ManagerEdits   prometheus.Counter
	ManagerDeletes prometheus.Counter
	StateConflicts prometheus.Counter
}

// New creates and registers all attendance metrics.
func New() *Metrics {
	return &Metrics{
		ClockIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeclock_clock_ins_total",
			Help: "Total number of successful clock-ins",
		}),
		ClockOuts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeclock_clock_outs_total",
			Help: "Total number of successful clock-outs",
		}),
		BreaksStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeclock_breaks_started_total",
			Help: "Total number of breaks started",
		}),
		BreaksEnded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeclock_breaks_ended_total",
			Help: "Total number of breaks ended",
		}),
		ManagerEdits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeclock_manager_edits_total",
			Help: "Total number of manager edits applied to time entries",
		}),
		ManagerDeletes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeclock_manager_deletes_total",
			Help: "Total number of time entries hard-deleted by managers",
		}),
		StateConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeclock_state_conflicts_total",
			Help: "Total number of attendance requests rejected as state conflicts",
		}),
	}
}
