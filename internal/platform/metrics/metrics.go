package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	InspectionsFinalized prometheus.Counter
	InspectionsReopened  prometheus.Counter
	ItemsCompleted       prometheus.Counter
	SnapshotsServed      prometheus.Counter
	RequestDuration      *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		InspectionsFinalized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quarters_inspections_finalized_total",
			Help: "Total number of inspections finalized",
		}),
		InspectionsReopened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quarters_inspections_reopened_total",
			Help: "Total number of finalized inspections reopened",
		}),
		ItemsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quarters_checklist_items_completed_total",
			Help: "Total number of checklist items marked complete",
		}),
		SnapshotsServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quarters_compliance_snapshots_total",
			Help: "Total number of compliance snapshots computed",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quarters_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
