// Package observability exposes the Prometheus instrumentation for the
// screening pipeline and the audit trail.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Screenings counts completed screenings by resolved strategy and
	// sensitivity level.
	Screenings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dlpgate_screenings_total",
		Help: "Completed screenings by processing strategy and sensitivity level.",
	}, []string{"strategy", "level"})

	// Rejections counts screenings that resolved to a non-permitted decision.
	Rejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dlpgate_rejections_total",
		Help: "Screenings rejected by the enterprise policy.",
	})

	// AuditWriteFailures counts audit events that could not be written to the
	// primary trail and fell through to the emergency log.
	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dlpgate_audit_write_failures_total",
		Help: "Audit events diverted to the emergency log after a primary write failure.",
	})

	// SensitiveAlerts counts synchronous alerts raised for confidential or
	// top-secret content.
	SensitiveAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dlpgate_sensitive_alerts_total",
		Help: "Alerts raised for screenings at confidential level or above.",
	})

	// ScreeningDuration observes end-to-end screening latency.
	ScreeningDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dlpgate_screening_duration_seconds",
		Help:    "End-to-end screening latency.",
		Buckets: prometheus.DefBuckets,
	})

	// CacheHits counts screening-cache hits and misses.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dlpgate_screening_cache_total",
		Help: "Screening cache lookups by outcome.",
	}, []string{"outcome"})
)
