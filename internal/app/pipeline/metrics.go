package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lazo",
		Subsystem: "pipeline",
		Name:      "jobs_submitted_total",
		Help:      "Accepted session submissions by processing mode.",
	}, []string{"mode"})

	submissionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lazo",
		Subsystem: "pipeline",
		Name:      "submissions_rejected_total",
		Help:      "Submissions refused before a job was created.",
	}, []string{"reason"})

	jobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lazo",
		Subsystem: "pipeline",
		Name:      "jobs_finished_total",
		Help:      "Jobs that reached a terminal state.",
	}, []string{"state"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lazo",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Duration of each background stage.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"stage"})

	jobsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lazo",
		Subsystem: "pipeline",
		Name:      "jobs_in_flight",
		Help:      "Jobs currently running in the worker pool.",
	})
)
