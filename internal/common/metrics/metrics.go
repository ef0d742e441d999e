// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	FlagsRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_flags_raised_total",
			Help: "Flags produced by the rule engine",
		},
		[]string{"phase", "type"},
	)

	PhaseTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_phase_transitions_total",
			Help: "Applicant status changes persisted, by kind (auto, admin, forced)",
		},
		[]string{"from", "to", "kind"},
	)

	WebinarRedemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_webinar_redemptions_total",
			Help: "Webinar code redemption attempts by result",
		},
		[]string{"result"},
	)

	CohortWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_cohort_writes_total",
			Help: "Cohort create/update attempts by result",
		},
		[]string{"result"},
	)
)
