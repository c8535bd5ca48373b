// internal/common/metrics/metrics.go
package metrics

import (
	"strconv"

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

	AssessmentsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psychometric_assessments_generated_total",
			Help: "Assessments issued by the question generator",
		},
		[]string{"assessment_type"},
	)

	Evaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psychometric_evaluations_total",
			Help: "Evaluations computed, by type and whether analysis fell back",
		},
		[]string{"assessment_type", "analysis_fallback"},
	)

	OverallScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "psychometric_overall_score",
			Help:    "Distribution of overall scores on the 0-10 scale",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		},
		[]string{"assessment_type"},
	)

	SkippedResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psychometric_skipped_responses_total",
			Help: "Responses that matched no question or option",
		},
		[]string{"reason"},
	)

	PersistenceWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psychometric_persistence_warnings_total",
			Help: "Non-fatal persistence failures by operation",
		},
		[]string{"operation"},
	)
)

func RecordAssessmentGenerated(assessmentType string) {
	AssessmentsGenerated.WithLabelValues(assessmentType).Inc()
}

func RecordEvaluation(assessmentType string, fallback bool, overall float64) {
	Evaluations.WithLabelValues(assessmentType, strconv.FormatBool(fallback)).Inc()
	OverallScores.WithLabelValues(assessmentType).Observe(overall)
}

func RecordSkippedResponse(reason string) {
	SkippedResponses.WithLabelValues(reason).Inc()
}

func RecordPersistenceWarning(operation string) {
	PersistenceWarnings.WithLabelValues(operation).Inc()
}
