package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the fixtures ETL service

var (
	// API call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixtures_api_calls_total",
			Help: "Total number of API-Football calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fixtures_api_call_duration_seconds",
			Help:    "Duration of API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	RateLimitWaitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixtures_rate_limit_waits_total",
			Help: "Total number of rate-limit suspensions by kind (daily, minute, 429)",
		},
		[]string{"kind"},
	)

	// Normalizer metrics
	FixturesNormalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fixtures_normalized_total",
			Help: "Total number of raw fixture records normalized successfully",
		},
	)

	FixturesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fixtures_skipped_total",
			Help: "Total number of raw fixture records skipped as malformed",
		},
	)

	// Change detection and update metrics
	ChangesDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixtures_changes_detected_total",
			Help: "Total number of fixture changes detected by reason",
		},
		[]string{"reason"},
	)

	UpdatesApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fixtures_updates_applied_total",
			Help: "Total number of fixture rows updated in the canonical table",
		},
	)

	// Pipeline metrics
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixtures_pipeline_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"mode", "status"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fixtures_pipeline_duration_seconds",
			Help:    "Duration of pipeline runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"mode"},
	)

	// Snapshot metrics
	SnapshotWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fixtures_snapshot_write_duration_seconds",
			Help:    "Duration of snapshot writes in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"format"},
	)

	FixturesStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fixtures_stored_total",
			Help: "Total number of fixtures in the canonical table",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixtures_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fixtures_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fixtures_last_successful_run_timestamp",
			Help: "Timestamp of last successful pipeline run",
		},
	)
)

// RecordAPICall records an API call metric.
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordRateLimitWait records a rate-limit suspension.
func RecordRateLimitWait(kind string) {
	RateLimitWaitsTotal.WithLabelValues(kind).Inc()
}

// RecordNormalized records normalizer output counts.
func RecordNormalized(valid, skipped int) {
	FixturesNormalized.Add(float64(valid))
	FixturesSkipped.Add(float64(skipped))
}

// RecordChange records a detected change by reason.
func RecordChange(reason string) {
	ChangesDetected.WithLabelValues(reason).Inc()
}

// RecordUpdatesApplied records applied update rows.
func RecordUpdatesApplied(count int) {
	UpdatesApplied.Add(float64(count))
}

// RecordPipelineRun records a pipeline run.
func RecordPipelineRun(mode, status string, duration float64) {
	PipelineRunsTotal.WithLabelValues(mode, status).Inc()
	PipelineDuration.WithLabelValues(mode).Observe(duration)

	if status == "success" {
		LastSuccessfulRun.SetToCurrentTime()
	}
}

// RecordSnapshotWrite records a snapshot write duration.
func RecordSnapshotWrite(format string, duration float64) {
	SnapshotWriteDuration.WithLabelValues(format).Observe(duration)
}

// RecordError records an error.
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
