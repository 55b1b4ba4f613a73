// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Input Metrics
	RowsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbhdeval_rows_loaded_total",
			Help: "Total number of rows read from input datasets",
		},
		[]string{"kind"},
	)

	// Similarity Metrics
	SimilarityTrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nbhdeval_similarity_training_duration_seconds",
			Help:    "Duration of user similarity model training in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"metric"},
	)

	SimilarityUsers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nbhdeval_similarity_users",
			Help: "Number of users indexed by the last trained similarity model",
		},
		[]string{"metric"},
	)

	// Detection Metrics
	NeighborhoodsEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbhdeval_neighborhoods_evaluated_total",
			Help: "Total number of neighborhoods examined by a detector",
		},
		[]string{"variant"},
	)

	TestPasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbhdeval_test_passes_total",
			Help: "Total number of neighborhoods passing a detection test stage",
		},
		[]string{"variant", "stage"},
	)

	SkippedUsers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbhdeval_skipped_users_total",
			Help: "Total number of center users skipped after a per-user failure",
		},
		[]string{"variant"},
	)

	DetectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nbhdeval_detection_duration_seconds",
			Help:    "Duration of a critical-neighborhood detection run in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"variant"},
	)

	CriticalPercent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nbhdeval_critical_neighborhood_percent",
			Help: "Percentage of critical neighborhoods found by the last run",
		},
		[]string{"variant", "label"},
	)

	// Run Metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbhdeval_runs_total",
			Help: "Total number of completed analysis runs",
		},
		[]string{"mode", "status"},
	)

	// Telemetry Server Metrics
	TelemetryRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbhdeval_telemetry_requests_total",
			Help: "Total number of telemetry HTTP requests",
		},
		[]string{"route", "status"},
	)

	TelemetryRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nbhdeval_telemetry_request_duration_seconds",
			Help:    "Telemetry HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// RecordRowsLoaded records rows read from an input dataset
func RecordRowsLoaded(kind string, n int) {
	RowsLoaded.WithLabelValues(kind).Add(float64(n))
}

// RecordSimilarityTraining records a finished similarity model training
func RecordSimilarityTraining(metric string, duration time.Duration, users int) {
	SimilarityTrainingDuration.WithLabelValues(metric).Observe(duration.Seconds())
	SimilarityUsers.WithLabelValues(metric).Set(float64(users))
}

// RecordNeighborhoods records the number of neighborhoods a detector examined
func RecordNeighborhoods(variant string, n int) {
	NeighborhoodsEvaluated.WithLabelValues(variant).Add(float64(n))
}

// RecordTestPass records one neighborhood passing the given stage
func RecordTestPass(variant, stage string) {
	TestPasses.WithLabelValues(variant, stage).Inc()
}

// RecordSkippedUser records a center user dropped in lenient mode
func RecordSkippedUser(variant string) {
	SkippedUsers.WithLabelValues(variant).Inc()
}

// RecordDetection records the duration of a detector run
func RecordDetection(variant string, duration time.Duration) {
	DetectionDuration.WithLabelValues(variant).Observe(duration.Seconds())
}

// SetCriticalPercent publishes the critical share of a labelled run
func SetCriticalPercent(variant, label string, percent float64) {
	CriticalPercent.WithLabelValues(variant, label).Set(percent)
}

// RecordRun records the outcome of an analysis run
func RecordRun(mode string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RunsTotal.WithLabelValues(mode, status).Inc()
}

// RecordTelemetryRequest records one telemetry HTTP request
func RecordTelemetryRequest(route, status string, duration time.Duration) {
	TelemetryRequests.WithLabelValues(route, status).Inc()
	TelemetryRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
