// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

/*
Package metrics provides Prometheus metrics for neighborhood evaluation runs.

All collectors are registered with the default registry through promauto and
are exposed by the telemetry server at /metrics when it is enabled.

# Available Metrics

Input:
  - nbhdeval_rows_loaded_total: Rows read from input datasets (counter)
    Labels: kind ("ratings", "predictions")

Similarity:
  - nbhdeval_similarity_training_duration_seconds: Model training time (histogram)
    Labels: metric
  - nbhdeval_similarity_users: Users indexed by the last trained model (gauge)
    Labels: metric

Detection:
  - nbhdeval_neighborhoods_evaluated_total: Center users examined (counter)
    Labels: variant ("accuracy", "ranking")
  - nbhdeval_test_passes_total: Neighborhoods passing a test stage (counter)
    Labels: variant, stage ("test1", "test2")
  - nbhdeval_skipped_users_total: Users skipped after a failure (counter)
    Labels: variant
  - nbhdeval_detection_duration_seconds: Detector run time (histogram)
    Labels: variant
  - nbhdeval_critical_neighborhood_percent: Critical share of the last run (gauge)
    Labels: variant, label

Runs:
  - nbhdeval_runs_total: Completed analysis runs (counter)
    Labels: mode, status ("success", "error")

# Usage

	start := time.Now()
	res, err := detector.Accuracy(ctx, nbhds, table, cfg)
	metrics.RecordDetection("accuracy", time.Since(start))
*/
package metrics
