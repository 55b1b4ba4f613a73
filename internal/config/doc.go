// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

/*
Package config loads nbhdeval configuration.

Configuration is layered with koanf v2. Later layers override earlier ones:

 1. Defaults: built-in values from defaultConfig
 2. Config file: optional YAML file (CONFIG_PATH, then DefaultConfigPaths)
 3. Environment variables: mapped names such as NBHD_SIZE or LOG_LEVEL

# Sections

  - input: ratings and predictions files, loss derivation
  - neighborhood: neighborhood size
  - similarity: similarity metrics (one clustering per metric) and kNN tuning
  - ranking: top-k cutoff and relevance threshold
  - detector: Welch p-value threshold, concurrency, strict or skip mode
  - output: export directory and format
  - logging: zerolog level and format
  - telemetry: optional metrics/health server for the duration of a run

# Environment Variables

Input:
  - RATINGS_PATH: ratings file used to train similarity (default: predictions)
  - PREDICTIONS_PATH: predictions file under evaluation (required)
  - LOSS_KIND: squared or absolute, used when prediction_loss is absent

Neighborhoods and similarity:
  - NBHD_SIZE: neighbors per user (default: 10)
  - SIMILARITY_METRICS: comma-separated list (default: pearson)
  - SIMILARITY_MIN_COMMON: minimum co-rated items (default: 1)
  - SIMILARITY_SHRINKAGE: shrinkage term, 0 disables (default: 0)
  - SIMILARITY_WORKERS: training workers, 0 uses GOMAXPROCS

Ranking:
  - RANKING_K: top-k cutoff (default: 10)
  - RANKING_THRESHOLD: relevance threshold (default: 3.5)

Detector:
  - P_THRESHOLD: Welch p-value threshold (default: 0.5)
  - DETECTOR_WORKERS: concurrent users, 0 uses GOMAXPROCS
  - SKIP_FAILED_USERS: log and skip users that fail (default: false)

Output:
  - OUTPUT_DIR: export directory, empty disables export
  - OUTPUT_FORMAT: csv, parquet or json (default: csv)

Logging and telemetry:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
  - TELEMETRY_ENABLED, TELEMETRY_ADDR (default: 127.0.0.1:9464)

# Usage

	cfg, err := config.Load()
	if err != nil {
	    return err
	}
	logging.Init(cfg.Logging.ToLoggingConfig())

Validation errors wrap ErrInvalidConfig.
*/
package config
