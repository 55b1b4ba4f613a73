// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

// Command nbhdeval evaluates recommender predictions at the level of user
// neighborhoods.
//
// It trains one user-user similarity model per configured metric on the
// observed ratings, builds each user's k-nearest-neighbor neighborhood,
// and flags critical neighborhoods: groups whose predictions are worse
// than the rest of the population while their estimates are statistically
// indistinguishable from it.
//
// # Commands
//
//	nbhdeval accuracy   loss-based detection plus neighborhood MAE/RMSE
//	nbhdeval ranking    precision@k-based detection
//	nbhdeval local      per-user MAE/RMSE only, no neighborhoods
//	nbhdeval all        every analysis above
//	nbhdeval config     print the effective configuration
//
// # Configuration
//
// Settings are layered with koanf: defaults, an optional YAML file
// (--config or CONFIG_PATH), environment variables, then flags. See
// internal/config for every key.
//
// # Example Usage
//
//	nbhdeval accuracy --predictions preds.csv --ratings ratings.dat --size 10
//	PREDICTIONS_PATH=preds.parquet SIMILARITY_METRICS=pearson,cosine nbhdeval all --output-dir out
//
// Summaries are written to stdout and logs to stderr. With
// telemetry.enabled a metrics and status server runs for the duration of
// the run.
package main
