// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

// Package evaluation computes rating-level accuracy and ranking metrics over
// recommender predictions.
//
// Predictions are held in a Table indexed by user. From a Table the package
// derives:
//
//   - Global error measures: MSE, MAE and RMSE (RMSE is exactly sqrt(MSE)).
//   - Neighborhood-level MAE and RMSE, where each user's ratings are pooled
//     with those of every neighbor in a neighborhood.Map.
//   - Per-user precision@k and recall@k at a relevance threshold.
//
// Every function is pure: inputs are never mutated and results depend only
// on their arguments.
package evaluation
