// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

// Package similarity trains user-user similarity models whose nearest
// neighbors define evaluation neighborhoods.
//
// UserKNN builds a dense similarity index over every user seen in a ratings
// set. It never predicts ratings; it only answers neighbor queries through
// the neighborhood.Model capabilities:
//
//	knn := similarity.NewUserKNN(similarity.Config{Metric: similarity.Pearson})
//	if err := knn.Train(ctx, ratings); err != nil {
//	    return err
//	}
//	nbhds, err := neighborhood.Build(users, knn, 10)
//
// # Metrics
//
// All metrics are computed over the items two users have both rated:
//
//   - cosine:  sum(a*b) / sqrt(sum(a^2) * sum(b^2))
//   - pearson: centered cosine, centered on the common-item means
//   - msd:     1 / (mean squared difference + 1)
//   - jaccard: |common| / |a ∪ b|
//
// Pairs with fewer than MinCommonItems common items get similarity 0.
// A positive Shrinkage scales similarity by n / (n + Shrinkage).
//
// # Thread Safety
//
// Train acquires an exclusive lock; neighbor queries share a read lock.
package similarity
