// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

// Package detector finds critical neighborhoods: groups of users on which a
// recommender performs measurably worse than on everyone else while its
// estimates look statistically indistinguishable.
//
// For each center user u, N(u) is u together with its neighbors and D'(u)
// is every other user. Two tests run in order:
//
//  1. A directional check. The accuracy variant asks whether the mean
//     prediction loss of N exceeds that of D'. The ranking variant asks
//     whether mean precision@k of N is below that of D'.
//  2. Only for neighborhoods passing the first check, Welch's t-test on the
//     estimates of N against D'. The neighborhood is critical when the
//     two-sided p-value exceeds Config.PThreshold, i.e. the model's output
//     does not reveal the gap.
//
// Both variants evaluate users concurrently and always return results
// ordered by center user id, so repeated runs on the same input produce
// identical output.
package detector
