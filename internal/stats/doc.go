// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

// Package stats provides the small set of descriptive and inferential
// statistics used by the critical-neighborhood detector.
//
// Means fail loudly on empty input instead of returning NaN: an empty
// neighborhood or complement means the input is malformed (for example a
// neighborhood size that covers the whole population) and the caller must
// see it.
//
// WelchTTest mirrors the two-sided unequal-variance t-test found in common
// scientific stacks: samples of size one, or two samples without any
// variance, produce a NaN p-value rather than an error.
package stats
