// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

// Package analysis runs an end-to-end neighborhood evaluation.
//
// A Runner loads predictions (and ratings) from a Source, trains one
// user-user similarity model per configured metric, builds a neighborhood
// mapping from each, computes neighborhood-level scores and runs the
// critical-neighborhood detectors. Summaries go to a text writer; result
// tables go to an optional Sink.
//
// Every labelled output (tables, summaries, metrics) carries the metric
// name of the clustering it was computed from.
package analysis
