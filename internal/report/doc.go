// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

// Package report renders detection and metric results for people and for
// exporters.
//
// Reporter writes the run summaries and aligned text tables to an
// io.Writer. The Tabulate functions turn results into a column-oriented
// Table that the dataset package can write to CSV, Parquet or JSON files.
// Nothing in this package computes metrics.
package report
