// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

// Package dataset reads ratings and predictions and writes result tables
// through an in-memory DuckDB instance.
//
// # Inputs
//
// Files are read with DuckDB's table functions, chosen by extension:
//
//	.csv .tsv .txt     read_csv_auto (header detected)
//	.dat               read_csv with "::" delimiter, no header
//	                   (user_id::item_id::rating::timestamp)
//	.parquet           read_parquet
//	.json .jsonl       read_json_auto
//
// Column names are matched case-insensitively after trimming whitespace,
// against the aliases in ColumnAliases. String-typed user or item columns
// are encoded to dense integer codes in lexical order. Store.Inputs codes a
// ratings file and a predictions file over the union of their keys, so the
// same string id is the same user in both.
//
// A predictions file without a prediction_loss column gets one derived
// from r_ui and est with the configured evaluation.LossKind.
//
// # Outputs
//
// Export stages a report.Table in a temporary DuckDB table and writes it
// with COPY as CSV (with header), Parquet or JSON lines. Neighbor lists
// are stored as JSON arrays.
package dataset
