// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a file format understood by DuckDB.
type Format string

// Supported formats.
const (
	FormatCSV       Format = "csv"
	FormatMovieLens Format = "dat"
	FormatParquet   Format = "parquet"
	FormatJSON      Format = "json"
)

// ErrUnsupportedFormat is returned for unknown file extensions or format names.
var ErrUnsupportedFormat = errors.New("dataset: unsupported format")

// ErrMissingColumn is returned when a required column has no alias match.
var ErrMissingColumn = errors.New("dataset: missing column")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatMovieLens, FormatParquet, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".dat":
		return FormatMovieLens, nil
	case ".parquet", ".pq":
		return FormatParquet, nil
	case ".json", ".jsonl", ".ndjson":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Extension returns the file extension written for f.
func (f Format) Extension() string {
	switch f {
	case FormatParquet:
		return ".parquet"
	case FormatJSON:
		return ".json"
	default:
		return ".csv"
	}
}

// scanExpr returns the table function reading path.
func scanExpr(path string, f Format) string {
	switch f {
	case FormatMovieLens:
		return fmt.Sprintf("read_csv(%s, delim='::', header=false, "+
			"columns={'user_id': 'BIGINT', 'item_id': 'BIGINT', 'rating': 'DOUBLE', 'timestamp': 'BIGINT'})",
			sqlQuote(path))
	case FormatParquet:
		return fmt.Sprintf("read_parquet(%s)", sqlQuote(path))
	case FormatJSON:
		return fmt.Sprintf("read_json_auto(%s)", sqlQuote(path))
	default:
		return fmt.Sprintf("read_csv_auto(%s, header=true)", sqlQuote(path))
	}
}

// copyOptions returns the COPY ... TO options for f.
func copyOptions(f Format) string {
	switch f {
	case FormatParquet:
		return "(FORMAT PARQUET)"
	case FormatJSON:
		return "(FORMAT JSON)"
	default:
		return "(FORMAT CSV, HEADER)"
	}
}

// sqlQuote quotes s as a SQL string literal. Table functions and COPY
// targets do not accept bound parameters.
func sqlQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// identQuote quotes s as a SQL identifier.
func identQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
