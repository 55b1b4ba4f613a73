// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/nbhdeval/internal/report"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// Export writes t to path in format f through a temporary DuckDB table.
// Tables without rows still produce a file (with header for CSV).
func (s *Store) Export(ctx context.Context, t report.Table, path string, f Format) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("export %s: table has no columns", t.Name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export %s: %w", t.Name, err)
	}

	// Temporary tables are connection-local, so pin one connection.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("export %s: acquire connection: %w", t.Name, err)
	}
	defer conn.Close() //nolint:errcheck // connection returns to the pool

	staging := identQuote("export_" + unsafeName.ReplaceAllString(t.Name, "_"))
	types := columnTypes(t)

	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = identQuote(c) + " " + types[i]
	}
	if _, err := conn.ExecContext(ctx, fmt.Sprintf("CREATE OR REPLACE TEMP TABLE %s (%s)", staging, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("export %s: create staging table: %w", t.Name, err)
	}
	defer conn.ExecContext(context.Background(), "DROP TABLE IF EXISTS "+staging) //nolint:errcheck // best-effort cleanup

	if err := insertRows(ctx, conn, staging, t); err != nil {
		return fmt.Errorf("export %s: %w", t.Name, err)
	}

	copySQL := fmt.Sprintf("COPY %s TO %s %s", staging, sqlQuote(path), copyOptions(f))
	if _, err := conn.ExecContext(ctx, copySQL); err != nil {
		return fmt.Errorf("export %s: copy to %s: %w", t.Name, path, err)
	}
	return nil
}

type execer interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

func insertRows(ctx context.Context, conn execer, staging string, t report.Table) error {
	if len(t.Rows) == 0 {
		return nil
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", staging, placeholders))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Columns))
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
		for j, v := range row {
			a, err := sqlValue(v)
			if err != nil {
				return fmt.Errorf("row %d column %s: %w", i, t.Columns[j], err)
			}
			args[j] = a
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// columnTypes infers DuckDB column types from the first row.
func columnTypes(t report.Table) []string {
	types := make([]string, len(t.Columns))
	for i := range types {
		types[i] = "VARCHAR"
		if len(t.Rows) == 0 || i >= len(t.Rows[0]) {
			continue
		}
		switch t.Rows[0][i].(type) {
		case int, int64:
			types[i] = "BIGINT"
		case float64:
			types[i] = "DOUBLE"
		}
	}
	return types
}

// sqlValue converts a table cell to a driver value. Neighbor lists become
// JSON arrays.
func sqlValue(v any) (any, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int64, float64, string:
		return x, nil
	case []int:
		if x == nil {
			x = []int{}
		}
		b, err := json.Marshal(x)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return fmt.Sprint(x), nil
	}
}
