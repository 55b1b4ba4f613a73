// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// DuckDB driver - registers the "duckdb" database/sql driver
	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/nbhdeval/internal/evaluation"
	"github.com/tomtom215/nbhdeval/internal/metrics"
	"github.com/tomtom215/nbhdeval/internal/similarity"
)

// Column roles.
const (
	ColUser       = "user"
	ColItem       = "item"
	ColRating     = "rating"
	ColEstimate   = "estimate"
	ColPrediction = "prediction_loss"
)

// ColumnAliases lists the accepted column names per role, matched
// case-insensitively. The first present alias wins.
var ColumnAliases = map[string][]string{
	ColUser:       {"uid", "user_id", "userid", "useri", "user"},
	ColItem:       {"iid", "item_id", "itemid", "movieid", "movie_id", "item"},
	ColRating:     {"r_ui", "rating"},
	ColEstimate:   {"est", "prediction", "estimate"},
	ColPrediction: {"prediction_loss", "loss"},
}

// Store is an in-memory DuckDB instance used for reading and writing files.
type Store struct {
	db *sql.DB
}

// Open creates a Store backed by an in-memory DuckDB database.
func Open() (*Store, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on error path
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// column is a resolved source column.
type column struct {
	name    string
	varchar bool
}

// describe returns the columns of a scan keyed by normalized name.
func (s *Store) describe(ctx context.Context, scan string) (map[string]column, error) {
	rows, err := s.db.QueryContext(ctx, "DESCRIBE SELECT * FROM "+scan)
	if err != nil {
		return nil, fmt.Errorf("describe: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("describe columns: %w", err)
	}

	cols := make(map[string]column)
	for rows.Next() {
		dest := make([]any, len(names))
		vals := make([]sql.NullString, len(names))
		for i := range dest {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan describe row: %w", err)
		}
		// column_name, column_type, null, key, default, extra
		name, typ := vals[0].String, strings.ToUpper(vals[1].String)
		cols[normalize(name)] = column{name: name, varchar: strings.HasPrefix(typ, "VARCHAR")}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate describe: %w", err)
	}
	return cols, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// resolve finds the column for role. Missing optional roles return ok=false.
func resolve(cols map[string]column, role string) (column, bool) {
	for _, alias := range ColumnAliases[role] {
		if c, ok := cols[alias]; ok {
			return c, true
		}
	}
	return column{}, false
}

func require(cols map[string]column, path string, roles ...string) (map[string]column, error) {
	out := make(map[string]column, len(roles))
	for _, role := range roles {
		c, ok := resolve(cols, role)
		if !ok {
			return nil, fmt.Errorf("%w: %s in %s (accepted: %s)",
				ErrMissingColumn, role, path, strings.Join(ColumnAliases[role], ", "))
		}
		out[role] = c
	}
	return out, nil
}

// idSpace is the key domain of one id role. When keys is set it is a query
// yielding every string key of the role as column k, and ids are coded by
// lexical rank within that domain starting at 0. Otherwise ids are cast
// directly.
type idSpace struct {
	keys string
}

// input is a resolved input file.
type input struct {
	path string
	scan string
	cols map[string]column
}

// keysOf returns the query listing the keys of role in in.
func (in input) keysOf(role string) string {
	return fmt.Sprintf("SELECT CAST(%s AS VARCHAR) AS k FROM %s", identQuote(in.cols[role].name), in.scan)
}

// spaceFor builds the id domain of role over inputs. Codes are shared by
// every input, so a key maps to the same id in each of them. Numeric ids
// are kept as they are unless some input stores the role as strings.
func spaceFor(role string, inputs ...input) idSpace {
	coded := false
	for _, in := range inputs {
		coded = coded || in.cols[role].varchar
	}
	if !coded {
		return idSpace{}
	}
	parts := make([]string, len(inputs))
	for i, in := range inputs {
		parts[i] = in.keysOf(role)
	}
	return idSpace{keys: strings.Join(parts, " UNION ")}
}

// selectID returns the select expression of an id column and the join it
// needs, if any. alias names the joined dictionary.
func (sp idSpace) selectID(alias string, c column) (expr, join string) {
	col := "src." + identQuote(c.name)
	if sp.keys == "" {
		return fmt.Sprintf("CAST(%s AS BIGINT)", col), ""
	}
	join = fmt.Sprintf(`
		LEFT JOIN (
			SELECT k, CAST(DENSE_RANK() OVER (ORDER BY k) - 1 AS BIGINT) AS code
			FROM (%s) WHERE k IS NOT NULL
		) AS %s ON %s.k = CAST(%s AS VARCHAR)`, sp.keys, alias, alias, col)
	return alias + ".code", join
}

func doubleExpr(c column) string {
	return fmt.Sprintf("CAST(src.%s AS DOUBLE)", identQuote(c.name))
}

// open resolves the columns of path, requiring roles.
func (s *Store) open(ctx context.Context, kind, path string, roles ...string) (input, map[string]column, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return input{}, nil, err
	}
	if kind == "predictions" && f == FormatMovieLens {
		return input{}, nil, fmt.Errorf("%w: predictions cannot be read from %s", ErrUnsupportedFormat, path)
	}
	scan := scanExpr(path, f)

	all, err := s.describe(ctx, scan)
	if err != nil {
		return input{}, nil, fmt.Errorf("read %s %s: %w", kind, path, err)
	}
	cols, err := require(all, path, roles...)
	if err != nil {
		return input{}, nil, err
	}
	return input{path: path, scan: scan, cols: cols}, all, nil
}

// Ratings reads (user, item, rating) triples from path in file order.
// String ids are coded within this file only; use Inputs to read ratings
// alongside predictions.
func (s *Store) Ratings(ctx context.Context, path string) ([]similarity.Rating, error) {
	in, _, err := s.open(ctx, "ratings", path, ColUser, ColItem, ColRating)
	if err != nil {
		return nil, err
	}
	return s.queryRatings(ctx, in, spaceFor(ColUser, in), spaceFor(ColItem, in))
}

// Predictions reads prediction rows from path, keeping file order. When the
// file has no loss column, loss is derived with kind.
func (s *Store) Predictions(ctx context.Context, path string, kind evaluation.LossKind) ([]evaluation.Prediction, error) {
	in, all, err := s.open(ctx, "predictions", path, ColUser, ColItem, ColRating, ColEstimate)
	if err != nil {
		return nil, err
	}
	return s.queryPredictions(ctx, in, all, kind, spaceFor(ColUser, in), spaceFor(ColItem, in))
}

// Inputs reads a ratings file and a predictions file with one id coding
// shared by both, so a string user id resolves to the same user in each.
func (s *Store) Inputs(ctx context.Context, ratingsPath, predictionsPath string, kind evaluation.LossKind) ([]similarity.Rating, []evaluation.Prediction, error) {
	rin, _, err := s.open(ctx, "ratings", ratingsPath, ColUser, ColItem, ColRating)
	if err != nil {
		return nil, nil, err
	}
	pin, pall, err := s.open(ctx, "predictions", predictionsPath, ColUser, ColItem, ColRating, ColEstimate)
	if err != nil {
		return nil, nil, err
	}

	users := spaceFor(ColUser, rin, pin)
	items := spaceFor(ColItem, rin, pin)

	ratings, err := s.queryRatings(ctx, rin, users, items)
	if err != nil {
		return nil, nil, err
	}
	preds, err := s.queryPredictions(ctx, pin, pall, kind, users, items)
	if err != nil {
		return nil, nil, err
	}
	return ratings, preds, nil
}

// Window functions used for id coding do not preserve scan order, so every
// read re-sorts on the row number taken before coding.
func (s *Store) queryRatings(ctx context.Context, in input, users, items idSpace) ([]similarity.Rating, error) {
	userExpr, userJoin := users.selectID("udict", in.cols[ColUser])
	itemExpr, itemJoin := items.selectID("idict", in.cols[ColItem])

	query := fmt.Sprintf(`
		WITH src AS (SELECT *, ROW_NUMBER() OVER () AS rn FROM %s)
		SELECT %s, %s, %s FROM src%s%s ORDER BY src.rn`,
		in.scan, userExpr, itemExpr, doubleExpr(in.cols[ColRating]), userJoin, itemJoin)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ratings %s: %w", in.path, err)
	}
	defer rows.Close()

	var ratings []similarity.Rating
	for rows.Next() {
		var r similarity.Rating
		if err := rows.Scan(&r.UserID, &r.ItemID, &r.Value); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}

	metrics.RecordRowsLoaded("ratings", len(ratings))
	return ratings, nil
}

func (s *Store) queryPredictions(ctx context.Context, in input, all map[string]column, kind evaluation.LossKind, users, items idSpace) ([]evaluation.Prediction, error) {
	lossCol, hasLoss := resolve(all, ColPrediction)
	lossExpr := "CAST(NULL AS DOUBLE)"
	if hasLoss {
		lossExpr = doubleExpr(lossCol)
	}
	userExpr, userJoin := users.selectID("udict", in.cols[ColUser])
	itemExpr, itemJoin := items.selectID("idict", in.cols[ColItem])

	query := fmt.Sprintf(`
		WITH src AS (SELECT *, ROW_NUMBER() OVER () AS rn FROM %s)
		SELECT %s, %s, %s, %s, %s FROM src%s%s ORDER BY src.rn`,
		in.scan,
		userExpr, itemExpr,
		doubleExpr(in.cols[ColRating]), doubleExpr(in.cols[ColEstimate]), lossExpr,
		userJoin, itemJoin)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query predictions %s: %w", in.path, err)
	}
	defer rows.Close()

	var preds []evaluation.Prediction
	for rows.Next() {
		var p evaluation.Prediction
		var loss sql.NullFloat64
		if err := rows.Scan(&p.UserID, &p.ItemID, &p.TrueRating, &p.Estimate, &loss); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if loss.Valid {
			p.Loss = loss.Float64
		} else {
			p.Loss = kind.Of(p)
		}
		preds = append(preds, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}

	metrics.RecordRowsLoaded("predictions", len(preds))
	return preds, nil
}
