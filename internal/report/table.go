// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package report

import (
	"github.com/tomtom215/nbhdeval/internal/detector"
	"github.com/tomtom215/nbhdeval/internal/evaluation"
	"github.com/tomtom215/nbhdeval/internal/neighborhood"
)

// Table is a named, column-oriented result set. Cells hold int, float64,
// string or []int values.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// TabulateAccuracy converts the critical rows of an accuracy run.
func TabulateAccuracy(name string, res *detector.AccuracyResult) Table {
	t := Table{
		Name: name,
		Columns: []string{
			"uid", "nbhd", "nbhd_size", "equiv_size",
			"mse_nbhd", "mse_equiv", "mae_nbhd", "mae_equiv", "rmse_nbhd", "rmse_equiv",
			"p_value",
		},
		Rows: make([][]any, 0, len(res.Critical)),
	}
	for _, r := range res.Critical {
		t.Rows = append(t.Rows, []any{
			r.UserID, r.Neighbors, r.NeighborhoodSize, r.ComplementSize,
			r.MSENeighborhood, r.MSEComplement, r.MAENeighborhood, r.MAEComplement,
			r.RMSENeighborhood, r.RMSEComplement, r.PValue,
		})
	}
	return t
}

// TabulateRanking converts the critical rows of a ranking run.
func TabulateRanking(name string, res *detector.RankingResult) Table {
	t := Table{
		Name: name,
		Columns: []string{
			"uid", "nbhd", "nbhd_size", "equiv_size",
			"precision_nbhd", "precision_equiv", "recall_nbhd", "recall_equiv", "f1_nbhd", "f1_equiv",
			"p_value",
		},
		Rows: make([][]any, 0, len(res.Critical)),
	}
	for _, r := range res.Critical {
		t.Rows = append(t.Rows, []any{
			r.UserID, r.Neighbors, r.NeighborhoodSize, r.ComplementSize,
			r.PrecisionNeighborhood, r.PrecisionComplement, r.RecallNeighborhood, r.RecallComplement,
			r.F1Neighborhood, r.F1Complement, r.PValue,
		})
	}
	return t
}

// TabulateCandidates converts Test 1 candidates.
func TabulateCandidates(name string, cs []detector.Candidate) Table {
	t := Table{Name: name, Columns: []string{"uid", "nbhd", "delta"}, Rows: make([][]any, 0, len(cs))}
	for _, c := range cs {
		t.Rows = append(t.Rows, []any{c.UserID, c.Neighbors, c.Delta})
	}
	return t
}

// TabulateGroupScores converts neighborhood-level scores for one metric.
func TabulateGroupScores(name, metric string, scores []evaluation.GroupScore) Table {
	t := Table{Name: name, Columns: []string{"user_id", metric, "neighborhood_size"}, Rows: make([][]any, 0, len(scores))}
	for _, s := range scores {
		t.Rows = append(t.Rows, []any{s.UserID, s.Value, s.Size})
	}
	return t
}

// TabulateLocal converts per-user local accuracy.
func TabulateLocal(name string, scores []evaluation.LocalScore) Table {
	t := Table{Name: name, Columns: []string{"user_id", "mae", "rmse", "count"}, Rows: make([][]any, 0, len(scores))}
	for _, s := range scores {
		t.Rows = append(t.Rows, []any{s.UserID, s.MAE, s.RMSE, s.Count})
	}
	return t
}

// TabulateScores converts a per-user precision or recall table.
func TabulateScores(name, metric string, scores evaluation.ScoreTable) Table {
	t := Table{Name: name, Columns: []string{"user_id", metric}, Rows: make([][]any, 0, len(scores))}
	for _, s := range scores {
		t.Rows = append(t.Rows, []any{s.UserID, s.Value})
	}
	return t
}

// TabulateNeighborhoods converts a neighborhood mapping, one row per center.
func TabulateNeighborhoods(name string, m neighborhood.Map) Table {
	users := m.Users()
	t := Table{Name: name, Columns: []string{"uid", "nbhd"}, Rows: make([][]any, 0, len(users))}
	for _, uid := range users {
		nbrs, _ := m.Neighbors(uid)
		t.Rows = append(t.Rows, []any{uid, nbrs})
	}
	return t
}
