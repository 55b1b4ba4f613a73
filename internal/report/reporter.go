// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"github.com/tomtom215/nbhdeval/internal/detector"
	"github.com/tomtom215/nbhdeval/internal/evaluation"
)

// Reporter writes human-readable results.
type Reporter struct {
	w io.Writer
}

// New creates a Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Accuracy prints the accuracy run summary.
func (r *Reporter) Accuracy(label string, res *detector.AccuracyResult) error {
	s := res.Summary
	return r.lines(
		"Clustering method used: "+label,
		"total nbhds - test1: "+strconv.Itoa(s.Test1Passed),
		"total nbhds - test2: "+strconv.Itoa(s.Test2Passed),
		"total nbhds - test3 - MSE: "+strconv.Itoa(s.WorseMSE),
		"total nbhds - test3 - MAE: "+strconv.Itoa(s.WorseMAE),
		"total nbhds - test3 - RMSE: "+strconv.Itoa(s.WorseRMSE),
		"Critical nbhd % "+formatPercent(s.CriticalPercent),
		"",
	)
}

// Ranking prints the ranking run summary.
func (r *Reporter) Ranking(label string, res *detector.RankingResult) error {
	s := res.Summary
	return r.lines(
		"Clustering method used: "+label,
		"total nbhds - test1: "+strconv.Itoa(s.Test1Passed),
		"total nbhds - test2: "+strconv.Itoa(s.Test2Passed),
		"total nbhds - test3 - precision: "+strconv.Itoa(s.WorsePrecision),
		"total nbhds - test3 - recall: "+strconv.Itoa(s.WorseRecall),
		"total nbhds - test3 - F1: "+strconv.Itoa(s.WorseF1),
		"Percentage of critical neighborhoods: "+formatPercent(s.CriticalPercent),
		"",
	)
}

// Skipped lists users a lenient run could not evaluate.
func (r *Reporter) Skipped(failures []detector.Failure) error {
	if len(failures) == 0 {
		return nil
	}
	lines := make([]string, 0, len(failures)+1)
	lines = append(lines, "Skipped users: "+strconv.Itoa(len(failures)))
	for _, f := range failures {
		lines = append(lines, "  "+f.Error())
	}
	return r.lines(lines...)
}

// AccuracyTable prints the critical rows of an accuracy run.
func (r *Reporter) AccuracyTable(res *detector.AccuracyResult) error {
	return r.Table(TabulateAccuracy("critical_accuracy", res))
}

// RankingTable prints the critical rows of a ranking run.
func (r *Reporter) RankingTable(res *detector.RankingResult) error {
	return r.Table(TabulateRanking("critical_ranking", res))
}

// GroupScores prints per-user neighborhood scores for one metric.
func (r *Reporter) GroupScores(metric string, scores []evaluation.GroupScore) error {
	return r.Table(TabulateGroupScores("neighborhood_"+strings.ToLower(metric), metric, scores))
}

// Table prints t with aligned columns. Floats use four decimals.
func (r *Reporter) Table(t Table) error {
	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(t.Columns, "\t")); err != nil {
		return err
	}
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// JSON writes v as indented JSON.
func (r *Reporter) JSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Reporter) lines(ls ...string) error {
	for _, l := range ls {
		if _, err := fmt.Fprintln(r.w, l); err != nil {
			return err
		}
	}
	return nil
}

// formatPercent prints whole numbers with one decimal, like 50.0, and
// everything else with its shortest representation.
func formatPercent(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatCell(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', 4, 64)
	case []int:
		parts := make([]string, len(x))
		for i, n := range x {
			parts[i] = strconv.Itoa(n)
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprint(x)
	}
}
