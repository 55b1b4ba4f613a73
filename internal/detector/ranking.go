// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package detector

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/nbhdeval/internal/evaluation"
	"github.com/tomtom215/nbhdeval/internal/logging"
	"github.com/tomtom215/nbhdeval/internal/neighborhood"
	"github.com/tomtom215/nbhdeval/internal/stats"
)

// RankingRow describes a critical neighborhood found by the ranking variant.
type RankingRow struct {
	UserID    int   `json:"uid"`
	Neighbors []int `json:"nbhd"`

	// NeighborhoodSize and ComplementSize count prediction rows.
	NeighborhoodSize int `json:"nbhd_size"`
	ComplementSize   int `json:"equiv_size"`

	PrecisionNeighborhood float64 `json:"precision_nbhd"`
	PrecisionComplement   float64 `json:"precision_equiv"`
	RecallNeighborhood    float64 `json:"recall_nbhd"`
	RecallComplement      float64 `json:"recall_equiv"`
	F1Neighborhood        float64 `json:"f1_nbhd"`
	F1Complement          float64 `json:"f1_equiv"`

	PValue float64 `json:"p_value"`
}

// RankingSummary holds the counts reported after a ranking run.
type RankingSummary struct {
	Neighborhoods int `json:"neighborhoods"`
	Test1Passed   int `json:"test1"`
	Test2Passed   int `json:"test2"`

	// Worse* count critical rows whose metric on N is below that on D'.
	WorsePrecision int `json:"test3_precision"`
	WorseRecall    int `json:"test3_recall"`
	WorseF1        int `json:"test3_f1"`

	CriticalPercent float64 `json:"critical_percent"`
}

// RankingResult is the outcome of Ranking.
type RankingResult struct {
	Test1    []Candidate    `json:"test1"`
	Critical []RankingRow   `json:"critical"`
	Skipped  []Failure      `json:"skipped,omitempty"`
	Summary  RankingSummary `json:"summary"`
}

// ErrMissingScores is returned when the precision or recall table is empty.
var ErrMissingScores = errors.New("detector: empty precision or recall table")

// Ranking finds neighborhoods whose mean precision@k is below that of the
// rest of the population while the Welch test on estimates accepts.
//
// precisions and recalls are per-user tables as produced by
// evaluation.PrecisionRecallAtK over the same predictions as t.
func Ranking(ctx context.Context, m neighborhood.Map, t *evaluation.Table, precisions, recalls evaluation.ScoreTable, cfg Config) (*RankingResult, error) {
	const variant = "ranking"
	start := time.Now()
	ctx = logging.ContextWithStage(ctx, variant)

	if m.Len() > 0 && (len(precisions) == 0 || len(recalls) == 0) {
		return nil, ErrMissingScores
	}

	outs, err := evaluateAll(ctx, variant, m, cfg, func(uid int) (outcome[RankingRow], error) {
		return evaluateRanking(m, t, precisions, recalls, uid, cfg.PThreshold)
	})
	if err != nil {
		return nil, err
	}

	res := &RankingResult{}
	var test2 int
	res.Test1, res.Critical, res.Skipped, test2 = tally(variant, outs)

	res.Summary = RankingSummary{
		Neighborhoods:   m.Len(),
		Test1Passed:     len(res.Test1),
		Test2Passed:     test2,
		CriticalPercent: percent(len(res.Critical), m.Len()),
	}
	for _, row := range res.Critical {
		if row.PrecisionNeighborhood < row.PrecisionComplement {
			res.Summary.WorsePrecision++
		}
		if row.RecallNeighborhood < row.RecallComplement {
			res.Summary.WorseRecall++
		}
		if row.F1Neighborhood < row.F1Complement {
			res.Summary.WorseF1++
		}
	}

	finish(ctx, variant, start, res.Summary.CriticalPercent)
	return res, nil
}

func evaluateRanking(m neighborhood.Map, t *evaluation.Table, precisions, recalls evaluation.ScoreTable, uid int, threshold float64) (outcome[RankingRow], error) {
	group := m.Group(uid)

	// The N side holds rows of users in the group; the complement holds
	// rows of every user not contributing to N.
	nRows, dRows := t.Partition(group)
	if len(nRows) == 0 || len(dRows) == 0 {
		return outcome[RankingRow]{}, stats.ErrEmptyGroup
	}

	precN, precD, err := precisions.MeanSplit(group)
	if err != nil {
		return outcome[RankingRow]{}, err
	}

	delta := precN - precD
	if !(delta < 0) {
		return outcome[RankingRow]{}, nil
	}

	nbrs, _ := m.Neighbors(uid)
	out := outcome[RankingRow]{candidate: &Candidate{UserID: uid, Neighbors: nbrs, Delta: delta}}

	p, accepted, err := welchAccepts(evaluation.Estimates(nRows), evaluation.Estimates(dRows), threshold)
	if err != nil {
		return outcome[RankingRow]{}, err
	}
	if !accepted {
		return out, nil
	}

	recN, recD, err := recalls.MeanSplit(group)
	if err != nil {
		return outcome[RankingRow]{}, err
	}

	out.row = &RankingRow{
		UserID:                uid,
		Neighbors:             nbrs,
		NeighborhoodSize:      len(nRows),
		ComplementSize:        len(dRows),
		PrecisionNeighborhood: precN,
		PrecisionComplement:   precD,
		RecallNeighborhood:    recN,
		RecallComplement:      recD,
		F1Neighborhood:        evaluation.F1(precN, recN),
		F1Complement:          evaluation.F1(precD, recD),
		PValue:                p,
	}
	return out, nil
}
