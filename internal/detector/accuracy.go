// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package detector

import (
	"context"
	"time"

	"github.com/tomtom215/nbhdeval/internal/evaluation"
	"github.com/tomtom215/nbhdeval/internal/logging"
	"github.com/tomtom215/nbhdeval/internal/neighborhood"
	"github.com/tomtom215/nbhdeval/internal/stats"
)

// AccuracyRow describes a critical neighborhood found by the accuracy variant.
type AccuracyRow struct {
	UserID    int   `json:"uid"`
	Neighbors []int `json:"nbhd"`

	// NeighborhoodSize and ComplementSize count prediction rows.
	NeighborhoodSize int `json:"nbhd_size"`
	ComplementSize   int `json:"equiv_size"`

	MSENeighborhood  float64 `json:"mse_nbhd"`
	MSEComplement    float64 `json:"mse_equiv"`
	MAENeighborhood  float64 `json:"mae_nbhd"`
	MAEComplement    float64 `json:"mae_equiv"`
	RMSENeighborhood float64 `json:"rmse_nbhd"`
	RMSEComplement   float64 `json:"rmse_equiv"`

	PValue float64 `json:"p_value"`
}

// AccuracySummary holds the counts reported after an accuracy run.
type AccuracySummary struct {
	Neighborhoods int `json:"neighborhoods"`
	Test1Passed   int `json:"test1"`
	Test2Passed   int `json:"test2"`

	// Worse* count critical rows whose metric on N exceeds that on D'.
	WorseMSE  int `json:"test3_mse"`
	WorseMAE  int `json:"test3_mae"`
	WorseRMSE int `json:"test3_rmse"`

	CriticalPercent float64 `json:"critical_percent"`
}

// AccuracyResult is the outcome of Accuracy.
type AccuracyResult struct {
	Test1    []Candidate     `json:"test1"`
	Critical []AccuracyRow   `json:"critical"`
	Skipped  []Failure       `json:"skipped,omitempty"`
	Summary  AccuracySummary `json:"summary"`
}

// Accuracy finds neighborhoods whose mean prediction loss exceeds that of
// the rest of the population while the Welch test on estimates accepts.
//
// Every row of t lands on exactly one side for every center user. Empty
// sides fail the user with stats.ErrEmptyGroup.
func Accuracy(ctx context.Context, m neighborhood.Map, t *evaluation.Table, cfg Config) (*AccuracyResult, error) {
	const variant = "accuracy"
	start := time.Now()
	ctx = logging.ContextWithStage(ctx, variant)

	outs, err := evaluateAll(ctx, variant, m, cfg, func(uid int) (outcome[AccuracyRow], error) {
		return evaluateAccuracy(m, t, uid, cfg.PThreshold)
	})
	if err != nil {
		return nil, err
	}

	res := &AccuracyResult{}
	var test2 int
	res.Test1, res.Critical, res.Skipped, test2 = tally(variant, outs)

	res.Summary = AccuracySummary{
		Neighborhoods:   m.Len(),
		Test1Passed:     len(res.Test1),
		Test2Passed:     test2,
		CriticalPercent: percent(len(res.Critical), m.Len()),
	}
	for _, row := range res.Critical {
		if row.MSENeighborhood > row.MSEComplement {
			res.Summary.WorseMSE++
		}
		if row.MAENeighborhood > row.MAEComplement {
			res.Summary.WorseMAE++
		}
		if row.RMSENeighborhood > row.RMSEComplement {
			res.Summary.WorseRMSE++
		}
	}

	finish(ctx, variant, start, res.Summary.CriticalPercent)
	return res, nil
}

func evaluateAccuracy(m neighborhood.Map, t *evaluation.Table, uid int, threshold float64) (outcome[AccuracyRow], error) {
	nRows, dRows := t.Partition(m.Group(uid))
	if len(nRows) == 0 || len(dRows) == 0 {
		return outcome[AccuracyRow]{}, stats.ErrEmptyGroup
	}

	nLoss, err := stats.Mean(evaluation.Losses(nRows))
	if err != nil {
		return outcome[AccuracyRow]{}, err
	}
	dLoss, err := stats.Mean(evaluation.Losses(dRows))
	if err != nil {
		return outcome[AccuracyRow]{}, err
	}

	delta := nLoss - dLoss
	if !(delta > 0) {
		return outcome[AccuracyRow]{}, nil
	}

	nbrs, _ := m.Neighbors(uid)
	out := outcome[AccuracyRow]{candidate: &Candidate{UserID: uid, Neighbors: nbrs, Delta: delta}}

	p, accepted, err := welchAccepts(evaluation.Estimates(nRows), evaluation.Estimates(dRows), threshold)
	if err != nil {
		return outcome[AccuracyRow]{}, err
	}
	if !accepted {
		return out, nil
	}

	row := AccuracyRow{
		UserID:           uid,
		Neighbors:        nbrs,
		NeighborhoodSize: len(nRows),
		ComplementSize:   len(dRows),
		PValue:           p,
	}
	// Both sides are non-empty, so none of these can fail.
	row.MSENeighborhood, _ = evaluation.MSE(nRows)
	row.MSEComplement, _ = evaluation.MSE(dRows)
	row.MAENeighborhood, _ = evaluation.MAE(nRows)
	row.MAEComplement, _ = evaluation.MAE(dRows)
	row.RMSENeighborhood, _ = evaluation.RMSE(nRows)
	row.RMSEComplement, _ = evaluation.RMSE(dRows)

	out.row = &row
	return out, nil
}
