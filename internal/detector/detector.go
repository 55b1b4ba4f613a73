// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package detector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/nbhdeval/internal/logging"
	"github.com/tomtom215/nbhdeval/internal/metrics"
	"github.com/tomtom215/nbhdeval/internal/neighborhood"
	"github.com/tomtom215/nbhdeval/internal/stats"
)

// DefaultPThreshold is the p-value above which Test 2 accepts.
const DefaultPThreshold = 0.5

// ErrNoNeighborhoods is returned when the neighborhood mapping is empty.
var ErrNoNeighborhoods = errors.New("detector: no neighborhoods to evaluate")

// Config controls a detection run.
type Config struct {
	// PThreshold is the Welch p-value above which a neighborhood is critical.
	PThreshold float64

	// Workers bounds concurrent per-user evaluations. Zero uses GOMAXPROCS.
	Workers int

	// SkipFailedUsers logs and records per-user failures instead of
	// aborting the run.
	SkipFailedUsers bool
}

// DefaultConfig returns the default detection configuration.
func DefaultConfig() Config {
	return Config{PThreshold: DefaultPThreshold}
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Candidate is a neighborhood that passed Test 1.
type Candidate struct {
	UserID    int   `json:"uid"`
	Neighbors []int `json:"nbhd"`

	// Delta is N minus D' for the Test 1 quantity (loss or precision).
	Delta float64 `json:"delta"`
}

// Failure records a center user that could not be evaluated.
type Failure struct {
	UserID int   `json:"uid"`
	Err    error `json:"-"`
}

// Error implements error.
func (f Failure) Error() string {
	return fmt.Sprintf("user %d: %v", f.UserID, f.Err)
}

// Unwrap returns the underlying error.
func (f Failure) Unwrap() error {
	return f.Err
}

// outcome is the evaluation of one center user. candidate is set when
// Test 1 passed and row when Test 2 accepted as well.
type outcome[R any] struct {
	userID    int
	candidate *Candidate
	row       *R
	err       error
}

// evaluateAll runs eval for every center user of m with bounded
// concurrency. Each task writes only its own slot, so the returned slice
// is ordered like m.Users() regardless of scheduling.
func evaluateAll[R any](ctx context.Context, variant string, m neighborhood.Map, cfg Config,
	eval func(uid int) (outcome[R], error),
) ([]outcome[R], error) {
	if m.Len() == 0 {
		return nil, ErrNoNeighborhoods
	}

	users := m.Users()
	out := make([]outcome[R], len(users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())

	for i, uid := range users {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := eval(uid)
			if err != nil {
				if !cfg.SkipFailedUsers {
					return Failure{UserID: uid, Err: err}
				}
				out[i] = outcome[R]{userID: uid, err: err}
				return nil
			}
			res.userID = uid
			out[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("detector: %s: %w", variant, err)
	}

	metrics.RecordNeighborhoods(variant, len(users))
	for _, o := range out {
		if o.err != nil {
			metrics.RecordSkippedUser(variant)
			logging.CtxWarn(ctx).Int("user", o.userID).Err(o.err).Str("variant", variant).Msg("Skipping user")
		}
	}
	return out, nil
}

// tally folds ordered outcomes into the result lists shared by both variants.
func tally[R any](variant string, outs []outcome[R]) (test1 []Candidate, rows []R, skipped []Failure, test2Passed int) {
	for _, o := range outs {
		switch {
		case o.err != nil:
			skipped = append(skipped, Failure{UserID: o.userID, Err: o.err})
		case o.candidate != nil:
			test1 = append(test1, *o.candidate)
			metrics.RecordTestPass(variant, "test1")
			if o.row != nil {
				rows = append(rows, *o.row)
				test2Passed++
				metrics.RecordTestPass(variant, "test2")
			}
		}
	}
	return test1, rows, skipped, test2Passed
}

// welchAccepts runs Test 2. A NaN p-value never accepts.
func welchAccepts(n, d []float64, threshold float64) (float64, bool, error) {
	res, err := stats.WelchTTest(n, d)
	if err != nil {
		return math.NaN(), false, err
	}
	return res.PValue, res.Defined() && res.PValue > threshold, nil
}

// percent returns part/total*100 rounded to two decimals.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func finish(ctx context.Context, variant string, start time.Time, criticalPercent float64) {
	metrics.RecordDetection(variant, time.Since(start))
	logging.CtxInfo(ctx).
		Str("variant", variant).
		Float64("critical_percent", criticalPercent).
		Dur("elapsed", time.Since(start)).
		Msg("Detection finished")
}
