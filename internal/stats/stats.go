// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrEmptyGroup is returned when a statistic needs at least one observation.
var ErrEmptyGroup = errors.New("stats: empty group")

// Mean returns the arithmetic mean of xs.
func Mean(xs []float64) (float64, error) {
	if len(xs) == 0 {
		return 0, ErrEmptyGroup
	}
	return stat.Mean(xs, nil), nil
}

// TTestResult holds the outcome of a two-sample t-test.
type TTestResult struct {
	// Statistic is the t statistic of a relative to b.
	Statistic float64 `json:"statistic"`

	// DF is the Welch-Satterthwaite degrees of freedom.
	DF float64 `json:"df"`

	// PValue is the two-sided p-value. NaN when the test is undefined.
	PValue float64 `json:"p_value"`
}

// Defined reports whether the test produced a usable p-value.
func (r TTestResult) Defined() bool {
	return !math.IsNaN(r.PValue)
}

// WelchTTest runs Welch's unequal-variance t-test on two independent samples.
//
// The result is symmetric: swapping a and b negates the statistic and leaves
// DF and PValue unchanged.
func WelchTTest(a, b []float64) (TTestResult, error) {
	if len(a) == 0 || len(b) == 0 {
		return TTestResult{}, ErrEmptyGroup
	}

	undefined := TTestResult{Statistic: math.NaN(), DF: math.NaN(), PValue: math.NaN()}
	if len(a) < 2 || len(b) < 2 {
		return undefined, nil
	}

	n1, n2 := float64(len(a)), float64(len(b))
	mean1, var1 := stat.MeanVariance(a, nil)
	mean2, var2 := stat.MeanVariance(b, nil)

	se1 := var1 / n1
	se2 := var2 / n2
	pooled := se1 + se2
	if pooled == 0 {
		// No spread in either sample: t is infinite (or 0/0) and df is 0/0.
		if mean1 != mean2 {
			undefined.Statistic = math.Copysign(math.Inf(1), mean1-mean2)
		}
		return undefined, nil
	}

	t := (mean1 - mean2) / math.Sqrt(pooled)
	df := pooled * pooled / (se1*se1/(n1-1) + se2*se2/(n2-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))
	if p > 1 {
		p = 1
	}

	return TTestResult{Statistic: t, DF: df, PValue: p}, nil
}
