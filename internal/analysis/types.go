// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/nbhdeval/internal/evaluation"
	"github.com/tomtom215/nbhdeval/internal/report"
	"github.com/tomtom215/nbhdeval/internal/similarity"
)

// Mode selects which analyses a run performs.
type Mode string

// Supported modes.
const (
	ModeAccuracy Mode = "accuracy"
	ModeRanking  Mode = "ranking"
	ModeLocal    Mode = "local"
	ModeAll      Mode = "all"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeAccuracy, ModeRanking, ModeLocal, ModeAll:
		return m, nil
	default:
		return "", fmt.Errorf("analysis: unknown mode %q", s)
	}
}

func (m Mode) accuracy() bool { return m == ModeAccuracy || m == ModeAll }
func (m Mode) ranking() bool  { return m == ModeRanking || m == ModeAll }
func (m Mode) local() bool    { return m == ModeLocal || m == ModeAll }

// needsNeighborhoods reports whether the mode trains similarity models.
func (m Mode) needsNeighborhoods() bool { return m.accuracy() || m.ranking() }

// Source provides the inputs of a run.
type Source interface {
	Ratings(ctx context.Context) ([]similarity.Rating, error)
	Predictions(ctx context.Context) ([]evaluation.Prediction, error)
}

// Sink receives result tables.
type Sink interface {
	Write(ctx context.Context, t report.Table) error
}

// Observer follows run progress. telemetry.Status implements it.
type Observer interface {
	SetStage(stage string)
	Record(label string, summary any)
}

type nopObserver struct{}

func (nopObserver) SetStage(string)    {}
func (nopObserver) Record(string, any) {}
