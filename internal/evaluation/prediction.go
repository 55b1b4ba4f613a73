// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package evaluation

import (
	"fmt"
	"math"
	"slices"

	"github.com/tomtom215/nbhdeval/internal/neighborhood"
)

// Prediction is one scored (user, item) pair.
type Prediction struct {
	UserID     int     `json:"uid"`
	ItemID     int     `json:"iid"`
	TrueRating float64 `json:"r_ui"`
	Estimate   float64 `json:"est"`

	// Loss is the per-row prediction loss used by the accuracy detector.
	Loss float64 `json:"prediction_loss"`
}

// Error returns the signed residual est - r_ui.
func (p Prediction) Error() float64 {
	return p.Estimate - p.TrueRating
}

// LossKind selects how a missing prediction loss is derived.
type LossKind string

const (
	// LossSquared derives loss as (est - r_ui)^2.
	LossSquared LossKind = "squared"

	// LossAbsolute derives loss as |est - r_ui|.
	LossAbsolute LossKind = "absolute"
)

// ParseLossKind validates a loss kind name.
func ParseLossKind(s string) (LossKind, error) {
	switch LossKind(s) {
	case LossSquared, LossAbsolute:
		return LossKind(s), nil
	case "":
		return LossSquared, nil
	default:
		return "", fmt.Errorf("evaluation: unknown loss kind %q", s)
	}
}

// Of returns the loss of p under k.
func (k LossKind) Of(p Prediction) float64 {
	e := p.Error()
	if k == LossAbsolute {
		return math.Abs(e)
	}
	return e * e
}

// WithLoss returns a copy of preds with Loss recomputed under k.
func WithLoss(preds []Prediction, k LossKind) []Prediction {
	out := make([]Prediction, len(preds))
	for i, p := range preds {
		p.Loss = k.Of(p)
		out[i] = p
	}
	return out
}

// Table is an immutable prediction table indexed by user id.
// Row order is the order the predictions were given in.
type Table struct {
	rows   []Prediction
	byUser map[int][]int
	users  []int
}

// NewTable copies preds into a Table.
func NewTable(preds []Prediction) *Table {
	t := &Table{
		rows:   slices.Clone(preds),
		byUser: make(map[int][]int),
	}
	for i, p := range t.rows {
		if _, seen := t.byUser[p.UserID]; !seen {
			t.users = append(t.users, p.UserID)
		}
		t.byUser[p.UserID] = append(t.byUser[p.UserID], i)
	}
	slices.Sort(t.users)
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of all rows in table order.
func (t *Table) Rows() []Prediction {
	return slices.Clone(t.rows)
}

// Users returns the distinct user ids in ascending order.
func (t *Table) Users() []int {
	return slices.Clone(t.users)
}

// HasUser reports whether uid has at least one row.
func (t *Table) HasUser(uid int) bool {
	_, ok := t.byUser[uid]
	return ok
}

// UserRows returns the rows of uid in table order.
func (t *Table) UserRows(uid int) []Prediction {
	idx := t.byUser[uid]
	out := make([]Prediction, len(idx))
	for i, j := range idx {
		out[i] = t.rows[j]
	}
	return out
}

// Partition splits the table into rows whose user is in s and the rest.
// Both halves keep table order; together they hold every row exactly once.
func (t *Table) Partition(s neighborhood.Set) (in, out []Prediction) {
	for _, p := range t.rows {
		if s.Contains(p.UserID) {
			in = append(in, p)
		} else {
			out = append(out, p)
		}
	}
	return in, out
}

// Estimates extracts the est column.
func Estimates(preds []Prediction) []float64 {
	out := make([]float64, len(preds))
	for i, p := range preds {
		out[i] = p.Estimate
	}
	return out
}

// Losses extracts the prediction_loss column.
func Losses(preds []Prediction) []float64 {
	out := make([]float64, len(preds))
	for i, p := range preds {
		out[i] = p.Loss
	}
	return out
}

// UserSet collects the distinct users of preds.
func UserSet(preds []Prediction) neighborhood.Set {
	s := make(neighborhood.Set)
	for _, p := range preds {
		s[p.UserID] = struct{}{}
	}
	return s
}
