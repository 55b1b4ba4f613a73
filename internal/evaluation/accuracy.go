// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package evaluation

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/nbhdeval/internal/neighborhood"
	"github.com/tomtom215/nbhdeval/internal/stats"
)

// MSE returns the mean squared error of preds.
func MSE(preds []Prediction) (float64, error) {
	if len(preds) == 0 {
		return 0, stats.ErrEmptyGroup
	}
	sq := make([]float64, len(preds))
	for i, p := range preds {
		e := p.Error()
		sq[i] = e * e
	}
	return stat.Mean(sq, nil), nil
}

// MAE returns the mean absolute error of preds.
func MAE(preds []Prediction) (float64, error) {
	if len(preds) == 0 {
		return 0, stats.ErrEmptyGroup
	}
	abs := make([]float64, len(preds))
	for i, p := range preds {
		abs[i] = math.Abs(p.Error())
	}
	return stat.Mean(abs, nil), nil
}

// RMSE returns sqrt(MSE(preds)).
func RMSE(preds []Prediction) (float64, error) {
	mse, err := MSE(preds)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// F1 is the harmonic mean of precision and recall, 0 when both are 0.
func F1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// GroupScore is a metric computed over a user's pooled neighborhood ratings.
type GroupScore struct {
	UserID int     `json:"user_id"`
	Value  float64 `json:"value"`

	// Size is the number of pooled ratings.
	Size int `json:"neighborhood_size"`
}

// NeighborhoodAccuracy scores every user on its own ratings extended with
// the ratings of each of its neighbors.
type NeighborhoodAccuracy struct {
	table *Table
}

// NewNeighborhoodAccuracy indexes preds by user.
func NewNeighborhoodAccuracy(preds []Prediction) *NeighborhoodAccuracy {
	return &NeighborhoodAccuracy{table: NewTable(preds)}
}

// MAE returns the pooled mean absolute error per user, ordered by user id.
func (a *NeighborhoodAccuracy) MAE(m neighborhood.Map) []GroupScore {
	return a.score(m, MAE)
}

// RMSE returns the pooled root mean squared error per user, ordered by user id.
func (a *NeighborhoodAccuracy) RMSE(m neighborhood.Map) []GroupScore {
	return a.score(m, RMSE)
}

func (a *NeighborhoodAccuracy) score(m neighborhood.Map, metric func([]Prediction) (float64, error)) []GroupScore {
	users := a.table.Users()
	out := make([]GroupScore, 0, len(users))

	for _, uid := range users {
		pooled := a.pool(m, uid)
		// pooled always holds the user's own rows, so metric cannot fail.
		v, _ := metric(pooled)
		out = append(out, GroupScore{UserID: uid, Value: v, Size: len(pooled)})
	}
	return out
}

// pool concatenates uid's rows with each neighbor's rows. A neighbor listed
// twice contributes twice; a neighbor without predictions contributes nothing.
func (a *NeighborhoodAccuracy) pool(m neighborhood.Map, uid int) []Prediction {
	pooled := a.table.UserRows(uid)
	nbrs, _ := m.Neighbors(uid)
	for _, n := range nbrs {
		pooled = append(pooled, a.table.UserRows(n)...)
	}
	return pooled
}

// LocalScore holds a user's accuracy on its own predictions only.
type LocalScore struct {
	UserID int     `json:"user_id"`
	MAE    float64 `json:"mae"`
	RMSE   float64 `json:"rmse"`
	Count  int     `json:"count"`
}

// LocalAccuracy scores each user of t on its own rows, ordered by user id.
func LocalAccuracy(t *Table) []LocalScore {
	users := t.Users()
	out := make([]LocalScore, 0, len(users))
	for _, uid := range users {
		rows := t.UserRows(uid)
		mae, _ := MAE(rows)
		rmse, _ := RMSE(rows)
		out = append(out, LocalScore{UserID: uid, MAE: mae, RMSE: rmse, Count: len(rows)})
	}
	return out
}
