// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package evaluation

import (
	"cmp"
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/nbhdeval/internal/neighborhood"
	"github.com/tomtom215/nbhdeval/internal/stats"
)

// Ranking defaults.
const (
	DefaultK         = 10
	DefaultThreshold = 3.5
)

// UserScore is one user's value in a ScoreTable.
type UserScore struct {
	UserID int     `json:"user_id"`
	Value  float64 `json:"value"`
}

// ScoreTable holds one score per user, ordered by user id.
type ScoreTable []UserScore

// NewScoreTable builds a table from a user->score map.
func NewScoreTable(m map[int]float64) ScoreTable {
	out := make(ScoreTable, 0, len(m))
	for uid, v := range m {
		out = append(out, UserScore{UserID: uid, Value: v})
	}
	slices.SortFunc(out, func(a, b UserScore) int { return cmp.Compare(a.UserID, b.UserID) })
	return out
}

// Get returns the score of uid.
func (s ScoreTable) Get(uid int) (float64, bool) {
	i, ok := slices.BinarySearchFunc(s, uid, func(e UserScore, target int) int { return cmp.Compare(e.UserID, target) })
	if !ok {
		return 0, false
	}
	return s[i].Value, true
}

// Split returns the scores of users in set and of all other users.
func (s ScoreTable) Split(set neighborhood.Set) (in, out []float64) {
	for _, e := range s {
		if set.Contains(e.UserID) {
			in = append(in, e.Value)
		} else {
			out = append(out, e.Value)
		}
	}
	return in, out
}

// MeanSplit returns the mean score inside set and outside it.
// Either side being empty yields stats.ErrEmptyGroup.
func (s ScoreTable) MeanSplit(set neighborhood.Set) (in, out float64, err error) {
	a, b := s.Split(set)
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, stats.ErrEmptyGroup
	}
	return stat.Mean(a, nil), stat.Mean(b, nil), nil
}

// PrecisionRecallAtK computes precision@k and recall@k for every user.
//
// A rating is relevant when r_ui >= threshold and recommended when
// est >= threshold. Each user's predictions are ranked by estimate,
// descending, ties keeping input order. Precision is 0 when nothing in the
// top k is recommended; recall is 0 when the user has no relevant rating.
// k <= 0 uses DefaultK.
func PrecisionRecallAtK(preds []Prediction, k int, threshold float64) (precisions, recalls ScoreTable) {
	if k <= 0 {
		k = DefaultK
	}

	byUser := make(map[int][]Prediction)
	for _, p := range preds {
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}

	prec := make(map[int]float64, len(byUser))
	rec := make(map[int]float64, len(byUser))

	for uid, rows := range byUser {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Estimate > rows[j].Estimate
		})

		var nRel int
		for _, r := range rows {
			if r.TrueRating >= threshold {
				nRel++
			}
		}

		top := rows[:min(k, len(rows))]
		var nRecK, nRelAndRecK int
		for _, r := range top {
			if r.Estimate >= threshold {
				nRecK++
				if r.TrueRating >= threshold {
					nRelAndRecK++
				}
			}
		}

		if nRecK != 0 {
			prec[uid] = float64(nRelAndRecK) / float64(nRecK)
		} else {
			prec[uid] = 0
		}
		if nRel != 0 {
			rec[uid] = float64(nRelAndRecK) / float64(nRel)
		} else {
			rec[uid] = 0
		}
	}

	return NewScoreTable(prec), NewScoreTable(rec)
}
