// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package similarity

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/nbhdeval/internal/metrics"
	"github.com/tomtom215/nbhdeval/internal/neighborhood"
)

// Metric names a user-user similarity function.
type Metric string

// Supported metrics.
const (
	Cosine  Metric = "cosine"
	Pearson Metric = "pearson"
	MSD     Metric = "msd"
	Jaccard Metric = "jaccard"
)

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case Cosine, Pearson, MSD, Jaccard:
		return m, nil
	default:
		return "", fmt.Errorf("similarity: unknown metric %q", s)
	}
}

// ErrNotTrained is returned by neighbor queries before Train succeeds.
var ErrNotTrained = errors.New("similarity: model not trained")

// Rating is one observed (user, item, rating) triple.
type Rating struct {
	UserID int     `json:"uid"`
	ItemID int     `json:"iid"`
	Value  float64 `json:"rating"`
}

// Config contains configuration for UserKNN.
type Config struct {
	// Metric selects the similarity function.
	Metric Metric

	// MinCommonItems is the minimum number of co-rated items for a
	// non-zero similarity.
	MinCommonItems int

	// Shrinkage regularizes similarity: sim = raw_sim * n / (n + shrinkage).
	// Zero disables it.
	Shrinkage float64

	// MaxNeighbors caps the stored neighbor list per user. Zero keeps
	// every other user.
	MaxNeighbors int

	// NumWorkers is the number of parallel workers. Zero uses GOMAXPROCS.
	NumWorkers int
}

// DefaultConfig returns default UserKNN configuration.
func DefaultConfig() Config {
	return Config{
		Metric:         Pearson,
		MinCommonItems: 1,
	}
}

// neighbor is a similar user and their similarity score, both by inner id.
type neighbor struct {
	ID         int
	Similarity float64
}

// UserKNN is a user-based similarity index.
type UserKNN struct {
	config Config

	mu      sync.RWMutex
	trained bool

	// rawIDs maps inner id -> raw id; inner ids follow ascending raw id.
	rawIDs   []int
	innerIDs map[int]int

	// vectors holds each user's ratings keyed by item.
	vectors []map[int]float64

	// neighbors holds every user's neighbor list, nearest first.
	neighbors [][]neighbor
}

// NewUserKNN creates an untrained model.
func NewUserKNN(cfg Config) *UserKNN {
	if cfg.Metric == "" {
		cfg.Metric = Pearson
	}
	if cfg.MinCommonItems <= 0 {
		cfg.MinCommonItems = 1
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = runtime.GOMAXPROCS(0)
	}
	return &UserKNN{config: cfg}
}

// Name returns the metric the model was configured with.
func (u *UserKNN) Name() string {
	return string(u.config.Metric)
}

// Len returns the number of indexed users.
func (u *UserKNN) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.rawIDs)
}

// Train indexes ratings and precomputes every user's neighbor list.
// A repeated (user, item) pair keeps the last rating seen.
func (u *UserKNN) Train(ctx context.Context, ratings []Rating) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	start := time.Now()
	u.trained = false

	// Build user vectors
	byRaw := make(map[int]map[int]float64)
	for _, r := range ratings {
		if byRaw[r.UserID] == nil {
			byRaw[r.UserID] = make(map[int]float64)
		}
		byRaw[r.UserID][r.ItemID] = r.Value
	}

	u.rawIDs = make([]int, 0, len(byRaw))
	for raw := range byRaw {
		u.rawIDs = append(u.rawIDs, raw)
	}
	slices.Sort(u.rawIDs)

	u.innerIDs = make(map[int]int, len(u.rawIDs))
	u.vectors = make([]map[int]float64, len(u.rawIDs))
	for inner, raw := range u.rawIDs {
		u.innerIDs[raw] = inner
		u.vectors[inner] = byRaw[raw]
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Precompute neighbor lists in contiguous chunks; each worker owns its slots.
	u.neighbors = make([][]neighbor, len(u.rawIDs))
	workers := min(u.config.NumWorkers, max(len(u.rawIDs), 1))
	chunkSize := (len(u.rawIDs) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunkSize
		hi := min(lo+chunkSize, len(u.rawIDs))
		if lo >= hi {
			break
		}

		g.Go(func() error {
			for inner := lo; inner < hi; inner++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				u.neighbors[inner] = u.computeNeighbors(inner)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	u.trained = true
	metrics.RecordSimilarityTraining(string(u.config.Metric), time.Since(start), len(u.rawIDs))
	return nil
}

// computeNeighbors ranks every other user by similarity, descending.
// Ties keep the lower inner id first.
func (u *UserKNN) computeNeighbors(inner int) []neighbor {
	out := make([]neighbor, 0, len(u.vectors)-1)
	for other := range u.vectors {
		if other == inner {
			continue
		}
		out = append(out, neighbor{ID: other, Similarity: u.similarity(u.vectors[inner], u.vectors[other])})
	}

	slices.SortStableFunc(out, func(a, b neighbor) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		default:
			return cmp.Compare(a.ID, b.ID)
		}
	})

	if u.config.MaxNeighbors > 0 && len(out) > u.config.MaxNeighbors {
		out = out[:u.config.MaxNeighbors]
	}
	return out
}

// similarity computes the configured metric between two rating vectors.
func (u *UserKNN) similarity(a, b map[int]float64) float64 {
	// Find common items
	common := make([]int, 0, min(len(a), len(b)))
	for item := range a {
		if _, ok := b[item]; ok {
			common = append(common, item)
		}
	}
	if len(common) < u.config.MinCommonItems || len(common) == 0 {
		return 0
	}

	var sim float64
	switch u.config.Metric {
	case Cosine:
		sim = cosineSim(a, b, common)
	case Pearson:
		sim = pearsonSim(a, b, common)
	case MSD:
		sim = msdSim(a, b, common)
	case Jaccard:
		sim = float64(len(common)) / float64(len(a)+len(b)-len(common))
	default:
		sim = pearsonSim(a, b, common)
	}

	// Apply shrinkage
	if u.config.Shrinkage > 0 {
		n := float64(len(common))
		sim = sim * n / (n + u.config.Shrinkage)
	}

	return sim
}

func cosineSim(a, b map[int]float64, common []int) float64 {
	var dot, normA, normB float64
	for _, item := range common {
		dot += a[item] * b[item]
		normA += a[item] * a[item]
		normB += b[item] * b[item]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / math.Sqrt(normA*normB)
}

func pearsonSim(a, b map[int]float64, common []int) float64 {
	// Compute means over common items
	var sumA, sumB float64
	for _, item := range common {
		sumA += a[item]
		sumB += b[item]
	}
	meanA := sumA / float64(len(common))
	meanB := sumB / float64(len(common))

	var num, denA, denB float64
	for _, item := range common {
		diffA := a[item] - meanA
		diffB := b[item] - meanB
		num += diffA * diffB
		denA += diffA * diffA
		denB += diffB * diffB
	}
	if denA == 0 || denB == 0 {
		return 0
	}
	return num / math.Sqrt(denA*denB)
}

func msdSim(a, b map[int]float64, common []int) float64 {
	var sq float64
	for _, item := range common {
		d := a[item] - b[item]
		sq += d * d
	}
	return 1 / (sq/float64(len(common)) + 1)
}

// ToInnerUID maps a raw user id to its inner id.
func (u *UserKNN) ToInnerUID(raw int) (int, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if !u.trained {
		return 0, ErrNotTrained
	}
	inner, ok := u.innerIDs[raw]
	if !ok {
		return 0, fmt.Errorf("raw user id %d: %w", raw, neighborhood.ErrUnknownUser)
	}
	return inner, nil
}

// ToRawUID maps an inner id back to the raw user id.
func (u *UserKNN) ToRawUID(inner int) (int, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if !u.trained {
		return 0, ErrNotTrained
	}
	if inner < 0 || inner >= len(u.rawIDs) {
		return 0, fmt.Errorf("similarity: inner user id %d out of range", inner)
	}
	return u.rawIDs[inner], nil
}

// GetNeighbors returns up to k inner ids nearest to inner, nearest first.
func (u *UserKNN) GetNeighbors(inner, k int) ([]int, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if !u.trained {
		return nil, ErrNotTrained
	}
	if inner < 0 || inner >= len(u.neighbors) {
		return nil, fmt.Errorf("similarity: inner user id %d out of range", inner)
	}
	if k < 0 {
		return nil, fmt.Errorf("similarity: negative neighbor count %d", k)
	}

	nbrs := u.neighbors[inner]
	out := make([]int, 0, min(k, len(nbrs)))
	for _, n := range nbrs[:min(k, len(nbrs))] {
		out = append(out, n.ID)
	}
	return out, nil
}

// Similarity returns the stored similarity between two raw users, if the
// pair survived the MaxNeighbors cap.
func (u *UserKNN) Similarity(rawA, rawB int) (float64, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	a, okA := u.innerIDs[rawA]
	b, okB := u.innerIDs[rawB]
	if !u.trained || !okA || !okB {
		return 0, false
	}
	for _, n := range u.neighbors[a] {
		if n.ID == b {
			return n.Similarity, true
		}
	}
	return 0, false
}

// Ensure interface compliance.
var _ neighborhood.Model = (*UserKNN)(nil)
