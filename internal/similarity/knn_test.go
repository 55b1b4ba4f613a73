// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package similarity

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/nbhdeval/internal/neighborhood"
)

func sampleRatings() []Rating {
	return []Rating{
		{UserID: 1, ItemID: 10, Value: 5},
		{UserID: 1, ItemID: 20, Value: 3},
		{UserID: 1, ItemID: 30, Value: 4},
		{UserID: 2, ItemID: 10, Value: 5},
		{UserID: 2, ItemID: 20, Value: 3},
		{UserID: 2, ItemID: 30, Value: 4},
		{UserID: 3, ItemID: 10, Value: 1},
		{UserID: 3, ItemID: 20, Value: 5},
		{UserID: 3, ItemID: 30, Value: 2},
		{UserID: 4, ItemID: 40, Value: 3},
	}
}

func trainKNN(t *testing.T, cfg Config) *UserKNN {
	t.Helper()
	knn := NewUserKNN(cfg)
	if err := knn.Train(context.Background(), sampleRatings()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	return knn
}

func rawNeighbors(t *testing.T, knn *UserKNN, raw, k int) []int {
	t.Helper()
	nbhds, err := neighborhood.Build([]int{raw}, knn, k)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	nbrs, _ := nbhds.Neighbors(raw)
	return nbrs
}

func TestParseMetric(t *testing.T) {
	for _, name := range []string{"cosine", "pearson", "msd", "jaccard"} {
		if m, err := ParseMetric(name); err != nil || string(m) != name {
			t.Errorf("ParseMetric(%q) = %q, %v", name, m, err)
		}
	}
	if _, err := ParseMetric("euclid"); err == nil {
		t.Error("ParseMetric(\"euclid\") error = nil, want error")
	}
}

func TestNewUserKNN_Defaults(t *testing.T) {
	knn := NewUserKNN(Config{})
	if knn.Name() != "pearson" {
		t.Errorf("Name() = %q, want pearson", knn.Name())
	}
	if knn.config.MinCommonItems != 1 {
		t.Errorf("MinCommonItems = %d, want 1", knn.config.MinCommonItems)
	}
	if knn.config.NumWorkers <= 0 {
		t.Errorf("NumWorkers = %d, want > 0", knn.config.NumWorkers)
	}
}

func TestUserKNN_InnerIDsFollowRawOrder(t *testing.T) {
	knn := trainKNN(t, DefaultConfig())

	if knn.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", knn.Len())
	}
	for inner, raw := range []int{1, 2, 3, 4} {
		got, err := knn.ToInnerUID(raw)
		if err != nil || got != inner {
			t.Errorf("ToInnerUID(%d) = %d, %v; want %d", raw, got, err, inner)
		}
		back, err := knn.ToRawUID(inner)
		if err != nil || back != raw {
			t.Errorf("ToRawUID(%d) = %d, %v; want %d", inner, back, err, raw)
		}
	}
}

func TestUserKNN_Neighbors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		raw  int
		k    int
		want []int
	}{
		{
			name: "pearson ranks identical user first and anti-correlated last",
			cfg:  Config{Metric: Pearson},
			raw:  1, k: 3,
			want: []int{2, 4, 3},
		},
		{
			name: "msd prefers smaller rating differences",
			cfg:  Config{Metric: MSD},
			raw:  1, k: 3,
			want: []int{2, 3, 4},
		},
		{
			name: "jaccard ties keep lower id first",
			cfg:  Config{Metric: Jaccard},
			raw:  3, k: 3,
			want: []int{1, 2, 4},
		},
		{
			name: "user without overlap sees all ties in id order",
			cfg:  Config{Metric: Cosine},
			raw:  4, k: 3,
			want: []int{1, 2, 3},
		},
		{
			name: "k truncates",
			cfg:  Config{Metric: Pearson},
			raw:  1, k: 1,
			want: []int{2},
		},
		{
			name: "min common items zeroes every pair",
			cfg:  Config{Metric: Pearson, MinCommonItems: 4},
			raw:  3, k: 3,
			want: []int{1, 2, 4},
		},
		{
			name: "max neighbors caps the stored list",
			cfg:  Config{Metric: Pearson, MaxNeighbors: 2},
			raw:  1, k: 3,
			want: []int{2, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			knn := trainKNN(t, tt.cfg)
			if got := rawNeighbors(t, knn, tt.raw, tt.k); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("neighbors(%d) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestUserKNN_SimilarityValues(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		rawA, rawB int
		want       float64
	}{
		{name: "pearson identical", cfg: Config{Metric: Pearson}, rawA: 1, rawB: 2, want: 1},
		{name: "cosine", cfg: Config{Metric: Cosine}, rawA: 1, rawB: 3, want: 28 / math.Sqrt(1500)},
		{name: "msd", cfg: Config{Metric: MSD}, rawA: 1, rawB: 3, want: 1.0 / 9},
		{name: "jaccard disjoint", cfg: Config{Metric: Jaccard}, rawA: 1, rawB: 4, want: 0},
		{name: "shrinkage", cfg: Config{Metric: Pearson, Shrinkage: 3}, rawA: 1, rawB: 2, want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			knn := trainKNN(t, tt.cfg)
			got, ok := knn.Similarity(tt.rawA, tt.rawB)
			if !ok {
				t.Fatalf("Similarity(%d, %d) not found", tt.rawA, tt.rawB)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Similarity(%d, %d) = %v, want %v", tt.rawA, tt.rawB, got, tt.want)
			}
		})
	}
}

func TestUserKNN_Errors(t *testing.T) {
	untrained := NewUserKNN(DefaultConfig())
	if _, err := untrained.ToInnerUID(1); !errors.Is(err, ErrNotTrained) {
		t.Errorf("ToInnerUID() before Train error = %v, want ErrNotTrained", err)
	}
	if _, err := untrained.GetNeighbors(0, 1); !errors.Is(err, ErrNotTrained) {
		t.Errorf("GetNeighbors() before Train error = %v, want ErrNotTrained", err)
	}

	knn := trainKNN(t, DefaultConfig())
	if _, err := knn.ToInnerUID(99); !errors.Is(err, neighborhood.ErrUnknownUser) {
		t.Errorf("ToInnerUID(99) error = %v, want ErrUnknownUser", err)
	}
	if _, err := knn.ToRawUID(17); err == nil {
		t.Error("ToRawUID(17) error = nil, want out-of-range error")
	}
	if _, err := knn.GetNeighbors(0, -1); err == nil {
		t.Error("GetNeighbors(k=-1) error = nil, want error")
	}
}

func TestUserKNN_TrainCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	knn := NewUserKNN(DefaultConfig())
	if err := knn.Train(ctx, sampleRatings()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Train() error = %v, want context.Canceled", err)
	}
	if _, err := knn.ToInnerUID(1); !errors.Is(err, ErrNotTrained) {
		t.Errorf("ToInnerUID() after cancelled Train error = %v, want ErrNotTrained", err)
	}
}

func TestUserKNN_WorkerCountDoesNotChangeResult(t *testing.T) {
	one := trainKNN(t, Config{Metric: Cosine, NumWorkers: 1})
	many := trainKNN(t, Config{Metric: Cosine, NumWorkers: 8})

	for _, raw := range []int{1, 2, 3, 4} {
		a := rawNeighbors(t, one, raw, 3)
		b := rawNeighbors(t, many, raw, 3)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("neighbors(%d) differ by worker count: %v vs %v", raw, a, b)
		}
	}
}

func TestUserKNN_EmptyRatings(t *testing.T) {
	knn := NewUserKNN(DefaultConfig())
	if err := knn.Train(context.Background(), nil); err != nil {
		t.Fatalf("Train(nil) error = %v", err)
	}
	if knn.Len() != 0 {
		t.Errorf("Len() = %d, want 0", knn.Len())
	}
}
