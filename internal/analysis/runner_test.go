// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package analysis

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/tomtom215/nbhdeval/internal/detector"
	"github.com/tomtom215/nbhdeval/internal/evaluation"
	"github.com/tomtom215/nbhdeval/internal/logging"
	"github.com/tomtom215/nbhdeval/internal/neighborhood"
	"github.com/tomtom215/nbhdeval/internal/report"
	"github.com/tomtom215/nbhdeval/internal/similarity"
	"github.com/tomtom215/nbhdeval/internal/stats"
)

type fakeSource struct {
	preds        []evaluation.Prediction
	ratings      []similarity.Rating
	predErr      error
	ratingsErr   error
	ratingsCalls int
}

func (s *fakeSource) Predictions(context.Context) ([]evaluation.Prediction, error) {
	return s.preds, s.predErr
}

func (s *fakeSource) Ratings(context.Context) ([]similarity.Rating, error) {
	s.ratingsCalls++
	if s.ratingsErr != nil {
		return nil, s.ratingsErr
	}
	if s.ratings != nil {
		return s.ratings, nil
	}
	out := make([]similarity.Rating, len(s.preds))
	for i, p := range s.preds {
		out[i] = similarity.Rating{UserID: p.UserID, ItemID: p.ItemID, Value: p.TrueRating}
	}
	return out, nil
}

type fakeSink struct {
	tables []report.Table
	err    error
}

func (s *fakeSink) Write(_ context.Context, t report.Table) error {
	if s.err != nil {
		return s.err
	}
	s.tables = append(s.tables, t)
	return nil
}

func (s *fakeSink) names() []string {
	out := make([]string, len(s.tables))
	for i, t := range s.tables {
		out[i] = t.Name
	}
	return out
}

type fakeObserver struct {
	stages  []string
	records map[string]any
}

func (o *fakeObserver) SetStage(stage string) { o.stages = append(o.stages, stage) }

func (o *fakeObserver) Record(label string, summary any) {
	if o.records == nil {
		o.records = make(map[string]any)
	}
	o.records[label] = summary
}

// twoCommunities has users 1 and 2 rating alike, and users 3 and 4 rating
// alike and opposite to the first pair.
func twoCommunities() []evaluation.Prediction {
	rows := []evaluation.Prediction{
		{UserID: 1, ItemID: 1, TrueRating: 5, Estimate: 4.5},
		{UserID: 1, ItemID: 2, TrueRating: 4, Estimate: 4},
		{UserID: 1, ItemID: 3, TrueRating: 1, Estimate: 2},
		{UserID: 2, ItemID: 1, TrueRating: 5, Estimate: 4.8},
		{UserID: 2, ItemID: 2, TrueRating: 3, Estimate: 3.1},
		{UserID: 2, ItemID: 3, TrueRating: 2, Estimate: 2.5},
		{UserID: 3, ItemID: 1, TrueRating: 1, Estimate: 3},
		{UserID: 3, ItemID: 2, TrueRating: 2, Estimate: 3},
		{UserID: 3, ItemID: 3, TrueRating: 5, Estimate: 3},
		{UserID: 4, ItemID: 1, TrueRating: 2, Estimate: 3.5},
		{UserID: 4, ItemID: 2, TrueRating: 1, Estimate: 2},
		{UserID: 4, ItemID: 3, TrueRating: 4, Estimate: 3},
	}
	return evaluation.WithLoss(rows, evaluation.LossSquared)
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.NeighborhoodSize = 1
	opts.Similarity.NumWorkers = 2
	opts.Detector.Workers = 2
	return opts
}

func quietContext() context.Context {
	var buf bytes.Buffer
	return logging.ContextWithLogger(context.Background(), logging.NewTestLogger(&buf))
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"accuracy", "RANKING", "local", "all"} {
		if _, err := ParseMode(s); err != nil {
			t.Errorf("ParseMode(%q) error = %v", s, err)
		}
	}
	if _, err := ParseMode("everything"); err == nil {
		t.Error("ParseMode(everything) error = nil, want error")
	}
}

func TestRunner_Accuracy(t *testing.T) {
	src := &fakeSource{preds: twoCommunities()}
	sink := &fakeSink{}
	obs := &fakeObserver{}
	var out bytes.Buffer

	res, err := NewRunner(src, &out, testOptions(), WithSink(sink), WithObserver(obs)).Run(quietContext(), ModeAccuracy)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(res.Clusterings) != 1 {
		t.Fatalf("len(Clusterings) = %d, want 1", len(res.Clusterings))
	}
	c := res.Clusterings[0]
	if c.Label != "pearson" {
		t.Errorf("Label = %q, want pearson", c.Label)
	}
	for center, want := range map[int]int{1: 2, 2: 1, 3: 4, 4: 3} {
		nbrs, ok := c.Neighborhoods.Neighbors(center)
		if !ok || len(nbrs) != 1 || nbrs[0] != want {
			t.Errorf("Neighbors(%d) = %v, want [%d]", center, nbrs, want)
		}
	}
	if c.Accuracy == nil || c.Ranking != nil {
		t.Fatalf("Accuracy = %v, Ranking = %v; want accuracy only", c.Accuracy, c.Ranking)
	}
	if c.Accuracy.Summary.Neighborhoods != 4 {
		t.Errorf("Summary.Neighborhoods = %d, want 4", c.Accuracy.Summary.Neighborhoods)
	}
	if c.Accuracy.Summary.Test2Passed > c.Accuracy.Summary.Test1Passed {
		t.Errorf("test2 %d exceeds test1 %d", c.Accuracy.Summary.Test2Passed, c.Accuracy.Summary.Test1Passed)
	}

	if !strings.HasPrefix(out.String(), "Clustering method used: pearson\n") {
		t.Errorf("output = %q", out.String())
	}
	if !strings.Contains(out.String(), "Critical nbhd % ") {
		t.Errorf("output missing critical percentage line:\n%s", out.String())
	}

	wantTables := []string{
		"neighborhoods_pearson",
		"neighborhood_mae_pearson",
		"neighborhood_rmse_pearson",
		"test1_accuracy_pearson",
		"critical_accuracy_pearson",
	}
	if got := sink.names(); !slices.Equal(got, wantTables) {
		t.Errorf("tables = %v, want %v", got, wantTables)
	}

	if _, ok := obs.records["pearson/accuracy"]; !ok {
		t.Errorf("observer records = %v, want pearson/accuracy", obs.records)
	}
	if !slices.Contains(obs.stages, "train") || !slices.Contains(obs.stages, "accuracy:pearson") {
		t.Errorf("observer stages = %v", obs.stages)
	}
	if res.RunID == "" {
		t.Error("RunID is empty")
	}
}

func TestRunner_RankingSeparatesCommunities(t *testing.T) {
	src := &fakeSource{preds: twoCommunities()}
	sink := &fakeSink{}
	var out bytes.Buffer

	res, err := NewRunner(src, &out, testOptions(), WithSink(sink)).Run(quietContext(), ModeRanking)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	rk := res.Clusterings[0].Ranking
	if rk == nil {
		t.Fatal("Ranking result is nil")
	}
	if rk.Summary.Neighborhoods != 4 {
		t.Errorf("Summary.Neighborhoods = %d, want 4", rk.Summary.Neighborhoods)
	}
	if !strings.Contains(out.String(), "Percentage of critical neighborhoods: ") {
		t.Errorf("output missing ranking percentage:\n%s", out.String())
	}

	names := sink.names()
	for _, want := range []string{"precision_at_k", "recall_at_k", "critical_ranking_pearson", "test1_ranking_pearson"} {
		if !slices.Contains(names, want) {
			t.Errorf("tables %v missing %s", names, want)
		}
	}
	if slices.Contains(names, "critical_accuracy_pearson") {
		t.Error("ranking mode wrote accuracy tables")
	}
}

func TestRunner_LocalSkipsTraining(t *testing.T) {
	src := &fakeSource{preds: twoCommunities()}
	sink := &fakeSink{}
	var out bytes.Buffer

	res, err := NewRunner(src, &out, testOptions(), WithSink(sink)).Run(quietContext(), ModeLocal)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if src.ratingsCalls != 0 {
		t.Errorf("Ratings called %d times, want 0", src.ratingsCalls)
	}
	if len(res.Local) != 4 || len(res.Clusterings) != 0 {
		t.Errorf("Local = %d rows, Clusterings = %d; want 4 and 0", len(res.Local), len(res.Clusterings))
	}
	if got := sink.names(); !slices.Equal(got, []string{"local_accuracy"}) {
		t.Errorf("tables = %v, want [local_accuracy]", got)
	}
}

func TestRunner_AllWithTwoMetrics(t *testing.T) {
	opts := testOptions()
	opts.Metrics = []similarity.Metric{similarity.Pearson, similarity.Cosine}
	opts.PrintTables = true
	var out bytes.Buffer

	res, err := NewRunner(&fakeSource{preds: twoCommunities()}, &out, opts).Run(quietContext(), ModeAll)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(res.Clusterings) != 2 || res.Clusterings[0].Label != "pearson" || res.Clusterings[1].Label != "cosine" {
		t.Fatalf("Clusterings = %+v, want pearson then cosine", res.Clusterings)
	}
	for _, c := range res.Clusterings {
		if c.Accuracy == nil || c.Ranking == nil {
			t.Errorf("%s: missing accuracy or ranking result", c.Label)
		}
	}
	if len(res.Local) == 0 {
		t.Error("all mode did not compute local scores")
	}
	if strings.Count(out.String(), "Clustering method used: ") != 4 {
		t.Errorf("want 4 summaries (2 metrics x 2 variants):\n%s", out.String())
	}
	if !strings.Contains(out.String(), "user_id  mae") {
		t.Errorf("printed tables missing local accuracy header:\n%s", out.String())
	}
}

func TestRunner_Idempotent(t *testing.T) {
	run := func() string {
		var out bytes.Buffer
		_, err := NewRunner(&fakeSource{preds: twoCommunities()}, &out, testOptions()).Run(quietContext(), ModeAll)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		return out.String()
	}

	if first, second := run(), run(); first != second {
		t.Errorf("outputs differ:\n%s\n---\n%s", first, second)
	}
}

func TestRunner_StrictAndSkipModes(t *testing.T) {
	// A neighborhood covering every user leaves an empty complement.
	opts := testOptions()
	opts.NeighborhoodSize = 10

	_, err := NewRunner(&fakeSource{preds: twoCommunities()}, &bytes.Buffer{}, opts).Run(quietContext(), ModeAccuracy)
	if !errors.Is(err, stats.ErrEmptyGroup) {
		t.Errorf("strict Run() error = %v, want ErrEmptyGroup", err)
	}
	var failure detector.Failure
	if !errors.As(err, &failure) {
		t.Errorf("strict Run() error = %v, want a detector.Failure", err)
	}

	opts.Detector.SkipFailedUsers = true
	var out bytes.Buffer
	res, err := NewRunner(&fakeSource{preds: twoCommunities()}, &out, opts).Run(quietContext(), ModeAccuracy)
	if err != nil {
		t.Fatalf("skip Run() error = %v", err)
	}
	acc := res.Clusterings[0].Accuracy
	if len(acc.Skipped) != 4 || acc.Summary.Test1Passed != 0 || acc.Summary.Neighborhoods != 4 {
		t.Errorf("skipped = %d, summary = %+v", len(acc.Skipped), acc.Summary)
	}
	if !strings.Contains(out.String(), "Skipped users: 4") {
		t.Errorf("output missing skipped users:\n%s", out.String())
	}
}

func TestRunner_Errors(t *testing.T) {
	loadErr := errors.New("disk on fire")
	sinkErr := errors.New("read-only filesystem")

	tests := []struct {
		name    string
		src     *fakeSource
		sink    Sink
		mode    Mode
		wantErr error
	}{
		{name: "prediction load failure", src: &fakeSource{predErr: loadErr}, mode: ModeAccuracy, wantErr: loadErr},
		{name: "no predictions", src: &fakeSource{}, mode: ModeLocal, wantErr: ErrNoPredictions},
		{name: "ratings load failure", src: &fakeSource{preds: twoCommunities(), ratingsErr: loadErr}, mode: ModeRanking, wantErr: loadErr},
		{
			name: "user missing from training ratings",
			src: &fakeSource{
				preds:   twoCommunities(),
				ratings: []similarity.Rating{{UserID: 1, ItemID: 1, Value: 5}, {UserID: 2, ItemID: 1, Value: 4}},
			},
			mode:    ModeAccuracy,
			wantErr: neighborhood.ErrUnknownUser,
		},
		{name: "sink failure", src: &fakeSource{preds: twoCommunities()}, sink: &fakeSink{err: sinkErr}, mode: ModeLocal, wantErr: sinkErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var options []RunnerOption
			if tt.sink != nil {
				options = append(options, WithSink(tt.sink))
			}
			_, err := NewRunner(tt.src, &bytes.Buffer{}, testOptions(), options...).Run(quietContext(), tt.mode)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRunner_Defaults(t *testing.T) {
	r := NewRunner(&fakeSource{}, &bytes.Buffer{}, Options{})

	if r.opts.NeighborhoodSize != neighborhood.DefaultSize {
		t.Errorf("NeighborhoodSize = %d, want %d", r.opts.NeighborhoodSize, neighborhood.DefaultSize)
	}
	if len(r.opts.Metrics) != 1 || r.opts.Metrics[0] != similarity.Pearson {
		t.Errorf("Metrics = %v, want [pearson]", r.opts.Metrics)
	}
	if r.opts.TopK != evaluation.DefaultK {
		t.Errorf("TopK = %d, want %d", r.opts.TopK, evaluation.DefaultK)
	}
}
