// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/nbhdeval/internal/detector"
	"github.com/tomtom215/nbhdeval/internal/evaluation"
	"github.com/tomtom215/nbhdeval/internal/logging"
	"github.com/tomtom215/nbhdeval/internal/metrics"
	"github.com/tomtom215/nbhdeval/internal/neighborhood"
	"github.com/tomtom215/nbhdeval/internal/report"
	"github.com/tomtom215/nbhdeval/internal/similarity"
)

// ErrNoPredictions is returned when the source yields no prediction rows.
var ErrNoPredictions = errors.New("analysis: no predictions")

// Options configures a Runner.
type Options struct {
	// NeighborhoodSize is k for every neighborhood. Zero uses neighborhood.DefaultSize.
	NeighborhoodSize int

	// Metrics lists the similarity metrics; one clustering is built per metric.
	Metrics []similarity.Metric

	// Similarity is the model template. Its Metric is replaced per clustering.
	Similarity similarity.Config

	// TopK and Threshold configure precision and recall at k.
	TopK      int
	Threshold float64

	Detector detector.Config

	// PrintTables also renders every result table to the text output.
	PrintTables bool
}

// DefaultOptions returns options matching the package defaults.
func DefaultOptions() Options {
	return Options{
		NeighborhoodSize: neighborhood.DefaultSize,
		Metrics:          []similarity.Metric{similarity.Pearson},
		Similarity:       similarity.DefaultConfig(),
		TopK:             evaluation.DefaultK,
		Threshold:        evaluation.DefaultThreshold,
		Detector:         detector.DefaultConfig(),
	}
}

// Clustering is the output of one similarity metric.
type Clustering struct {
	Label         string
	Neighborhoods neighborhood.Map
	Accuracy      *detector.AccuracyResult
	Ranking       *detector.RankingResult
}

// Result is everything a run computed.
type Result struct {
	RunID       string
	Mode        Mode
	Clusterings []Clustering
	Local       []evaluation.LocalScore
}

// Runner executes analyses.
type Runner struct {
	src      Source
	sink     Sink
	reporter *report.Reporter
	observer Observer
	opts     Options
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithSink exports every result table to s.
func WithSink(s Sink) RunnerOption {
	return func(r *Runner) { r.sink = s }
}

// WithObserver reports stages and summaries to o.
func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) { r.observer = o }
}

// NewRunner creates a Runner reading from src and printing summaries to out.
func NewRunner(src Source, out io.Writer, opts Options, options ...RunnerOption) *Runner {
	if opts.NeighborhoodSize <= 0 {
		opts.NeighborhoodSize = neighborhood.DefaultSize
	}
	if len(opts.Metrics) == 0 {
		opts.Metrics = []similarity.Metric{similarity.Pearson}
	}
	if opts.TopK <= 0 {
		opts.TopK = evaluation.DefaultK
	}

	r := &Runner{
		src:      src,
		reporter: report.New(out),
		observer: nopObserver{},
		opts:     opts,
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Run performs the analyses selected by mode.
func (r *Runner) Run(ctx context.Context, mode Mode) (res *Result, err error) {
	if logging.RunIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewRunID(ctx)
	}
	start := time.Now()
	defer func() {
		metrics.RecordRun(string(mode), err)
		ev := logging.CtxInfo(ctx)
		if err != nil {
			ev = logging.Ctx(ctx).Error().Err(err)
		}
		ev.Str("mode", string(mode)).Dur("duration", time.Since(start)).Msg("Analysis run finished")
	}()

	res = &Result{RunID: logging.RunIDFromContext(ctx), Mode: mode}

	r.stage(ctx, "load")
	preds, err := r.src.Predictions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load predictions: %w", err)
	}
	if len(preds) == 0 {
		return nil, ErrNoPredictions
	}
	table := evaluation.NewTable(preds)
	logging.CtxInfo(ctx).Int("rows", table.Len()).Int("users", len(table.Users())).Msg("Predictions loaded")

	if mode.local() {
		r.stage(ctx, "local")
		res.Local = evaluation.LocalAccuracy(table)
		if err := r.emit(ctx, report.TabulateLocal("local_accuracy", res.Local)); err != nil {
			return nil, err
		}
	}

	if !mode.needsNeighborhoods() {
		return res, nil
	}

	models, err := r.train(ctx)
	if err != nil {
		return nil, err
	}

	r.stage(ctx, "neighborhoods")
	nbhdModels := make([]neighborhood.Model, len(models))
	for i, m := range models {
		nbhdModels[i] = m
	}
	clusters, err := neighborhood.BuildClusters(table.Users(), nbhdModels, r.opts.NeighborhoodSize)
	if err != nil {
		return nil, fmt.Errorf("build neighborhoods: %w", err)
	}

	var precisions, recalls evaluation.ScoreTable
	if mode.ranking() {
		r.stage(ctx, "ranking_scores")
		precisions, recalls = evaluation.PrecisionRecallAtK(preds, r.opts.TopK, r.opts.Threshold)
		if err := r.emit(ctx, report.TabulateScores("precision_at_k", "precision", precisions)); err != nil {
			return nil, err
		}
		if err := r.emit(ctx, report.TabulateScores("recall_at_k", "recall", recalls)); err != nil {
			return nil, err
		}
	}

	nbhdAccuracy := evaluation.NewNeighborhoodAccuracy(preds)
	for i, m := range clusters {
		c := Clustering{Label: models[i].Name(), Neighborhoods: m}
		cctx := logging.ContextWithLogger(ctx, logging.LoggerFromContext(ctx).With().Str("clustering", c.Label).Logger())

		if err := r.emit(cctx, report.TabulateNeighborhoods("neighborhoods_"+c.Label, m)); err != nil {
			return nil, err
		}

		if mode.accuracy() {
			if err := r.runAccuracy(cctx, &c, table, nbhdAccuracy); err != nil {
				return nil, err
			}
		}
		if mode.ranking() {
			if err := r.runRanking(cctx, &c, table, precisions, recalls); err != nil {
				return nil, err
			}
		}
		res.Clusterings = append(res.Clusterings, c)
	}

	return res, nil
}

// train fits one model per metric concurrently. Models are returned in
// metric order.
func (r *Runner) train(ctx context.Context) ([]*similarity.UserKNN, error) {
	r.stage(ctx, "train")
	ratings, err := r.src.Ratings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	models := make([]*similarity.UserKNN, len(r.opts.Metrics))
	g, gctx := errgroup.WithContext(ctx)
	for i, metric := range r.opts.Metrics {
		cfg := r.opts.Similarity
		cfg.Metric = metric
		models[i] = similarity.NewUserKNN(cfg)

		g.Go(func() error {
			if err := models[i].Train(gctx, ratings); err != nil {
				return fmt.Errorf("train %s: %w", metric, err)
			}
			logging.CtxInfo(gctx).Str("metric", string(metric)).Int("users", models[i].Len()).Msg("Similarity model trained")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return models, nil
}

func (r *Runner) runAccuracy(ctx context.Context, c *Clustering, t *evaluation.Table, na *evaluation.NeighborhoodAccuracy) error {
	r.stage(ctx, "accuracy:"+c.Label)

	if err := r.emit(ctx, report.TabulateGroupScores("neighborhood_mae_"+c.Label, "MAE", na.MAE(c.Neighborhoods))); err != nil {
		return err
	}
	if err := r.emit(ctx, report.TabulateGroupScores("neighborhood_rmse_"+c.Label, "RMSE", na.RMSE(c.Neighborhoods))); err != nil {
		return err
	}

	res, err := detector.Accuracy(ctx, c.Neighborhoods, t, r.opts.Detector)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Label, err)
	}
	c.Accuracy = res

	metrics.SetCriticalPercent("accuracy", c.Label, res.Summary.CriticalPercent)
	r.observer.Record(c.Label+"/accuracy", res.Summary)

	if err := r.reporter.Accuracy(c.Label, res); err != nil {
		return err
	}
	if err := r.reporter.Skipped(res.Skipped); err != nil {
		return err
	}
	if err := r.emit(ctx, report.TabulateCandidates("test1_accuracy_"+c.Label, res.Test1)); err != nil {
		return err
	}
	return r.emit(ctx, report.TabulateAccuracy("critical_accuracy_"+c.Label, res))
}

func (r *Runner) runRanking(ctx context.Context, c *Clustering, t *evaluation.Table, precisions, recalls evaluation.ScoreTable) error {
	r.stage(ctx, "ranking:"+c.Label)

	res, err := detector.Ranking(ctx, c.Neighborhoods, t, precisions, recalls, r.opts.Detector)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Label, err)
	}
	c.Ranking = res

	metrics.SetCriticalPercent("ranking", c.Label, res.Summary.CriticalPercent)
	r.observer.Record(c.Label+"/ranking", res.Summary)

	if err := r.reporter.Ranking(c.Label, res); err != nil {
		return err
	}
	if err := r.reporter.Skipped(res.Skipped); err != nil {
		return err
	}
	if err := r.emit(ctx, report.TabulateCandidates("test1_ranking_"+c.Label, res.Test1)); err != nil {
		return err
	}
	return r.emit(ctx, report.TabulateRanking("critical_ranking_"+c.Label, res))
}

// emit sends t to the sink and, when enabled, prints it.
func (r *Runner) emit(ctx context.Context, t report.Table) error {
	if r.opts.PrintTables {
		if err := r.reporter.Table(t); err != nil {
			return fmt.Errorf("print %s: %w", t.Name, err)
		}
	}
	if r.sink == nil {
		return nil
	}
	if err := r.sink.Write(ctx, t); err != nil {
		return fmt.Errorf("write %s: %w", t.Name, err)
	}
	logging.Ctx(ctx).Debug().Str("table", t.Name).Int("rows", t.Len()).Msg("Table written")
	return nil
}

func (r *Runner) stage(ctx context.Context, stage string) {
	r.observer.SetStage(stage)
	logging.Ctx(ctx).Debug().Str("stage", stage).Msg("Stage started")
}
