// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/nbhdeval/internal/analysis"
	"github.com/tomtom215/nbhdeval/internal/config"
	"github.com/tomtom215/nbhdeval/internal/dataset"
	"github.com/tomtom215/nbhdeval/internal/evaluation"
	"github.com/tomtom215/nbhdeval/internal/logging"
	"github.com/tomtom215/nbhdeval/internal/report"
	"github.com/tomtom215/nbhdeval/internal/similarity"
	"github.com/tomtom215/nbhdeval/internal/supervisor"
	"github.com/tomtom215/nbhdeval/internal/supervisor/services"
	"github.com/tomtom215/nbhdeval/internal/telemetry"
)

// loadConfig resolves the configuration for cmd and initializes logging.
func loadConfig(cmd *cobra.Command, f *rootFlags) (*config.Config, error) {
	if f.configPath != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, f.configPath); err != nil {
			return nil, fmt.Errorf("set %s: %w", config.ConfigPathEnvVar, err)
		}
	}

	cfg, err := config.LoadWithOverrides(f.overrides(cmd))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := cfg.Logging.ToLoggingConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logging.Init(logCfg)
	return cfg, nil
}

func printConfig(cmd *cobra.Command, f *rootFlags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	return report.New(cmd.OutOrStdout()).JSON(cfg)
}

// analysisOptions converts the validated configuration into runner options.
func analysisOptions(cfg *config.Config) (analysis.Options, error) {
	opts := analysis.DefaultOptions()
	opts.NeighborhoodSize = cfg.Neighborhood.Size
	opts.TopK = cfg.Ranking.K
	opts.Threshold = cfg.Ranking.Threshold
	opts.PrintTables = cfg.Output.Tables

	opts.Metrics = opts.Metrics[:0]
	for _, name := range cfg.Similarity.Metrics {
		m, err := similarity.ParseMetric(name)
		if err != nil {
			return analysis.Options{}, err
		}
		opts.Metrics = append(opts.Metrics, m)
	}

	opts.Similarity.MinCommonItems = cfg.Similarity.MinCommonItems
	opts.Similarity.Shrinkage = cfg.Similarity.Shrinkage
	opts.Similarity.MaxNeighbors = cfg.Similarity.MaxNeighbors
	opts.Similarity.NumWorkers = cfg.Similarity.Workers

	opts.Detector.PThreshold = cfg.Detector.PThreshold
	opts.Detector.Workers = cfg.Detector.Workers
	opts.Detector.SkipFailedUsers = cfg.Detector.SkipFailedUsers
	return opts, nil
}

// runMode executes one analysis under the supervisor tree. The tree is torn
// down as soon as the run finishes, taking the telemetry server with it.
func runMode(cmd *cobra.Command, f *rootFlags, mode analysis.Mode) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	opts, err := analysisOptions(cfg)
	if err != nil {
		return err
	}
	loss, err := evaluation.ParseLossKind(cfg.Input.Loss)
	if err != nil {
		return err
	}

	store, err := dataset.Open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to close dataset store")
		}
	}()

	status := telemetry.NewStatus()
	runnerOpts := []analysis.RunnerOption{analysis.WithObserver(status)}
	if cfg.Output.Dir != "" {
		format, err := dataset.ParseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.Output.Dir, 0o750); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		runnerOpts = append(runnerOpts, analysis.WithSink(dataset.NewDirSink(store, cfg.Output.Dir, format)))
	}

	src := dataset.NewFileSource(store, cfg.Input.RatingsPath, cfg.Input.PredictionsPath, loss)
	runner := analysis.NewRunner(src, cmd.OutOrStdout(), opts, runnerOpts...)

	treeCfg := supervisor.DefaultTreeConfig()
	if cfg.Telemetry.ShutdownTimeout > 0 {
		treeCfg.ShutdownTimeout = cfg.Telemetry.ShutdownTimeout
	}
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	run := services.NewRunService("analysis-"+string(mode), func(ctx context.Context) error {
		status.Start(logging.RunIDFromContext(ctx), string(mode))
		_, err := runner.Run(ctx, mode)
		status.Finish(err)
		return err
	})
	tree.AddAnalysisService(run)

	if cfg.Telemetry.Enabled {
		srv := telemetry.NewServer(cfg.Telemetry.Addr, status)
		tree.AddTelemetryService(services.NewHTTPServerService(srv, cfg.Telemetry.ShutdownTimeout))
		logging.Info().Str("addr", cfg.Telemetry.Addr).Msg("Telemetry server enabled")
	}

	ctx, cancel := context.WithCancel(logging.ContextWithNewRunID(cmd.Context()))
	defer cancel()

	done := tree.ServeBackground(ctx)
	select {
	case <-run.Done():
	case err := <-done:
		select {
		case <-run.Done():
			return run.Err()
		default:
			return fmt.Errorf("supervisor stopped before the analysis finished: %w", err)
		}
	}

	cancel()
	<-done
	return run.Err()
}
