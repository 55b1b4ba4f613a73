// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/nbhdeval/internal/analysis"
)

// rootFlags holds flag values. Only flags the user set override the
// loaded configuration.
type rootFlags struct {
	configPath string

	predictions string
	ratings     string
	loss        string

	size       int
	metrics    []string
	topK       int
	threshold  float64
	pThreshold float64
	skipFailed bool

	outputDir string
	format    string
	tables    bool

	logLevel  string
	telemetry bool
	addr      string
}

// flagPaths maps flag names to koanf paths.
var flagPaths = map[string]string{
	"predictions":       "input.predictions",
	"ratings":           "input.ratings",
	"loss":              "input.loss",
	"size":              "neighborhood.size",
	"metrics":           "similarity.metrics",
	"k":                 "ranking.k",
	"threshold":         "ranking.threshold",
	"p-threshold":       "detector.p_threshold",
	"skip-failed-users": "detector.skip_failed_users",
	"output-dir":        "output.dir",
	"format":            "output.format",
	"tables":            "output.tables",
	"log-level":         "logging.level",
	"telemetry":         "telemetry.enabled",
	"telemetry-addr":    "telemetry.addr",
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}

	root := &cobra.Command{
		Use:   "nbhdeval",
		Short: "Neighborhood-level evaluation of recommender predictions",
		Long: `nbhdeval builds k-nearest-neighbor user neighborhoods from a similarity
model trained on observed ratings, scores predictions per neighborhood and
flags critical neighborhoods with a two-stage test: a directional effect
check followed by Welch's t-test on the estimates.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "YAML config file (sets CONFIG_PATH)")
	pf.StringVar(&f.predictions, "predictions", "", "predictions file (csv, parquet, json)")
	pf.StringVar(&f.ratings, "ratings", "", "training ratings file; defaults to the true ratings of --predictions")
	pf.StringVar(&f.loss, "loss", "squared", "loss derived when prediction_loss is absent: squared or absolute")
	pf.IntVar(&f.size, "size", 10, "neighbors per user")
	pf.StringSliceVar(&f.metrics, "metrics", []string{"pearson"}, "similarity metrics, one clustering each")
	pf.IntVar(&f.topK, "k", 10, "top-k cutoff for precision and recall")
	pf.Float64Var(&f.threshold, "threshold", 3.5, "relevance threshold for precision and recall")
	pf.Float64Var(&f.pThreshold, "p-threshold", 0.5, "Welch p-value above which a neighborhood is critical")
	pf.BoolVar(&f.skipFailed, "skip-failed-users", false, "log and skip users that cannot be evaluated")
	pf.StringVar(&f.outputDir, "output-dir", "", "directory for result tables; empty disables export")
	pf.StringVar(&f.format, "format", "csv", "export format: csv, parquet or json")
	pf.BoolVar(&f.tables, "tables", false, "also print result tables to stdout")
	pf.StringVar(&f.logLevel, "log-level", "info", "log level")
	pf.BoolVar(&f.telemetry, "telemetry", false, "serve /metrics, /healthz and /status during the run")
	pf.StringVar(&f.addr, "telemetry-addr", "127.0.0.1:9464", "telemetry listen address")

	root.AddCommand(
		newModeCmd(f, analysis.ModeAccuracy, "Detect critical neighborhoods by prediction loss"),
		newModeCmd(f, analysis.ModeRanking, "Detect critical neighborhoods by precision at k"),
		newModeCmd(f, analysis.ModeLocal, "Compute per-user MAE and RMSE"),
		newModeCmd(f, analysis.ModeAll, "Run every analysis"),
		newConfigCmd(f),
	)
	return root
}

func newModeCmd(f *rootFlags, mode analysis.Mode, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(mode),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMode(cmd, f, mode)
		},
	}
}

func newConfigCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printConfig(cmd, f)
		},
	}
}

// overrides returns the koanf values of every flag set on the command line.
func (f *rootFlags) overrides(cmd *cobra.Command) map[string]any {
	values := map[string]any{
		"predictions":       f.predictions,
		"ratings":           f.ratings,
		"loss":              f.loss,
		"size":              f.size,
		"metrics":           f.metrics,
		"k":                 f.topK,
		"threshold":         f.threshold,
		"p-threshold":       f.pThreshold,
		"skip-failed-users": f.skipFailed,
		"output-dir":        f.outputDir,
		"format":            f.format,
		"tables":            f.tables,
		"log-level":         f.logLevel,
		"telemetry":         f.telemetry,
		"telemetry-addr":    f.addr,
	}

	out := make(map[string]any)
	for name, path := range flagPaths {
		if cmd.Flags().Changed(name) {
			out[path] = values[name]
		}
	}
	return out
}
