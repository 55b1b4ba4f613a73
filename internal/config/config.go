// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package config

import (
	"time"

	"github.com/tomtom215/nbhdeval/internal/logging"
)

// Config holds all configuration for an nbhdeval run.
type Config struct {
	Input        InputConfig        `koanf:"input"`
	Neighborhood NeighborhoodConfig `koanf:"neighborhood"`
	Similarity   SimilarityConfig   `koanf:"similarity"`
	Ranking      RankingConfig      `koanf:"ranking"`
	Detector     DetectorConfig     `koanf:"detector"`
	Output       OutputConfig       `koanf:"output"`
	Logging      LoggingConfig      `koanf:"logging"`
	Telemetry    TelemetryConfig    `koanf:"telemetry"`
}

// InputConfig locates the evaluated data.
type InputConfig struct {
	// RatingsPath is the training ratings file. Empty reuses the true
	// ratings of the predictions file.
	RatingsPath string `koanf:"ratings"`

	PredictionsPath string `koanf:"predictions" validate:"required"`

	// Loss is used to derive prediction_loss when the column is absent.
	Loss string `koanf:"loss" validate:"oneof=squared absolute"`
}

// NeighborhoodConfig controls neighborhood construction.
type NeighborhoodConfig struct {
	Size int `koanf:"size" validate:"min=1"`
}

// SimilarityConfig configures the user-user kNN models. One clustering is
// built per entry in Metrics.
type SimilarityConfig struct {
	Metrics        []string `koanf:"metrics" validate:"min=1,unique,dive,oneof=cosine pearson msd jaccard"`
	MinCommonItems int      `koanf:"min_common_items" validate:"min=1"`
	Shrinkage      float64  `koanf:"shrinkage" validate:"min=0"`
	MaxNeighbors   int      `koanf:"max_neighbors" validate:"min=0"`
	Workers        int      `koanf:"workers" validate:"min=0"`
}

// RankingConfig configures precision and recall at k.
type RankingConfig struct {
	K         int     `koanf:"k" validate:"min=1"`
	Threshold float64 `koanf:"threshold"`
}

// DetectorConfig configures critical-neighborhood detection.
type DetectorConfig struct {
	PThreshold      float64 `koanf:"p_threshold" validate:"gte=0,lte=1"`
	Workers         int     `koanf:"workers" validate:"min=0"`
	SkipFailedUsers bool    `koanf:"skip_failed_users"`
}

// OutputConfig controls result export. An empty Dir disables export.
type OutputConfig struct {
	Dir    string `koanf:"dir"`
	Format string `koanf:"format" validate:"oneof=csv parquet json"`

	// Tables additionally prints every result table to stdout.
	Tables bool `koanf:"tables"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// ToLoggingConfig converts to the logging package configuration.
func (c LoggingConfig) ToLoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.Caller = c.Caller
	return cfg
}

// TelemetryConfig controls the optional metrics and health server.
type TelemetryConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Addr            string        `koanf:"addr" validate:"omitempty,hostname_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}
