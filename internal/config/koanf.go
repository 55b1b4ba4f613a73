// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"nbhdeval.yaml",
	"nbhdeval.yml",
	"/etc/nbhdeval/config.yaml",
	"/etc/nbhdeval/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			RatingsPath:     "",
			PredictionsPath: "",
			Loss:            "squared",
		},
		Neighborhood: NeighborhoodConfig{
			Size: 10,
		},
		Similarity: SimilarityConfig{
			Metrics:        []string{"pearson"},
			MinCommonItems: 1,
			Shrinkage:      0,
			MaxNeighbors:   0, // 0 = keep every user
			Workers:        0, // 0 = use GOMAXPROCS
		},
		Ranking: RankingConfig{
			K:         10,
			Threshold: 3.5,
		},
		Detector: DetectorConfig{
			PThreshold:      0.5,
			Workers:         0,
			SkipFailedUsers: false,
		},
		Output: OutputConfig{
			Dir:    "",
			Format: "csv",
			Tables: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Caller: false,
		},
		Telemetry: TelemetryConfig{
			Enabled:         false,
			Addr:            "127.0.0.1:9464",
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

// Load loads configuration from defaults, the config file and the environment.
func Load() (*Config, error) {
	return LoadWithOverrides(nil)
}

// LoadWithOverrides loads configuration with layered sources:
//  1. Defaults: built-in values
//  2. Config File: optional YAML config file (if exists)
//  3. Environment Variables: mapped names only
//  4. Overrides: koanf paths set by the caller, typically CLI flags
func LoadWithOverrides(overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath, err := findConfigFile()
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables
	// NBHD_SIZE -> neighborhood.size
	// P_THRESHOLD -> detector.p_threshold
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Layer 4: caller overrides
	for path, v := range overrides {
		if err := k.Set(path, v); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", path, err)
		}
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the config file to load, or "" when none exists.
// An explicit CONFIG_PATH must exist.
func findConfigFile() (string, error) {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("config file %s: %w", envPath, err)
		}
		return envPath, nil
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", nil
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"similarity.metrics",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while YAML already yields slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Input
	"ratings_path":     "input.ratings",
	"predictions_path": "input.predictions",
	"loss_kind":        "input.loss",

	// Neighborhoods
	"nbhd_size": "neighborhood.size",

	// Similarity
	"similarity_metrics":       "similarity.metrics",
	"similarity_min_common":    "similarity.min_common_items",
	"similarity_shrinkage":     "similarity.shrinkage",
	"similarity_max_neighbors": "similarity.max_neighbors",
	"similarity_workers":       "similarity.workers",

	// Ranking
	"ranking_k":         "ranking.k",
	"ranking_threshold": "ranking.threshold",

	// Detector
	"p_threshold":       "detector.p_threshold",
	"detector_workers":  "detector.workers",
	"skip_failed_users": "detector.skip_failed_users",

	// Output
	"output_dir":    "output.dir",
	"output_format": "output.format",
	"output_tables": "output.tables",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Telemetry
	"telemetry_enabled":          "telemetry.enabled",
	"telemetry_addr":             "telemetry.addr",
	"telemetry_shutdown_timeout": "telemetry.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
