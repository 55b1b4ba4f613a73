// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package config

import (
	"errors"
	"fmt"

	"github.com/tomtom215/nbhdeval/internal/logging"
	"github.com/tomtom215/nbhdeval/internal/validation"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks struct-tag rules and cross-field constraints.
func (c *Config) Validate() error {
	if errs := validation.ValidateStruct(c); errs != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, errs.Error())
	}

	validators := []func() error{
		c.validateLogging,
		c.validateNeighborhood,
		c.validateTelemetry,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	return nil
}

// validateNeighborhood rejects a neighbor cap that would truncate every
// neighborhood below the requested size.
func (c *Config) validateNeighborhood() error {
	if c.Similarity.MaxNeighbors > 0 && c.Similarity.MaxNeighbors < c.Neighborhood.Size {
		return fmt.Errorf("similarity.max_neighbors (%d) must be 0 or at least neighborhood.size (%d)",
			c.Similarity.MaxNeighbors, c.Neighborhood.Size)
	}
	return nil
}

func (c *Config) validateTelemetry() error {
	if c.Telemetry.Enabled && c.Telemetry.Addr == "" {
		return errors.New("TELEMETRY_ADDR is required when TELEMETRY_ENABLED=true")
	}
	if c.Telemetry.ShutdownTimeout < 0 {
		return errors.New("telemetry.shutdown_timeout must not be negative")
	}
	return nil
}
