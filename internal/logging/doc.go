// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

/*
Package logging provides zerolog-based structured logging for nbhdeval.

A single global logger is configured once at startup from the logging
section of the configuration. Evaluation output (summary lines, tables)
goes to stdout through the report package; logs go to stderr so that the
two never interleave in a pipeline.

# Quick Start

	logging.Init(logging.Config{
	    Level:  "info",
	    Format: "console",
	})

	ctx = logging.ContextWithNewRunID(ctx)
	logging.Ctx(ctx).Info().Str("metric", "pearson").Msg("Training similarity model")

# Run Correlation

Every analysis run carries a run id (a UUID) and optionally the stage it is
in. Ctx attaches both to each entry:

	{"level":"warn","run_id":"0f8c...","stage":"accuracy","user":17,"message":"Skipping user"}

# Suture Integration

The supervisor tree logs through log/slog. NewSlogLogger returns an
slog.Logger whose records are written by the global zerolog logger, so
supervisor events share the format and level of everything else:

	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}

# Configuration

Environment Variables:

	LOG_LEVEL   - Minimum log level: trace, debug, info, warn, error (default: info)
	LOG_FORMAT  - Output format: json, console (default: json)
	LOG_CALLER  - Include caller file:line: true, false (default: false)
*/
package logging
