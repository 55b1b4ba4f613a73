// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

// Package telemetry serves run metrics and status over HTTP using chi.
//
// Routes:
//
//	GET /healthz  liveness, always {"status":"ok"} while the server is up
//	GET /status   the current run: id, mode, state, stage and summaries
//	GET /metrics  Prometheus exposition of internal/metrics collectors
//
// The server runs under the telemetry layer of internal/supervisor and
// lives only as long as a run.
package telemetry
