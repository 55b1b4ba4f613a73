// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

// Package services adapts nbhdeval components to suture.Service.
//
//   - RunService: runs one evaluation to completion and is never restarted
//   - HTTPServerService: the telemetry server, shut down gracefully on cancel
//
// Services implement fmt.Stringer so suture events name them.
package services
