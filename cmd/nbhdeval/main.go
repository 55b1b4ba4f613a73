// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/nbhdeval/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.Error().Err(err).Msg("nbhdeval failed")
		return 1
	}
	return 0
}
