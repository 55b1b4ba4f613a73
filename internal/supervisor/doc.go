// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

/*
Package supervisor runs nbhdeval's long-lived pieces under suture v4.

An evaluation run is short, but the optional telemetry server must live
exactly as long as the run and be restarted if it fails. The tree is:

	RootSupervisor ("nbhdeval")
	├── AnalysisSupervisor ("analysis-layer")
	│   └── RunService (one-shot, never restarted)
	└── TelemetrySupervisor ("telemetry-layer")
	    └── HTTPServerService (if telemetry.enabled)

A telemetry failure is restarted with backoff and never aborts the run.

Supervisor events are logged through sutureslog, fed by the zerolog slog
adapter in internal/logging:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	run := services.NewRunService("evaluation", runner.Run)
	tree.AddAnalysisService(run)
	tree.AddTelemetryService(services.NewHTTPServerService(server, 5*time.Second))

	ctx, cancel := context.WithCancel(ctx)
	done := tree.ServeBackground(ctx)
	<-run.Done()
	cancel()
	<-done
	return run.Err()

See internal/supervisor/services for the service wrappers.
*/
package supervisor
