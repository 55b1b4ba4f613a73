// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package telemetry

import (
	"sync"
	"time"
)

// State is the lifecycle state of a run.
type State string

// Run states.
const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Snapshot is the JSON body of GET /status.
type Snapshot struct {
	RunID      string         `json:"run_id,omitempty"`
	Mode       string         `json:"mode,omitempty"`
	State      State          `json:"state"`
	Stage      string         `json:"stage,omitempty"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Error      string         `json:"error,omitempty"`
	Summaries  map[string]any `json:"summaries,omitempty"`
}

// Status tracks the progress of one run. It is safe for concurrent use.
type Status struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewStatus returns a pending status.
func NewStatus() *Status {
	return &Status{snap: Snapshot{State: StatePending}, now: time.Now}
}

// Start marks the run as running.
func (s *Status) Start(runID, mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now()
	s.snap = Snapshot{RunID: runID, Mode: mode, State: StateRunning, StartedAt: &t}
}

// SetStage records the pipeline stage currently executing.
func (s *Status) SetStage(stage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Stage = stage
}

// Record stores the summary produced for label, replacing any earlier one.
func (s *Status) Record(label string, summary any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Summaries == nil {
		s.snap.Summaries = make(map[string]any)
	}
	s.snap.Summaries[label] = summary
}

// Finish marks the run as done. A nil err means success.
func (s *Status) Finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now()
	s.snap.FinishedAt = &t
	s.snap.Stage = ""
	if err != nil {
		s.snap.State = StateFailed
		s.snap.Error = err.Error()
		return
	}
	s.snap.State = StateSucceeded
}

// Snapshot returns a copy of the current status.
func (s *Status) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	if s.snap.Summaries != nil {
		snap.Summaries = make(map[string]any, len(s.snap.Summaries))
		for k, v := range s.snap.Summaries {
			snap.Summaries[k] = v
		}
	}
	return snap
}
