// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/thejerf/suture/v4"
)

// RunFunc performs one unit of work.
type RunFunc func(ctx context.Context) error

// RunService runs a RunFunc exactly once under a supervisor. The result is
// kept and the service asks not to be restarted, whatever the outcome.
type RunService struct {
	name string
	fn   RunFunc

	once sync.Once
	done chan struct{}
	err  error
}

// NewRunService creates a one-shot service.
func NewRunService(name string, fn RunFunc) *RunService {
	return &RunService{name: name, fn: fn, done: make(chan struct{})}
}

// Serve implements suture.Service.
func (r *RunService) Serve(ctx context.Context) error {
	ran := false
	r.once.Do(func() {
		ran = true
		defer close(r.done)
		r.err = r.call(ctx)
	})
	if !ran {
		return suture.ErrDoNotRestart
	}
	return fmt.Errorf("%s finished: %w", r.name, suture.ErrDoNotRestart)
}

// call recovers a panic so Done is always closed with an error set.
func (r *RunService) call(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s panicked: %v", r.name, p)
		}
	}()
	return r.fn(ctx)
}

// Done is closed once the RunFunc has returned.
func (r *RunService) Done() <-chan struct{} {
	return r.done
}

// Err returns the RunFunc result. It is only meaningful after Done is closed.
func (r *RunService) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// String implements fmt.Stringer for suture event logs.
func (r *RunService) String() string {
	return r.name
}
