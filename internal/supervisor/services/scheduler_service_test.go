// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/afrantzeskakis/convive/internal/logging"
	"github.com/afrantzeskakis/convive/internal/matching"
)

type mockPool struct {
	ids []matching.UserID
	err error
}

func (m *mockPool) List(_ context.Context) ([]matching.UserID, error) {
	return m.ids, m.err
}

type mockRunner struct {
	mu       sync.Mutex
	requests []matching.Request
	err      error
}

func (m *mockRunner) FormGroups(_ context.Context, req matching.Request) (*matching.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &matching.Result{RunID: "run-1"}, nil
}

func (m *mockRunner) calls() []matching.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]matching.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

type mockRecorder struct {
	mu     sync.Mutex
	stored []string
}

func (m *mockRecorder) Put(_ context.Context, result *matching.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = append(m.stored, result.RunID)
	return nil
}

func testScheduler(pool *mockPool, runner *mockRunner, rec *mockRecorder, cfg SchedulerConfig) *SchedulerService {
	var records RunRecorder
	if rec != nil {
		records = rec
	}
	return NewSchedulerService(pool, runner, records, cfg, logging.NewTestLogger(io.Discard))
}

func TestSchedulerRunOnceDryRunWithoutRestaurant(t *testing.T) {
	t.Parallel()

	pool := &mockPool{ids: []matching.UserID{"a", "b", "c", "d", "e"}}
	runner := &mockRunner{}
	rec := &mockRecorder{}
	svc := testScheduler(pool, runner, rec, SchedulerConfig{Interval: time.Hour})

	svc.runOnce(context.Background())

	calls := runner.calls()
	if len(calls) != 1 {
		t.Fatalf("runner calls = %d, want 1", len(calls))
	}
	if !calls[0].DryRun {
		t.Error("run without a restaurant should be a dry run")
	}
	if len(calls[0].CandidateIDs) != 5 {
		t.Errorf("candidates = %d, want 5", len(calls[0].CandidateIDs))
	}
	if len(rec.stored) != 1 || rec.stored[0] != "run-1" {
		t.Errorf("stored runs = %v, want [run-1]", rec.stored)
	}
}

func TestSchedulerRunOnceWithRestaurant(t *testing.T) {
	t.Parallel()

	pool := &mockPool{ids: []matching.UserID{"a", "b", "c", "d"}}
	runner := &mockRunner{}
	svc := testScheduler(pool, runner, nil, SchedulerConfig{
		Interval:      time.Hour,
		RestaurantID:  "rest-1",
		CreatorUserID: "admin",
	})

	svc.runOnce(context.Background())

	calls := runner.calls()
	if len(calls) != 1 {
		t.Fatalf("runner calls = %d, want 1", len(calls))
	}
	req := calls[0]
	if req.DryRun {
		t.Error("run with a restaurant should not be a dry run")
	}
	if req.Session.RestaurantID != "rest-1" {
		t.Errorf("restaurant = %q, want rest-1", req.Session.RestaurantID)
	}
	if !req.Session.EndTime.After(req.Session.StartTime) {
		t.Error("session end should be after start")
	}
}

func TestSchedulerSkipsSmallPool(t *testing.T) {
	t.Parallel()

	pool := &mockPool{ids: []matching.UserID{"a", "b"}}
	runner := &mockRunner{}
	svc := testScheduler(pool, runner, nil, SchedulerConfig{Interval: time.Hour, MinCandidates: 4})

	svc.runOnce(context.Background())

	if len(runner.calls()) != 0 {
		t.Error("run should be skipped when pool is below minimum")
	}
}

func TestSchedulerToleratesFailures(t *testing.T) {
	t.Parallel()

	pool := &mockPool{err: errors.New("store down")}
	runner := &mockRunner{}
	svc := testScheduler(pool, runner, nil, SchedulerConfig{Interval: time.Hour})

	// Must not panic or call the runner.
	svc.runOnce(context.Background())
	if len(runner.calls()) != 0 {
		t.Error("runner should not be called when the pool listing fails")
	}

	pool.err = nil
	pool.ids = []matching.UserID{"a", "b", "c", "d"}
	runner.err = errors.New("engine failure")
	svc.runOnce(context.Background())
	if len(runner.calls()) != 1 {
		t.Error("runner should have been called once")
	}
}

func TestSchedulerServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	pool := &mockPool{}
	svc := testScheduler(pool, &mockRunner{}, nil, SchedulerConfig{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
