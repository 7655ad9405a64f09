// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

// Package metrics exposes Prometheus instrumentation for group formation
// runs, compatibility scoring, session persistence, and the HTTP API.
// Collectors are registered at import time via promauto; callers use the
// Record* helpers instead of touching collectors directly.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Batch run metrics
	RunsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "convive_matching_runs_started_total",
			Help: "Total number of group formation runs started",
		},
	)

	RunsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "convive_matching_runs_failed_total",
			Help: "Total number of group formation runs that aborted with an error",
		},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "convive_matching_run_duration_seconds",
			Help:    "Wall-clock duration of group formation runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	GroupsPerRun = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "convive_matching_groups_per_run",
			Help:    "Number of groups produced per run",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
		},
	)

	GroupsFormed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convive_matching_groups_formed_total",
			Help: "Total groups formed, labeled by final group size",
		},
		[]string{"size"},
	)

	// Local search metrics
	OptimizerPasses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "convive_matching_optimizer_passes_total",
			Help: "Total optimizer passes executed across all runs",
		},
	)

	SwapsApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "convive_matching_swaps_applied_total",
			Help: "Total improving swaps applied by the optimizer",
		},
	)

	InvariantViolations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "convive_matching_invariant_violations_total",
			Help: "Group size invariant violations detected after repair",
		},
	)

	// Compatibility scoring metrics
	ScoreLookups = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "convive_score_lookups_total",
			Help: "Total pairwise compatibility lookups",
		},
	)

	ScoreLookupErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "convive_score_lookup_errors_total",
			Help: "Compatibility lookups that failed and degraded to score 0",
		},
	)

	ScoreCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "convive_score_cache_hits_total",
			Help: "Pair score lookups served from cache",
		},
	)

	ScoreCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "convive_score_cache_misses_total",
			Help: "Pair score lookups that missed the cache",
		},
	)

	// Session persistence metrics
	MaterializationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "convive_materialization_failures_total",
			Help: "Per-group session persistence failures",
		},
	)

	// HTTP API metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "convive_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convive_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

// RecordRunStarted increments the started-run counter.
func RecordRunStarted() {
	RunsStarted.Inc()
}

// RecordRunCompleted records the duration and group count of a finished
// run.
func RecordRunCompleted(d time.Duration, groups int) {
	RunDuration.Observe(d.Seconds())
	GroupsPerRun.Observe(float64(groups))
}

// RecordRunFailed increments the failed-run counter.
func RecordRunFailed() {
	RunsFailed.Inc()
}

// RecordGroupFormed counts one formed group of the given size.
func RecordGroupFormed(size int) {
	GroupsFormed.WithLabelValues(strconv.Itoa(size)).Inc()
}

// RecordOptimizerPass counts one completed optimizer pass.
func RecordOptimizerPass(_ int) {
	OptimizerPasses.Inc()
}

// RecordSwapApplied counts one applied swap.
func RecordSwapApplied() {
	SwapsApplied.Inc()
}

// RecordInvariantViolation counts one post-repair size violation.
func RecordInvariantViolation() {
	InvariantViolations.Inc()
}

// RecordScoreLookup counts one pairwise compatibility lookup.
func RecordScoreLookup() {
	ScoreLookups.Inc()
}

// RecordScoreLookupError counts one failed lookup degraded to score 0.
func RecordScoreLookupError() {
	ScoreLookupErrors.Inc()
}

// RecordScoreCacheHit counts a cache-served pair score.
func RecordScoreCacheHit() {
	ScoreCacheHits.Inc()
}

// RecordScoreCacheMiss counts a cache miss.
func RecordScoreCacheMiss() {
	ScoreCacheMisses.Inc()
}

// RecordMaterializationFailure counts one failed group persistence.
func RecordMaterializationFailure() {
	MaterializationFailures.Inc()
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(method, path string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestDuration.WithLabelValues(method, path, code).Observe(d.Seconds())
	HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
}
