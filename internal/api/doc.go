// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

// Package api provides the HTTP surface for Convive: match run
// submission, run history, candidate pool management, health probes,
// and the Prometheus metrics endpoint.
//
// All endpoints share a standardized JSON envelope (see response.go)
// and a common middleware stack: request-ID propagation into the
// logging context, structured request logging, panic recovery, CORS,
// and IP rate limiting.
package api
