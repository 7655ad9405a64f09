// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

// Package supervisor builds the suture supervision tree for Convive.
//
// The tree has three layers for failure isolation:
//   - data: storage-backed background work
//   - matching: the scheduled batch matcher
//   - api: the HTTP server
//
// A crash in the matching layer restarts only the matcher; the API
// keeps serving run history and pool management.
package supervisor
