// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

// Package services wraps Convive's long-running components as
// suture.Service implementations so the supervision tree can restart
// them independently.
package services
