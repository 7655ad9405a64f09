// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package matching

import "fmt"

// Default size rules for dining tables. Restaurants seat parties of four
// to seven; five to six is the sweet spot for conversation.
const (
	// DefaultMinGroupSize is the smallest viable table.
	DefaultMinGroupSize = 4

	// DefaultStandardMaxGroupSize is the preferred upper bound.
	DefaultStandardMaxGroupSize = 6

	// DefaultAbsoluteMaxGroupSize is the hard seating cap. Groups this
	// large ("extended" groups) are only formed for large compatibility
	// gains.
	DefaultAbsoluteMaxGroupSize = 7

	// DefaultTargetGroupSize is the planning target, used only for
	// arithmetic when choosing the group count.
	DefaultTargetGroupSize = 5.5
)

// DefaultExtendedGainThreshold is the minimum relative improvement in
// combined compatibility required before a swap touching an extended
// group is admissible. The value is policy, not derived; override via
// config if product wants a different tradeoff.
const DefaultExtendedGainThreshold = 0.20

// DefaultMaxOptimizerPasses caps full optimizer passes over the
// partition when no fixed point is reached earlier.
const DefaultMaxOptimizerPasses = 100

// SizeRules are the hard size constraints for one run.
type SizeRules struct {
	// Min is the minimum group size. Smaller candidate sets produce a
	// single undersized group rather than an error.
	Min int `json:"min" koanf:"min"`

	// StandardMax is the preferred maximum group size.
	StandardMax int `json:"standard_max" koanf:"standard_max"`

	// AbsoluteMax is the hard maximum group size.
	AbsoluteMax int `json:"absolute_max" koanf:"absolute_max"`

	// Target is the ideal group size used by the planner.
	Target float64 `json:"target" koanf:"target"`
}

// DefaultSizeRules returns the standard dining table constraints.
func DefaultSizeRules() SizeRules {
	return SizeRules{
		Min:         DefaultMinGroupSize,
		StandardMax: DefaultStandardMaxGroupSize,
		AbsoluteMax: DefaultAbsoluteMaxGroupSize,
		Target:      DefaultTargetGroupSize,
	}
}

// Validate checks the ordering invariants of the size rules.
func (r SizeRules) Validate() error {
	if r.Min < 1 {
		return fmt.Errorf("min group size must be positive, got %d", r.Min)
	}
	if r.StandardMax < r.Min {
		return fmt.Errorf("standard max %d below min %d", r.StandardMax, r.Min)
	}
	if r.AbsoluteMax < r.StandardMax {
		return fmt.Errorf("absolute max %d below standard max %d", r.AbsoluteMax, r.StandardMax)
	}
	if r.Target < float64(r.Min) || r.Target > float64(r.StandardMax) {
		return fmt.Errorf("target %.2f outside [%d, %d]", r.Target, r.Min, r.StandardMax)
	}
	return nil
}

// Config controls the group formation engine.
type Config struct {
	// Sizes are the hard size constraints.
	Sizes SizeRules `json:"sizes" koanf:"sizes"`

	// ExtendedGainThreshold is the minimum relative gain before a swap
	// involving an extended group is accepted.
	// Default: 0.20
	ExtendedGainThreshold float64 `json:"extended_gain_threshold" koanf:"extended_gain_threshold"`

	// MaxOptimizerPasses bounds the local-search phase.
	// Default: 100
	MaxOptimizerPasses int `json:"max_optimizer_passes" koanf:"max_optimizer_passes"`

	// SkipOptimization degrades the engine to random assignment plus
	// size repair, with no compatibility-driven swapping. Intended for
	// load shedding and A/B comparison.
	// Default: false
	SkipOptimization bool `json:"skip_optimization" koanf:"skip_optimization"`

	// RandomSeed seeds the shuffle used by initial assignment. Zero
	// selects a time-based seed; tests set an explicit value for
	// reproducibility.
	// Default: 0
	RandomSeed int64 `json:"random_seed" koanf:"random_seed"`

	// MatrixWorkers is the number of concurrent fetchers used while
	// building the score matrix. Provider calls are independent, so the
	// only bound is provider politeness.
	// Default: 4
	MatrixWorkers int `json:"matrix_workers" koanf:"matrix_workers"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Sizes:                 DefaultSizeRules(),
		ExtendedGainThreshold: DefaultExtendedGainThreshold,
		MaxOptimizerPasses:    DefaultMaxOptimizerPasses,
		SkipOptimization:      false,
		RandomSeed:            0,
		MatrixWorkers:         4,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := c.Sizes.Validate(); err != nil {
		return fmt.Errorf("size rules: %w", err)
	}
	if c.ExtendedGainThreshold < 0 {
		return fmt.Errorf("extended gain threshold must be non-negative, got %f", c.ExtendedGainThreshold)
	}
	if c.MaxOptimizerPasses < 1 {
		return fmt.Errorf("max optimizer passes must be positive, got %d", c.MaxOptimizerPasses)
	}
	if c.MatrixWorkers < 1 {
		return fmt.Errorf("matrix workers must be positive, got %d", c.MatrixWorkers)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() Config {
	return *c
}
