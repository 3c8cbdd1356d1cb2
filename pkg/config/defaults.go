// Package config defines default configuration and risk parameters for
// the analysis engine. Every tunable the engine reads lives here as a
// named field; nothing is a global.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration indicates a config value the engine refuses to
// run with. Validation fails fast at the boundary; values are never
// silently clamped, since a quietly adjusted threshold would skew every
// risk number downstream.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// AnalysisConfig holds the knobs for traversal, blast radius, and risk
// scoring.
type AnalysisConfig struct {
	// MaxTraversalDepth bounds every dependency walk. The depth bound is
	// the engine's only built-in backstop against unbounded work.
	MaxTraversalDepth int `mapstructure:"max_traversal_depth"`

	// SPOFFanInThreshold is the dependents count above which a resource
	// is considered for single-point-of-failure detection.
	SPOFFanInThreshold int `mapstructure:"spof_fan_in_threshold"`

	// BaseDowntimeSeconds is the downtime floor for any failing resource
	// with at least one dependent.
	BaseDowntimeSeconds float64 `mapstructure:"base_downtime_seconds"`
	// DowntimeScale divides the strength-weighted affected count before
	// it multiplies the base downtime.
	DowntimeScale float64 `mapstructure:"downtime_scale"`
	// MaxDowntimeSeconds caps the estimate for highly connected graphs.
	MaxDowntimeSeconds float64 `mapstructure:"max_downtime_seconds"`

	// User impact thresholds on total affected count:
	// total <= Medium -> low, total <= High -> medium, else high.
	MediumImpactThreshold int `mapstructure:"medium_impact_threshold"`
	HighImpactThreshold   int `mapstructure:"high_impact_threshold"`

	// Risk score weighting. The three weights sum to the score ceiling:
	// score = FanInWeight * min(1, fanIn/FanInSaturation)
	//       + SPOFBonus (when flagged)
	//       + StrengthWeight * avg outgoing strength, clamped to [0,100].
	FanInWeight     float64 `mapstructure:"fan_in_weight"`
	FanInSaturation float64 `mapstructure:"fan_in_saturation"`
	SPOFBonus       float64 `mapstructure:"spof_bonus"`
	StrengthWeight  float64 `mapstructure:"strength_weight"`
}

// DefaultAnalysisConfig returns the default analysis parameters.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		MaxTraversalDepth:     5,
		SPOFFanInThreshold:    3,
		BaseDowntimeSeconds:   300,
		DowntimeScale:         10,
		MaxDowntimeSeconds:    3600,
		MediumImpactThreshold: 5,
		HighImpactThreshold:   15,
		FanInWeight:           40,
		FanInSaturation:       20,
		SPOFBonus:             30,
		StrengthWeight:        30,
	}
}

// Validate rejects configurations the engine cannot honor.
func (c AnalysisConfig) Validate() error {
	if c.MaxTraversalDepth <= 0 {
		return fmt.Errorf("%w: max_traversal_depth must be positive, got %d", ErrInvalidConfiguration, c.MaxTraversalDepth)
	}
	if c.SPOFFanInThreshold < 1 {
		return fmt.Errorf("%w: spof_fan_in_threshold must be at least 1, got %d", ErrInvalidConfiguration, c.SPOFFanInThreshold)
	}
	if c.BaseDowntimeSeconds < 0 {
		return fmt.Errorf("%w: base_downtime_seconds must not be negative", ErrInvalidConfiguration)
	}
	if c.DowntimeScale <= 0 {
		return fmt.Errorf("%w: downtime_scale must be positive", ErrInvalidConfiguration)
	}
	if c.MaxDowntimeSeconds < c.BaseDowntimeSeconds {
		return fmt.Errorf("%w: max_downtime_seconds must not be below base_downtime_seconds", ErrInvalidConfiguration)
	}
	if c.MediumImpactThreshold < 0 || c.HighImpactThreshold < c.MediumImpactThreshold {
		return fmt.Errorf("%w: impact thresholds must satisfy 0 <= medium <= high", ErrInvalidConfiguration)
	}
	if c.FanInSaturation <= 0 {
		return fmt.Errorf("%w: fan_in_saturation must be positive", ErrInvalidConfiguration)
	}
	if c.FanInWeight < 0 || c.SPOFBonus < 0 || c.StrengthWeight < 0 {
		return fmt.Errorf("%w: risk weights must not be negative", ErrInvalidConfiguration)
	}
	return nil
}
