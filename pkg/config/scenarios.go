package config

import (
	"fmt"
	"math"
)

// Failure types the simulator knows how to model.
const (
	FailureDegradedPerformance = "degraded_performance"
	FailureIntermittent        = "intermittent_failure"
	FailureFullOutage          = "full_outage"
)

// OutcomePolicy is one row of a failure-type policy table: a possible
// outcome with its probability and how it scales the blast-radius
// downtime estimate.
type OutcomePolicy struct {
	Type string `mapstructure:"type"`
	// Probability of this outcome within its scenario. Probabilities in
	// one table must sum to 1.0.
	Probability float64 `mapstructure:"probability"`
	// DurationFactor multiplies the blast-radius downtime estimate.
	DurationFactor float64 `mapstructure:"duration_factor"`
	// AffectedPercentage of the blast radius hit in this outcome.
	AffectedPercentage float64 `mapstructure:"affected_percentage"`
	// Description of the user-visible impact. May contain %s for the
	// resource name.
	Description string `mapstructure:"description"`
}

// ScenarioConfig maps a failure type to its outcome partition.
type ScenarioConfig struct {
	Outcomes map[string][]OutcomePolicy `mapstructure:"outcomes"`
}

// probabilityTolerance bounds the floating error accepted when checking
// that a partition's probabilities sum to 1.0.
const probabilityTolerance = 1e-6

// DefaultScenarioConfig returns the default outcome partitions. The
// full-outage table is intentionally a single certain outcome; the other
// two spread probability across partial degradation, cascade, and
// self-recovery.
func DefaultScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		Outcomes: map[string][]OutcomePolicy{
			FailureFullOutage: {
				{
					Type:               "complete_outage",
					Probability:        1.0,
					DurationFactor:     1.0,
					AffectedPercentage: 100,
					Description:        "All consumers of %s are unavailable for the full outage window",
				},
			},
			FailureDegradedPerformance: {
				{
					Type:               "partial_degradation",
					Probability:        0.6,
					DurationFactor:     0.5,
					AffectedPercentage: 40,
					Description:        "Consumers of %s see elevated latency and intermittent errors",
				},
				{
					Type:               "cascading_failure",
					Probability:        0.3,
					DurationFactor:     1.5,
					AffectedPercentage: 80,
					Description:        "Degradation of %s propagates to downstream services",
				},
				{
					Type:               "self_recovery",
					Probability:        0.1,
					DurationFactor:     0.05,
					AffectedPercentage: 10,
					Description:        "%s recovers before most consumers notice",
				},
			},
			FailureIntermittent: {
				{
					Type:               "transient_errors",
					Probability:        0.5,
					DurationFactor:     0.3,
					AffectedPercentage: 30,
					Description:        "Requests through %s fail sporadically and succeed on retry",
				},
				{
					Type:               "retry_storm",
					Probability:        0.3,
					DurationFactor:     1.2,
					AffectedPercentage: 70,
					Description:        "Retries against %s amplify load and widen the failure",
				},
				{
					Type:               "self_recovery",
					Probability:        0.2,
					DurationFactor:     0.1,
					AffectedPercentage: 15,
					Description:        "Intermittent faults in %s settle without intervention",
				},
			},
		},
	}
}

// Validate checks every policy table: known shape, probabilities in
// [0,1], and probability conservation within tolerance.
func (c ScenarioConfig) Validate() error {
	if len(c.Outcomes) == 0 {
		return fmt.Errorf("%w: scenario config has no outcome tables", ErrInvalidConfiguration)
	}
	for failureType, table := range c.Outcomes {
		if len(table) == 0 {
			return fmt.Errorf("%w: failure type %q has an empty outcome table", ErrInvalidConfiguration, failureType)
		}
		sum := 0.0
		for _, o := range table {
			if o.Probability < 0 || o.Probability > 1 {
				return fmt.Errorf("%w: outcome %q of %q has probability %v outside [0,1]",
					ErrInvalidConfiguration, o.Type, failureType, o.Probability)
			}
			if o.DurationFactor < 0 {
				return fmt.Errorf("%w: outcome %q of %q has negative duration factor",
					ErrInvalidConfiguration, o.Type, failureType)
			}
			if o.AffectedPercentage < 0 || o.AffectedPercentage > 100 {
				return fmt.Errorf("%w: outcome %q of %q has affected percentage outside [0,100]",
					ErrInvalidConfiguration, o.Type, failureType)
			}
			sum += o.Probability
		}
		if math.Abs(sum-1.0) > probabilityTolerance {
			return fmt.Errorf("%w: probabilities for %q sum to %v, want 1.0",
				ErrInvalidConfiguration, failureType, sum)
		}
	}
	return nil
}
