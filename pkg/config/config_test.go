package config

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultAnalysisConfigValid(t *testing.T) {
	if err := DefaultAnalysisConfig().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestAnalysisConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AnalysisConfig)
	}{
		{"zero depth", func(c *AnalysisConfig) { c.MaxTraversalDepth = 0 }},
		{"negative depth", func(c *AnalysisConfig) { c.MaxTraversalDepth = -1 }},
		{"zero spof threshold", func(c *AnalysisConfig) { c.SPOFFanInThreshold = 0 }},
		{"negative base downtime", func(c *AnalysisConfig) { c.BaseDowntimeSeconds = -1 }},
		{"zero downtime scale", func(c *AnalysisConfig) { c.DowntimeScale = 0 }},
		{"cap below base", func(c *AnalysisConfig) { c.MaxDowntimeSeconds = 10 }},
		{"high below medium", func(c *AnalysisConfig) { c.HighImpactThreshold = 1 }},
		{"zero saturation", func(c *AnalysisConfig) { c.FanInSaturation = 0 }},
		{"negative weight", func(c *AnalysisConfig) { c.FanInWeight = -5 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultAnalysisConfig()
			tc.mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("error should wrap ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestDefaultScenarioProbabilitiesSum(t *testing.T) {
	sc := DefaultScenarioConfig()
	if err := sc.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	for name, outcomes := range sc.Outcomes {
		sum := 0.0
		for _, o := range outcomes {
			sum += o.Probability
		}
		if math.Abs(sum-1.0) > 1e-6 {
			t.Errorf("%s probabilities sum to %f, want 1.0", name, sum)
		}
	}
}

func TestScenarioConfigValidate(t *testing.T) {
	sc := DefaultScenarioConfig()
	sc.Outcomes[FailureFullOutage] = []OutcomePolicy{
		{Type: "complete_outage", Probability: 0.7, DurationFactor: 1.0, AffectedPercentage: 100},
	}
	err := sc.Validate()
	if err == nil {
		t.Fatal("probabilities not summing to 1 must be rejected")
	}
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("error should wrap ErrInvalidConfiguration, got %v", err)
	}
}

func TestScenarioConfigRejectsBadOutcome(t *testing.T) {
	sc := DefaultScenarioConfig()
	sc.Outcomes[FailureIntermittent] = []OutcomePolicy{
		{Type: "t", Probability: 1.0, DurationFactor: -0.5, AffectedPercentage: 150},
	}
	if err := sc.Validate(); err == nil {
		t.Fatal("negative duration factor must be rejected")
	}
}
