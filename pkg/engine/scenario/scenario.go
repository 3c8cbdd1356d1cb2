// Package scenario models what a failure of one resource looks like: a
// probability-weighted set of outcomes derived from the blast radius,
// plus mitigation and monitoring advice per failure type.
package scenario

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/MattVerwey/TopDeck-sub004/pkg/config"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/blastradius"
)

// FailureType selects which policy table drives the simulation.
type FailureType string

const (
	FailureDegradedPerformance FailureType = config.FailureDegradedPerformance
	FailureIntermittent        FailureType = config.FailureIntermittent
	FailureFullOutage          FailureType = config.FailureFullOutage
)

// ParseFailureType validates a user-supplied failure type string.
func ParseFailureType(s string) (FailureType, error) {
	switch FailureType(s) {
	case FailureDegradedPerformance, FailureIntermittent, FailureFullOutage:
		return FailureType(s), nil
	}
	return "", fmt.Errorf("%w: unknown failure type %q", config.ErrInvalidConfiguration, s)
}

// Outcome is one probability-weighted way the scenario can play out.
type Outcome struct {
	Type                  string
	Probability           float64
	DurationSeconds       float64
	AffectedPercentage    float64
	UserImpactDescription string
	TechnicalDetails      string
}

// Scenario is the simulation result for one resource and failure type.
// Outcome probabilities sum to 1.0 within floating tolerance; the policy
// tables are validated at engine construction.
type Scenario struct {
	ResourceID                string
	FailureType               FailureType
	Outcomes                  []Outcome
	OverallImpact             string
	MitigationStrategies      []string
	MonitoringRecommendations []string
}

// Simulator turns blast-radius reports into failure scenarios.
type Simulator struct {
	Calculator *blastradius.Calculator
	Config     config.ScenarioConfig
	Logger     *slog.Logger
}

func NewSimulator(calc *blastradius.Calculator, cfg config.ScenarioConfig, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{Calculator: calc, Config: cfg, Logger: logger}
}

// Simulate computes the blast radius for the resource and expands it
// through the failure type's policy table. A resource with an empty
// blast radius still yields a valid scenario with minimal outcomes.
func (s *Simulator) Simulate(resourceID string, failureType FailureType) (*Scenario, error) {
	table, ok := s.Config.Outcomes[string(failureType)]
	if !ok {
		return nil, fmt.Errorf("%w: no outcome table for failure type %q", config.ErrInvalidConfiguration, failureType)
	}

	report, err := s.Calculator.Compute(resourceID, 0)
	if err != nil {
		return nil, err
	}
	res := s.Calculator.Traverser.Store.GetResourceByID(resourceID)
	name := resourceID
	rtype := "resource"
	if res != nil {
		if res.Name != "" {
			name = res.Name
		}
		if res.Type != "" {
			rtype = res.Type
		}
	}

	scenario := &Scenario{
		ResourceID:  resourceID,
		FailureType: failureType,
	}

	for _, policy := range table {
		description := policy.Description
		if strings.Contains(description, "%s") {
			description = fmt.Sprintf(description, name)
		}
		scenario.Outcomes = append(scenario.Outcomes, Outcome{
			Type:                  policy.Type,
			Probability:           policy.Probability,
			DurationSeconds:       report.EstimatedDowntimeSeconds * policy.DurationFactor,
			AffectedPercentage:    policy.AffectedPercentage,
			UserImpactDescription: description,
			TechnicalDetails: fmt.Sprintf("%d directly and %d transitively affected resources within the modeled radius",
				len(report.DirectlyAffected), len(report.IndirectlyAffected)),
		})
	}

	scenario.OverallImpact = overallImpact(name, failureType, report)
	scenario.MitigationStrategies = mitigations(failureType, name, rtype)
	scenario.MonitoringRecommendations = monitoring(failureType, name)

	s.Logger.Debug("Failure scenario simulated",
		"resource", resourceID,
		"failure_type", failureType,
		"outcomes", len(scenario.Outcomes))

	return scenario, nil
}

func overallImpact(name string, ft FailureType, report *blastradius.Report) string {
	if report.TotalAffected == 0 {
		return fmt.Sprintf("No discovered resources depend on %s; a %s is contained to the resource itself.", name, label(ft))
	}
	return fmt.Sprintf("A %s of %s puts %d resources at risk (%s user impact, estimated downtime %.0fs).",
		label(ft), name, report.TotalAffected, report.UserImpact, report.EstimatedDowntimeSeconds)
}

func label(ft FailureType) string {
	return strings.ReplaceAll(string(ft), "_", " ")
}

// Static per-failure-type advice, parameterized with the resource. Kept
// as plain tables rather than config: this is prose, not policy.
func mitigations(ft FailureType, name, rtype string) []string {
	switch ft {
	case FailureFullOutage:
		return []string{
			fmt.Sprintf("Provision a standby %s and rehearse failover for %s.", rtype, name),
			fmt.Sprintf("Ensure every consumer of %s degrades gracefully when it is unreachable.", name),
			"Document and regularly test the restore-from-backup path.",
		}
	case FailureDegradedPerformance:
		return []string{
			fmt.Sprintf("Add circuit breakers and timeouts on calls into %s.", name),
			fmt.Sprintf("Scale %s horizontally or vertically ahead of observed saturation.", name),
			"Shed non-critical load first under sustained degradation.",
		}
	case FailureIntermittent:
		return []string{
			fmt.Sprintf("Use retries with exponential backoff and jitter against %s.", name),
			fmt.Sprintf("Make operations against %s idempotent so retries are safe.", name),
			"Cap retry budgets to avoid amplifying the fault into a retry storm.",
		}
	}
	return nil
}

func monitoring(ft FailureType, name string) []string {
	base := []string{
		fmt.Sprintf("Alert on availability and error rate of %s from the consumer side.", name),
		fmt.Sprintf("Track dependency health for every resource in the blast radius of %s.", name),
	}
	if ft == FailureIntermittent {
		base = append(base, fmt.Sprintf("Watch p99 latency and retry counts against %s; intermittent faults hide in tail metrics.", name))
	}
	return base
}
