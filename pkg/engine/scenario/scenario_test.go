package scenario

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/MattVerwey/TopDeck-sub004/pkg/config"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/blastradius"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/traversal"
	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
)

func newSimulator(t *testing.T) (*Simulator, *graph.Graph) {
	t.Helper()
	g := graph.NewGraph()
	g.AddResource("db", "User Database", "aws_rds_instance", "aws", nil)
	for _, id := range []string{"svc-a", "svc-b"} {
		g.AddResource(id, id, "service", "test", nil)
		g.AddDependency(id, "db", graph.KindDependsOn, graph.CategoryData, 1.0)
	}
	g.CloseAndWait()

	calc := blastradius.NewCalculator(traversal.NewTraverser(g.Store, nil), config.DefaultAnalysisConfig(), nil)
	return NewSimulator(calc, config.DefaultScenarioConfig(), nil), g
}

func TestSimulate_ProbabilityConservation(t *testing.T) {
	s, _ := newSimulator(t)

	for _, ft := range []FailureType{FailureFullOutage, FailureDegradedPerformance, FailureIntermittent} {
		sc, err := s.Simulate("db", ft)
		if err != nil {
			t.Fatalf("Simulate(%s): %v", ft, err)
		}
		sum := 0.0
		for _, o := range sc.Outcomes {
			sum += o.Probability
		}
		if math.Abs(sum-1.0) > 1e-6 {
			t.Errorf("%s outcome probabilities sum to %f, want 1.0", ft, sum)
		}
	}
}

func TestSimulate_FullOutageSingleOutcome(t *testing.T) {
	s, _ := newSimulator(t)

	sc, err := s.Simulate("db", FailureFullOutage)
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Outcomes) != 1 {
		t.Fatalf("full outage has one certain outcome, got %d", len(sc.Outcomes))
	}
	o := sc.Outcomes[0]
	if o.Probability != 1.0 {
		t.Errorf("probability = %f, want 1.0", o.Probability)
	}
	if o.AffectedPercentage != 100 {
		t.Errorf("affected = %f, want 100", o.AffectedPercentage)
	}
}

func TestSimulate_DurationDerivedFromBlastRadius(t *testing.T) {
	s, _ := newSimulator(t)

	calcReport, err := s.Calculator.Compute("db", 0)
	if err != nil {
		t.Fatal(err)
	}

	sc, err := s.Simulate("db", FailureDegradedPerformance)
	if err != nil {
		t.Fatal(err)
	}
	for i, o := range sc.Outcomes {
		want := calcReport.EstimatedDowntimeSeconds * s.Config.Outcomes[string(FailureDegradedPerformance)][i].DurationFactor
		if math.Abs(o.DurationSeconds-want) > 1e-9 {
			t.Errorf("outcome %d duration = %f, want %f", i, o.DurationSeconds, want)
		}
	}
}

func TestSimulate_DescriptionUsesResourceName(t *testing.T) {
	s, _ := newSimulator(t)

	sc, err := s.Simulate("db", FailureFullOutage)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sc.Outcomes[0].UserImpactDescription, "User Database") {
		t.Errorf("description should name the resource, got %q", sc.Outcomes[0].UserImpactDescription)
	}
	if len(sc.MitigationStrategies) == 0 || len(sc.MonitoringRecommendations) == 0 {
		t.Error("scenario should carry mitigation and monitoring advice")
	}
}

func TestSimulate_EmptyRadius(t *testing.T) {
	s, _ := newSimulator(t)

	// Nothing depends on svc-a.
	sc, err := s.Simulate("svc-a", FailureFullOutage)
	if err != nil {
		t.Fatalf("empty blast radius is still a valid scenario: %v", err)
	}
	if sc.Outcomes[0].DurationSeconds != 0 {
		t.Errorf("no dependents means no modeled downtime, got %f", sc.Outcomes[0].DurationSeconds)
	}
	if !strings.Contains(sc.OverallImpact, "contained") {
		t.Errorf("overall impact should note containment, got %q", sc.OverallImpact)
	}
}

func TestSimulate_UnknownFailureType(t *testing.T) {
	s, _ := newSimulator(t)

	if _, err := s.Simulate("db", FailureType("meteor_strike")); !errors.Is(err, config.ErrInvalidConfiguration) {
		t.Errorf("unknown failure type should be an invalid-configuration error, got %v", err)
	}
}

func TestParseFailureType(t *testing.T) {
	for _, valid := range []string{"full_outage", "degraded_performance", "intermittent_failure"} {
		if _, err := ParseFailureType(valid); err != nil {
			t.Errorf("ParseFailureType(%q): %v", valid, err)
		}
	}
	if _, err := ParseFailureType("bogus"); err == nil {
		t.Error("unknown failure type string must be rejected")
	}
}
