package risk

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/MattVerwey/TopDeck-sub004/pkg/config"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/traversal"
	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
)

func newScorer(g *graph.Graph, cfg config.AnalysisConfig) *Scorer {
	return NewScorer(traversal.NewTraverser(g.Store, nil), cfg, nil)
}

func TestAssess_SPOFWhenSoleUpstream(t *testing.T) {
	// Four services, each depending only on x. Losing x strands all of
	// them, and fan-in 4 crosses the default threshold of 3.
	g := graph.NewGraph()
	g.AddResource("x", "x", "database", "test", nil)
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddResource(id, id, "service", "test", nil)
		g.AddDependency(id, "x", graph.KindDependsOn, graph.CategoryData, 1.0)
	}
	g.CloseAndWait()

	s := newScorer(g, config.DefaultAnalysisConfig())
	a, err := s.Assess("x")
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}

	if !a.SinglePointOfFailure {
		t.Error("sole upstream of four dependents must be a SPOF")
	}
	if a.DependentsCount != 4 || a.DependenciesCount != 0 {
		t.Errorf("counts = %d in / %d out, want 4 / 0", a.DependentsCount, a.DependenciesCount)
	}

	// fan-in 4/20 * 40 + SPOF bonus 30 + no outgoing strength.
	want := 40*(4.0/20.0) + 30
	if math.Abs(a.RiskScore-want) > 1e-9 {
		t.Errorf("score = %f, want %f", a.RiskScore, want)
	}
}

func TestAssess_NoSPOFWithReplica(t *testing.T) {
	// Every dependent also reaches a replica, so removing x strands
	// nobody.
	g := graph.NewGraph()
	g.AddResource("x", "x", "database", "test", nil)
	g.AddResource("x-replica", "x-replica", "database", "test", nil)
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddResource(id, id, "service", "test", nil)
		g.AddDependency(id, "x", graph.KindDependsOn, graph.CategoryData, 1.0)
		g.AddDependency(id, "x-replica", graph.KindDependsOn, graph.CategoryData, 1.0)
	}
	g.CloseAndWait()

	s := newScorer(g, config.DefaultAnalysisConfig())
	a, err := s.Assess("x")
	if err != nil {
		t.Fatal(err)
	}
	if a.SinglePointOfFailure {
		t.Error("replicated dependency must not be a SPOF")
	}
}

func TestAssess_SPOFGatedByThreshold(t *testing.T) {
	// Three dependents with no alternates, but fan-in 3 does not exceed
	// the threshold of 3, so the SPOF check never runs.
	g := graph.NewGraph()
	g.AddResource("x", "x", "database", "test", nil)
	for _, id := range []string{"a", "b", "c"} {
		g.AddResource(id, id, "service", "test", nil)
		g.AddDependency(id, "x", graph.KindDependsOn, graph.CategoryData, 1.0)
	}
	g.CloseAndWait()

	s := newScorer(g, config.DefaultAnalysisConfig())
	a, err := s.Assess("x")
	if err != nil {
		t.Fatal(err)
	}
	if a.SinglePointOfFailure {
		t.Error("fan-in at the threshold must not trigger the SPOF check")
	}
}

func TestAssess_SPOFPartialRedundancy(t *testing.T) {
	// b has an alternate route, c does not: one stranded dependent is
	// enough.
	g := graph.NewGraph()
	for _, id := range []string{"x", "alt", "b", "c"} {
		g.AddResource(id, id, "service", "test", nil)
	}
	g.AddDependency("b", "x", graph.KindDependsOn, graph.CategoryData, 1.0)
	g.AddDependency("b", "alt", graph.KindDependsOn, graph.CategoryData, 1.0)
	g.AddDependency("c", "x", graph.KindDependsOn, graph.CategoryData, 1.0)
	g.CloseAndWait()

	cfg := config.DefaultAnalysisConfig()
	cfg.SPOFFanInThreshold = 1
	s := newScorer(g, cfg)

	a, err := s.Assess("x")
	if err != nil {
		t.Fatal(err)
	}
	if !a.SinglePointOfFailure {
		t.Error("a single stranded dependent makes the resource a SPOF")
	}
}

func TestAssess_FanInSaturates(t *testing.T) {
	g := graph.NewGraph()
	g.AddResource("hub", "hub", "queue", "test", nil)
	g.AddResource("sink", "sink", "db", "test", nil)
	g.AddDependency("hub", "sink", graph.KindDependsOn, graph.CategoryData, 1.0)
	for i := 0; i < 25; i++ {
		id := fmt.Sprintf("svc-%02d", i)
		g.AddResource(id, id, "service", "test", nil)
		g.AddDependency(id, "hub", graph.KindDependsOn, graph.CategoryData, 1.0)
		g.AddDependency(id, "sink", graph.KindDependsOn, graph.CategoryData, 1.0)
	}
	g.CloseAndWait()

	cfg := config.DefaultAnalysisConfig()
	s := newScorer(g, cfg)
	a, err := s.Assess("hub")
	if err != nil {
		t.Fatal(err)
	}

	// 25 dependents saturate the 20-dependent fan-in term; all keep the
	// sink as an alternate so no SPOF. Outgoing strength avg is 1.0.
	want := cfg.FanInWeight + cfg.StrengthWeight
	if math.Abs(a.RiskScore-want) > 1e-9 {
		t.Errorf("score = %f, want %f", a.RiskScore, want)
	}
	if a.RiskScore > 100 {
		t.Error("score must stay within [0,100]")
	}
}

func TestAssess_ScoreClamped(t *testing.T) {
	g := graph.NewGraph()
	g.AddResource("x", "x", "db", "test", nil)
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddResource(id, id, "service", "test", nil)
		g.AddDependency(id, "x", graph.KindDependsOn, graph.CategoryData, 1.0)
	}
	g.CloseAndWait()

	cfg := config.DefaultAnalysisConfig()
	cfg.FanInWeight = 90
	cfg.SPOFBonus = 90
	cfg.FanInSaturation = 1
	s := newScorer(g, cfg)

	a, err := s.Assess("x")
	if err != nil {
		t.Fatal(err)
	}
	if a.RiskScore != 100 {
		t.Errorf("score = %f, want clamped to 100", a.RiskScore)
	}
}

func TestAssess_Deterministic(t *testing.T) {
	g := graph.NewGraph()
	for _, id := range []string{"x", "a", "b", "c", "d"} {
		g.AddResource(id, id, "service", "test", nil)
	}
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddDependency(id, "x", graph.KindDependsOn, graph.CategoryData, 0.8)
	}
	g.AddDependency("x", "a", graph.KindConnectsTo, graph.CategoryNetwork, 0.3)
	g.CloseAndWait()

	s := newScorer(g, config.DefaultAnalysisConfig())
	first, err := s.Assess("x")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := s.Assess("x")
		if err != nil {
			t.Fatal(err)
		}
		if again.RiskScore != first.RiskScore || again.SinglePointOfFailure != first.SinglePointOfFailure {
			t.Fatal("assessment must be identical for a fixed snapshot and config")
		}
	}
}

func TestAssess_NotFound(t *testing.T) {
	g := graph.NewGraph()
	g.CloseAndWait()

	s := newScorer(g, config.DefaultAnalysisConfig())
	if _, err := s.Assess("missing"); !errors.Is(err, graph.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
