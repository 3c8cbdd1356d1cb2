// Package risk scores a resource's topology position: fan-in, fan-out,
// edge criticality, and single-point-of-failure detection combined into
// one [0,100] score.
package risk

import (
	"fmt"
	"log/slog"

	"github.com/MattVerwey/TopDeck-sub004/pkg/config"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/traversal"
	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
)

// Assessment is the outcome of one risk analysis, built fresh per call.
// Recommendations are filled in by the engine facade, which delegates to
// the remediation recommender with this assessment and the matching
// blast-radius report.
type Assessment struct {
	ResourceID           string
	RiskScore            float64
	DependenciesCount    int
	DependentsCount      int
	SinglePointOfFailure bool
	Recommendations      []string
}

// Scorer derives risk assessments. The weighting function is fixed by
// configuration: same snapshot and config always produce the same score.
type Scorer struct {
	Traverser *traversal.Traverser
	Config    config.AnalysisConfig
	Logger    *slog.Logger
}

func NewScorer(t *traversal.Traverser, cfg config.AnalysisConfig, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{Traverser: t, Config: cfg, Logger: logger}
}

// Assess computes the risk assessment for one resource.
//
// The score is
//
//	FanInWeight * min(1, dependents/FanInSaturation)
//	+ SPOFBonus              (only when flagged)
//	+ StrengthWeight * average outgoing edge strength
//
// clamped to [0,100]. All constants come from AnalysisConfig so the
// policy can be tuned without code changes.
func (s *Scorer) Assess(resourceID string) (*Assessment, error) {
	store := s.Traverser.Store
	res := store.GetResourceByID(resourceID)
	if res == nil {
		return nil, fmt.Errorf("%w: %s", graph.ErrNotFound, resourceID)
	}

	dependents := distinctNeighbors(store.GetIncomingEdges(res.Index))
	dependencies := distinctNeighbors(store.GetOutgoingEdges(res.Index))

	assessment := &Assessment{
		ResourceID:        resourceID,
		DependentsCount:   len(dependents),
		DependenciesCount: len(dependencies),
	}

	if assessment.DependentsCount > s.Config.SPOFFanInThreshold {
		spof, err := s.isSPOF(res, dependents)
		if err != nil {
			return nil, err
		}
		assessment.SinglePointOfFailure = spof
	}

	fanInScore := float64(assessment.DependentsCount) / s.Config.FanInSaturation
	if fanInScore > 1 {
		fanInScore = 1
	}
	score := s.Config.FanInWeight * fanInScore
	if assessment.SinglePointOfFailure {
		score += s.Config.SPOFBonus
	}
	score += s.Config.StrengthWeight * averageStrength(store.GetOutgoingEdges(res.Index))

	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}
	assessment.RiskScore = score

	s.Logger.Debug("Risk assessed",
		"resource", resourceID,
		"score", assessment.RiskScore,
		"dependents", assessment.DependentsCount,
		"dependencies", assessment.DependenciesCount,
		"spof", assessment.SinglePointOfFailure)

	return assessment, nil
}

// isSPOF checks whether removing the resource strands any dependent.
// For each dependent we compare its reachable upstream chain with and
// without the candidate: losing any upstream node, or having had the
// candidate as the sole upstream, means no redundant path exists. A
// dependent with a cyclic or alternate route keeps its upstream set and
// does not strand — this is the one place cycle-safety genuinely
// matters.
func (s *Scorer) isSPOF(res *graph.Resource, dependents []uint32) (bool, error) {
	store := s.Traverser.Store
	resID := res.IDStr()

	for _, depIdx := range dependents {
		dep := store.GetResource(depIdx)
		if dep == nil {
			continue
		}
		depID := dep.IDStr()

		with, err := s.Traverser.Traverse(depID, traversal.DirectionOutgoing, s.Config.MaxTraversalDepth, nil)
		if err != nil {
			return false, err
		}
		without, err := s.Traverser.TraverseExcluding(depID, traversal.DirectionOutgoing, s.Config.MaxTraversalDepth, nil, resID)
		if err != nil {
			return false, err
		}

		stranded := false
		upstreamBeyondCandidate := 0
		for idx := range with.Visits {
			if idx == res.Index {
				continue
			}
			upstreamBeyondCandidate++
			if _, ok := without.Visits[idx]; !ok {
				stranded = true
				break
			}
		}
		// The candidate was this dependent's entire upstream chain.
		if upstreamBeyondCandidate == 0 {
			stranded = true
		}
		if stranded {
			return true, nil
		}
	}
	return false, nil
}

// distinctNeighbors collapses parallel edges (same pair, different kind)
// into one neighbor entry, preserving edge order.
func distinctNeighbors(edges []graph.Edge) []uint32 {
	seen := make(map[uint32]bool, len(edges))
	var out []uint32
	for _, e := range edges {
		if seen[e.TargetID] {
			continue
		}
		seen[e.TargetID] = true
		out = append(out, e.TargetID)
	}
	return out
}

func averageStrength(edges []graph.Edge) float64 {
	if len(edges) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range edges {
		sum += e.Strength
	}
	return sum / float64(len(edges))
}
