// Package blastradius computes the set of resources put at risk by a
// failure or change of one resource, with a downtime estimate and the
// path that explains why impact propagates.
package blastradius

import (
	"log/slog"

	"github.com/MattVerwey/TopDeck-sub004/pkg/config"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/traversal"
	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
)

// Impact buckets the user-visible severity of a blast radius.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// Report is the outcome of one blast-radius computation. It is built
// fresh per call and never mutated afterwards.
type Report struct {
	ResourceID string

	// DirectlyAffected holds resources one incoming hop away; they
	// depend on the failing resource without intermediaries.
	DirectlyAffected []*graph.Resource
	// IndirectlyAffected holds resources two or more hops away. The two
	// sets are disjoint; TotalAffected is the sum of their sizes.
	IndirectlyAffected []*graph.Resource
	TotalAffected      int

	EstimatedDowntimeSeconds float64

	// CriticalPath runs from the most distant, highest-strength-weighted
	// affected resource back to the failing one.
	CriticalPath []string

	UserImpact Impact
}

// Calculator derives blast-radius reports from incoming-dependency
// traversals.
type Calculator struct {
	Traverser *traversal.Traverser
	Config    config.AnalysisConfig
	Logger    *slog.Logger
}

func NewCalculator(t *traversal.Traverser, cfg config.AnalysisConfig, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{Traverser: t, Config: cfg, Logger: logger}
}

// Compute walks incoming edges from the resource — the things that
// depend on it — out to maxDepth, then partitions and weighs the result.
// maxDepth <= 0 selects the configured default. A resource with no
// dependents produces a valid empty report, not an error.
func (c *Calculator) Compute(resourceID string, maxDepth int) (*Report, error) {
	if maxDepth <= 0 {
		maxDepth = c.Config.MaxTraversalDepth
	}

	res, err := c.Traverser.Traverse(resourceID, traversal.DirectionIncoming, maxDepth, nil)
	if err != nil {
		return nil, err
	}

	report := &Report{ResourceID: resourceID}

	weighted := 0.0
	var farthest *traversal.Visit
	for _, idx := range res.Order {
		visit := res.Visits[idx]
		if visit.Distance == 1 {
			report.DirectlyAffected = append(report.DirectlyAffected, visit.Resource)
		} else {
			report.IndirectlyAffected = append(report.IndirectlyAffected, visit.Resource)
		}
		weighted += visit.PathStrength()

		if farthest == nil || moreCritical(visit, farthest) {
			farthest = visit
		}
	}
	report.TotalAffected = len(report.DirectlyAffected) + len(report.IndirectlyAffected)

	if report.TotalAffected > 0 {
		downtime := c.Config.BaseDowntimeSeconds * (1 + weighted/c.Config.DowntimeScale)
		if downtime > c.Config.MaxDowntimeSeconds {
			downtime = c.Config.MaxDowntimeSeconds
		}
		report.EstimatedDowntimeSeconds = downtime
		report.CriticalPath = c.criticalPath(resourceID, farthest)
	}

	report.UserImpact = c.impact(report.TotalAffected)

	c.Logger.Debug("Blast radius computed",
		"resource", resourceID,
		"direct", len(report.DirectlyAffected),
		"indirect", len(report.IndirectlyAffected),
		"downtime_seconds", report.EstimatedDowntimeSeconds,
		"impact", report.UserImpact)

	return report, nil
}

// moreCritical orders candidate critical-path endpoints: farther wins,
// then stronger path, then lexical id so ties stay deterministic.
func moreCritical(a, b *traversal.Visit) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	aw, bw := a.PathStrength(), b.PathStrength()
	if aw != bw {
		return aw > bw
	}
	return a.Resource.IDStr() < b.Resource.IDStr()
}

// criticalPath reverses the visit's path into "farthest ... origin" id
// order, which is how the report explains propagation. Path[i].ToIndex
// is the i+1-th node out from the origin, so walking the steps backwards
// and skipping the last hop's endpoint (the farthest resource itself)
// yields the intermediate chain.
func (c *Calculator) criticalPath(originID string, farthest *traversal.Visit) []string {
	if farthest == nil {
		return nil
	}
	path := []string{farthest.Resource.IDStr()}
	for i := len(farthest.Path) - 2; i >= 0; i-- {
		if r := c.Traverser.Store.GetResource(farthest.Path[i].ToIndex); r != nil {
			path = append(path, r.IDStr())
		}
	}
	path = append(path, originID)
	return path
}

func (c *Calculator) impact(total int) Impact {
	switch {
	case total <= c.Config.MediumImpactThreshold:
		return ImpactLow
	case total <= c.Config.HighImpactThreshold:
		return ImpactMedium
	default:
		return ImpactHigh
	}
}
