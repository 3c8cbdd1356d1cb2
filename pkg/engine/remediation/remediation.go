// Package remediation turns detected risk conditions into ranked,
// human-readable recommendations. Rules are an ordered table evaluated
// top to bottom, so the most critical advice is always first and two
// runs over the same input produce the same ordering.
package remediation

import (
	"fmt"
	"log/slog"

	"github.com/MattVerwey/TopDeck-sub004/pkg/config"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/blastradius"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/risk"
	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
)

// Input bundles everything a rule may inspect.
type Input struct {
	Resource   *graph.Resource
	Assessment *risk.Assessment
	Report     *blastradius.Report
	Config     config.AnalysisConfig
}

type rule struct {
	name    string
	applies func(in Input) bool
	message func(in Input) string
}

// ruleTable is evaluated in declaration order: critical conditions
// first. New rules are appended in priority position; existing rules are
// never reordered at runtime.
var ruleTable = []rule{
	{
		name: "spof-redundancy",
		applies: func(in Input) bool {
			return in.Assessment.SinglePointOfFailure
		},
		message: func(in Input) string {
			return fmt.Sprintf("CRITICAL: %s is a single point of failure for %d dependents. Add a redundant instance or standby and a failover path.",
				displayName(in.Resource), in.Assessment.DependentsCount)
		},
	},
	{
		name: "high-fan-in-decoupling",
		applies: func(in Input) bool {
			return in.Assessment.DependentsCount > in.Config.SPOFFanInThreshold
		},
		message: func(in Input) string {
			return fmt.Sprintf("High fan-in: %d resources depend directly on %s. Introduce a queue, cache, or read replica to decouple consumers.",
				in.Assessment.DependentsCount, displayName(in.Resource))
		},
	},
	{
		name: "wide-blast-radius",
		applies: func(in Input) bool {
			return in.Report != nil && in.Report.UserImpact == blastradius.ImpactHigh
		},
		message: func(in Input) string {
			return fmt.Sprintf("A failure of %s affects %d resources (estimated downtime %.0fs). Prepare a tested failover runbook for the critical path.",
				displayName(in.Resource), in.Report.TotalAffected, in.Report.EstimatedDowntimeSeconds)
		},
	},
	{
		name: "missing-backup",
		applies: func(in Input) bool {
			return propertyFalse(in.Resource, "BackupEnabled")
		},
		message: func(in Input) string {
			return fmt.Sprintf("Backups are disabled for %s (%s). Enable automated backups before relying on it as an upstream dependency.",
				displayName(in.Resource), in.Resource.Type)
		},
	},
	{
		name: "open-network-exposure",
		applies: func(in Input) bool {
			return propertyTrue(in.Resource, "PubliclyAccessible")
		},
		message: func(in Input) string {
			return fmt.Sprintf("%s is publicly accessible. Restrict ingress with a security group or NSG rule scoped to known consumers.",
				displayName(in.Resource))
		},
	},
	{
		name: "stale-secret-rotation",
		applies: func(in Input) bool {
			return propertyFalse(in.Resource, "SecretRotationEnabled")
		},
		message: func(in Input) string {
			return fmt.Sprintf("Secret rotation is disabled for %s. Enable rotation so a credential leak does not become a topology-wide incident.",
				displayName(in.Resource))
		},
	},
}

// Recommender evaluates the rule table against an assessment and its
// blast-radius report.
type Recommender struct {
	Store  graph.Store
	Config config.AnalysisConfig
	Logger *slog.Logger
}

func NewRecommender(store graph.Store, cfg config.AnalysisConfig, logger *slog.Logger) *Recommender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recommender{Store: store, Config: cfg, Logger: logger}
}

// Recommend returns recommendations in rule-priority order. Callers
// display the first N as "top" recommendations, so ordering is part of
// the contract. An empty slice means no rule matched.
func (r *Recommender) Recommend(assessment *risk.Assessment, report *blastradius.Report) []string {
	if assessment == nil {
		return nil
	}
	in := Input{
		Resource:   r.Store.GetResourceByID(assessment.ResourceID),
		Assessment: assessment,
		Report:     report,
		Config:     r.Config,
	}
	if in.Resource == nil {
		return nil
	}

	var out []string
	for _, rl := range ruleTable {
		if rl.applies(in) {
			out = append(out, rl.message(in))
		}
	}

	r.Logger.Debug("Recommendations generated",
		"resource", assessment.ResourceID,
		"count", len(out))
	return out
}

func displayName(r *graph.Resource) string {
	if r.Name != "" {
		return r.Name
	}
	return r.IDStr()
}

// propertyFalse is true only when the signal is present and explicitly
// false; absence of a discovery signal is not evidence of a problem.
func propertyFalse(r *graph.Resource, key string) bool {
	v, ok := r.Properties[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && !b
}

func propertyTrue(r *graph.Resource, key string) bool {
	v, ok := r.Properties[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}
