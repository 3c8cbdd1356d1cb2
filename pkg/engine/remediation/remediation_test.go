package remediation

import (
	"strings"
	"testing"

	"github.com/MattVerwey/TopDeck-sub004/pkg/config"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/blastradius"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/risk"
	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
)

func sealedGraph(t *testing.T, props map[string]interface{}) *graph.Graph {
	t.Helper()
	g := graph.NewGraph()
	g.AddResource("db-1", "User DB", "aws_rds_instance", "aws", props)
	g.CloseAndWait()
	return g
}

func TestRecommend_OrderIsRulePriority(t *testing.T) {
	g := sealedGraph(t, map[string]interface{}{
		"BackupEnabled":      false,
		"PubliclyAccessible": true,
	})
	r := NewRecommender(g.Store, config.DefaultAnalysisConfig(), nil)

	assessment := &risk.Assessment{
		ResourceID:           "db-1",
		DependentsCount:      6,
		SinglePointOfFailure: true,
	}
	report := &blastradius.Report{
		ResourceID:               "db-1",
		TotalAffected:            20,
		EstimatedDowntimeSeconds: 900,
		UserImpact:               blastradius.ImpactHigh,
	}

	recs := r.Recommend(assessment, report)
	if len(recs) != 5 {
		t.Fatalf("expected 5 matched rules, got %d: %v", len(recs), recs)
	}

	// Declaration order: SPOF first, then fan-in, blast radius, backup,
	// exposure.
	if !strings.HasPrefix(recs[0], "CRITICAL:") {
		t.Errorf("SPOF advice must come first, got %q", recs[0])
	}
	if !strings.Contains(recs[1], "fan-in") {
		t.Errorf("fan-in advice second, got %q", recs[1])
	}
	if !strings.Contains(recs[2], "failover runbook") {
		t.Errorf("blast radius advice third, got %q", recs[2])
	}
	if !strings.Contains(recs[3], "Backups are disabled") {
		t.Errorf("backup advice fourth, got %q", recs[3])
	}
	if !strings.Contains(recs[4], "publicly accessible") {
		t.Errorf("exposure advice fifth, got %q", recs[4])
	}
}

func TestRecommend_Stable(t *testing.T) {
	g := sealedGraph(t, map[string]interface{}{"BackupEnabled": false})
	r := NewRecommender(g.Store, config.DefaultAnalysisConfig(), nil)

	assessment := &risk.Assessment{ResourceID: "db-1", DependentsCount: 4, SinglePointOfFailure: true}
	first := r.Recommend(assessment, nil)
	for i := 0; i < 5; i++ {
		again := r.Recommend(assessment, nil)
		if len(again) != len(first) {
			t.Fatal("recommendation count changed between runs")
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatal("recommendation order changed between runs")
			}
		}
	}
}

func TestRecommend_PropertyAbsentMeansNoRule(t *testing.T) {
	// Rules keyed on properties fire only when the property is present
	// with the risky value; absence is not a finding.
	g := sealedGraph(t, nil)
	r := NewRecommender(g.Store, config.DefaultAnalysisConfig(), nil)

	recs := r.Recommend(&risk.Assessment{ResourceID: "db-1"}, nil)
	if len(recs) != 0 {
		t.Errorf("healthy resource should produce no recommendations, got %v", recs)
	}
}

func TestRecommend_NilAssessment(t *testing.T) {
	g := sealedGraph(t, nil)
	r := NewRecommender(g.Store, config.DefaultAnalysisConfig(), nil)

	if recs := r.Recommend(nil, nil); recs != nil {
		t.Errorf("nil assessment yields nil, got %v", recs)
	}
}

func TestRecommend_SecretRotation(t *testing.T) {
	g := graph.NewGraph()
	g.AddResource("secret-1", "App Secrets", "aws_secretsmanager_secret", "aws", map[string]interface{}{
		"SecretRotationEnabled": false,
	})
	g.CloseAndWait()
	r := NewRecommender(g.Store, config.DefaultAnalysisConfig(), nil)

	recs := r.Recommend(&risk.Assessment{ResourceID: "secret-1"}, nil)
	if len(recs) != 1 || !strings.Contains(recs[0], "rotation") {
		t.Errorf("expected rotation advice, got %v", recs)
	}
}
