package graph

import (
	"errors"
	"testing"
)

func TestAddResource_MergeOnDuplicate(t *testing.T) {
	g := NewGraph()
	g.AddResource("db-1", "User DB", "aws_rds_instance", "aws", map[string]interface{}{
		"BackupEnabled": false,
	})
	g.AddResource("db-1", "User DB", "aws_rds_instance", "aws", map[string]interface{}{
		"BackupEnabled": true,
		"MultiAZ":       false,
	})
	g.CloseAndWait()

	if g.Store.ResourceCount() != 1 {
		t.Fatalf("expected 1 resource after merge, got %d", g.Store.ResourceCount())
	}

	res, err := g.GetResource("db-1")
	if err != nil {
		t.Fatalf("GetResource: %v", err)
	}
	if res.Properties["BackupEnabled"] != true {
		t.Errorf("later property write should win, got %v", res.Properties["BackupEnabled"])
	}
	if res.Properties["MultiAZ"] != false {
		t.Errorf("new property should be merged in")
	}
}

func TestAddDependency_AutoVivifiesTarget(t *testing.T) {
	g := NewGraph()
	g.AddResource("svc-1", "Service", "aws_ecs_service", "aws", nil)
	g.AddDependency("svc-1", "ghost-db", KindDependsOn, CategoryData, 1.0)
	g.CloseAndWait()

	ghost, err := g.GetResource("ghost-db")
	if err != nil {
		t.Fatalf("referenced target should exist as placeholder: %v", err)
	}
	if ghost.Type != "Unknown" {
		t.Errorf("placeholder type = %q, want Unknown", ghost.Type)
	}

	// A later real discovery upgrades the placeholder.
	g2 := NewGraphWithStore(g.Store)
	g2.AddResource("ghost-db", "Ghost DB", "aws_rds_instance", "aws", nil)
	g2.CloseAndWait()

	ghost, _ = g2.GetResource("ghost-db")
	if ghost.Type != "aws_rds_instance" {
		t.Errorf("placeholder should be upgraded, got type %q", ghost.Type)
	}
}

func TestAddDependency_DedupeAndClamp(t *testing.T) {
	g := NewGraph()
	g.AddResource("a", "A", "t", "p", nil)
	g.AddResource("b", "B", "t", "p", nil)
	// Strength clamps to [0,1]; a second edge with the same target and
	// kind is dropped.
	g.AddDependency("a", "b", KindDependsOn, CategoryData, 7.5)
	g.AddDependency("a", "b", KindDependsOn, CategoryData, 0.2)
	g.AddDependency("a", "b", KindConnectsTo, CategoryNetwork, -3)
	g.CloseAndWait()

	aIdx, ok := g.Store.GetResourceIndex("a")
	if !ok {
		t.Fatal("resource a missing")
	}
	edges := g.Store.GetOutgoingEdges(aIdx)
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges after dedupe, got %d", len(edges))
	}
	if edges[0].Strength != 1.0 {
		t.Errorf("strength should clamp to 1.0, got %f", edges[0].Strength)
	}
	if edges[1].Strength != 0.0 {
		t.Errorf("strength should clamp to 0.0, got %f", edges[1].Strength)
	}

	bIdx, _ := g.Store.GetResourceIndex("b")
	if got := len(g.Store.GetIncomingEdges(bIdx)); got != 2 {
		t.Errorf("reverse index should mirror forward edges, got %d", got)
	}
}

func TestGetResource_NotFound(t *testing.T) {
	g := NewGraph()
	g.CloseAndWait()

	_, err := g.GetResource("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddError_MarksPartial(t *testing.T) {
	g := NewGraph()
	g.AddResource("a", "A", "t", "p", nil)
	g.AddError("ec2:volumes", errors.New("throttled"))
	g.CloseAndWait()

	// Errors can arrive after ingestion is closed.
	g.AddError("elb", errors.New("denied"))

	if !g.Metadata.Partial {
		t.Error("graph should be marked partial")
	}
	if len(g.Metadata.FailedScopes) != 2 {
		t.Errorf("expected 2 failed scopes, got %d", len(g.Metadata.FailedScopes))
	}
}

func TestSelfLoopKept(t *testing.T) {
	// Self-references are stored; traversal is responsible for skipping them.
	g := NewGraph()
	g.AddResource("a", "A", "t", "p", nil)
	g.AddDependency("a", "a", KindDependsOn, CategoryData, 1.0)
	g.CloseAndWait()

	aIdx, _ := g.Store.GetResourceIndex("a")
	if len(g.Store.GetOutgoingEdges(aIdx)) != 1 {
		t.Error("self edge should be stored")
	}
}
