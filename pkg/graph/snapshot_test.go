package graph

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	g := NewGraph()
	g.AddResource("api", "API", "aws_lb", "aws", map[string]interface{}{
		"PubliclyAccessible": true,
	})
	g.AddResource("db", "DB", "aws_rds_instance", "aws", nil)
	g.AddDependency("api", "db", KindDependsOn, CategoryData, 0.9)
	g.CloseAndWait()

	path := filepath.Join(t.TempDir(), "topology.yaml")
	if err := SaveSnapshot(g, path); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	if loaded.Store.ResourceCount() != 2 {
		t.Fatalf("expected 2 resources, got %d", loaded.Store.ResourceCount())
	}

	api, err := loaded.GetResource("api")
	if err != nil {
		t.Fatalf("GetResource: %v", err)
	}
	edges := loaded.Store.GetOutgoingEdges(api.Index)
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	if edges[0].Kind != KindDependsOn || edges[0].Strength != 0.9 {
		t.Errorf("edge kind/strength mismatch: %v %f", edges[0].Kind, edges[0].Strength)
	}
	if api.Properties["PubliclyAccessible"] != true {
		t.Errorf("properties should survive the round trip")
	}
}

func TestLoadSnapshot_DefaultsKind(t *testing.T) {
	data := []byte(`
resources:
  - id: a
  - id: b
dependencies:
  - source: a
    target: b
    strength: 0.5
`)
	path := filepath.Join(t.TempDir(), "minimal.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	g, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	a, err := g.GetResource("a")
	if err != nil {
		t.Fatal(err)
	}
	edges := g.Store.GetOutgoingEdges(a.Index)
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	if edges[0].Kind != KindDependsOn {
		t.Errorf("missing kind should default to DependsOn, got %v", edges[0].Kind)
	}
}

func TestLoadSnapshot_MissingFile(t *testing.T) {
	if _, err := LoadSnapshot("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing snapshot")
	}
}
