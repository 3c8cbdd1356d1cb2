package graph

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Snapshot is the on-disk form of a topology: a flat resource list plus a
// dependency list. Snapshots make analyses reproducible offline; the
// discover command writes one, the analysis commands read one.
type Snapshot struct {
	Resources    []SnapshotResource   `yaml:"resources"`
	Dependencies []SnapshotDependency `yaml:"dependencies"`
}

type SnapshotResource struct {
	ID         string                 `yaml:"id"`
	Name       string                 `yaml:"name,omitempty"`
	Type       string                 `yaml:"type,omitempty"`
	Provider   string                 `yaml:"provider,omitempty"`
	Properties map[string]interface{} `yaml:"properties,omitempty"`
}

type SnapshotDependency struct {
	Source   string  `yaml:"source"`
	Target   string  `yaml:"target"`
	Kind     string  `yaml:"kind,omitempty"`
	Category string  `yaml:"category,omitempty"`
	Strength float64 `yaml:"strength"`
}

// LoadSnapshot reads a YAML snapshot and builds a sealed graph from it.
func LoadSnapshot(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}

	g := NewGraph()
	for _, r := range snap.Resources {
		g.AddResource(r.ID, r.Name, r.Type, r.Provider, r.Properties)
	}
	for _, d := range snap.Dependencies {
		kind := Kind(d.Kind)
		if kind == "" {
			kind = KindDependsOn
		}
		g.AddDependency(d.Source, d.Target, kind, Category(d.Category), d.Strength)
	}
	g.CloseAndWait()
	return g, nil
}

// SaveSnapshot serializes a sealed graph to a YAML snapshot. Resources
// are written in insertion order; dependencies are sorted by source then
// target so output is stable across runs.
func SaveSnapshot(g *Graph, path string) error {
	var snap Snapshot

	for _, r := range g.Store.GetAllResources() {
		snap.Resources = append(snap.Resources, SnapshotResource{
			ID:         r.IDStr(),
			Name:       r.Name,
			Type:       r.Type,
			Provider:   r.Provider,
			Properties: r.Properties,
		})
		for _, e := range g.Store.GetOutgoingEdges(r.Index) {
			target := g.Store.GetResource(e.TargetID)
			if target == nil {
				continue
			}
			snap.Dependencies = append(snap.Dependencies, SnapshotDependency{
				Source:   r.IDStr(),
				Target:   target.IDStr(),
				Kind:     string(e.Kind),
				Category: string(e.Category),
				Strength: e.Strength,
			})
		}
	}

	sort.Slice(snap.Dependencies, func(i, j int) bool {
		if snap.Dependencies[i].Source != snap.Dependencies[j].Source {
			return snap.Dependencies[i].Source < snap.Dependencies[j].Source
		}
		return snap.Dependencies[i].Target < snap.Dependencies[j].Target
	})

	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
