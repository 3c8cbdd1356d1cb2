package tf

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
)

// Discoverer converts Terraform state into topology resources. The
// state's own dependency lists become DependsOn edges, so a plan
// graph survives into the runtime topology.
type Discoverer struct {
	Graph  *graph.Graph
	Logger *slog.Logger
}

func NewDiscoverer(g *graph.Graph, logger *slog.Logger) *Discoverer {
	return &Discoverer{Graph: g, Logger: logger}
}

// Discover loads state from path (file or module directory) and writes
// every managed resource into the graph.
func (d *Discoverer) Discover(ctx context.Context, path string) error {
	state, err := LoadState(ctx, path)
	if err != nil {
		return fmt.Errorf("terraform discovery: %w", err)
	}
	return d.Ingest(state)
}

// Ingest writes an already-parsed state into the graph.
func (d *Discoverer) Ingest(state *State) error {
	count := 0
	for _, res := range state.Resources {
		if res.Mode != "managed" {
			continue
		}
		address := fmt.Sprintf("%s.%s", res.Type, res.Name)

		for _, inst := range res.Instances {
			id := instanceID(inst, address)
			count++

			props := map[string]interface{}{
				"Address": address,
			}
			for _, key := range []string{"publicly_accessible", "backup_retention_period", "rotation_enabled"} {
				if v, ok := inst.Attributes[key]; ok {
					props[propertyName(key)] = normalize(key, v)
				}
			}

			d.Graph.AddResource(id, res.Name, res.Type, "terraform", props)

			for _, dep := range inst.Dependencies {
				d.Graph.AddDependency(id, dep, graph.KindDependsOn, graph.CategoryConfiguration, 0.7)
			}
			// Alias the state address so dependency references resolve.
			if id != address {
				d.Graph.AddDependency(address, id, graph.KindDependsOn, graph.CategoryConfiguration, 1.0)
			}
		}
	}

	d.Logger.Info("terraform state ingested",
		"terraform_version", state.TerraformVersion,
		"resources", count)
	return nil
}

func instanceID(inst Instance, fallback string) string {
	if id, ok := inst.Attributes["id"].(string); ok && id != "" {
		return id
	}
	return fallback
}

func propertyName(attr string) string {
	switch attr {
	case "publicly_accessible":
		return "PubliclyAccessible"
	case "backup_retention_period":
		return "BackupEnabled"
	case "rotation_enabled":
		return "SecretRotationEnabled"
	}
	return attr
}

func normalize(attr string, v interface{}) interface{} {
	if attr == "backup_retention_period" {
		if days, ok := v.(float64); ok {
			return days > 0
		}
	}
	return v
}
