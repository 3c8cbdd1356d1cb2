package aws

import (
	"context"
	"time"

	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
)

// MockDiscoverer seeds a small but realistic service topology without
// touching any cloud API. Used by the demo command and the TUI.
type MockDiscoverer struct {
	Graph *graph.Graph
}

func NewMockDiscoverer(g *graph.Graph) *MockDiscoverer {
	return &MockDiscoverer{Graph: g}
}

func (d *MockDiscoverer) Discover(ctx context.Context) error {
	// Simulate network latency.
	time.Sleep(50 * time.Millisecond)

	g := d.Graph

	g.AddResource("api-gateway", "API Gateway", "aws_lb", "aws", map[string]interface{}{
		"PubliclyAccessible": true,
	})
	g.AddResource("auth-service", "Auth Service", "aws_ecs_service", "aws", nil)
	g.AddResource("user-service", "User Service", "aws_ecs_service", "aws", nil)
	g.AddResource("order-service", "Order Service", "aws_ecs_service", "aws", nil)
	g.AddResource("user-db", "User Database", "aws_rds_instance", "aws", map[string]interface{}{
		"BackupEnabled": false,
	})
	g.AddResource("order-db", "Order Database", "aws_rds_instance", "aws", map[string]interface{}{
		"BackupEnabled": true,
	})
	g.AddResource("session-cache", "Session Cache", "aws_elasticache_cluster", "aws", nil)
	g.AddResource("app-secrets", "App Secrets", "aws_secretsmanager_secret", "aws", map[string]interface{}{
		"SecretRotationEnabled": false,
	})

	// Routing layer.
	g.AddDependency("api-gateway", "auth-service", graph.KindRoutesTo, graph.CategoryNetwork, 1.0)
	g.AddDependency("api-gateway", "user-service", graph.KindRoutesTo, graph.CategoryNetwork, 1.0)
	g.AddDependency("api-gateway", "order-service", graph.KindRoutesTo, graph.CategoryNetwork, 1.0)

	// Service dependencies.
	g.AddDependency("auth-service", "user-db", graph.KindDependsOn, graph.CategoryData, 1.0)
	g.AddDependency("auth-service", "session-cache", graph.KindConnectsTo, graph.CategoryData, 0.5)
	g.AddDependency("user-service", "user-db", graph.KindDependsOn, graph.CategoryData, 1.0)
	g.AddDependency("order-service", "order-db", graph.KindDependsOn, graph.CategoryData, 1.0)
	g.AddDependency("order-service", "user-service", graph.KindConnectsTo, graph.CategoryNetwork, 0.7)

	// Configuration.
	g.AddDependency("auth-service", "app-secrets", graph.KindSecuredBy, graph.CategoryConfiguration, 0.8)
	g.AddDependency("order-service", "app-secrets", graph.KindSecuredBy, graph.CategoryConfiguration, 0.8)

	return nil
}
