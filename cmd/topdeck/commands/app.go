package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	topdeckconfig "github.com/MattVerwey/TopDeck-sub004/pkg/config"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine"
	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
	awsprovider "github.com/MattVerwey/TopDeck-sub004/pkg/providers/aws"
	k8sprovider "github.com/MattVerwey/TopDeck-sub004/pkg/providers/k8s"
	tfprovider "github.com/MattVerwey/TopDeck-sub004/pkg/providers/tf"
)

// buildGraph assembles the topology from whichever sources the flags
// enable: a snapshot file, the mock seed, or live discovery.
func buildGraph(ctx context.Context, logger *slog.Logger) (*graph.Graph, error) {
	if config.SnapshotPath != "" {
		g, err := graph.LoadSnapshot(config.SnapshotPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		logger.Info("topology loaded from snapshot", "path", config.SnapshotPath, "resources", g.Store.ResourceCount())
		return g, nil
	}

	g := graph.NewGraph()

	if config.MockMode {
		logger.Info("running with simulated topology")
		if err := awsprovider.NewMockDiscoverer(g).Discover(ctx); err != nil {
			return nil, err
		}
		g.CloseAndWait()
		return g, nil
	}

	ran := false

	if config.Region != "" || config.Profile != "" {
		cfg, err := awsprovider.NewConfig(ctx, config.Region, config.Profile)
		if err != nil {
			return nil, err
		}
		if err := awsprovider.NewEC2Discoverer(cfg, g, logger).Discover(ctx); err != nil {
			return nil, err
		}
		if err := awsprovider.NewELBDiscoverer(cfg, g, logger).Discover(ctx); err != nil {
			g.AddError("elb", err)
			logger.Warn("load balancer discovery failed", "error", err)
		}
		ran = true
	}

	if config.Kubeconfig != "" {
		client, err := k8sprovider.NewClient(config.Kubeconfig, config.KubeContext)
		if err != nil {
			return nil, err
		}
		if err := k8sprovider.NewDiscoverer(client, g, logger).Discover(ctx); err != nil {
			return nil, err
		}
		ran = true
	}

	if config.TFStatePath != "" {
		if err := tfprovider.NewDiscoverer(g, logger).Discover(ctx, config.TFStatePath); err != nil {
			return nil, err
		}
		ran = true
	}

	if !ran {
		return nil, fmt.Errorf("no topology source: pass --snapshot, --region, --kubeconfig, --tfstate or --mock")
	}

	g.CloseAndWait()
	return g, nil
}

// newEngine builds the analysis engine with config-file overrides
// applied on top of the defaults.
func newEngine(ctx context.Context, g *graph.Graph, logger *slog.Logger) (*engine.Engine, error) {
	ac := topdeckconfig.DefaultAnalysisConfig()
	if viper.IsSet("analysis") {
		if err := viper.UnmarshalKey("analysis", &ac); err != nil {
			return nil, fmt.Errorf("invalid analysis config: %w", err)
		}
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithAnalysisConfig(ac),
	}
	if config.OTLPEndpoint != "" {
		opts = append(opts, engine.WithOtelEndpoint(config.OTLPEndpoint))
	}

	return engine.New(ctx, g, opts...)
}

// setup is the common preamble for analysis subcommands.
func setup(ctx context.Context) (*engine.Engine, *graph.Graph, *slog.Logger, error) {
	logger := newLogger()

	g, err := buildGraph(ctx, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	e, err := newEngine(ctx, g, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return e, g, logger, nil
}
