// Package engine wires the analysis components together behind one
// facade: blast radius, risk assessment, failure simulation, and the
// comprehensive risk report the CLI and TUI render.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MattVerwey/TopDeck-sub004/pkg/config"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/blastradius"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/remediation"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/risk"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/scenario"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/traversal"
	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
	"github.com/MattVerwey/TopDeck-sub004/pkg/telemetry"
	"github.com/MattVerwey/TopDeck-sub004/pkg/version"
)

// Config holds engine settings.
type Config struct {
	Analysis  config.AnalysisConfig
	Scenarios config.ScenarioConfig

	JsonLogs bool

	// Telemetry config.
	OtelEndpoint  string // "http://localhost:4318" or via env.
	SkipTelemetry bool   // Set true when embedding in a host that already has OTel.

	// Dependencies.
	Logger *slog.Logger
}

// Engine is the analysis runtime. Analyses are synchronous, read-only
// functions of the sealed graph, so one engine serves concurrent
// requests without coordination.
type Engine struct {
	Graph  *graph.Graph
	Logger *slog.Logger
	Tracer trace.Tracer

	config      Config
	traverser   *traversal.Traverser
	calculator  *blastradius.Calculator
	scorer      *risk.Scorer
	recommender *remediation.Recommender
	simulator   *scenario.Simulator
}

// Option defines a functional configuration override.
type Option func(*Config)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithAnalysisConfig overrides the analysis parameters.
func WithAnalysisConfig(ac config.AnalysisConfig) Option {
	return func(c *Config) {
		c.Analysis = ac
	}
}

// WithScenarioConfig overrides the failure-scenario policy tables.
func WithScenarioConfig(sc config.ScenarioConfig) Option {
	return func(c *Config) {
		c.Scenarios = sc
	}
}

// WithOtelEndpoint points traces at an explicit OTLP endpoint.
func WithOtelEndpoint(endpoint string) Option {
	return func(c *Config) {
		c.OtelEndpoint = endpoint
	}
}

// WithoutTelemetry skips tracer installation.
func WithoutTelemetry() Option {
	return func(c *Config) {
		c.SkipTelemetry = true
	}
}

// New validates configuration and builds an engine over a sealed graph.
// Invalid configuration fails here, before any analysis runs.
func New(ctx context.Context, g *graph.Graph, opts ...Option) (*Engine, error) {
	cfg := Config{
		Analysis:  config.DefaultAnalysisConfig(),
		Scenarios: config.DefaultScenarioConfig(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Analysis.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Scenarios.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	if !cfg.SkipTelemetry {
		shutdown, err := telemetry.Init(ctx, version.AppName, version.Current, cfg.OtelEndpoint)
		if err != nil {
			logger.Warn("Telemetry init failed", "error", err)
		} else {
			_ = shutdown
		}
	}

	traverser := traversal.NewTraverser(g.Store, logger)
	calculator := blastradius.NewCalculator(traverser, cfg.Analysis, logger)

	e := &Engine{
		Graph:       g,
		Logger:      logger,
		Tracer:      otel.Tracer("topdeck/engine"),
		config:      cfg,
		traverser:   traverser,
		calculator:  calculator,
		scorer:      risk.NewScorer(traverser, cfg.Analysis, logger),
		recommender: remediation.NewRecommender(g.Store, cfg.Analysis, logger),
		simulator:   scenario.NewSimulator(calculator, cfg.Scenarios, logger),
	}

	if g.Metadata.Partial {
		logger.Warn("Analyzing a partial topology; risk numbers may understate reality",
			"failed_scopes", len(g.Metadata.FailedScopes))
	}

	return e, nil
}

// Traverse exposes the raw dependency walk for callers that want the
// reachable set without a full report.
func (e *Engine) Traverse(ctx context.Context, resourceID string, dir traversal.Direction, maxDepth int, filter traversal.EdgeFilter) (*traversal.Result, error) {
	_, span := e.Tracer.Start(ctx, "engine.Traverse")
	defer span.End()
	span.SetAttributes(
		attribute.String("resource.id", resourceID),
		attribute.String("traversal.direction", dir.String()),
		attribute.Int("traversal.max_depth", maxDepth),
	)

	if maxDepth <= 0 {
		maxDepth = e.config.Analysis.MaxTraversalDepth
	}
	res, err := e.traverser.Traverse(resourceID, dir, maxDepth, filter)
	if err != nil {
		return nil, e.fail(span, err)
	}
	span.SetAttributes(attribute.Int("traversal.reached", len(res.Visits)))
	return res, nil
}

// BlastRadius computes the blast-radius report for one resource.
// maxDepth 0 uses the configured traversal depth.
func (e *Engine) BlastRadius(ctx context.Context, resourceID string, maxDepth int) (*blastradius.Report, error) {
	_, span := e.Tracer.Start(ctx, "engine.BlastRadius")
	defer span.End()
	span.SetAttributes(attribute.String("resource.id", resourceID))

	report, err := e.calculator.Compute(resourceID, maxDepth)
	if err != nil {
		return nil, e.fail(span, err)
	}
	span.SetAttributes(
		attribute.Int("blast.total_affected", report.TotalAffected),
		attribute.String("blast.user_impact", string(report.UserImpact)),
	)
	return report, nil
}

// AssessRisk scores one resource and embeds ranked recommendations.
func (e *Engine) AssessRisk(ctx context.Context, resourceID string) (*risk.Assessment, error) {
	_, span := e.Tracer.Start(ctx, "engine.AssessRisk")
	defer span.End()
	span.SetAttributes(attribute.String("resource.id", resourceID))

	assessment, err := e.scorer.Assess(resourceID)
	if err != nil {
		return nil, e.fail(span, err)
	}
	report, err := e.calculator.Compute(resourceID, 0)
	if err != nil {
		return nil, e.fail(span, err)
	}
	assessment.Recommendations = e.recommender.Recommend(assessment, report)

	span.SetAttributes(
		attribute.Float64("risk.score", assessment.RiskScore),
		attribute.Bool("risk.spof", assessment.SinglePointOfFailure),
	)
	return assessment, nil
}

// Simulate produces the failure scenario for one resource and failure
// type.
func (e *Engine) Simulate(ctx context.Context, resourceID string, failureType scenario.FailureType) (*scenario.Scenario, error) {
	_, span := e.Tracer.Start(ctx, "engine.Simulate")
	defer span.End()
	span.SetAttributes(
		attribute.String("resource.id", resourceID),
		attribute.String("failure.type", string(failureType)),
	)

	s, err := e.simulator.Simulate(resourceID, failureType)
	if err != nil {
		return nil, e.fail(span, err)
	}
	return s, nil
}

// ResourceRiskReport is the comprehensive view: blast radius, risk
// assessment, and one scenario per failure type.
type ResourceRiskReport struct {
	Resource    *graph.Resource
	BlastRadius *blastradius.Report
	Assessment  *risk.Assessment
	Scenarios   []*scenario.Scenario
}

// RiskReport runs the full analysis pipeline for one resource.
func (e *Engine) RiskReport(ctx context.Context, resourceID string) (*ResourceRiskReport, error) {
	_, span := e.Tracer.Start(ctx, "engine.RiskReport")
	defer span.End()
	span.SetAttributes(attribute.String("resource.id", resourceID))

	res, err := e.Graph.GetResource(resourceID)
	if err != nil {
		return nil, e.fail(span, err)
	}

	report, err := e.calculator.Compute(resourceID, 0)
	if err != nil {
		return nil, e.fail(span, err)
	}
	assessment, err := e.scorer.Assess(resourceID)
	if err != nil {
		return nil, e.fail(span, err)
	}
	assessment.Recommendations = e.recommender.Recommend(assessment, report)

	full := &ResourceRiskReport{
		Resource:    res,
		BlastRadius: report,
		Assessment:  assessment,
	}
	for _, ft := range []scenario.FailureType{
		scenario.FailureFullOutage,
		scenario.FailureDegradedPerformance,
		scenario.FailureIntermittent,
	} {
		s, err := e.simulator.Simulate(resourceID, ft)
		if err != nil {
			return nil, e.fail(span, err)
		}
		full.Scenarios = append(full.Scenarios, s)
	}

	return full, nil
}

// fail records the error on the span and passes it through unchanged; a
// graph-read failure is never masked as an empty result.
func (e *Engine) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return fmt.Errorf("analysis failed: %w", err)
}
