package traversal

import (
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"

	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
)

// celEnv declares the variables an edge-filter expression may reference.
func celEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Declarations(
			decls.NewVar("category", decls.String),
			decls.NewVar("kind", decls.String),
			decls.NewVar("strength", decls.Double),
			decls.NewVar("source_type", decls.String),
			decls.NewVar("target_type", decls.String),
		),
	)
}

// CompileFilter compiles a CEL expression into an EdgeFilter. Callers
// supply expressions such as `category == "data" && strength >= 0.5` to
// compute category-scoped blast radii without new code. A compilation
// error is returned eagerly; evaluation errors at walk time prune the
// edge and are logged, never silently matched.
func CompileFilter(expression string, logger *slog.Logger) (EdgeFilter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	env, err := celEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("edge filter compilation error: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("edge filter program creation error: %w", err)
	}

	return func(source, target *graph.Resource, edge graph.Edge) bool {
		vars := map[string]interface{}{
			"category":    string(edge.Category),
			"kind":        string(edge.Kind),
			"strength":    edge.Strength,
			"source_type": "",
			"target_type": "",
		}
		if source != nil {
			vars["source_type"] = source.Type
		}
		if target != nil {
			vars["target_type"] = target.Type
		}

		out, _, err := prg.Eval(vars)
		if err != nil {
			logger.Error("Edge filter evaluation failed", "expression", expression, "error", err)
			return false
		}
		match, ok := out.Value().(bool)
		return ok && match
	}, nil
}
