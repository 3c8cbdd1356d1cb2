package traversal

import "github.com/MattVerwey/TopDeck-sub004/pkg/graph"

// EdgeFilter restricts which edges a traversal expands. source is the
// node being expanded, target the node the edge leads to. Returning
// false prunes the edge and everything only reachable through it.
type EdgeFilter func(source, target *graph.Resource, edge graph.Edge) bool

// CategoryFilter expands only edges of the given category, e.g. a
// data-scoped blast radius.
func CategoryFilter(category graph.Category) EdgeFilter {
	return func(_, _ *graph.Resource, edge graph.Edge) bool {
		return edge.Category == category
	}
}

// KindFilter expands only edges of the given relationship kinds.
func KindFilter(kinds ...graph.Kind) EdgeFilter {
	set := make(map[graph.Kind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return func(_, _ *graph.Resource, edge graph.Edge) bool {
		return set[edge.Kind]
	}
}

// MinStrengthFilter prunes edges weaker than the threshold.
func MinStrengthFilter(min float64) EdgeFilter {
	return func(_, _ *graph.Resource, edge graph.Edge) bool {
		return edge.Strength >= min
	}
}

// And combines filters; every filter must accept the edge.
func And(filters ...EdgeFilter) EdgeFilter {
	return func(source, target *graph.Resource, edge graph.Edge) bool {
		for _, f := range filters {
			if !f(source, target, edge) {
				return false
			}
		}
		return true
	}
}
