// Package traversal implements the bounded-depth dependency walk every
// analysis builds on: a breadth-first expansion over the resource graph
// that records each reachable resource once, at its minimum distance.
package traversal

import (
	"fmt"
	"log/slog"

	"github.com/MattVerwey/TopDeck-sub004/pkg/config"
	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
)

// Direction selects which adjacency list a walk expands.
type Direction int

const (
	// DirectionOutgoing follows edges source -> target: "what does this
	// resource depend on".
	DirectionOutgoing Direction = iota
	// DirectionIncoming follows edges target <- source: "what depends on
	// this resource".
	DirectionIncoming
	// DirectionBoth expands both lists at every hop.
	DirectionBoth
)

func (d Direction) String() string {
	switch d {
	case DirectionOutgoing:
		return "outgoing"
	case DirectionIncoming:
		return "incoming"
	case DirectionBoth:
		return "both"
	}
	return "unknown"
}

// Step is one hop of a path: the edge taken and the node it arrived at.
type Step struct {
	FromIndex uint32
	ToIndex   uint32
	Edge      graph.Edge
}

// Visit records how a resource was reached: its BFS distance and the
// first path that achieved that distance.
type Visit struct {
	Resource *graph.Resource
	Distance int
	// Path is the hop sequence from the origin to this resource. Path[0]
	// is the first edge off the origin.
	Path []Step
}

// ViaEdge returns the first hop off the origin, or nil for the origin
// itself.
func (v *Visit) ViaEdge() *Step {
	if len(v.Path) == 0 {
		return nil
	}
	return &v.Path[0]
}

// PathStrength is the product of edge strengths along the visit's path.
// A resource reached over a chain of critical edges keeps a weight near
// 1; weak links attenuate it.
func (v *Visit) PathStrength() float64 {
	w := 1.0
	for _, s := range v.Path {
		w *= s.Edge.Strength
	}
	return w
}

// Result is the outcome of one traversal. Visits never includes the
// origin. Order holds indices in BFS discovery order, which is
// deterministic for a fixed snapshot because stores return edges in
// insertion order.
type Result struct {
	OriginIndex uint32
	Visits      map[uint32]*Visit
	Order       []uint32
}

// Traverser walks a sealed graph. It holds no cross-call state, so one
// instance may serve concurrent analyses.
type Traverser struct {
	Store  graph.Store
	Logger *slog.Logger
}

func NewTraverser(store graph.Store, logger *slog.Logger) *Traverser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Traverser{Store: store, Logger: logger}
}

// Traverse runs a BFS from the resource with the given id. maxDepth
// bounds the walk in edge-hops; filter, when non-nil, restricts which
// edges are expanded. Returns graph.ErrNotFound when the origin id does
// not exist and ErrInvalidConfiguration for a non-positive depth.
func (t *Traverser) Traverse(originID string, dir Direction, maxDepth int, filter EdgeFilter) (*Result, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("%w: traversal depth must be positive, got %d", config.ErrInvalidConfiguration, maxDepth)
	}
	origin, ok := t.Store.GetResourceIndex(originID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", graph.ErrNotFound, originID)
	}
	return t.traverse(origin, dir, maxDepth, filter, invalidIndex), nil
}

// TraverseExcluding runs the same walk while pretending the excluded
// resource does not exist: edges into or out of it are never expanded.
// The risk scorer uses this to test whether dependents keep a redundant
// path when a candidate SPOF is removed.
func (t *Traverser) TraverseExcluding(originID string, dir Direction, maxDepth int, filter EdgeFilter, excludeID string) (*Result, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("%w: traversal depth must be positive, got %d", config.ErrInvalidConfiguration, maxDepth)
	}
	origin, ok := t.Store.GetResourceIndex(originID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", graph.ErrNotFound, originID)
	}
	exclude := invalidIndex
	if idx, ok := t.Store.GetResourceIndex(excludeID); ok {
		exclude = idx
	}
	return t.traverse(origin, dir, maxDepth, filter, exclude), nil
}

// invalidIndex never matches a real node; MemoryStore indices are dense
// from zero and the store bounds-checks lookups.
const invalidIndex = ^uint32(0)

func (t *Traverser) traverse(origin uint32, dir Direction, maxDepth int, filter EdgeFilter, exclude uint32) *Result {
	result := &Result{
		OriginIndex: origin,
		Visits:      make(map[uint32]*Visit),
	}

	// Explicit queue plus visited set: cycle-safe and no recursion depth
	// limit on deep graphs. A node reachable by two paths is recorded at
	// its minimum distance with the first-discovered path.
	visited := map[uint32]bool{origin: true}
	type queued struct {
		index uint32
		depth int
		path  []Step
	}
	queue := []queued{{index: origin, depth: 0, path: nil}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth {
			continue
		}

		for _, step := range t.expand(current.index, dir) {
			next := step.ToIndex
			if next == exclude || visited[next] {
				continue
			}
			node := t.Store.GetResource(next)
			if node == nil {
				continue
			}
			if filter != nil {
				source := t.Store.GetResource(current.index)
				if !filter(source, node, step.Edge) {
					continue
				}
			}

			visited[next] = true
			path := make([]Step, len(current.path), len(current.path)+1)
			copy(path, current.path)
			path = append(path, step)

			result.Visits[next] = &Visit{
				Resource: node,
				Distance: current.depth + 1,
				Path:     path,
			}
			result.Order = append(result.Order, next)
			queue = append(queue, queued{index: next, depth: current.depth + 1, path: path})
		}
	}

	return result
}

// expand lists the next hops from a node for the chosen direction. For
// incoming edges the adjacency entry's TargetID already points back at
// the dependent, so the step shape is uniform.
func (t *Traverser) expand(index uint32, dir Direction) []Step {
	var steps []Step
	if dir == DirectionOutgoing || dir == DirectionBoth {
		for _, e := range t.Store.GetOutgoingEdges(index) {
			if e.TargetID == index {
				continue // Self-loops add no reachability.
			}
			steps = append(steps, Step{FromIndex: index, ToIndex: e.TargetID, Edge: e})
		}
	}
	if dir == DirectionIncoming || dir == DirectionBoth {
		for _, e := range t.Store.GetIncomingEdges(index) {
			if e.TargetID == index {
				continue
			}
			steps = append(steps, Step{FromIndex: index, ToIndex: e.TargetID, Edge: e})
		}
	}
	return steps
}
