// Package graph holds the resource topology: typed nodes, weighted
// dependency edges, and the read interface the analysis engine consumes.
package graph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/MattVerwey/TopDeck-sub004/pkg/sys/intern"
)

// ErrNotFound indicates the requested resource id is absent from the graph.
var ErrNotFound = errors.New("resource not found")

// Kind tags the relationship a dependency edge expresses. Direction of
// impact differs by kind, so traversals can filter on it.
type Kind string

const (
	KindDependsOn  Kind = "DependsOn"
	KindConnectsTo Kind = "ConnectsTo"
	KindRoutesTo   Kind = "RoutesTo"
	KindSecuredBy  Kind = "SecuredBy"
	KindContains   Kind = "Contains"
	KindUnknown    Kind = "Unknown"
)

// Category groups edges by the concern they carry.
type Category string

const (
	CategoryData          Category = "data"
	CategoryNetwork       Category = "network"
	CategoryConfiguration Category = "configuration"
	CategoryCompute       Category = "compute"
)

// Edge is a directed dependency stored in an adjacency list. TargetID is
// the dense index of the node on the other end. Strength expresses
// criticality in [0,1]; higher means the source is more dependent on the
// target.
type Edge struct {
	TargetID uint32
	Kind     Kind
	Category Category
	Strength float64
	Metadata map[string]interface{}
}

// Resource is a discovered entity: cloud resource, Kubernetes object, or
// identity. The analysis engine only reads resources; discovery owns them.
type Resource struct {
	Index      uint32
	ID         uint32 // Interned resource id.
	Name       string
	Type       string
	Provider   string
	Properties map[string]interface{}
}

// IDStr resolves the interned resource id.
func (r *Resource) IDStr() string {
	return intern.GetStr(r.ID)
}

// Metadata records discovery-time conditions that affect how much of the
// topology the graph actually holds.
type Metadata struct {
	Partial      bool
	FailedScopes []ScopeError
}

// ScopeError names a discovery scope that failed to populate.
type ScopeError struct {
	Scope string
	Error string
}

type opKind int

const (
	opResource opKind = iota
	opDependency
)

type graphOp struct {
	kind     opKind
	id       string
	name     string
	rtype    string
	provider string
	props    map[string]interface{}

	sourceID string
	targetID string
	edgeKind Kind
	category Category
	strength float64
}

// Graph is the ingestion facade over a Store. Writes funnel through a
// single builder goroutine so discovery connectors can push concurrently
// without locking; CloseAndWait seals the graph for parallel reads.
type Graph struct {
	Store    Store
	Metadata Metadata

	metaMu    sync.Mutex
	opChan    chan graphOp
	buildDone chan struct{}
}

// NewGraph creates an empty graph backed by a MemoryStore and starts the
// builder goroutine.
func NewGraph() *Graph {
	return NewGraphWithStore(NewMemoryStore())
}

// NewGraphWithStore creates a graph over an explicit Store implementation.
func NewGraphWithStore(store Store) *Graph {
	g := &Graph{
		Store:     store,
		opChan:    make(chan graphOp, 10000),
		buildDone: make(chan struct{}),
	}
	go g.runBuilder()
	return g
}

func (g *Graph) runBuilder() {
	defer close(g.buildDone)
	for op := range g.opChan {
		switch op.kind {
		case opResource:
			g.applyResource(op)
		case opDependency:
			g.applyDependency(op)
		}
	}
}

// AddResource queues a resource for ingestion. Re-adding an existing id
// merges properties rather than duplicating the node.
func (g *Graph) AddResource(id, name, resourceType, provider string, props map[string]interface{}) {
	if id == "" {
		return
	}
	g.opChan <- graphOp{
		kind:     opResource,
		id:       id,
		name:     name,
		rtype:    resourceType,
		provider: provider,
		props:    props,
	}
}

// AddDependency queues a directed dependency edge. Unknown endpoints are
// auto-vivified as placeholder resources, since connectors may emit edges
// before the nodes they reference. Strength outside [0,1] is normalized
// at ingestion.
func (g *Graph) AddDependency(sourceID, targetID string, kind Kind, category Category, strength float64) {
	if sourceID == "" || targetID == "" {
		return
	}
	if strength < 0 {
		strength = 0
	} else if strength > 1 {
		strength = 1
	}
	g.opChan <- graphOp{
		kind:     opDependency,
		sourceID: sourceID,
		targetID: targetID,
		edgeKind: kind,
		category: category,
		strength: strength,
	}
}

// AddError records a failed discovery scope. The analysis layer surfaces
// Metadata.Partial so a truncated topology is never mistaken for a small
// one.
func (g *Graph) AddError(scope string, err error) {
	g.metaMu.Lock()
	defer g.metaMu.Unlock()
	g.Metadata.Partial = true
	g.Metadata.FailedScopes = append(g.Metadata.FailedScopes, ScopeError{
		Scope: scope,
		Error: err.Error(),
	})
}

// CloseAndWait seals the ingestion pipeline and blocks until the builder
// has applied every queued op. After it returns the graph is immutable
// and safe for concurrent reads.
func (g *Graph) CloseAndWait() {
	close(g.opChan)
	<-g.buildDone
}

func (g *Graph) applyResource(op graphOp) {
	interned := intern.Get(op.id)
	if existing := g.Store.GetResourceByID(op.id); existing != nil {
		for k, v := range op.props {
			existing.Properties[k] = v
		}
		if existing.Type == "" || existing.Type == "Unknown" {
			existing.Type = op.rtype
		}
		if existing.Name == "" {
			existing.Name = op.name
		}
		if existing.Provider == "" {
			existing.Provider = op.provider
		}
		return
	}
	props := op.props
	if props == nil {
		props = make(map[string]interface{})
	}
	g.Store.AddResource(&Resource{
		ID:         interned,
		Name:       op.name,
		Type:       op.rtype,
		Provider:   op.provider,
		Properties: props,
	})
}

func (g *Graph) applyDependency(op graphOp) {
	srcIdx := g.ensureResource(op.sourceID)
	dstIdx := g.ensureResource(op.targetID)
	g.Store.AddEdge(srcIdx, Edge{
		TargetID: dstIdx,
		Kind:     op.edgeKind,
		Category: op.category,
		Strength: op.strength,
		Metadata: make(map[string]interface{}),
	})
}

func (g *Graph) ensureResource(id string) uint32 {
	if idx, ok := g.Store.GetResourceIndex(id); ok {
		return idx
	}
	return g.Store.AddResource(&Resource{
		ID:         intern.Get(id),
		Type:       "Unknown",
		Properties: make(map[string]interface{}),
	})
}

// GetResource looks a resource up by string id. Returns ErrNotFound when
// the id has never been discovered; callers treat that as terminal for
// the requested analysis.
func (g *Graph) GetResource(id string) (*Resource, error) {
	r := g.Store.GetResourceByID(id)
	if r == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, nil
}

// DumpStats summarizes graph size for logging.
func (g *Graph) DumpStats() string {
	total := 0
	for _, r := range g.Store.GetAllResources() {
		total += len(g.Store.GetOutgoingEdges(r.Index))
	}
	return fmt.Sprintf("Resources: %d | Dependencies: %d", g.Store.ResourceCount(), total)
}
