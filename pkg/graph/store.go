package graph

// Store is the read/write interface over the persisted topology. The
// analysis engine uses only the read half; discovery uses the write half
// through the Graph ingestion pipeline. Implementations must be safe for
// concurrent reads once ingestion is sealed.
type Store interface {
	// Resource operations.
	AddResource(r *Resource) uint32
	GetResource(index uint32) *Resource
	GetResourceIndex(id string) (uint32, bool)
	GetResourceByID(id string) *Resource
	ResourceCount() int
	GetAllResources() []*Resource // Warning: O(N) operation.

	// Edge operations. Edge order is insertion order, which keeps
	// traversal results deterministic for a fixed snapshot.
	AddEdge(sourceIndex uint32, edge Edge)
	GetOutgoingEdges(sourceIndex uint32) []Edge
	GetIncomingEdges(targetIndex uint32) []Edge
}
