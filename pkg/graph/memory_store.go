package graph

import (
	"sync"

	"github.com/MattVerwey/TopDeck-sub004/pkg/sys/intern"
)

// MemoryStore is the in-memory adjacency-list store. It keeps forward and
// reverse edge lists per node so incoming traversals cost the same as
// outgoing ones.
type MemoryStore struct {
	mu        sync.RWMutex
	resources []*Resource
	outgoing  [][]Edge
	incoming  [][]Edge
	indexByID map[uint32]uint32 // Interned id -> dense index.
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		resources: make([]*Resource, 0, 1000),
		outgoing:  make([][]Edge, 0, 1000),
		incoming:  make([][]Edge, 0, 1000),
		indexByID: make(map[uint32]uint32),
	}
}

func (s *MemoryStore) AddResource(r *Resource) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.indexByID[r.ID]; ok {
		return idx
	}

	idx := uint32(len(s.resources))
	r.Index = idx
	s.resources = append(s.resources, r)
	s.outgoing = append(s.outgoing, nil)
	s.incoming = append(s.incoming, nil)
	s.indexByID[r.ID] = idx
	return idx
}

func (s *MemoryStore) GetResource(index uint32) *Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(index) < len(s.resources) {
		return s.resources[index]
	}
	return nil
}

func (s *MemoryStore) GetResourceIndex(id string) (uint32, bool) {
	interned := intern.Get(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexByID[interned]
	return idx, ok
}

func (s *MemoryStore) GetResourceByID(id string) *Resource {
	interned := intern.Get(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexByID[interned]
	if !ok {
		return nil
	}
	if int(idx) < len(s.resources) {
		return s.resources[idx]
	}
	return nil
}

func (s *MemoryStore) ResourceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.resources)
}

func (s *MemoryStore) GetAllResources() []*Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Return copy.
	result := make([]*Resource, len(s.resources))
	copy(result, s.resources)
	return result
}

func (s *MemoryStore) AddEdge(sourceIndex uint32, edge Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(sourceIndex) >= len(s.outgoing) {
		return
	}
	if int(edge.TargetID) >= len(s.incoming) {
		return
	}

	// Deduplicate on (target, kind).
	for _, e := range s.outgoing[sourceIndex] {
		if e.TargetID == edge.TargetID && e.Kind == edge.Kind {
			return
		}
	}

	s.outgoing[sourceIndex] = append(s.outgoing[sourceIndex], edge)

	reverse := Edge{
		TargetID: sourceIndex,
		Kind:     edge.Kind,
		Category: edge.Category,
		Strength: edge.Strength,
		Metadata: edge.Metadata,
	}
	s.incoming[edge.TargetID] = append(s.incoming[edge.TargetID], reverse)
}

func (s *MemoryStore) GetOutgoingEdges(sourceIndex uint32) []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(sourceIndex) < len(s.outgoing) {
		res := make([]Edge, len(s.outgoing[sourceIndex]))
		copy(res, s.outgoing[sourceIndex])
		return res
	}
	return nil
}

func (s *MemoryStore) GetIncomingEdges(targetIndex uint32) []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(targetIndex) < len(s.incoming) {
		res := make([]Edge, len(s.incoming[targetIndex]))
		copy(res, s.incoming[targetIndex])
		return res
	}
	return nil
}
