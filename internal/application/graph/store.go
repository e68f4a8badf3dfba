package graph

import (
	"sync"

	"dario.cat/mergo"
	"github.com/aescanero/lienzo/internal/domain"
	"go.uber.org/zap"
)

// duplicateOffset is applied to a duplicated node's position so the clone
// does not land exactly on top of the original.
const duplicateOffset = 40

// Store owns the live node and edge collections. Every mutation is a
// discrete operation under one mutex, so a completed write is visible to any
// read that starts afterwards; callers never need to wait for propagation.
type Store struct {
	mu       sync.RWMutex
	nodes    []domain.Node
	edges    []domain.Edge
	selected string
	logger   *zap.Logger
}

// NewStore creates an empty graph store.
func NewStore(logger *zap.Logger) *Store {
	return &Store{logger: logger}
}

// AddNode allocates an id, seeds kind-appropriate default data and inserts
// the node. The caller is responsible for pushing a history snapshot.
func (s *Store) AddNode(kind domain.NodeKind, pos domain.Position) (string, error) {
	if !domain.KnownKind(kind) {
		return "", domain.ErrUnknownNode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node := domain.Node{
		ID:       domain.NewID(),
		Kind:     kind,
		Position: pos,
		Data:     domain.DefaultData(kind),
	}
	s.nodes = append(s.nodes, node)

	s.logger.Debug("node added",
		zap.String("node_id", node.ID),
		zap.String("kind", string(kind)))

	return node.ID, nil
}

// UpdateNodeData shallow-merges patch into the node's data. Zero-value patch
// fields are left untouched, so this cannot clear a field back to its zero
// value. Field edits are excluded from undo granularity, so no snapshot
// follows this call.
func (s *Store) UpdateNodeData(id string, patch domain.NodeData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.ErrUnknownNode
	}

	if err := mergo.Merge(&s.nodes[idx].Data, patch, mergo.WithOverride); err != nil {
		return err
	}

	return nil
}

// DeleteNode removes the node and every edge touching it in one transaction.
// Deleting an unknown id is a no-op.
func (s *Store) DeleteNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return
	}

	s.nodes = append(s.nodes[:idx], s.nodes[idx+1:]...)
	s.removeEdgesTouching(id)

	if s.selected == id {
		s.selected = ""
	}

	s.logger.Debug("node deleted", zap.String("node_id", id))
}

// DuplicateNode clones a node's data under a fresh id, offsetting the
// position. Duplicating an unknown id is a no-op and returns ErrUnknownNode.
func (s *Store) DuplicateNode(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return "", domain.ErrUnknownNode
	}

	clone := s.nodes[idx].Clone()
	clone.ID = domain.NewID()
	clone.Position.X += duplicateOffset
	clone.Position.Y += duplicateOffset
	clone.Selected = false
	s.nodes = append(s.nodes, clone)

	s.logger.Debug("node duplicated",
		zap.String("source_id", id),
		zap.String("node_id", clone.ID))

	return clone.ID, nil
}

// Connect creates an edge between two existing nodes. Connecting to or from
// a nonexistent node is rejected.
func (s *Store) Connect(sourceID, sourceHandle, targetID, targetHandle string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(sourceID) < 0 || s.indexOf(targetID) < 0 {
		return "", domain.ErrUnknownNode
	}

	edge := domain.Edge{
		ID:           domain.NewID(),
		Source:       sourceID,
		Target:       targetID,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	}
	s.edges = append(s.edges, edge)

	s.logger.Debug("edge connected",
		zap.String("edge_id", edge.ID),
		zap.String("source", sourceID),
		zap.String("target", targetID))

	return edge.ID, nil
}

// Disconnect removes a single edge.
func (s *Store) Disconnect(edgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.edges {
		if e.ID == edgeID {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			s.logger.Debug("edge disconnected", zap.String("edge_id", edgeID))
			return nil
		}
	}
	return domain.ErrUnknownEdge
}

// SetGraph replaces the whole topology. Used for bulk load and undo/redo
// restore. The input is deep-copied so the caller keeps ownership.
func (s *Store) SetGraph(nodes []domain.Node, edges []domain.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = domain.CloneNodes(nodes)
	s.edges = domain.CloneEdges(edges)
	// Selection does not survive a restore; per-node flags are cleared so
	// they cannot disagree with the store-level selection.
	for i := range s.nodes {
		s.nodes[i].Selected = false
	}
	s.selected = ""
}

// Nodes returns a deep copy of the node collection.
func (s *Store) Nodes() []domain.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneNodes(s.nodes)
}

// Edges returns a copy of the edge collection.
func (s *Store) Edges() []domain.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneEdges(s.edges)
}

// Node returns a deep copy of one node.
func (s *Store) Node(id string) (domain.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Node{}, false
	}
	return s.nodes[idx].Clone(), true
}

// EdgesInto returns the edges whose target is the given node, in insertion
// order.
func (s *Store) EdgesInto(targetID string) []domain.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Edge
	for _, e := range s.edges {
		if e.Target == targetID {
			out = append(out, e)
		}
	}
	return out
}

// SetLoading flips the node's running flag. This is execution state, not a
// structural edit, and is never snapshotted.
func (s *Store) SetLoading(id string, loading bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.ErrUnknownNode
	}
	s.nodes[idx].Data.IsLoading = loading
	return nil
}

// CommitText writes an assistant result and clears the running flag in one
// atomic operation. The write lands on whatever topology currently exists.
func (s *Store) CommitText(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.ErrUnknownNode
	}
	s.nodes[idx].Data.LastText = text
	s.nodes[idx].Data.IsLoading = false
	return nil
}

// CommitImage writes an image generation result and clears the running flag.
func (s *Store) CommitImage(id, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.ErrUnknownNode
	}
	s.nodes[idx].Data.LastImageURL = imageURL
	s.nodes[idx].Data.IsLoading = false
	return nil
}

// CommitVideo stores the asynchronous video job handle and clears the
// running flag.
func (s *Store) CommitVideo(id string, job domain.VideoJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.ErrUnknownNode
	}
	s.nodes[idx].Data.LastVideoJob = &job
	s.nodes[idx].Data.IsLoading = false
	return nil
}

// Selected returns the currently selected node id, if any.
func (s *Store) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Size returns the current node and edge counts.
func (s *Store) Size() (nodes, edges int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes), len(s.edges)
}

// indexOf must be called with the mutex held.
func (s *Store) indexOf(id string) int {
	for i, n := range s.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// removeEdgesTouching must be called with the mutex held.
func (s *Store) removeEdgesTouching(nodeID string) {
	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.Source != nodeID && e.Target != nodeID {
			kept = append(kept, e)
		}
	}
	s.edges = kept
}
