package history

import (
	"reflect"
	"sync"

	"github.com/aescanero/lienzo/internal/domain"
	"go.uber.org/zap"
)

// maxEntries caps the undo stack; the oldest entries are dropped first.
const maxEntries = 50

// Snapshot is an immutable, deep-copied record of the whole graph at one
// instant. It never aliases the live store.
type Snapshot struct {
	Nodes []domain.Node
	Edges []domain.Edge
}

// clone deep-copies the snapshot so callers cannot mutate stack entries.
func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Nodes: domain.CloneNodes(s.Nodes),
		Edges: domain.CloneEdges(s.Edges),
	}
}

// Manager keeps a bounded, deduplicated stack of graph snapshots with linear
// undo semantics. It is intentionally ignorant of why a state changed: it
// only ever receives the new full state.
type Manager struct {
	mu      sync.Mutex
	entries []Snapshot
	cursor  int
	logger  *zap.Logger
}

// NewManager creates a history manager seeded with the initial graph state.
func NewManager(nodes []domain.Node, edges []domain.Edge, logger *zap.Logger) *Manager {
	initial := Snapshot{Nodes: nodes, Edges: edges}.clone()
	return &Manager{
		entries: []Snapshot{initial},
		cursor:  0,
		logger:  logger,
	}
}

// Push records a new state. A state deep-equal to the entry at the cursor is
// discarded, so a drag that ends where it started leaves no trace. Recording
// truncates any redo tail, then caps the stack at maxEntries by dropping the
// oldest entry. Returns true when an entry was recorded.
func (m *Manager) Push(nodes []domain.Node, edges []domain.Edge) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := Snapshot{Nodes: nodes, Edges: edges}.clone()

	current := m.entries[m.cursor]
	if reflect.DeepEqual(current, next) {
		return false
	}

	// Standard linear undo: entries beyond the cursor are unreachable once a
	// new state is recorded.
	m.entries = append(m.entries[:m.cursor+1], next)
	if len(m.entries) > maxEntries {
		drop := len(m.entries) - maxEntries
		m.entries = m.entries[drop:]
	}
	m.cursor = len(m.entries) - 1

	m.logger.Debug("snapshot recorded",
		zap.Int("cursor", m.cursor),
		zap.Int("depth", len(m.entries)))

	return true
}

// Undo moves the cursor back and returns the snapshot there. A no-op at the
// oldest entry.
func (m *Manager) Undo() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor == 0 {
		return Snapshot{}, false
	}
	m.cursor--
	return m.entries[m.cursor].clone(), true
}

// Redo moves the cursor forward and returns the snapshot there. A no-op at
// the newest entry.
func (m *Manager) Redo() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor >= len(m.entries)-1 {
		return Snapshot{}, false
	}
	m.cursor++
	return m.entries[m.cursor].clone(), true
}

// CanUndo reports whether an undo step is available.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor > 0
}

// CanRedo reports whether a redo step is available.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor < len(m.entries)-1
}

// Depth returns the current stack length.
func (m *Manager) Depth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
