package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aescanero/lienzo/internal/domain"
)

func nodeSet(ids ...string) []domain.Node {
	nodes := make([]domain.Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, domain.Node{
			ID:   id,
			Kind: domain.KindTextSource,
			Data: domain.NodeData{Text: "content of " + id},
		})
	}
	return nodes
}

func TestPushDeduplicatesEqualStates(t *testing.T) {
	mgr := NewManager(nil, nil, zap.NewNop())

	state := nodeSet("a")
	assert.True(t, mgr.Push(state, nil))
	assert.False(t, mgr.Push(state, nil), "deep-equal state must be discarded")
	assert.Equal(t, 2, mgr.Depth())
}

func TestPushDetachedFromCaller(t *testing.T) {
	mgr := NewManager(nil, nil, zap.NewNop())

	state := nodeSet("a")
	require.True(t, mgr.Push(state, nil))

	// Mutating the caller's slice must not reach the recorded snapshot.
	state[0].Data.Text = "mutated"
	snap, ok := mgr.Undo()
	require.True(t, ok)
	assert.Empty(t, snap.Nodes)

	snap, ok = mgr.Redo()
	require.True(t, ok)
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, "content of a", snap.Nodes[0].Data.Text)
}

func TestStackCappedAtFifty(t *testing.T) {
	mgr := NewManager(nil, nil, zap.NewNop())

	for i := 0; i < 60; i++ {
		require.True(t, mgr.Push(nodeSet(fmt.Sprintf("n%d", i)), nil))
	}

	assert.Equal(t, 50, mgr.Depth())

	// The oldest entries are gone: undo bottoms out after 49 steps.
	steps := 0
	for {
		if _, ok := mgr.Undo(); !ok {
			break
		}
		steps++
	}
	assert.Equal(t, 49, steps)

	snap, ok := mgr.Redo()
	require.True(t, ok)
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, "n11", snap.Nodes[0].ID, "the seed and entries n0..n9 must have been dropped")
}

func TestUndoRedoInverse(t *testing.T) {
	mgr := NewManager(nil, nil, zap.NewNop())

	first := nodeSet("a")
	second := nodeSet("a", "b")
	edges := []domain.Edge{{ID: "e1", Source: "a", Target: "b"}}

	require.True(t, mgr.Push(first, nil))
	require.True(t, mgr.Push(second, edges))

	undone, ok := mgr.Undo()
	require.True(t, ok)
	assert.Equal(t, first, undone.Nodes)
	assert.Empty(t, undone.Edges)

	redone, ok := mgr.Redo()
	require.True(t, ok)
	assert.Equal(t, second, redone.Nodes)
	assert.Equal(t, edges, redone.Edges)
}

func TestUndoRedoBoundaries(t *testing.T) {
	mgr := NewManager(nodeSet("seed"), nil, zap.NewNop())

	_, ok := mgr.Undo()
	assert.False(t, ok, "undo at the oldest entry is a no-op")
	_, ok = mgr.Redo()
	assert.False(t, ok, "redo at the newest entry is a no-op")

	require.True(t, mgr.Push(nodeSet("seed", "a"), nil))
	assert.True(t, mgr.CanUndo())
	assert.False(t, mgr.CanRedo())

	_, ok = mgr.Undo()
	require.True(t, ok)
	assert.True(t, mgr.CanRedo())
}

func TestPushTruncatesRedoTail(t *testing.T) {
	mgr := NewManager(nil, nil, zap.NewNop())

	require.True(t, mgr.Push(nodeSet("a"), nil))
	require.True(t, mgr.Push(nodeSet("a", "b"), nil))

	_, ok := mgr.Undo()
	require.True(t, ok)

	// Recording from the middle makes the old future unreachable.
	require.True(t, mgr.Push(nodeSet("a", "c"), nil))
	assert.False(t, mgr.CanRedo())

	snap, ok := mgr.Undo()
	require.True(t, ok)
	assert.Equal(t, nodeSet("a"), snap.Nodes)
}
