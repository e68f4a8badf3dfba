package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aescanero/lienzo/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(zap.NewNop())
}

func TestAddNodeIDsAreUnique(t *testing.T) {
	store := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := store.AddNode(domain.KindTextSource, domain.Position{X: float64(i)})
		require.NoError(t, err)
		assert.False(t, seen[id], "id %s was issued twice", id)
		seen[id] = true
	}

	// Duplicates mint fresh ids too
	for id := range seen {
		dupID, err := store.DuplicateNode(id)
		require.NoError(t, err)
		assert.False(t, seen[dupID], "duplicate reused id %s", dupID)
		seen[dupID] = true
	}
}

func TestAddNodeRejectsUnknownKind(t *testing.T) {
	store := newTestStore(t)

	_, err := store.AddNode(domain.NodeKind("sticker"), domain.Position{})
	assert.ErrorIs(t, err, domain.ErrUnknownNode)

	nodes, _ := store.Size()
	assert.Equal(t, 0, nodes)
}

func TestDeleteNodeCascadesEdges(t *testing.T) {
	store := newTestStore(t)

	a, err := store.AddNode(domain.KindTextSource, domain.Position{})
	require.NoError(t, err)
	b, err := store.AddNode(domain.KindAssistant, domain.Position{})
	require.NoError(t, err)
	c, err := store.AddNode(domain.KindImageGenerator, domain.Position{})
	require.NoError(t, err)

	_, err = store.Connect(a, "output", b, "input")
	require.NoError(t, err)
	_, err = store.Connect(b, "output", c, "input")
	require.NoError(t, err)
	keptEdge, err := store.Connect(a, "output", c, "input")
	require.NoError(t, err)

	store.DeleteNode(b)

	edges := store.Edges()
	require.Len(t, edges, 1, "only the a->c edge should survive")
	assert.Equal(t, keptEdge, edges[0].ID)

	nodes, _ := store.Size()
	assert.Equal(t, 2, nodes)
}

func TestDeleteNodeClearsSelection(t *testing.T) {
	store := newTestStore(t)

	id, err := store.AddNode(domain.KindPreview, domain.Position{})
	require.NoError(t, err)

	store.ApplyChanges([]Change{{Type: ChangeSelect, ID: id, Selected: true}})
	require.Equal(t, id, store.Selected())

	store.DeleteNode(id)
	assert.Empty(t, store.Selected())
}

func TestDeleteUnknownNodeIsNoOp(t *testing.T) {
	store := newTestStore(t)

	id, err := store.AddNode(domain.KindTextSource, domain.Position{})
	require.NoError(t, err)

	store.DeleteNode("missing")

	_, ok := store.Node(id)
	assert.True(t, ok)
}

func TestDuplicateNodeOffsetsPosition(t *testing.T) {
	store := newTestStore(t)

	id, err := store.AddNode(domain.KindImageSource, domain.Position{X: 100, Y: 200})
	require.NoError(t, err)
	require.NoError(t, store.UpdateNodeData(id, domain.NodeData{URL: "https://example.com/cat.png"}))

	dupID, err := store.DuplicateNode(id)
	require.NoError(t, err)

	dup, ok := store.Node(dupID)
	require.True(t, ok)
	assert.Equal(t, domain.Position{X: 140, Y: 240}, dup.Position)
	assert.Equal(t, "https://example.com/cat.png", dup.Data.URL)
}

func TestDuplicateUnknownNode(t *testing.T) {
	store := newTestStore(t)

	_, err := store.DuplicateNode("missing")
	assert.ErrorIs(t, err, domain.ErrUnknownNode)
}

func TestConnectRejectsUnknownEndpoints(t *testing.T) {
	store := newTestStore(t)

	id, err := store.AddNode(domain.KindTextSource, domain.Position{})
	require.NoError(t, err)

	_, err = store.Connect(id, "output", "missing", "input")
	assert.ErrorIs(t, err, domain.ErrUnknownNode)

	_, err = store.Connect("missing", "output", id, "input")
	assert.ErrorIs(t, err, domain.ErrUnknownNode)

	assert.Empty(t, store.Edges())
}

func TestUpdateNodeDataShallowMerge(t *testing.T) {
	store := newTestStore(t)

	id, err := store.AddNode(domain.KindAssistant, domain.Position{})
	require.NoError(t, err)

	require.NoError(t, store.UpdateNodeData(id, domain.NodeData{Instruction: "summarize"}))
	require.NoError(t, store.UpdateNodeData(id, domain.NodeData{Preset: "marketing"}))

	node, ok := store.Node(id)
	require.True(t, ok)
	assert.Equal(t, "summarize", node.Data.Instruction, "earlier fields survive later patches")
	assert.Equal(t, "marketing", node.Data.Preset)

	assert.ErrorIs(t, store.UpdateNodeData("missing", domain.NodeData{Text: "x"}), domain.ErrUnknownNode)
}

func TestApplyChangesBatch(t *testing.T) {
	store := newTestStore(t)

	a, err := store.AddNode(domain.KindTextSource, domain.Position{})
	require.NoError(t, err)
	b, err := store.AddNode(domain.KindAssistant, domain.Position{})
	require.NoError(t, err)
	edgeID, err := store.Connect(a, "output", b, "input")
	require.NoError(t, err)

	store.ApplyChanges([]Change{
		{Type: ChangePosition, ID: a, Position: &domain.Position{X: 10, Y: 20}},
		{Type: ChangeSelect, ID: a, Selected: true},
		{Type: ChangeRemoveEdge, ID: edgeID},
		{Type: ChangeRemoveNode, ID: b},
		{Type: ChangePosition, ID: "missing", Position: &domain.Position{X: 1}},
		{Type: ChangeAddNode, Kind: domain.KindPreview, Position: &domain.Position{X: 5, Y: 5}},
	})

	node, ok := store.Node(a)
	require.True(t, ok)
	assert.Equal(t, domain.Position{X: 10, Y: 20}, node.Position)
	assert.Equal(t, a, store.Selected())

	_, ok = store.Node(b)
	assert.False(t, ok)
	assert.Empty(t, store.Edges())

	nodes, _ := store.Size()
	assert.Equal(t, 2, nodes)
}

func TestApplyChangesAddNodeNeverReusesID(t *testing.T) {
	store := newTestStore(t)

	existing, err := store.AddNode(domain.KindTextSource, domain.Position{})
	require.NoError(t, err)

	store.ApplyChanges([]Change{
		{Type: ChangeAddNode, ID: existing, Kind: domain.KindPreview},
	})

	nodes := store.Nodes()
	require.Len(t, nodes, 2)
	assert.NotEqual(t, nodes[0].ID, nodes[1].ID, "a colliding id must be replaced with a fresh one")

	node, ok := store.Node(existing)
	require.True(t, ok)
	assert.Equal(t, domain.KindTextSource, node.Kind, "the existing node is untouched")
}

func TestSetGraphClearsSelectionFlags(t *testing.T) {
	store := newTestStore(t)

	id, err := store.AddNode(domain.KindTextSource, domain.Position{})
	require.NoError(t, err)
	store.ApplyChanges([]Change{{Type: ChangeSelect, ID: id, Selected: true}})
	require.Equal(t, id, store.Selected())

	// Restore from a snapshot taken while the node was selected
	store.SetGraph(store.Nodes(), store.Edges())

	assert.Empty(t, store.Selected())
	node, ok := store.Node(id)
	require.True(t, ok)
	assert.False(t, node.Selected, "per-node flags must agree with the cleared selection")
}

func TestCommitVisibleToSubsequentReads(t *testing.T) {
	store := newTestStore(t)

	id, err := store.AddNode(domain.KindAssistant, domain.Position{})
	require.NoError(t, err)

	require.NoError(t, store.SetLoading(id, true))
	require.NoError(t, store.CommitText(id, "done"))

	node, ok := store.Node(id)
	require.True(t, ok)
	assert.Equal(t, "done", node.Data.LastText)
	assert.False(t, node.Data.IsLoading, "commit clears the running flag")
}

func TestAccessorsReturnCopies(t *testing.T) {
	store := newTestStore(t)

	id, err := store.AddNode(domain.KindTextSource, domain.Position{})
	require.NoError(t, err)

	nodes := store.Nodes()
	require.Len(t, nodes, 1)
	nodes[0].Data.Text = "mutated"

	node, ok := store.Node(id)
	require.True(t, ok)
	assert.Empty(t, node.Data.Text, "caller mutations must not reach the store")
}
