package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aescanero/lienzo/internal/domain"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	return NewCodec(zap.NewNop())
}

func TestSerializeStripsRuntimeState(t *testing.T) {
	c := newTestCodec(t)

	nodes := []domain.Node{
		{
			ID:       "n1",
			Kind:     domain.KindAssistant,
			Position: domain.Position{X: 10, Y: 20},
			Selected: true,
			Data: domain.NodeData{
				Instruction:  "summarize",
				IsLoading:    true,
				LastText:     "stale result",
				LastImageURL: "https://example.com/x.png",
				LastVideoJob: &domain.VideoJob{JobID: "job-1"},
			},
		},
	}

	doc := c.Serialize(nodes, nil)

	require.Len(t, doc.Nodes, 1)
	got := doc.Nodes[0]
	assert.Equal(t, "summarize", got.Data.Instruction)
	assert.False(t, got.Selected)
	assert.False(t, got.Data.IsLoading)
	assert.Empty(t, got.Data.LastText)
	assert.Empty(t, got.Data.LastImageURL)
	assert.Nil(t, got.Data.LastVideoJob)

	// The source graph is left alone
	assert.True(t, nodes[0].Data.IsLoading)
}

func TestSerializeEmptyGraphMarshalsToArrays(t *testing.T) {
	c := newTestCodec(t)

	doc := c.Serialize(nil, nil)
	data, err := c.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, string(data))
}

func TestRoundTrip(t *testing.T) {
	c := newTestCodec(t)

	nodes := []domain.Node{
		{ID: "n1", Kind: domain.KindTextSource, Position: domain.Position{X: 1, Y: 2},
			Data: domain.NodeData{Text: "hello"}},
		{ID: "n2", Kind: domain.KindImageSource, Position: domain.Position{X: 3, Y: 4},
			Data: domain.NodeData{URL: "https://example.com/a.png"}},
		{ID: "n3", Kind: domain.KindAssistant, Position: domain.Position{X: 5, Y: 6},
			Data: domain.NodeData{Instruction: "describe the image"}},
		{ID: "n4", Kind: domain.KindVideoGenerator, Position: domain.Position{X: 7, Y: 8},
			Data: domain.NodeData{AspectRatio: "16:9"}},
		{ID: "n5", Kind: domain.KindPreview, Position: domain.Position{X: 9, Y: 10}},
	}
	edges := []domain.Edge{
		{ID: "e1", Source: "n1", Target: "n3", SourceHandle: "output", TargetHandle: "input"},
		{ID: "e2", Source: "n2", Target: "n3"},
	}

	data, err := c.Marshal(c.Serialize(nodes, edges))
	require.NoError(t, err)

	doc, err := c.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, nodes, doc.Nodes)
	assert.Equal(t, edges, doc.Edges)

	// Serializing the restored graph is stable
	again, err := c.Marshal(c.Serialize(doc.Nodes, doc.Edges))
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestRoundTripSingleNode(t *testing.T) {
	c := newTestCodec(t)

	nodes := []domain.Node{{ID: "only", Kind: domain.KindTextSource}}
	data, err := c.Marshal(c.Serialize(nodes, nil))
	require.NoError(t, err)

	doc, err := c.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, nodes, doc.Nodes)
	assert.Empty(t, doc.Edges)
}

func TestDeserializeMalformedDocuments(t *testing.T) {
	c := newTestCodec(t)

	cases := map[string]string{
		"not json":         `{{`,
		"nodes not array":  `{"nodes":{"id":"n1"},"edges":[]}`,
		"edges not array":  `{"nodes":[],"edges":"oops"}`,
		"missing nodes":    `{"edges":[]}`,
		"top-level scalar": `42`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.Deserialize([]byte(payload))
			assert.ErrorIs(t, err, domain.ErrMalformedDocument)
		})
	}
}

func TestDeserializeRepairsEntries(t *testing.T) {
	c := newTestCodec(t)

	payload := `{
		"nodes": [
			{"type": "text-source", "position": {"x": 1, "y": 2}, "data": {"text": "hi"}},
			{"id": "n2", "type": "hologram", "position": {"x": 3, "y": 4}},
			{"id": "n3", "type": "assistant", "position": "corrupt"}
		],
		"edges": [
			{"source": "n2", "target": "n3"}
		]
	}`

	doc, err := c.Deserialize([]byte(payload))
	require.NoError(t, err)
	require.Len(t, doc.Nodes, 3)

	assert.NotEmpty(t, doc.Nodes[0].ID, "missing node id gets regenerated")
	assert.Equal(t, "hi", doc.Nodes[0].Data.Text)

	assert.Equal(t, domain.KindTextSource, doc.Nodes[1].Kind, "unknown kind defaults to text source")
	assert.Equal(t, domain.Position{X: 3, Y: 4}, doc.Nodes[1].Position)

	assert.Equal(t, domain.Position{}, doc.Nodes[2].Position, "unparseable position defaults to origin")

	require.Len(t, doc.Edges, 1)
	assert.NotEmpty(t, doc.Edges[0].ID, "missing edge id gets regenerated")
	assert.Equal(t, "n2", doc.Edges[0].Source)
}
