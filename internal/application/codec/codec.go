package codec

import (
	"fmt"

	"github.com/aescanero/lienzo/internal/domain"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Codec converts between the live graph and the persistable workflow
// document.
type Codec struct {
	logger *zap.Logger
}

// NewCodec creates a workflow codec.
func NewCodec(logger *zap.Logger) *Codec {
	return &Codec{logger: logger}
}

// Serialize emits a stable document from the live graph. Runtime-only fields
// (loading flag, last results, job handles, selection) are stripped: the
// document describes topology and configuration, not execution state.
func (c *Codec) Serialize(nodes []domain.Node, edges []domain.Edge) *domain.Document {
	doc := &domain.Document{
		Nodes: domain.CloneNodes(nodes),
		Edges: domain.CloneEdges(edges),
	}
	for i := range doc.Nodes {
		doc.Nodes[i].Selected = false
		doc.Nodes[i].Data.IsLoading = false
		doc.Nodes[i].Data.LastText = ""
		doc.Nodes[i].Data.LastImageURL = ""
		doc.Nodes[i].Data.LastVideoJob = nil
	}
	if doc.Nodes == nil {
		doc.Nodes = []domain.Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []domain.Edge{}
	}
	return doc
}

// Marshal renders a document as JSON.
func (c *Codec) Marshal(doc *domain.Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// rawNode parses leniently so one malformed entry cannot reject the whole
// document.
type rawNode struct {
	ID       string          `json:"id"`
	Kind     domain.NodeKind `json:"type"`
	Position json.RawMessage `json:"position"`
	Data     json.RawMessage `json:"data"`
}

// Deserialize validates and repairs a workflow document. A document whose
// nodes or edges field is not an array fails with ErrMalformedDocument.
// Entries with missing ids get fresh ones; unknown kinds default to a text
// source; unparseable positions default to the origin.
func (c *Codec) Deserialize(data []byte) (*domain.Document, error) {
	var probe struct {
		Nodes json.RawMessage `json:"nodes"`
		Edges json.RawMessage `json:"edges"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}
	if !isJSONArray(probe.Nodes) {
		return nil, fmt.Errorf("%w: nodes is not an array", domain.ErrMalformedDocument)
	}
	if !isJSONArray(probe.Edges) {
		return nil, fmt.Errorf("%w: edges is not an array", domain.ErrMalformedDocument)
	}

	var rawNodes []rawNode
	if err := json.Unmarshal(probe.Nodes, &rawNodes); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}

	nodes := make([]domain.Node, 0, len(rawNodes))
	for _, rn := range rawNodes {
		node := domain.Node{ID: rn.ID, Kind: rn.Kind}

		if node.ID == "" {
			node.ID = domain.NewID()
			c.logger.Debug("regenerated missing node id", zap.String("node_id", node.ID))
		}
		if !domain.KnownKind(node.Kind) {
			c.logger.Debug("defaulted unknown node kind",
				zap.String("node_id", node.ID),
				zap.String("kind", string(rn.Kind)))
			node.Kind = domain.KindTextSource
		}
		if len(rn.Position) > 0 {
			if err := json.Unmarshal(rn.Position, &node.Position); err != nil {
				node.Position = domain.Position{}
			}
		}
		if len(rn.Data) > 0 {
			if err := json.Unmarshal(rn.Data, &node.Data); err != nil {
				node.Data = domain.DefaultData(node.Kind)
			}
		}

		nodes = append(nodes, node)
	}

	var edges []domain.Edge
	if err := json.Unmarshal(probe.Edges, &edges); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}
	if edges == nil {
		edges = []domain.Edge{}
	}
	for i := range edges {
		if edges[i].ID == "" {
			edges[i].ID = domain.NewID()
			c.logger.Debug("regenerated missing edge id", zap.String("edge_id", edges[i].ID))
		}
	}

	return &domain.Document{Nodes: nodes, Edges: edges}, nil
}

// isJSONArray reports whether raw is a present JSON array value.
func isJSONArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
