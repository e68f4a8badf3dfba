package domain

import (
	"github.com/google/uuid"
)

// NodeKind identifies the variant of a canvas node.
type NodeKind string

const (
	KindTextSource     NodeKind = "text-source"
	KindImageSource    NodeKind = "image-source"
	KindVideoSource    NodeKind = "video-source"
	KindAssistant      NodeKind = "assistant"
	KindImageGenerator NodeKind = "image-generator"
	KindVideoGenerator NodeKind = "video-generator"
	KindPreview        NodeKind = "preview"
)

// KnownKind reports whether k is one of the closed set of node kinds.
func KnownKind(k NodeKind) bool {
	switch k {
	case KindTextSource, KindImageSource, KindVideoSource,
		KindAssistant, KindImageGenerator, KindVideoGenerator, KindPreview:
		return true
	}
	return false
}

// Position holds the node's canvas coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InputField is one labeled field of a text source in structured-input mode.
type InputField struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Type    string `json:"type"`
	Default string `json:"default,omitempty"`
	Value   string `json:"value,omitempty"`
}

// VideoJob is the handle returned by the video generation service. The job
// itself is polled outside the graph runtime; the handle is kept on the node.
type VideoJob struct {
	JobID          string `json:"jobId"`
	StatusURL      string `json:"statusUrl"`
	DownloadURL    string `json:"downloadUrl"`
	PollIntervalMs int    `json:"pollIntervalMs"`
}

// NodeData holds the kind-specific configuration of a node. One struct covers
// all kinds; readers must switch on Node.Kind to know which fields apply.
// Fields tagged `json:"-"` are runtime-only and never persisted.
type NodeData struct {
	Label string `json:"label,omitempty"`

	// text source
	Text            string       `json:"text,omitempty"`
	StructuredInput bool         `json:"structuredInput,omitempty"`
	Fields          []InputField `json:"fields,omitempty"`

	// image / video source
	URL string `json:"url,omitempty"`

	// assistant
	Instruction string `json:"instruction,omitempty"`
	Preset      string `json:"preset,omitempty"`
	Brief       string `json:"brief,omitempty"`

	// generators
	Model       string         `json:"model,omitempty"`
	ModelParams map[string]any `json:"modelParams,omitempty"`
	AspectRatio string         `json:"aspectRatio,omitempty"`
	WorkflowID  string         `json:"workflowId,omitempty"`

	// runtime-only execution state
	IsLoading    bool      `json:"-"`
	LastText     string    `json:"-"`
	LastImageURL string    `json:"-"`
	LastVideoJob *VideoJob `json:"-"`
}

// Node is one typed unit of the workflow graph.
type Node struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
	Selected bool     `json:"-"`
}

// Edge is a directed connection between two node handles.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Document is the persisted workflow format.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NewID returns a collision-resistant identifier for nodes and edges.
// IDs are never reused within a session.
func NewID() string {
	return uuid.New().String()
}

// Clone returns a deep copy of the node, including runtime-only fields.
func (n Node) Clone() Node {
	c := n
	if n.Data.Fields != nil {
		c.Data.Fields = make([]InputField, len(n.Data.Fields))
		copy(c.Data.Fields, n.Data.Fields)
	}
	if n.Data.ModelParams != nil {
		c.Data.ModelParams = make(map[string]any, len(n.Data.ModelParams))
		for k, v := range n.Data.ModelParams {
			c.Data.ModelParams[k] = v
		}
	}
	if n.Data.LastVideoJob != nil {
		job := *n.Data.LastVideoJob
		c.Data.LastVideoJob = &job
	}
	return c
}

// CloneNodes deep-copies a node slice.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// CloneEdges copies an edge slice. Edges are flat values.
func CloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// DefaultData seeds kind-appropriate data for a freshly added node.
func DefaultData(kind NodeKind) NodeData {
	switch kind {
	case KindTextSource:
		return NodeData{Label: "Text"}
	case KindImageSource:
		return NodeData{Label: "Image"}
	case KindVideoSource:
		return NodeData{Label: "Video"}
	case KindAssistant:
		return NodeData{Label: "Assistant"}
	case KindImageGenerator:
		return NodeData{Label: "Image Generator"}
	case KindVideoGenerator:
		return NodeData{Label: "Video Generator", AspectRatio: "16:9"}
	case KindPreview:
		return NodeData{Label: "Preview"}
	default:
		return NodeData{}
	}
}
