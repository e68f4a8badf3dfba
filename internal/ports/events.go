package ports

import (
	"context"
	"time"
)

// EventType labels a run lifecycle event.
type EventType string

const (
	EventTypeRunStarted   EventType = "node.run.started"
	EventTypeRunCompleted EventType = "node.run.completed"
	EventTypeRunFailed    EventType = "node.run.failed"
)

// Event is one run lifecycle notification.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	NodeID    string         `json:"node_id"`
	NodeKind  string         `json:"node_kind"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// EventHandler processes one event.
type EventHandler func(ctx context.Context, event Event) error

// EventBus distributes run events to subscribers.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	Subscribe(ctx context.Context, topic string, handler EventHandler) error
	Close() error
}
