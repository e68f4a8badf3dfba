package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aescanero/lienzo/internal/domain"
)

// InMemoryWorkflowStore implements WorkflowStore using an in-memory map.
// This is for testing purposes only.
type InMemoryWorkflowStore struct {
	docs map[string]*domain.Document
	mu   sync.RWMutex
}

// NewInMemoryWorkflowStore creates a new in-memory workflow store.
func NewInMemoryWorkflowStore() *InMemoryWorkflowStore {
	return &InMemoryWorkflowStore{
		docs: make(map[string]*domain.Document),
	}
}

// Save persists a workflow document under a name.
func (s *InMemoryWorkflowStore) Save(ctx context.Context, name string, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Deep copy to avoid mutations through the caller's reference
	s.docs[name] = &domain.Document{
		Nodes: domain.CloneNodes(doc.Nodes),
		Edges: domain.CloneEdges(doc.Edges),
	}
	return nil
}

// Load retrieves a workflow document by name.
func (s *InMemoryWorkflowStore) Load(ctx context.Context, name string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[name]
	if !ok {
		return nil, fmt.Errorf("workflow not found: %s", name)
	}

	return &domain.Document{
		Nodes: domain.CloneNodes(doc.Nodes),
		Edges: domain.CloneEdges(doc.Edges),
	}, nil
}

// Delete removes a workflow document.
func (s *InMemoryWorkflowStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, name)
	return nil
}

// Exists checks whether a named workflow is stored.
func (s *InMemoryWorkflowStore) Exists(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.docs[name]
	return ok, nil
}

// List returns the names of all stored workflows.
func (s *InMemoryWorkflowStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}

	return names, nil
}
