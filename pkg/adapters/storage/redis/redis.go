package redis

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aescanero/lienzo/internal/domain"
)

// WorkflowStore persists named workflow documents in Redis.
type WorkflowStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewWorkflowStore creates a Redis workflow store.
func NewWorkflowStore(client *redis.Client, logger *zap.Logger) *WorkflowStore {
	return &WorkflowStore{
		client: client,
		logger: logger,
	}
}

// Save persists a workflow document under a name.
func (s *WorkflowStore) Save(ctx context.Context, name string, doc *domain.Document) error {
	key := getWorkflowKey(name)

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	s.logger.Debug("workflow saved",
		zap.String("name", name),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("edges", len(doc.Edges)))

	return nil
}

// Load retrieves a workflow document by name.
func (s *WorkflowStore) Load(ctx context.Context, name string) (*domain.Document, error) {
	key := getWorkflowKey(name)

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("workflow not found: %s", name)
		}
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}

	return &doc, nil
}

// Delete removes a workflow document.
func (s *WorkflowStore) Delete(ctx context.Context, name string) error {
	key := getWorkflowKey(name)

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	s.logger.Debug("workflow deleted", zap.String("name", name))
	return nil
}

// Exists checks whether a named workflow is stored.
func (s *WorkflowStore) Exists(ctx context.Context, name string) (bool, error) {
	key := getWorkflowKey(name)

	result, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	return result > 0, nil
}

// List returns the names of all stored workflows.
func (s *WorkflowStore) List(ctx context.Context) ([]string, error) {
	pattern := "lienzo:workflow:*"

	var cursor uint64
	var keys []string

	for {
		var batch []string
		var err error

		batch, cursor, err = s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}

		keys = append(keys, batch...)

		if cursor == 0 {
			break
		}
	}

	names := make([]string, 0, len(keys))
	prefix := "lienzo:workflow:"
	for _, key := range keys {
		if len(key) > len(prefix) {
			names = append(names, key[len(prefix):])
		}
	}

	return names, nil
}

// getWorkflowKey returns the Redis key for a named workflow.
func getWorkflowKey(name string) string {
	return fmt.Sprintf("lienzo:workflow:%s", name)
}
