package ports

import (
	"context"

	"github.com/aescanero/lienzo/internal/domain"
)

// WorkflowStore persists named workflow documents.
type WorkflowStore interface {
	Save(ctx context.Context, name string, doc *domain.Document) error
	Load(ctx context.Context, name string) (*domain.Document, error)
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]string, error)
}
