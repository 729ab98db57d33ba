package index

import (
	"context"

	"github.com/kailas-cloud/mathdex/internal/domain"
)

// Repository defines the lifecycle contract of the question index.
type Repository interface {
	Name() string
	Exists(ctx context.Context) (bool, error)
	Create(ctx context.Context) error
	Drop(ctx context.Context) error
	Stats(ctx context.Context) (domain.IndexStats, error)
}
