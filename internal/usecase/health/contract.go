package health

import (
	"context"

	"github.com/kailas-cloud/mathdex/internal/db"
)

// StoreChecker reports vector store status.
type StoreChecker interface {
	CheckHealth(ctx context.Context) (*db.Health, error)
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// IndexChecker reports whether the question index exists.
type IndexChecker interface {
	Exists(ctx context.Context) (bool, error)
}
