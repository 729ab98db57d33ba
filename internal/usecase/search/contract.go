package search

import (
	"context"

	"github.com/kailas-cloud/mathdex/internal/domain/search/filter"
	"github.com/kailas-cloud/mathdex/internal/domain/search/result"
)

// Repository defines the storage contract for similarity search.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, filters filter.Expression, k int) ([]result.Result, error)
}

// Embedder vectorizes query text. Implemented by the embedding generator.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}
