package domain

import (
	"context"
	"fmt"
)

// DefaultDimensions is the embedding width of the question index (nomic-embed-text).
const DefaultDimensions = 768

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage from the provider.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// ValidateEmbedding rejects vectors whose length differs from dim.
func ValidateEmbedding(vec []float32, dim int) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty vector", ErrEmbedding)
	}
	if len(vec) != dim {
		return fmt.Errorf("%w: %w: got %d, want %d", ErrEmbedding, ErrVectorDimMismatch, len(vec), dim)
	}
	return nil
}
