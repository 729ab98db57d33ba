package mathdex

import "context"

// Embedder converts text to a vector embedding.
// Its vectors must have the width set with WithDimensions.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
