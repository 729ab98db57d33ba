package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mathdex/internal/domain"
)

// BatchItemError reports the first failed text of a batch.
type BatchItemError struct {
	Index int
	Err   error
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("batch item %d: %v", e.Index, e.Err)
}

func (e *BatchItemError) Unwrap() error { return e.Err }

// Generator turns text into validated embeddings, caching successful results by exact text.
// Concurrent misses on the same text are not coalesced; each calls the provider.
type Generator struct {
	embedder   domain.Embedder
	cache      Cache
	dimensions int
	logger     *zap.Logger
}

// NewGenerator creates a Generator. dimensions <= 0 means domain.DefaultDimensions.
func NewGenerator(embedder domain.Embedder, cache Cache, dimensions int, logger *zap.Logger) *Generator {
	if dimensions <= 0 {
		dimensions = domain.DefaultDimensions
	}
	return &Generator{
		embedder:   embedder,
		cache:      cache,
		dimensions: dimensions,
		logger:     logger,
	}
}

// Dimensions returns the enforced vector length.
func (g *Generator) Dimensions() int { return g.dimensions }

// GenerateEmbedding returns the embedding for text. Vectors of the wrong length fail with
// domain.ErrEmbedding and are not cached.
func (g *Generator) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	usage := domain.UsageFromContext(ctx)

	if vec, ok := g.cache.Get(text); ok {
		usage.AddHit()
		g.logger.Debug("Embedding cache hit", zap.Int("text_len", len(text)))
		return vec, nil
	}

	res, err := g.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	usage.AddCall(res.TotalTokens)

	if err := domain.ValidateEmbedding(res.Embedding, g.dimensions); err != nil {
		g.logger.Warn("Provider returned unusable embedding",
			zap.Int("got", len(res.Embedding)),
			zap.Int("want", g.dimensions),
		)
		return nil, err
	}

	g.cache.Put(text, res.Embedding)
	return res.Embedding, nil
}

// GenerateBatchEmbeddings embeds texts one by one in input order and stops at the first failure.
// Nothing is returned on failure; vectors produced before it stay cached.
func (g *Generator) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for i, text := range texts {
		vec, err := g.GenerateEmbedding(ctx, text)
		if err != nil {
			return nil, &BatchItemError{Index: i, Err: err}
		}
		out = append(out, vec)
	}
	return out, nil
}

// ClearCache drops every cached embedding.
func (g *Generator) ClearCache() {
	g.cache.Clear()
}

// CacheStats returns the cache size and capacity.
func (g *Generator) CacheStats() CacheStats {
	return g.cache.Stats()
}
