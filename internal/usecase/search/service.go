package search

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/mathdex/internal/domain"
	"github.com/kailas-cloud/mathdex/internal/domain/search/request"
	"github.com/kailas-cloud/mathdex/internal/domain/search/result"
	"github.com/kailas-cloud/mathdex/internal/metrics"
)

// Service runs nearest-neighbor queries over the question index.
// Results keep the engine order and raw cosine score; every failure wraps domain.ErrSearch.
type Service struct {
	repo  Repository
	embed Embedder
}

// New creates a search service.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed}
}

// FindSimilar embeds text and returns its nearest indexed questions.
func (s *Service) FindSimilar(ctx context.Context, text string, f request.Filter) ([]result.Result, error) {
	vec, err := s.embed.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: vectorize query: %w", domain.ErrSearch, err)
	}
	return s.FindSimilarByEmbedding(ctx, vec, f)
}

// FindSimilarByEmbedding returns up to f.EffectiveLimit() questions nearest to vec
// that satisfy every supplied filter and none of the excluded ids.
func (s *Service) FindSimilarByEmbedding(
	ctx context.Context, vec []float32, f request.Filter,
) ([]result.Result, error) {
	expr, err := f.Expression()
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", domain.ErrSearch, domain.ErrInvalidFilter, err)
	}

	start := time.Now()
	results, err := s.repo.SearchKNN(ctx, vec, expr, f.EffectiveLimit())
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SearchDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearch, err)
	}
	return results, nil
}
