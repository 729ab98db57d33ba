package mathdex

import (
	"context"

	"github.com/kailas-cloud/mathdex/internal/domain"
	"github.com/kailas-cloud/mathdex/internal/domain/question"
	"github.com/kailas-cloud/mathdex/internal/domain/search/request"
	"github.com/kailas-cloud/mathdex/internal/domain/search/result"
	embeddinguc "github.com/kailas-cloud/mathdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/mathdex/internal/usecase/health"
)

// --- indexUseCase mock ---

type mockIndexUC struct {
	createFn   func(ctx context.Context) error
	deleteFn   func(ctx context.Context) error
	recreateFn func(ctx context.Context) error
	statsFn    func(ctx context.Context) (domain.IndexStats, error)
}

func (m *mockIndexUC) CreateIndexIfNotExists(ctx context.Context) error { return m.createFn(ctx) }
func (m *mockIndexUC) DeleteIndex(ctx context.Context) error            { return m.deleteFn(ctx) }
func (m *mockIndexUC) RecreateIndex(ctx context.Context) error          { return m.recreateFn(ctx) }

func (m *mockIndexUC) IndexStats(ctx context.Context) (domain.IndexStats, error) {
	return m.statsFn(ctx)
}

// --- indexingUseCase mock ---

type mockIndexingUC struct {
	oneFn   func(ctx context.Context, q *question.Question) (string, error)
	batchFn func(ctx context.Context, qs []question.Question) ([]string, error)
}

func (m *mockIndexingUC) IndexQuestion(ctx context.Context, q *question.Question) (string, error) {
	return m.oneFn(ctx, q)
}

func (m *mockIndexingUC) IndexQuestions(ctx context.Context, qs []question.Question) ([]string, error) {
	return m.batchFn(ctx, qs)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	fn func(ctx context.Context, text string, f request.Filter) ([]result.Result, error)
}

func (m *mockSearchUC) FindSimilar(ctx context.Context, text string, f request.Filter) ([]result.Result, error) {
	return m.fn(ctx, text, f)
}

// --- duplicateUseCase mock ---

type mockDuplicateUC struct {
	threshold float64
	fn        func(ctx context.Context, text string, f request.Filter, threshold float64) (*result.Duplicate, error)
}

func (m *mockDuplicateUC) Check(
	ctx context.Context, text string, f request.Filter, threshold float64,
) (*result.Duplicate, error) {
	return m.fn(ctx, text, f, threshold)
}

func (m *mockDuplicateUC) DefaultThreshold() float64 { return m.threshold }

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- cacheUseCase mock ---

type mockCacheUC struct {
	stats   embeddinguc.CacheStats
	cleared bool
}

func (m *mockCacheUC) CacheStats() embeddinguc.CacheStats { return m.stats }
func (m *mockCacheUC) ClearCache()                        { m.cleared = true }

// --- storeCloser mock ---

type mockStore struct {
	pingErr error
	closed  bool
}

func (m *mockStore) Ping(context.Context) error { return m.pingErr }
func (m *mockStore) Close()                     { m.closed = true }

// --- public Embedder mock ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}
