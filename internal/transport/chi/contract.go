package chi

import (
	"context"

	"github.com/kailas-cloud/mathdex/internal/domain"
	"github.com/kailas-cloud/mathdex/internal/domain/question"
	"github.com/kailas-cloud/mathdex/internal/domain/search/request"
	"github.com/kailas-cloud/mathdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/mathdex/internal/usecase/health"
)

// Searcher finds similar questions.
type Searcher interface {
	FindSimilar(ctx context.Context, text string, f request.Filter) ([]result.Result, error)
}

// DuplicateChecker detects near-duplicate questions.
type DuplicateChecker interface {
	Check(ctx context.Context, text string, f request.Filter, threshold float64) (*result.Duplicate, error)
	DefaultThreshold() float64
}

// Indexer writes questions into the index.
type Indexer interface {
	IndexQuestion(ctx context.Context, q *question.Question) (string, error)
	IndexQuestions(ctx context.Context, qs []question.Question) ([]string, error)
}

// IndexManager controls the question index lifecycle.
type IndexManager interface {
	CreateIndexIfNotExists(ctx context.Context) error
	DeleteIndex(ctx context.Context) error
	IndexStats(ctx context.Context) (domain.IndexStats, error)
}

// HealthReporter aggregates component health.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}
