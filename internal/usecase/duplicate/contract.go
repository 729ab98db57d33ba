package duplicate

import (
	"context"

	"github.com/kailas-cloud/mathdex/internal/domain/search/request"
	"github.com/kailas-cloud/mathdex/internal/domain/search/result"
)

// Searcher finds the nearest indexed questions to a text.
type Searcher interface {
	FindSimilar(ctx context.Context, text string, f request.Filter) ([]result.Result, error)
}
