package duplicate

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/mathdex/internal/domain"
	"github.com/kailas-cloud/mathdex/internal/domain/search/request"
	"github.com/kailas-cloud/mathdex/internal/domain/search/result"
)

// Detection defaults.
const (
	DefaultThreshold = 0.9
	DefaultWindow    = 20
)

// Service decides whether a candidate text is a near-duplicate of an indexed question.
type Service struct {
	search    Searcher
	window    int
	threshold float64
}

// Option configures a Service.
type Option func(*Service)

// WithWindow sets how many neighbors are inspected. Values <= 0 are ignored.
func WithWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.window = n
		}
	}
}

// WithDefaultThreshold sets the threshold reported by DefaultThreshold. Values <= 0 are ignored.
func WithDefaultThreshold(v float64) Option {
	return func(s *Service) {
		if v > 0 {
			s.threshold = v
		}
	}
}

// New creates a duplicate detector.
func New(search Searcher, opts ...Option) *Service {
	s := &Service{search: search, window: DefaultWindow, threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultThreshold is the threshold callers use when they have none.
func (s *Service) DefaultThreshold() float64 { return s.threshold }

// Check searches the neighbor window (overriding f.Limit) and returns the highest-scoring
// neighbor whose score is >= threshold. Ties keep the first neighbor in engine order.
// A nil result means no duplicate.
func (s *Service) Check(
	ctx context.Context, text string, f request.Filter, threshold float64,
) (*result.Duplicate, error) {
	neighbors, err := s.search.FindSimilar(ctx, text, f.WithLimit(s.window))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDuplicateCheck, err)
	}

	best := -1
	for i := range neighbors {
		score := neighbors[i].Score()
		if score < threshold {
			continue
		}
		if best < 0 || score > neighbors[best].Score() {
			best = i
		}
	}
	if best < 0 {
		return nil, nil //nolint:nilnil // nil means no duplicate
	}

	return &result.Duplicate{
		IsDuplicate: true,
		Existing:    neighbors[best],
		Score:       neighbors[best].Score(),
	}, nil
}
