package indexing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mathdex/internal/db"
	"github.com/kailas-cloud/mathdex/internal/domain"
	"github.com/kailas-cloud/mathdex/internal/domain/question"
	"github.com/kailas-cloud/mathdex/internal/metrics"
	"github.com/kailas-cloud/mathdex/internal/usecase/embedding"
)

// Service writes questions with derived metadata and embeddings into the index.
// Every failure wraps domain.ErrIndexing and names the offending question text.
type Service struct {
	repo   Repository
	embed  Embedder
	index  IndexEnsurer
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the generation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates an indexing service.
func New(repo Repository, embed Embedder, index IndexEnsurer, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{repo: repo, embed: embed, index: index, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IndexQuestion embeds and writes one question, returning its id.
func (s *Service) IndexQuestion(ctx context.Context, q *question.Question) (string, error) {
	if err := q.Validate(); err != nil {
		return "", indexErr(q, fmt.Errorf("%w: %w", domain.ErrInvalidQuestion, err))
	}
	if err := s.index.CreateIndexIfNotExists(ctx); err != nil {
		return "", indexErr(q, err)
	}

	vec, err := s.embed.GenerateEmbedding(ctx, q.Text)
	if err != nil {
		return "", indexErr(q, err)
	}

	doc, err := s.buildDocument(q, vec, s.now())
	if err != nil {
		return "", indexErr(q, err)
	}
	if err := s.repo.Save(ctx, &doc); err != nil {
		metrics.IndexedQuestionsTotal.WithLabelValues("error").Inc()
		return "", indexErr(q, err)
	}

	metrics.IndexedQuestionsTotal.WithLabelValues("success").Inc()
	s.logger.Debug("Question indexed", zap.String("id", doc.ID()))
	return doc.ID(), nil
}

// IndexQuestions embeds all questions in one batch call and writes them in one bulk call.
// Ids are returned in input order. An empty batch does nothing.
func (s *Service) IndexQuestions(ctx context.Context, qs []question.Question) ([]string, error) {
	if len(qs) == 0 {
		return []string{}, nil
	}
	for i := range qs {
		if err := qs[i].Validate(); err != nil {
			return nil, indexErr(&qs[i], fmt.Errorf("item %d: %w: %w", i, domain.ErrInvalidQuestion, err))
		}
	}
	if err := s.index.CreateIndexIfNotExists(ctx); err != nil {
		return nil, fmt.Errorf("%w: batch of %d: %w", domain.ErrIndexing, len(qs), err)
	}

	texts := make([]string, len(qs))
	for i := range qs {
		texts[i] = qs[i].Text
	}
	vecs, err := s.embed.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		var itemErr *embedding.BatchItemError
		if errors.As(err, &itemErr) && itemErr.Index < len(qs) {
			return nil, indexErr(&qs[itemErr.Index], err)
		}
		return nil, fmt.Errorf("%w: batch of %d: %w", domain.ErrIndexing, len(qs), err)
	}
	if len(vecs) != len(qs) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d questions", domain.ErrIndexing, len(vecs), len(qs))
	}

	now := s.now()
	docs := make([]question.Document, len(qs))
	ids := make([]string, len(qs))
	for i := range qs {
		doc, err := s.buildDocument(&qs[i], vecs[i], now)
		if err != nil {
			return nil, indexErr(&qs[i], err)
		}
		docs[i] = doc
		ids[i] = doc.ID()
	}

	if err := s.repo.SaveBatch(ctx, docs); err != nil {
		metrics.IndexedQuestionsTotal.WithLabelValues("error").Add(float64(len(qs)))
		var bulkErr *db.BulkError
		if errors.As(err, &bulkErr) && bulkErr.Position >= 0 && bulkErr.Position < len(qs) {
			return nil, indexErr(&qs[bulkErr.Position], err)
		}
		return nil, fmt.Errorf("%w: batch of %d: %w", domain.ErrIndexing, len(qs), err)
	}

	metrics.IndexedQuestionsTotal.WithLabelValues("success").Add(float64(len(qs)))
	s.logger.Info("Questions indexed", zap.Int("count", len(qs)))
	return ids, nil
}

func (s *Service) buildDocument(q *question.Question, vec []float32, now time.Time) (question.Document, error) {
	id := q.ID
	if id == "" {
		id = question.GenerateID(q.Text, now)
	}
	doc, err := question.NewDocument(id, q.Text, q.Answer, vec, question.DeriveMetadata(q, now))
	if err != nil {
		return question.Document{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuestion, err)
	}
	return doc, nil
}

func indexErr(q *question.Question, err error) error {
	return fmt.Errorf("%w: question %q: %w", domain.ErrIndexing, q.Text, err)
}
