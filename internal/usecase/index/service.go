package index

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mathdex/internal/db"
	"github.com/kailas-cloud/mathdex/internal/domain"
)

// Service manages the lifecycle of the question index. Every failure wraps domain.ErrIndexLifecycle.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// New creates an index service.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateIndexIfNotExists creates the index when it is missing.
// A concurrent creator winning the race is not an error.
func (s *Service) CreateIndexIfNotExists(ctx context.Context) error {
	exists, err := s.repo.Exists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexLifecycle, err)
	}
	if exists {
		return nil
	}

	if err := s.repo.Create(ctx); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("%w: %w", domain.ErrIndexLifecycle, err)
	}
	s.logger.Info("Index created", zap.String("index", s.repo.Name()))
	return nil
}

// DeleteIndex drops the index with all documents. A missing index is a no-op.
func (s *Service) DeleteIndex(ctx context.Context) error {
	exists, err := s.repo.Exists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexLifecycle, err)
	}
	if !exists {
		return nil
	}

	if err := s.repo.Drop(ctx); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil
		}
		return fmt.Errorf("%w: %w", domain.ErrIndexLifecycle, err)
	}
	s.logger.Info("Index deleted", zap.String("index", s.repo.Name()))
	return nil
}

// RecreateIndex drops and creates the index. All indexed questions are lost.
func (s *Service) RecreateIndex(ctx context.Context) error {
	if err := s.DeleteIndex(ctx); err != nil {
		return err
	}
	return s.CreateIndexIfNotExists(ctx)
}

// IndexStats returns the document count and storage size.
func (s *Service) IndexStats(ctx context.Context) (domain.IndexStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("%w: %w", domain.ErrIndexLifecycle, err)
	}
	return stats, nil
}
