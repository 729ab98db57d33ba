package mathdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/mathdex/internal/domain/question"
)

// CreateIndex creates the question index if it does not exist (idempotent).
func (c *Client) CreateIndex(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("index.create", start, err) }()

	if err = c.index.CreateIndexIfNotExists(ctx); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// DeleteIndex drops the question index and its documents. A missing index is not an error.
func (c *Client) DeleteIndex(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("index.delete", start, err) }()

	if err = c.index.DeleteIndex(ctx); err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	return nil
}

// RecreateIndex drops and creates the question index.
func (c *Client) RecreateIndex(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("index.recreate", start, err) }()

	if err = c.index.RecreateIndex(ctx); err != nil {
		return fmt.Errorf("recreate index: %w", err)
	}
	return nil
}

// Stats returns the question index size.
func (c *Client) Stats(ctx context.Context) (_ IndexStats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index.stats", start, err) }()

	s, err := c.index.IndexStats(ctx)
	if err != nil {
		return IndexStats{}, fmt.Errorf("index stats: %w", err)
	}
	return fromStats(s), nil
}

// IndexQuestion embeds and stores one question, creating the index on first use.
// Returns the stored ID.
func (c *Client) IndexQuestion(ctx context.Context, q Question) (_ string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("question.index", start, err) }()

	dq := toDomainQuestion(q)
	id, err := c.indexing.IndexQuestion(ctx, &dq)
	if err != nil {
		return "", fmt.Errorf("index question: %w", err)
	}
	return id, nil
}

// IndexQuestions embeds and stores questions in one bulk write.
// Either every question is stored or an error names the first failed one.
func (c *Client) IndexQuestions(ctx context.Context, qs []Question) (_ []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("question.index_batch", start, err) }()

	dqs := make([]question.Question, len(qs))
	for i := range qs {
		dqs[i] = toDomainQuestion(qs[i])
	}
	ids, err := c.indexing.IndexQuestions(ctx, dqs)
	if err != nil {
		return nil, fmt.Errorf("index questions: %w", err)
	}
	return ids, nil
}
