package mathdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/mathdex/internal/domain/search/request"
)

// SearchBuilder is a fluent builder for similarity queries.
type SearchBuilder struct {
	client *Client
	text   string
	filter request.Filter
}

// Similar starts a similarity query for text.
func (c *Client) Similar(text string) *SearchBuilder {
	return &SearchBuilder{client: c, text: text}
}

// Grade keeps only questions of the given grade.
func (b *SearchBuilder) Grade(g int) *SearchBuilder {
	b.filter.Grade = &g
	return b
}

// Topic keeps only questions of the given topic.
func (b *SearchBuilder) Topic(t string) *SearchBuilder {
	b.filter.Topic = t
	return b
}

// Operation keeps only questions of the given operation.
func (b *SearchBuilder) Operation(op string) *SearchBuilder {
	b.filter.Operation = op
	return b
}

// Exclude drops the given question IDs from the results.
func (b *SearchBuilder) Exclude(ids ...string) *SearchBuilder {
	b.filter.ExcludeIDs = append(b.filter.ExcludeIDs, ids...)
	return b
}

// Limit sets the maximum number of results. Default 10, capped at 100.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.filter.Limit = n
	return b
}

// Do executes the query and returns hits ordered by descending score.
func (b *SearchBuilder) Do(ctx context.Context) (_ []Hit, err error) {
	start := time.Now()
	defer func() { b.client.obs.observe("search.similar", start, err) }()

	rs, err := b.client.search.FindSimilar(ctx, b.text, b.filter)
	if err != nil {
		return nil, fmt.Errorf("similar: %w", err)
	}
	return fromResults(rs), nil
}

// DuplicateBuilder is a fluent builder for near-duplicate checks.
type DuplicateBuilder struct {
	client    *Client
	text      string
	filter    request.Filter
	threshold float64
}

// Duplicate starts a near-duplicate check for text.
func (c *Client) Duplicate(text string) *DuplicateBuilder {
	return &DuplicateBuilder{client: c, text: text}
}

// Grade only compares against questions of the given grade.
func (b *DuplicateBuilder) Grade(g int) *DuplicateBuilder {
	b.filter.Grade = &g
	return b
}

// Topic only compares against questions of the given topic.
func (b *DuplicateBuilder) Topic(t string) *DuplicateBuilder {
	b.filter.Topic = t
	return b
}

// Operation only compares against questions of the given operation.
func (b *DuplicateBuilder) Operation(op string) *DuplicateBuilder {
	b.filter.Operation = op
	return b
}

// Exclude ignores the given question IDs.
func (b *DuplicateBuilder) Exclude(ids ...string) *DuplicateBuilder {
	b.filter.ExcludeIDs = append(b.filter.ExcludeIDs, ids...)
	return b
}

// Threshold sets the minimum similarity. A value <= 0 uses the client default.
func (b *DuplicateBuilder) Threshold(v float64) *DuplicateBuilder {
	b.threshold = v
	return b
}

// Do returns the closest matching question whose similarity reaches the threshold,
// or nil when there is none.
func (b *DuplicateBuilder) Do(ctx context.Context) (_ *Duplicate, err error) {
	c := b.client
	start := time.Now()
	defer func() { c.obs.observe("search.duplicate", start, err) }()

	threshold := b.threshold
	if threshold <= 0 {
		threshold = c.duplicates.DefaultThreshold()
	}
	d, err := c.duplicates.Check(ctx, b.text, b.filter, threshold)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if d == nil {
		return nil, nil //nolint:nilnil // nil means no duplicate
	}
	return &Duplicate{Existing: fromResult(&d.Existing), Score: d.Score}, nil
}

// CheckDuplicate is Duplicate(text).Threshold(threshold).Do(ctx) without filters.
func (c *Client) CheckDuplicate(ctx context.Context, text string, threshold float64) (*Duplicate, error) {
	return c.Duplicate(text).Threshold(threshold).Do(ctx)
}
