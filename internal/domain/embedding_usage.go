package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage collects embedding traffic for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// the embedding generator writes to it; the handler reads it for response headers.
type EmbeddingUsage struct {
	TotalTokens int
	Calls       int // upstream provider calls
	CacheHits   int
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddCall records one upstream call and its consumed tokens.
func (u *EmbeddingUsage) AddCall(tokens int) {
	if u != nil {
		u.Calls++
		u.TotalTokens += tokens
	}
}

// AddHit records a cache hit.
func (u *EmbeddingUsage) AddHit() {
	if u != nil {
		u.CacheHits++
	}
}
