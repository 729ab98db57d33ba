package mathdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mathdex/internal/app"
	"github.com/kailas-cloud/mathdex/internal/config"
	"github.com/kailas-cloud/mathdex/internal/domain"
	"github.com/kailas-cloud/mathdex/internal/domain/question"
	"github.com/kailas-cloud/mathdex/internal/domain/search/request"
	"github.com/kailas-cloud/mathdex/internal/domain/search/result"
	embeddinguc "github.com/kailas-cloud/mathdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/mathdex/internal/usecase/health"
)

// Narrow views of the wired services, swapped for fakes in tests.
type indexUseCase interface {
	CreateIndexIfNotExists(ctx context.Context) error
	DeleteIndex(ctx context.Context) error
	RecreateIndex(ctx context.Context) error
	IndexStats(ctx context.Context) (domain.IndexStats, error)
}

type indexingUseCase interface {
	IndexQuestion(ctx context.Context, q *question.Question) (string, error)
	IndexQuestions(ctx context.Context, qs []question.Question) ([]string, error)
}

type searchUseCase interface {
	FindSimilar(ctx context.Context, text string, f request.Filter) ([]result.Result, error)
}

type duplicateUseCase interface {
	Check(ctx context.Context, text string, f request.Filter, threshold float64) (*result.Duplicate, error)
	DefaultThreshold() float64
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

type cacheUseCase interface {
	CacheStats() embeddinguc.CacheStats
	ClearCache()
}

type storeCloser interface {
	Ping(ctx context.Context) error
	Close()
}

// Client is the embedded mathdex entry point.
type Client struct {
	store      storeCloser
	index      indexUseCase
	indexing   indexingUseCase
	search     searchUseCase
	duplicates duplicateUseCase
	health     healthUseCase
	cache      cacheUseCase
	obs        *observer
}

// New creates a Client and connects to the vector store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, o := range opts {
		o.apply(cc)
	}
	cc.cfg.ApplyDefaults()

	if err := validate(&cc.cfg); err != nil {
		return nil, err
	}

	obs, err := newObserver(cc.logger, cc.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := app.Connect(ctx, &cc.cfg)
	if err != nil {
		return nil, fmt.Errorf("mathdex: %w", err)
	}

	a := app.New(&cc.cfg, store, buildEmbedder(cc, obs.logger), obs.logger)
	return wireClient(a, obs), nil
}

func validate(cfg *config.Config) error {
	d := cfg.Database
	switch d.Driver {
	case config.DriverRedis, config.DriverValkey:
		if len(d.Addrs) == 0 || d.Addrs[0] == "" {
			return errors.New("mathdex: database address required (use WithRedis or WithValkey)")
		}
	case config.DriverQdrant:
		if d.Host == "" {
			return errors.New("mathdex: qdrant host required")
		}
	case config.DriverPgvector:
		if d.DSN == "" {
			return errors.New("mathdex: postgres DSN required")
		}
	default:
		return fmt.Errorf("mathdex: unknown driver %q", d.Driver)
	}
	return nil
}

func buildEmbedder(cc *clientConfig, logger *zap.Logger) domain.Embedder {
	switch {
	case cc.embedder != nil:
		return &embedderAdapter{inner: cc.embedder}
	case cc.cfg.Embedding.BaseURL != "":
		return app.NewEmbedder(&cc.cfg, logger)
	default:
		return noopEmbedder{}
	}
}

func wireClient(a *app.App, obs *observer) *Client {
	return &Client{
		store:      a.Store,
		index:      a.Index,
		indexing:   a.Indexing,
		search:     a.Search,
		duplicates: a.Duplicates,
		health:     a.Health,
		cache:      a.Embeddings,
		obs:        obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks vector store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Health checks the vector store, the embedding provider and the index.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:        string(report.Status),
		Checks:        checks,
		ClusterStatus: report.ClusterStatus,
		NodeCount:     report.NodeCount,
	}
}

// CacheStats reports the embedding cache occupancy.
func (c *Client) CacheStats() CacheStats {
	s := c.cache.CacheStats()
	return CacheStats{Size: s.Size, MaxSize: s.MaxSize}
}

// ClearCache drops every cached embedding.
func (c *Client) ClearCache() {
	c.cache.ClearCache()
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder fails every call; index lifecycle still works without a provider.
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf(
		"%w: embedder not configured (use WithOpenAI or WithEmbedder)", domain.ErrEmbeddingProviderError,
	)
}
