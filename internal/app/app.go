// Package app is the composition root shared by the API server and the CLI.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mathdex/internal/config"
	"github.com/kailas-cloud/mathdex/internal/db"
	"github.com/kailas-cloud/mathdex/internal/db/postgres"
	"github.com/kailas-cloud/mathdex/internal/db/qdrant"
	dbRedis "github.com/kailas-cloud/mathdex/internal/db/redis"
	"github.com/kailas-cloud/mathdex/internal/domain"
	"github.com/kailas-cloud/mathdex/internal/metrics"
	"github.com/kailas-cloud/mathdex/internal/repository/embcache"
	indexrepo "github.com/kailas-cloud/mathdex/internal/repository/index"
	questionrepo "github.com/kailas-cloud/mathdex/internal/repository/question"
	searchrepo "github.com/kailas-cloud/mathdex/internal/repository/search"
	openaiEmb "github.com/kailas-cloud/mathdex/internal/transport/openai"
	duplicateuc "github.com/kailas-cloud/mathdex/internal/usecase/duplicate"
	embeddinguc "github.com/kailas-cloud/mathdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/mathdex/internal/usecase/health"
	indexuc "github.com/kailas-cloud/mathdex/internal/usecase/index"
	indexinguc "github.com/kailas-cloud/mathdex/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/mathdex/internal/usecase/search"
)

// App holds the wired services of one process.
type App struct {
	Store      db.Store
	Embeddings *embeddinguc.Generator
	Index      *indexuc.Service
	Search     *searchuc.Service
	Duplicates *duplicateuc.Service
	Indexing   *indexinguc.Service
	Health     *healthuc.Service
}

// OpenStore creates the vector store selected by cfg.Database.Driver.
func OpenStore(cfg *config.Config) (db.Store, error) {
	d := cfg.Database
	switch d.Driver {
	case config.DriverRedis, config.DriverValkey:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     d.Addrs,
			Username:  d.Username,
			Password:  d.Password,
			KeyPrefix: d.KeyPrefix,
			Flavor:    dbRedis.Flavor(d.Driver),
		})
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", d.Driver, err)
		}
		return store, nil
	case config.DriverQdrant:
		store, err := qdrant.NewStore(qdrant.Config{
			Host:             d.Host,
			Port:             d.Port,
			APIKey:           d.APIKey,
			UseTLS:           d.UseTLS,
			CollectionPrefix: namePrefix(d.KeyPrefix),
			SearchEF:         cfg.Index.HNSWEFRuntime,
		})
		if err != nil {
			return nil, fmt.Errorf("open qdrant: %w", err)
		}
		return store, nil
	case config.DriverPgvector:
		store, err := postgres.NewStore(postgres.Config{
			DSN:          d.DSN,
			TablePrefix:  namePrefix(d.KeyPrefix),
			MaxOpenConns: d.MaxOpenConns,
			SearchEF:     cfg.Index.HNSWEFRuntime,
		})
		if err != nil {
			return nil, fmt.Errorf("open pgvector: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", d.Driver)
	}
}

// Connect opens the store and waits until it answers.
func Connect(ctx context.Context, cfg *config.Config) (db.Store, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}

// NewEmbedder builds the provider chain: OpenAI-compatible transport -> instrumented logging.
func NewEmbedder(cfg *config.Config, logger *zap.Logger) *embeddinguc.InstrumentedEmbedder {
	e := cfg.Embedding
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:   e.APIKey,
		BaseURL:  e.BaseURL,
		Model:    e.Model,
		Provider: e.Provider,
		Timeout:  time.Duration(e.TimeoutSec) * time.Second,
		Logger:   logger,
	})
	return embeddinguc.NewInstrumentedEmbedder(base, e.Provider, e.Model, logger)
}

// New wires every service on top of store and embedder.
func New(cfg *config.Config, store db.Store, embedder domain.Embedder, logger *zap.Logger) *App {
	cache := embcache.New(cfg.Embedding.CacheSize, embcache.WithMetrics(
		metrics.EmbeddingCacheTotal,
		metrics.EmbeddingCacheEvictionsTotal,
		metrics.EmbeddingCacheSize,
	))
	gen := embeddinguc.NewGenerator(embedder, cache, cfg.Embedding.Dimensions, logger)

	vec := domain.DefaultVectorConfig()
	vec.Model = cfg.Embedding.Model
	vec.Dimensions = cfg.Embedding.Dimensions
	vec.HNSWM = cfg.Index.HNSWM
	vec.EFConstruction = cfg.Index.HNSWEFConstruct
	vec.EFRuntime = cfg.Index.HNSWEFRuntime
	vec.Shards = cfg.Index.Shards
	vec.Replicas = cfg.Index.Replicas

	name := cfg.Index.Name
	idxRepo := indexrepo.New(store, name, vec)
	idxSvc := indexuc.New(idxRepo, logger)
	searchSvc := searchuc.New(searchrepo.New(store, name), gen)

	var embChecker healthuc.EmbeddingChecker
	if hc, ok := embedder.(domain.HealthChecker); ok {
		embChecker = hc
	}

	return &App{
		Store:      store,
		Embeddings: gen,
		Index:      idxSvc,
		Search:     searchSvc,
		Duplicates: duplicateuc.New(searchSvc,
			duplicateuc.WithWindow(cfg.Duplicate.Window),
			duplicateuc.WithDefaultThreshold(cfg.Duplicate.Threshold),
		),
		Indexing: indexinguc.New(questionrepo.New(store, name), gen, idxSvc, logger),
		Health:   healthuc.New(store, embChecker, idxRepo),
	}
}

// RegisterMetrics registers every Prometheus collector of the process. Safe to call twice.
func RegisterMetrics() {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()
	metrics.RegisterHTTPMetrics()
}

// namePrefix turns a key prefix like "mathdex:" into a collection/table prefix "mathdex_".
func namePrefix(keyPrefix string) string {
	p := strings.TrimRight(keyPrefix, ":_")
	if p == "" {
		return ""
	}
	return p + "_"
}
