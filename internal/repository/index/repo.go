package index

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/mathdex/internal/db"
	"github.com/kailas-cloud/mathdex/internal/domain"
)

// store is the consumer interface for index lifecycle (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexStats(ctx context.Context, name string) (*db.IndexStats, error)
	SupportsTextSearch(ctx context.Context) bool
}

// Repo implements usecase/index.Repository for a single named index.
type Repo struct {
	store  store
	name   string
	vector domain.VectorConfig
}

// New creates an index repository. Zero fields of cfg fall back to domain.DefaultVectorConfig.
func New(s store, name string, cfg domain.VectorConfig) *Repo {
	def := domain.DefaultVectorConfig()
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = def.Dimensions
	}
	if cfg.HNSWM <= 0 {
		cfg.HNSWM = def.HNSWM
	}
	if cfg.EFConstruction <= 0 {
		cfg.EFConstruction = def.EFConstruction
	}
	if cfg.EFRuntime <= 0 {
		cfg.EFRuntime = def.EFRuntime
	}
	if cfg.Shards <= 0 {
		cfg.Shards = def.Shards
	}
	return &Repo{store: s, name: name, vector: cfg}
}

// Name returns the logical index name.
func (r *Repo) Name() string { return r.name }

// Exists reports whether the index exists.
func (r *Repo) Exists(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.name)
	if err != nil {
		return false, fmt.Errorf("index exists %s: %w", r.name, err)
	}
	return ok, nil
}

// Create creates the index. Returns db.ErrIndexExists if it is already there.
func (r *Repo) Create(ctx context.Context) error {
	def, err := buildSchema(r.name, r.vector, r.store.SupportsTextSearch(ctx))
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", r.name, err)
	}
	return nil
}

// Drop deletes the index and its documents. Returns db.ErrIndexNotFound if absent.
func (r *Repo) Drop(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.name); err != nil {
		return fmt.Errorf("drop index %s: %w", r.name, err)
	}
	return nil
}

// Stats returns the document count and storage size.
func (r *Repo) Stats(ctx context.Context) (domain.IndexStats, error) {
	s, err := r.store.IndexStats(ctx, r.name)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("index stats %s: %w", r.name, err)
	}
	return domain.IndexStats{Name: r.name, DocumentCount: s.NumDocs, StorageBytes: s.SizeBytes}, nil
}
