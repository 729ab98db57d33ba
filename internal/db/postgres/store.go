package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/kailas-cloud/mathdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// PostgreSQL error codes the store maps to db sentinels.
const (
	codeUndefinedTable = "42P01"
	codeDuplicateTable = "42P07"
)

// Config holds connection parameters for a pgvector store.
type Config struct {
	DSN          string
	TablePrefix  string
	MaxOpenConns int
	// SearchEF sets hnsw.ef_search for every query; 0 keeps the server default.
	SearchEF int
}

// Store implements db.Store on PostgreSQL with the pgvector extension.
// One logical index is one table: id, embedding vector(dim), fields jsonb.
// Only cosine distance is supported.
type Store struct {
	db     *sql.DB
	prefix string
	ef     int
}

// NewStore opens a pgx-backed database/sql pool. The connection is verified lazily by WaitForReady.
func NewStore(cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	sqlDB, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return &Store{db: sqlDB, prefix: cfg.TablePrefix, ef: cfg.SearchEF}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady retries Ping with exponential backoff until timeout.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = timeout

	if err := backoff.Retry(func() error { return s.Ping(ctx) }, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("%w: %w", db.ErrUnavailable, err)
	}
	return nil
}

// CheckHealth reports a single-node status.
func (s *Store) CheckHealth(ctx context.Context) (*db.Health, error) {
	if err := s.Ping(ctx); err != nil {
		return &db.Health{Status: "unavailable", ClusterStatus: db.ClusterRed}, err
	}
	return &db.Health{Status: "ok", ClusterStatus: db.ClusterGreen, NodeCount: 1}, nil
}

func (s *Store) table(index string) string {
	return s.prefix + index
}

// ident quotes a table or index name.
func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
