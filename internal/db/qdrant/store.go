package qdrant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/mathdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// client is the subset of *qdrant.Client the store uses.
type client interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	DeleteCollection(ctx context.Context, collectionName string) error
	GetCollectionInfo(ctx context.Context, collectionName string) (*qdrant.CollectionInfo, error)
	CreateFieldIndex(ctx context.Context, request *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
	Close() error
}

// Config holds connection parameters for a Qdrant store.
type Config struct {
	Host             string
	Port             int // gRPC port, 6334 by default
	APIKey           string
	UseTLS           bool
	CollectionPrefix string
	// SearchEF is the HNSW search breadth sent with every query.
	// Qdrant keeps it per request, so the index-level EF_RUNTIME setting is mirrored here.
	SearchEF int
}

// Store implements db.Store on Qdrant collections. One logical index is one collection.
type Store struct {
	client client
	prefix string
	ef     int
}

// NewStore creates a Qdrant store over gRPC.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	port := cfg.Port
	if port == 0 {
		port = 6334
	}

	c, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &Store{client: c, prefix: cfg.CollectionPrefix, ef: cfg.SearchEF}, nil
}

// Ping performs a single health check.
func (s *Store) Ping(ctx context.Context) error {
	reply, err := s.client.HealthCheck(ctx)
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	if reply == nil || reply.GetTitle() == "" {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("health check returned invalid response")}
	}
	return nil
}

// Close closes the gRPC connection.
func (s *Store) Close() {
	_ = s.client.Close()
}

// WaitForReady retries the health check with exponential backoff until timeout.
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

// CheckHealth reports a single-node status; Qdrant exposes no cluster view over this API.
func (s *Store) CheckHealth(ctx context.Context) (*db.Health, error) {
	if err := s.Ping(ctx); err != nil {
		return &db.Health{Status: "unavailable", ClusterStatus: db.ClusterRed, NodeCount: 0}, err
	}
	return &db.Health{Status: "ok", ClusterStatus: db.ClusterGreen, NodeCount: 1}, nil
}

func (s *Store) collection(index string) string {
	return s.prefix + index
}

func isAlreadyExists(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "already exists")
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "doesn't exist")
}
