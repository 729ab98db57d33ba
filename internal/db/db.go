package db

import (
	"context"
	"time"
)

// Store is the vector store facade combining all sub-interfaces.
// Index names are logical; each backend maps them to its own namespace.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	IndexManager
	DocumentWriter
	Searcher
	HealthChecker
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexStats(ctx context.Context, name string) (*IndexStats, error)
	SupportsTextSearch(ctx context.Context) bool
}

// DocumentWriter writes vector documents into an index.
type DocumentWriter interface {
	IndexDocument(ctx context.Context, index string, doc *Document) error
	// BulkIndex writes docs in one backend round trip. On failure it returns
	// a *BulkError naming the first failed document.
	BulkIndex(ctx context.Context, index string, docs []Document) error
}

// Searcher provides nearest-neighbor search.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}

// HealthChecker reports backend status.
type HealthChecker interface {
	CheckHealth(ctx context.Context) (*Health, error)
}

// Cluster status values reported by CheckHealth.
const (
	ClusterGreen  = "green"
	ClusterYellow = "yellow"
	ClusterRed    = "red"
)

// Health is a backend status snapshot.
type Health struct {
	Status        string // "ok" or "unavailable"
	ClusterStatus string
	NodeCount     int
}

// IndexStats is the index introspection result.
type IndexStats struct {
	NumDocs   int64
	SizeBytes int64
}
