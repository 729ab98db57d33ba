package indexing

import (
	"context"

	"github.com/kailas-cloud/mathdex/internal/domain/question"
)

// Repository writes question documents to the index.
type Repository interface {
	Save(ctx context.Context, doc *question.Document) error
	SaveBatch(ctx context.Context, docs []question.Document) error
}

// Embedder produces validated question embeddings.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// IndexEnsurer makes sure the question index exists before writes.
type IndexEnsurer interface {
	CreateIndexIfNotExists(ctx context.Context) error
}
