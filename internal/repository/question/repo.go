package question

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/mathdex/internal/db"
	domq "github.com/kailas-cloud/mathdex/internal/domain/question"
)

// store is the consumer interface for question writes (ISP).
type store interface {
	IndexDocument(ctx context.Context, index string, doc *db.Document) error
	BulkIndex(ctx context.Context, index string, docs []db.Document) error
}

// Repo implements usecase/indexing.Repository on one index.
type Repo struct {
	store store
	index string
}

// New creates a question repository.
func New(s store, index string) *Repo {
	return &Repo{store: s, index: index}
}

// Save writes one question document.
func (r *Repo) Save(ctx context.Context, doc *domq.Document) error {
	d := toDBDocument(doc)
	if err := r.store.IndexDocument(ctx, r.index, &d); err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID(), err)
	}
	return nil
}

// SaveBatch writes documents in one bulk call. A failure unwraps to *db.BulkError
// whose Position matches the input slice.
func (r *Repo) SaveBatch(ctx context.Context, docs []domq.Document) error {
	if len(docs) == 0 {
		return nil
	}
	out := make([]db.Document, len(docs))
	for i := range docs {
		out[i] = toDBDocument(&docs[i])
	}
	if err := r.store.BulkIndex(ctx, r.index, out); err != nil {
		return fmt.Errorf("bulk index %d documents: %w", len(docs), err)
	}
	return nil
}

// toDBDocument flattens a question into the stored field set.
func toDBDocument(doc *domq.Document) db.Document {
	md := doc.Metadata()
	return db.Document{
		ID:     doc.ID(),
		Vector: doc.Embedding(),
		Fields: map[string]any{
			domq.FieldID:                  doc.ID(),
			domq.FieldText:                doc.Text(),
			domq.FieldAnswer:              doc.Answer(),
			domq.FieldGrade:               md.Grade,
			domq.FieldTopic:               md.Topic,
			domq.FieldOperation:           md.Operation,
			domq.FieldDifficulty:          md.Difficulty,
			domq.FieldDifficultyScore:     md.DifficultyScore,
			domq.FieldCategory:            md.Category,
			domq.FieldCurriculumStrand:    md.CurriculumStrand,
			domq.FieldGenerationTimestamp: md.GenerationTimestamp,
		},
	}
}
