package index

import (
	"github.com/kailas-cloud/mathdex/internal/db"
	"github.com/kailas-cloud/mathdex/internal/domain"
	"github.com/kailas-cloud/mathdex/internal/domain/question"
)

// buildSchema declares the question index: full-text question, integer answer,
// exact-match keyword metadata, range-filterable score and timestamp, cosine HNSW vector.
// textSearchEnabled drops the TEXT field on backends that cannot index it (valkey-search);
// the text is still stored with the document.
func buildSchema(name string, cfg domain.VectorConfig, textSearchEnabled bool) (*db.IndexDefinition, error) {
	b := db.NewIndex(name)
	if textSearchEnabled {
		b = b.Text(question.FieldText)
	}

	def, err := b.
		Integer(question.FieldAnswer).
		TagCaseSensitive(question.FieldID).
		TagCaseSensitive(question.KeywordFields...).
		Numeric(question.FieldDifficultyScore).
		Date(question.FieldGenerationTimestamp).
		VectorHNSW(cfg.Dimensions, db.DistanceCosine, cfg.HNSWM, cfg.EFConstruction).
		EFRuntime(cfg.EFRuntime).
		Shards(cfg.Shards).
		Replicas(cfg.Replicas).
		Build()
	if err != nil {
		return nil, err //nolint:wrapcheck // builder errors are already descriptive
	}
	return def, nil
}
