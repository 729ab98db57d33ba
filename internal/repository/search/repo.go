package search

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/mathdex/internal/db"
	"github.com/kailas-cloud/mathdex/internal/domain/question"
	"github.com/kailas-cloud/mathdex/internal/domain/search/filter"
	"github.com/kailas-cloud/mathdex/internal/domain/search/result"
)

// returnFields are the stored question fields loaded with every hit; the vector is never returned.
var returnFields = []string{
	question.FieldID,
	question.FieldText,
	question.FieldAnswer,
	question.FieldGrade,
	question.FieldTopic,
	question.FieldOperation,
	question.FieldDifficulty,
	question.FieldDifficultyScore,
	question.FieldCategory,
	question.FieldCurriculumStrand,
	question.FieldGenerationTimestamp,
}

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository on one index.
type Repo struct {
	store store
	index string
}

// New creates a search repository.
func New(s store, index string) *Repo {
	return &Repo{store: s, index: index}
}

// SearchKNN returns up to k nearest questions in engine order.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, filters filter.Expression, k int,
) ([]result.Result, error) {
	q := &db.KNNQuery{
		IndexName:    r.index,
		Filters:      filters,
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.index, err)
	}

	return parseKNNResults(sr), nil
}

// parseKNNResults converts db.SearchResult into []result.Result keeping the engine order.
func parseKNNResults(sr *db.SearchResult) []result.Result {
	if sr == nil || len(sr.Entries) == 0 {
		return []result.Result{}
	}
	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		results = append(results, parseEntryFields(entry))
	}
	return results
}

// parseEntryFields maps stored string fields back to a result. Malformed numbers decode as zero.
func parseEntryFields(entry db.SearchEntry) result.Result {
	f := entry.Fields

	id := entry.ID
	if id == "" {
		id = f[question.FieldID]
	}
	answer, _ := strconv.Atoi(f[question.FieldAnswer])
	score, _ := strconv.ParseFloat(f[question.FieldDifficultyScore], 64)

	md := question.Metadata{
		Grade:            f[question.FieldGrade],
		Topic:            f[question.FieldTopic],
		Operation:        f[question.FieldOperation],
		Difficulty:       f[question.FieldDifficulty],
		DifficultyScore:  score,
		Category:         f[question.FieldCategory],
		CurriculumStrand: f[question.FieldCurriculumStrand],
	}
	if ms, err := strconv.ParseInt(f[question.FieldGenerationTimestamp], 10, 64); err == nil {
		md.GenerationTimestamp = time.UnixMilli(ms).UTC()
	}

	return result.New(id, f[question.FieldText], answer, entry.Score, md)
}
