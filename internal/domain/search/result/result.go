package result

import "github.com/kailas-cloud/mathdex/internal/domain/question"

// Result is a single similarity hit. Produced by query execution, never persisted.
type Result struct {
	id       string
	text     string
	answer   int
	score    float64
	metadata question.Metadata
}

// New creates a search result.
func New(id, text string, answer int, score float64, md question.Metadata) Result {
	return Result{id: id, text: text, answer: answer, score: score, metadata: md}
}

// ID returns the question identifier.
func (r *Result) ID() string { return r.id }

// Text returns the question text.
func (r *Result) Text() string { return r.text }

// Answer returns the stored answer.
func (r *Result) Answer() int { return r.answer }

// Score returns the raw engine similarity (cosine).
func (r *Result) Score() float64 { return r.score }

// Metadata returns the stored metadata.
func (r *Result) Metadata() question.Metadata { return r.metadata }

// Duplicate describes an existing question that matches a candidate text.
// A nil *Duplicate means no duplicate was found.
type Duplicate struct {
	IsDuplicate bool
	Existing    Result
	Score       float64
}
