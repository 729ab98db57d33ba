package mathdex

import (
	"time"

	"github.com/kailas-cloud/mathdex/internal/domain"
	"github.com/kailas-cloud/mathdex/internal/domain/question"
	"github.com/kailas-cloud/mathdex/internal/domain/search/result"
)

// Question is one generated math question to index.
type Question struct {
	ID         string // optional; generated when empty
	Text       string
	Answer     int
	Operation  string // e.g. "addition"
	Difficulty string // e.g. "grade_3" or "easy"
}

// Metadata is the filterable description stored with each question.
type Metadata struct {
	Grade               string
	Topic               string
	Operation           string
	Difficulty          string
	DifficultyScore     float64
	Category            string
	CurriculumStrand    string
	GenerationTimestamp time.Time
}

// Hit is one similarity search result.
type Hit struct {
	ID       string
	Text     string
	Answer   int
	Score    float64 // cosine similarity, higher is closer
	Metadata Metadata
}

// Duplicate is the closest existing question at or above the threshold.
type Duplicate struct {
	Existing Hit
	Score    float64
}

// IndexStats describes the question index size.
type IndexStats struct {
	Name          string
	DocumentCount int64
	StorageBytes  int64
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status        string            // "ok", "degraded", "error"
	Checks        map[string]string // component -> "ok"/"error"/"missing"
	ClusterStatus string
	NodeCount     int
}

// CacheStats reports embedding cache occupancy.
type CacheStats struct {
	Size    int
	MaxSize int
}

func toDomainQuestion(q Question) question.Question {
	return question.Question{
		ID:         q.ID,
		Text:       q.Text,
		Answer:     q.Answer,
		Operation:  q.Operation,
		Difficulty: q.Difficulty,
	}
}

func fromMetadata(md question.Metadata) Metadata {
	return Metadata{
		Grade:               md.Grade,
		Topic:               md.Topic,
		Operation:           md.Operation,
		Difficulty:          md.Difficulty,
		DifficultyScore:     md.DifficultyScore,
		Category:            md.Category,
		CurriculumStrand:    md.CurriculumStrand,
		GenerationTimestamp: md.GenerationTimestamp,
	}
}

func fromResult(r *result.Result) Hit {
	return Hit{
		ID:       r.ID(),
		Text:     r.Text(),
		Answer:   r.Answer(),
		Score:    r.Score(),
		Metadata: fromMetadata(r.Metadata()),
	}
}

func fromResults(rs []result.Result) []Hit {
	hits := make([]Hit, len(rs))
	for i := range rs {
		hits[i] = fromResult(&rs[i])
	}
	return hits
}

func fromStats(s domain.IndexStats) IndexStats {
	return IndexStats{
		Name:          s.Name,
		DocumentCount: s.DocumentCount,
		StorageBytes:  s.StorageBytes,
	}
}
