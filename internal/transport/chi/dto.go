package chi

import (
	"time"

	"github.com/kailas-cloud/mathdex/internal/domain/question"
	"github.com/kailas-cloud/mathdex/internal/domain/search/request"
	"github.com/kailas-cloud/mathdex/internal/domain/search/result"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest        = "bad_request"
	CodeValidationFailed  = "validation_failed"
	CodeUnauthorized      = "unauthorized"
	CodeIndexNotFound     = "index_not_found"
	CodeEmbeddingProvider = "embedding_provider_error"
	CodeStoreUnavailable  = "store_unavailable"
	CodeInternalError     = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SimilarRequest is the body of POST /v1/questions/similar.
type SimilarRequest struct {
	Text       string   `json:"text"`
	Grade      *int     `json:"grade,omitempty"`
	Topic      string   `json:"topic,omitempty"`
	Operation  string   `json:"operation,omitempty"`
	ExcludeIDs []string `json:"exclude_ids,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

func (r *SimilarRequest) filter() request.Filter {
	return request.Filter{
		Grade:      r.Grade,
		Topic:      r.Topic,
		Operation:  r.Operation,
		ExcludeIDs: r.ExcludeIDs,
		Limit:      r.Limit,
	}
}

// DuplicateRequest is the body of POST /v1/questions/duplicates.
type DuplicateRequest struct {
	SimilarRequest
	Threshold *float64 `json:"threshold,omitempty"`
}

// MetadataResponse is the stored question metadata.
type MetadataResponse struct {
	Grade               string    `json:"grade"`
	Topic               string    `json:"topic"`
	Operation           string    `json:"operation"`
	Difficulty          string    `json:"difficulty"`
	DifficultyScore     float64   `json:"difficulty_score"`
	Category            string    `json:"category"`
	CurriculumStrand    string    `json:"curriculum_strand"`
	GenerationTimestamp time.Time `json:"generation_timestamp"`
}

// QuestionResult is a single similarity hit.
type QuestionResult struct {
	ID       string           `json:"id"`
	Text     string           `json:"text"`
	Answer   int              `json:"answer"`
	Score    float64          `json:"score"`
	Metadata MetadataResponse `json:"metadata"`
}

// SimilarResponse lists hits in engine order.
type SimilarResponse struct {
	Items []QuestionResult `json:"items"`
	Total int              `json:"total"`
}

// DuplicateResponse reports the best match at or above the threshold.
type DuplicateResponse struct {
	IsDuplicate      bool            `json:"is_duplicate"`
	Threshold        float64         `json:"threshold"`
	ExistingQuestion *QuestionResult `json:"existing_question,omitempty"`
	SimilarityScore  *float64        `json:"similarity_score,omitempty"`
}

// IndexQuestionRequest is the body of POST /v1/questions and one item of a batch.
type IndexQuestionRequest struct {
	ID         string `json:"id,omitempty"`
	Text       string `json:"text"`
	Answer     int    `json:"answer"`
	Operation  string `json:"operation,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

func (r *IndexQuestionRequest) question() question.Question {
	return question.Question{
		ID:         r.ID,
		Text:       r.Text,
		Answer:     r.Answer,
		Operation:  r.Operation,
		Difficulty: r.Difficulty,
	}
}

// IndexQuestionResponse returns the stored question id.
type IndexQuestionResponse struct {
	ID string `json:"id"`
}

// BatchIndexRequest is the body of POST /v1/questions/batch.
type BatchIndexRequest struct {
	Questions []IndexQuestionRequest `json:"questions"`
}

// BatchIndexResponse returns ids in input order.
type BatchIndexResponse struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

// IndexStatsResponse is the body of GET /v1/index/stats.
type IndexStatsResponse struct {
	Name          string `json:"name"`
	DocumentCount int64  `json:"document_count"`
	StorageBytes  int64  `json:"storage_bytes"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string            `json:"status"`
	Checks        map[string]string `json:"checks"`
	ClusterStatus string            `json:"cluster_status,omitempty"`
	NodeCount     int               `json:"node_count,omitempty"`
}

func questionResultFrom(r *result.Result) QuestionResult {
	md := r.Metadata()
	return QuestionResult{
		ID:     r.ID(),
		Text:   r.Text(),
		Answer: r.Answer(),
		Score:  r.Score(),
		Metadata: MetadataResponse{
			Grade:               md.Grade,
			Topic:               md.Topic,
			Operation:           md.Operation,
			Difficulty:          md.Difficulty,
			DifficultyScore:     md.DifficultyScore,
			Category:            md.Category,
			CurriculumStrand:    md.CurriculumStrand,
			GenerationTimestamp: md.GenerationTimestamp,
		},
	}
}
