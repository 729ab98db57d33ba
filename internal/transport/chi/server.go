package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mathdex/internal/db"
	"github.com/kailas-cloud/mathdex/internal/domain"
	"github.com/kailas-cloud/mathdex/internal/domain/question"
	"github.com/kailas-cloud/mathdex/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/mathdex/internal/logger"
	"github.com/kailas-cloud/mathdex/internal/metrics"
	healthuc "github.com/kailas-cloud/mathdex/internal/usecase/health"
)

const maxBodyBytes = 4 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server exposes search, duplicate detection, indexing and index lifecycle over HTTP.
type Server struct {
	search        Searcher
	duplicates    DuplicateChecker
	indexer       Indexer
	index         IndexManager
	health        HealthReporter
	logger        *zap.Logger
	defaultLimit  int
	maxLimit      int
	maxBatchSize  int
	errorHandlers []errorHandler
}

// Option configures a Server.
type Option func(*Server)

// WithSearchLimits sets the neighbor count used when a request has none, and its upper bound.
func WithSearchLimits(defaultLimit, maxLimit int) Option {
	return func(s *Server) {
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
	}
}

// WithMaxBatchSize caps POST /v1/questions/batch.
func WithMaxBatchSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	duplicates DuplicateChecker,
	indexer Indexer,
	index IndexManager,
	health HealthReporter,
	logger *zap.Logger,
	opts ...Option,
) *Server {
	s := &Server{
		search:       search,
		duplicates:   duplicates,
		indexer:      indexer,
		index:        index,
		health:       health,
		logger:       logger,
		defaultLimit: request.DefaultLimit,
		maxLimit:     request.MaxLimit,
		maxBatchSize: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuestion, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(db.ErrIndexNotFound, http.StatusNotFound, CodeIndexNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProvider),
		sentinelHandler(domain.ErrEmbedding, http.StatusBadGateway, CodeEmbeddingProvider),
		storeErrorHandler,
	}
	return s
}

// Routes builds the chi router with the middleware chain.
// apiKeys enables bearer authentication when non-empty.
func (s *Server) Routes(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/questions", s.IndexQuestion)
		r.Post("/questions/batch", s.IndexQuestions)
		r.Post("/questions/similar", s.FindSimilar)
		r.Get("/questions/similar", s.FindSimilarQuery)
		r.Post("/questions/duplicates", s.CheckDuplicate)

		r.Put("/index", s.CreateIndex)
		r.Delete("/index", s.DeleteIndex)
		r.Get("/index/stats", s.IndexStats)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}

// FindSimilar handles POST /v1/questions/similar.
func (s *Server) FindSimilar(w http.ResponseWriter, r *http.Request) {
	var req SimilarRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.findSimilar(w, r, &req)
}

// FindSimilarQuery handles GET /v1/questions/similar. The query string mirrors the POST body.
func (s *Server) FindSimilarQuery(w http.ResponseWriter, r *http.Request) {
	params, err := bindSimilarParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	req := params.request()
	s.findSimilar(w, r, &req)
}

func (s *Server) findSimilar(w http.ResponseWriter, r *http.Request, req *SimilarRequest) {
	if msg := validateText(req.Text); msg != "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, msg)
		return
	}

	f := req.filter()
	f.Limit = s.clampLimit(f.Limit)

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.search.FindSimilar(ctx, req.Text, f)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]QuestionResult, len(results))
	for i := range results {
		items[i] = questionResultFrom(&results[i])
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, SimilarResponse{Items: items, Total: len(items)})
}

// CheckDuplicate handles POST /v1/questions/duplicates.
func (s *Server) CheckDuplicate(w http.ResponseWriter, r *http.Request) {
	var req DuplicateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateText(req.Text); msg != "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, msg)
		return
	}

	threshold := s.duplicates.DefaultThreshold()
	if req.Threshold != nil {
		if *req.Threshold <= 0 || *req.Threshold > 1 {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "threshold must be in (0, 1]")
			return
		}
		threshold = *req.Threshold
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	dup, err := s.duplicates.Check(ctx, req.Text, req.filter(), threshold)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := DuplicateResponse{Threshold: threshold}
	if dup != nil {
		existing := questionResultFrom(&dup.Existing)
		score := dup.Score
		resp.IsDuplicate = dup.IsDuplicate
		resp.ExistingQuestion = &existing
		resp.SimilarityScore = &score
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, resp)
}

// IndexQuestion handles POST /v1/questions.
func (s *Server) IndexQuestion(w http.ResponseWriter, r *http.Request) {
	var req IndexQuestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	q := req.question()
	ctx, usage := domain.NewContextWithUsage(r.Context())
	id, err := s.indexer.IndexQuestion(ctx, &q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusCreated, IndexQuestionResponse{ID: id})
}

// IndexQuestions handles POST /v1/questions/batch.
func (s *Server) IndexQuestions(w http.ResponseWriter, r *http.Request) {
	var req BatchIndexRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Questions) > s.maxBatchSize {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("batch too large (max %d)", s.maxBatchSize))
		return
	}

	qs := make([]question.Question, len(req.Questions))
	for i := range req.Questions {
		qs[i] = req.Questions[i].question()
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	ids, err := s.indexer.IndexQuestions(ctx, qs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusCreated, BatchIndexResponse{IDs: ids, Count: len(ids)})
}

// CreateIndex handles PUT /v1/index. Creating an existing index succeeds.
func (s *Server) CreateIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.index.CreateIndexIfNotExists(r.Context()); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteIndex handles DELETE /v1/index. Deleting a missing index succeeds.
func (s *Server) DeleteIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.index.DeleteIndex(r.Context()); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// IndexStats handles GET /v1/index/stats.
func (s *Server) IndexStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.index.IndexStats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, IndexStatsResponse{
		Name:          st.Name,
		DocumentCount: st.DocumentCount,
		StorageBytes:  st.StorageBytes,
	})
}

// HealthCheck handles GET /health. Only an unreachable store yields 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:        string(report.Status),
		Checks:        checks,
		ClusterStatus: report.ClusterStatus,
		NodeCount:     report.NodeCount,
	})
}

func (s *Server) clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return s.defaultLimit
	case limit > s.maxLimit:
		return s.maxLimit
	default:
		return limit
	}
}

func validateText(text string) string {
	switch {
	case text == "":
		return "text is required"
	case len(text) > request.MaxQueryLength:
		return fmt.Sprintf("text too long (max %d bytes)", request.MaxQueryLength)
	default:
		return ""
	}
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage == nil || usage.Calls+usage.CacheHits == 0 {
		return
	}
	w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	w.Header().Set("X-Embedding-Calls", strconv.Itoa(usage.Calls))
	w.Header().Set("X-Embedding-Cache-Hits", strconv.Itoa(usage.CacheHits))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Validation errors carry the offending input and are returned in full.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidQuestion) || errors.Is(err, domain.ErrInvalidFilter) {
		return err.Error()
	}
	sentinels := []error{
		db.ErrIndexNotFound,
		domain.ErrEmbeddingProviderError,
		domain.ErrEmbedding,
		db.ErrUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

// storeErrorHandler maps backend failures (*db.Error, db.ErrUnavailable) to 503.
func storeErrorHandler(w http.ResponseWriter, err error) bool {
	var dbErr *db.Error
	if !errors.Is(err, db.ErrUnavailable) && !errors.As(err, &dbErr) {
		return false
	}
	writeError(w, http.StatusServiceUnavailable, CodeStoreUnavailable, "vector store unavailable")
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
