package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/mathdex/internal/domain"
	"github.com/kailas-cloud/mathdex/internal/domain/question"
	"github.com/kailas-cloud/mathdex/internal/domain/search/filter"
	"github.com/kailas-cloud/mathdex/internal/domain/search/request"
	"github.com/kailas-cloud/mathdex/internal/domain/search/result"
)

// --- Mocks ---

type mockRepo struct {
	gotVector []float32
	gotExpr   filter.Expression
	gotK      int
	calls     int
	results   []result.Result
	err       error
}

func (m *mockRepo) SearchKNN(
	_ context.Context, vector []float32, filters filter.Expression, k int,
) ([]result.Result, error) {
	m.calls++
	m.gotVector = vector
	m.gotExpr = filters
	m.gotK = k
	return m.results, m.err
}

type mockEmbedder struct {
	vec   []float32
	err   error
	texts []string
}

func (m *mockEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	m.texts = append(m.texts, text)
	return m.vec, m.err
}

func intPtr(v int) *int { return &v }

// --- Tests ---

func TestFindSimilar_DefaultLimit(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{vec: []float32{0.1, 0.2}}
	svc := New(repo, emb)

	if _, err := svc.FindSimilar(context.Background(), "What is 5 + 3?", request.Filter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.gotK != 10 {
		t.Fatalf("expected default limit 10, got %d", repo.gotK)
	}
	if !repo.gotExpr.IsEmpty() {
		t.Fatalf("expected empty filter, got %+v", repo.gotExpr)
	}
	if len(emb.texts) != 1 || emb.texts[0] != "What is 5 + 3?" {
		t.Fatalf("unexpected embed calls: %v", emb.texts)
	}
	if len(repo.gotVector) != 2 {
		t.Fatalf("expected query vector to be forwarded, got %v", repo.gotVector)
	}
}

func TestFindSimilar_FiltersAndLimit(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, &mockEmbedder{vec: []float32{1}})

	f := request.Filter{
		Grade:      intPtr(3),
		Topic:      "addition",
		ExcludeIDs: []string{"q_1", "q_2"},
		Limit:      5,
	}
	if _, err := svc.FindSimilar(context.Background(), "x", f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.gotK != 5 {
		t.Fatalf("expected limit 5, got %d", repo.gotK)
	}

	must := repo.gotExpr.Must()
	if len(must) != 2 || must[0].Key() != question.FieldGrade || must[0].Values()[0] != "3" ||
		must[1].Key() != question.FieldTopic {
		t.Fatalf("unexpected must conditions: %+v", must)
	}
	mustNot := repo.gotExpr.MustNot()
	if len(mustNot) != 1 || mustNot[0].Key() != question.FieldID || len(mustNot[0].Values()) != 2 {
		t.Fatalf("unexpected must_not conditions: %+v", mustNot)
	}
}

func TestFindSimilar_KeepsEngineOrder(t *testing.T) {
	repo := &mockRepo{results: []result.Result{
		result.New("a", "A", 1, 0.5, question.Metadata{}),
		result.New("b", "B", 2, 0.9, question.Metadata{}),
	}}
	res, err := New(repo, &mockEmbedder{vec: []float32{1}}).FindSimilar(context.Background(), "x", request.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res[0].ID() != "a" || res[1].ID() != "b" || res[0].Score() != 0.5 {
		t.Fatalf("results must not be re-sorted or rescored: %v", res)
	}
}

func TestFindSimilar_EmbeddingError(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, &mockEmbedder{err: domain.ErrEmbedding})

	_, err := svc.FindSimilar(context.Background(), "x", request.Filter{})
	if !errors.Is(err, domain.ErrSearch) {
		t.Fatalf("expected ErrSearch, got %v", err)
	}
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding cause, got %v", err)
	}
	if repo.calls != 0 {
		t.Fatal("search must not run without a vector")
	}
}

func TestFindSimilarByEmbedding_StoreError(t *testing.T) {
	boom := errors.New("connection reset")
	svc := New(&mockRepo{err: boom}, &mockEmbedder{})

	_, err := svc.FindSimilarByEmbedding(context.Background(), []float32{1}, request.Filter{})
	if !errors.Is(err, domain.ErrSearch) || !errors.Is(err, boom) {
		t.Fatalf("expected ErrSearch wrapping cause, got %v", err)
	}
}

func TestFindSimilarByEmbedding_InvalidFilter(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, &mockEmbedder{})

	_, err := svc.FindSimilarByEmbedding(context.Background(), []float32{1}, request.Filter{Grade: intPtr(-1)})
	if !errors.Is(err, domain.ErrSearch) || !errors.Is(err, domain.ErrInvalidFilter) {
		t.Fatalf("expected ErrSearch + ErrInvalidFilter, got %v", err)
	}
	if repo.calls != 0 {
		t.Fatal("search must not run with an invalid filter")
	}
}

func TestFindSimilarByEmbedding_ClampsLimit(t *testing.T) {
	repo := &mockRepo{}
	if _, err := New(repo, &mockEmbedder{}).FindSimilarByEmbedding(
		context.Background(), []float32{1}, request.Filter{Limit: 1000},
	); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.gotK != request.MaxLimit {
		t.Fatalf("expected limit clamped to %d, got %d", request.MaxLimit, repo.gotK)
	}
}
