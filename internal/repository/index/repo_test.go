package index

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/mathdex/internal/db"
	"github.com/kailas-cloud/mathdex/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	createIndexFn      func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn        func(ctx context.Context, name string) error
	indexExistsFn      func(ctx context.Context, name string) (bool, error)
	indexStatsFn       func(ctx context.Context, name string) (*db.IndexStats, error)
	supportsTextSearch bool
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) IndexStats(ctx context.Context, name string) (*db.IndexStats, error) {
	if m.indexStatsFn != nil {
		return m.indexStatsFn(ctx, name)
	}
	return &db.IndexStats{}, nil
}

func (m *mockStore) SupportsTextSearch(_ context.Context) bool { return m.supportsTextSearch }

func fieldTypes(def *db.IndexDefinition) map[string]db.IndexFieldType {
	out := make(map[string]db.IndexFieldType, len(def.Fields))
	for _, f := range def.Fields {
		out[f.Name] = f.Type
	}
	return out
}

func TestCreate_Schema(t *testing.T) {
	var got *db.IndexDefinition
	ms := &mockStore{
		supportsTextSearch: true,
		createIndexFn: func(_ context.Context, def *db.IndexDefinition) error {
			got = def
			return nil
		},
	}
	r := New(ms, "math_questions", domain.DefaultVectorConfig())

	if err := r.Create(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "math_questions" {
		t.Fatalf("expected name math_questions, got %q", got.Name)
	}

	types := fieldTypes(got)
	want := map[string]db.IndexFieldType{
		"question_text":        db.IndexFieldText,
		"answer":               db.IndexFieldInteger,
		"question_id":          db.IndexFieldTag,
		"grade":                db.IndexFieldTag,
		"topic":                db.IndexFieldTag,
		"operation":            db.IndexFieldTag,
		"difficulty":           db.IndexFieldTag,
		"category":             db.IndexFieldTag,
		"curriculum_strand":    db.IndexFieldTag,
		"difficulty_score":     db.IndexFieldNumeric,
		"generation_timestamp": db.IndexFieldDate,
		"embedding":            db.IndexFieldVector,
	}
	if len(types) != len(want) {
		t.Fatalf("expected %d fields, got %d: %v", len(want), len(types), types)
	}
	for name, ft := range want {
		if types[name] != ft {
			t.Errorf("field %s: expected %s, got %s", name, ft, types[name])
		}
	}

	vf := got.VectorField()
	if vf.VectorDim != 768 || vf.VectorDistance != db.DistanceCosine || vf.VectorAlgo != db.VectorHNSW {
		t.Fatalf("unexpected vector field: %+v", vf)
	}
	if vf.VectorM != 16 || vf.VectorEFConstruct != 100 {
		t.Fatalf("unexpected HNSW params: M=%d EF=%d", vf.VectorM, vf.VectorEFConstruct)
	}
	if got.Settings.Shards != 1 || got.Settings.Replicas != 0 || got.Settings.EFRuntime != 100 {
		t.Fatalf("unexpected settings: %+v", got.Settings)
	}
}

func TestCreate_KeywordFieldsCaseSensitive(t *testing.T) {
	var got *db.IndexDefinition
	ms := &mockStore{
		supportsTextSearch: true,
		createIndexFn: func(_ context.Context, def *db.IndexDefinition) error {
			got = def
			return nil
		},
	}
	r := New(ms, "math_questions", domain.DefaultVectorConfig())

	if err := r.Create(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tags := 0
	for _, f := range got.Fields {
		if f.Type != db.IndexFieldTag {
			continue
		}
		tags++
		if !f.TagCaseSensitive {
			t.Errorf("keyword field %s must match case-sensitively", f.Name)
		}
	}
	if tags != 7 {
		t.Errorf("expected 7 keyword fields, got %d", tags)
	}
}

func TestCreate_NoTextSearch(t *testing.T) {
	var got *db.IndexDefinition
	ms := &mockStore{
		createIndexFn: func(_ context.Context, def *db.IndexDefinition) error {
			got = def
			return nil
		},
	}
	r := New(ms, "q", domain.DefaultVectorConfig())
	if err := r.Create(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := fieldTypes(got)["question_text"]; ok {
		t.Fatal("expected no TEXT field when backend lacks text search")
	}
}

func TestCreate_CustomHNSW(t *testing.T) {
	var got *db.IndexDefinition
	ms := &mockStore{
		createIndexFn: func(_ context.Context, def *db.IndexDefinition) error {
			got = def
			return nil
		},
	}
	cfg := domain.VectorConfig{Dimensions: 384, HNSWM: 32, EFConstruction: 200, EFRuntime: 50}
	if err := New(ms, "q", cfg).Create(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vf := got.VectorField()
	if vf.VectorDim != 384 || vf.VectorM != 32 || vf.VectorEFConstruct != 200 || got.Settings.EFRuntime != 50 {
		t.Fatalf("custom HNSW config not applied: %+v %+v", vf, got.Settings)
	}
}

func TestCreate_ZeroConfigUsesDefaults(t *testing.T) {
	r := New(&mockStore{}, "q", domain.VectorConfig{})
	if r.vector.Dimensions != 768 || r.vector.HNSWM != 16 || r.vector.EFConstruction != 100 || r.vector.EFRuntime != 100 {
		t.Fatalf("defaults not applied: %+v", r.vector)
	}
}

func TestCreate_ExistsPassesThrough(t *testing.T) {
	ms := &mockStore{
		createIndexFn: func(context.Context, *db.IndexDefinition) error { return db.ErrIndexExists },
	}
	err := New(ms, "q", domain.DefaultVectorConfig()).Create(context.Background())
	if !errors.Is(err, db.ErrIndexExists) {
		t.Fatalf("expected ErrIndexExists, got %v", err)
	}
}

func TestCreate_InvalidName(t *testing.T) {
	err := New(&mockStore{}, "bad:name", domain.DefaultVectorConfig()).Create(context.Background())
	if err == nil {
		t.Fatal("expected schema error for invalid name")
	}
}

func TestExistsDropStats(t *testing.T) {
	var dropped string
	ms := &mockStore{
		indexExistsFn: func(_ context.Context, name string) (bool, error) { return name == "q", nil },
		dropIndexFn: func(_ context.Context, name string) error {
			dropped = name
			return nil
		},
		indexStatsFn: func(context.Context, string) (*db.IndexStats, error) {
			return &db.IndexStats{NumDocs: 12, SizeBytes: 4096}, nil
		},
	}
	r := New(ms, "q", domain.DefaultVectorConfig())
	ctx := context.Background()

	ok, err := r.Exists(ctx)
	if err != nil || !ok {
		t.Fatalf("expected exists, got %v %v", ok, err)
	}
	if err := r.Drop(ctx); err != nil || dropped != "q" {
		t.Fatalf("unexpected drop: %q %v", dropped, err)
	}
	stats, err := r.Stats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Name != "q" || stats.DocumentCount != 12 || stats.StorageBytes != 4096 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestErrorsAreWrapped(t *testing.T) {
	boom := errors.New("boom")
	ms := &mockStore{
		indexExistsFn: func(context.Context, string) (bool, error) { return false, boom },
		dropIndexFn:   func(context.Context, string) error { return db.ErrIndexNotFound },
		indexStatsFn:  func(context.Context, string) (*db.IndexStats, error) { return nil, boom },
	}
	r := New(ms, "q", domain.DefaultVectorConfig())
	ctx := context.Background()

	if _, err := r.Exists(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if err := r.Drop(ctx); !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
	if _, err := r.Stats(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
