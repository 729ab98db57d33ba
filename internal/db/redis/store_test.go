package redis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/mathdex/internal/db"
	"github.com/kailas-cloud/mathdex/internal/domain/search/filter"
)

func questionIndex() *db.IndexDefinition {
	return db.NewIndex("q").
		Text("question_text").
		Integer("answer").
		TagCaseSensitive("question_id", "grade").
		Tag("topic").
		Numeric("difficulty_score").
		Date("generation_timestamp").
		VectorHNSW(4, db.DistanceCosine, 16, 100).
		EFRuntime(50).
		MustBuild()
}

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c, FlavorRedis)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, FlavorRedis)
	err := s.Ping(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpPing {
		t.Errorf("expected db.Error with op PING, got %v", err)
	}
}

func TestNewStore_Validation(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Error("expected error for missing addrs")
	}
	if _, err := NewStore(Config{Addrs: []string{"localhost:6379"}, Flavor: "memcached"}); err == nil {
		t.Error("expected error for unknown flavor")
	}
}

func TestNames(t *testing.T) {
	s := NewStoreForTest(nil, FlavorRedis)
	if got := s.ftName("q"); got != "mathdex:q:idx" {
		t.Errorf("ftName = %q", got)
	}
	if got := s.docKey("q", "q_1"); got != "mathdex:q:q_1" {
		t.Errorf("docKey = %q", got)
	}
}

// --- index.go tests ---

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var got []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			got = cmd
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c, FlavorRedis)
	if err := s.CreateIndex(context.Background(), questionIndex()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(got, " ")
	for _, want := range []string{
		"FT.CREATE mathdex:q:idx ON HASH PREFIX 1 mathdex:q: SCHEMA",
		"question_text TEXT",
		"answer NUMERIC",
		"question_id TAG CASESENSITIVE",
		"grade TAG CASESENSITIVE",
		"topic TAG difficulty_score NUMERIC",
		"generation_timestamp NUMERIC",
		"embedding VECTOR HNSW 12 TYPE FLOAT32 DIM 4 DISTANCE_METRIC COSINE M 16 EF_CONSTRUCTION 100 EF_RUNTIME 50",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("FT.CREATE missing %q in %q", want, joined)
		}
	}
}

func TestCreateIndex_ValkeySkipsText(t *testing.T) {
	s := NewStoreForTest(nil, FlavorValkey)
	args, err := s.buildCreateArgs(questionIndex())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	joined := strings.Join(args, " ")
	if strings.Contains(joined, "TEXT") {
		t.Errorf("valkey schema must not contain TEXT: %q", joined)
	}
	if !strings.Contains(joined, "grade TAG") {
		t.Errorf("expected tag fields: %q", joined)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c, FlavorRedis)
	err := s.CreateIndex(context.Background(), questionIndex())
	if !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestCreateIndex_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, FlavorRedis)
	err := s.CreateIndex(context.Background(), questionIndex())
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestCreateIndex_InvalidDefinition(t *testing.T) {
	s := NewStoreForTest(nil, FlavorRedis)
	err := s.CreateIndex(context.Background(), &db.IndexDefinition{Name: "q"})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDropIndex_Redis(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "mathdex:q:idx", "DD")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c, FlavorRedis)
	if err := s.DropIndex(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDropIndex_ValkeyPurgesKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.DROPINDEX", "mathdex:q:idx")).
			Return(mock.Result(mock.RedisString("OK"))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SCAN", "0", "MATCH", "mathdex:q:*", "COUNT", "500")).
			Return(mock.Result(mock.RedisArray(
				mock.RedisString("0"),
				mock.RedisArray(mock.RedisString("mathdex:q:a"), mock.RedisString("mathdex:q:b")),
			))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("UNLINK", "mathdex:q:a", "mathdex:q:b")).
			Return(mock.Result(mock.RedisInt64(2))),
	)

	s := NewStoreForTest(c, FlavorValkey)
	if err := s.DropIndex(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDropIndex_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "mathdex:q:idx", "DD")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c, FlavorRedis)
	err := s.DropIndex(context.Background(), "q")
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestIndexExists_True(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "mathdex:q:idx")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("mathdex:q:idx"))))

	s := NewStoreForTest(c, FlavorRedis)
	exists, err := s.IndexExists(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected true")
	}
}

func TestIndexExists_False(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "mathdex:q:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c, FlavorRedis)
	exists, err := s.IndexExists(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected false")
	}
}

func TestIndexExists_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "mathdex:q:idx")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, FlavorRedis)
	if _, err := s.IndexExists(context.Background(), "q"); !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestSupportsTextSearch(t *testing.T) {
	if !NewStoreForTest(nil, FlavorRedis).SupportsTextSearch(context.Background()) {
		t.Error("redis flavor should support text search")
	}
	if NewStoreForTest(nil, FlavorValkey).SupportsTextSearch(context.Background()) {
		t.Error("valkey flavor should not support text search")
	}
}

func TestBuildFieldArgs_Errors(t *testing.T) {
	s := NewStoreForTest(nil, FlavorRedis)

	if _, err := s.buildFieldArgs(&db.IndexField{Name: "", Type: db.IndexFieldTag}, db.IndexSettings{}); err == nil {
		t.Error("expected error for empty field name")
	}
	if _, err := s.buildFieldArgs(&db.IndexField{Name: "f", Type: db.IndexFieldType(99)}, db.IndexSettings{}); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := buildVectorFieldArgs(&db.IndexField{Name: "f", Type: db.IndexFieldVector}, 0); err == nil {
		t.Error("expected error for zero vector dim")
	}
}

// --- info.go tests ---

func TestIndexStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "mathdex:q:idx")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString("index_name"), mock.RedisString("mathdex:q:idx"),
			mock.RedisString("attributes"), mock.RedisArray(mock.RedisString("grade")),
			mock.RedisString("num_docs"), mock.RedisString("42"),
			mock.RedisString("inverted_sz_mb"), mock.RedisString("1"),
			mock.RedisString("vector_index_sz_mb"), mock.RedisString("0.5"),
			mock.RedisString("doc_table_size_mb"), mock.RedisString("nan"),
		)))

	s := NewStoreForTest(c, FlavorRedis)
	stats, err := s.IndexStats(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.NumDocs != 42 {
		t.Errorf("expected 42 docs, got %d", stats.NumDocs)
	}
	if stats.SizeBytes != 1572864 {
		t.Errorf("expected 1.5MB in bytes, got %d", stats.SizeBytes)
	}
}

func TestIndexStats_IntegerReplies(t *testing.T) {
	raw := []rueidis.RedisMessage{
		mock.RedisString("num_docs"), mock.RedisInt64(7),
		mock.RedisString("space_usage"), mock.RedisInt64(2048),
	}
	stats := parseIndexInfo(raw)
	if stats.NumDocs != 7 || stats.SizeBytes != 2048 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestIndexStats_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "mathdex:q:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c, FlavorRedis)
	if _, err := s.IndexStats(context.Background(), "q"); !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

// --- health.go tests ---

func TestCheckHealth(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().Nodes().Return(map[string]rueidis.Client{"127.0.0.1:6379": c})
	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c, FlavorRedis)
	h, err := s.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Status != "ok" || h.ClusterStatus != db.ClusterGreen || h.NodeCount != 1 {
		t.Errorf("unexpected health: %+v", h)
	}
}

func TestCheckHealth_Down(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().Nodes().Return(map[string]rueidis.Client{"127.0.0.1:6379": c})
	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, FlavorRedis)
	h, err := s.CheckHealth(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if h.Status != "unavailable" || h.ClusterStatus != db.ClusterRed {
		t.Errorf("unexpected health: %+v", h)
	}
}

// --- document.go tests ---

func TestIndexDocument_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var got []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			got = cmd
			return cmd[0] == "HSET" && cmd[1] == "mathdex:q:q_1"
		})).
		Return(mock.Result(mock.RedisInt64(3)))

	s := NewStoreForTest(c, FlavorRedis)
	err := s.IndexDocument(context.Background(), "q", &db.Document{
		ID:     "q_1",
		Vector: []float32{1, 0},
		Fields: map[string]any{"answer": 8, "grade": "3"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fields := make(map[string]string)
	for i := 2; i+1 < len(got); i += 2 {
		fields[got[i]] = got[i+1]
	}
	if fields["answer"] != "8" || fields["grade"] != "3" {
		t.Errorf("unexpected fields: %v", fields)
	}
	if fields[db.VectorField] != vectorToBytes([]float32{1, 0}) {
		t.Error("expected vector blob in hash")
	}
}

func TestIndexDocument_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, FlavorRedis)
	err := s.IndexDocument(context.Background(), "q", &db.Document{ID: "q_1", Fields: map[string]any{"a": "b"}})
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestIndexDocument_EmptyID(t *testing.T) {
	s := NewStoreForTest(nil, FlavorRedis)
	if err := s.IndexDocument(context.Background(), "q", &db.Document{}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestBulkIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(2)),
			mock.Result(mock.RedisInt64(2)),
		})

	s := NewStoreForTest(c, FlavorRedis)
	err := s.BulkIndex(context.Background(), "q", []db.Document{
		{ID: "a", Vector: []float32{1}, Fields: map[string]any{"grade": "1"}},
		{ID: "b", Vector: []float32{2}, Fields: map[string]any{"grade": "2"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBulkIndex_ReportsFailedItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(2)),
			mock.Result(mock.RedisError("OOM command not allowed")),
		})

	s := NewStoreForTest(c, FlavorRedis)
	err := s.BulkIndex(context.Background(), "q", []db.Document{
		{ID: "a", Vector: []float32{1}},
		{ID: "b", Vector: []float32{2}},
	})

	var bulkErr *db.BulkError
	if !errors.As(err, &bulkErr) {
		t.Fatalf("expected BulkError, got %v", err)
	}
	if bulkErr.Position != 1 || bulkErr.ID != "b" {
		t.Errorf("unexpected failed item: %+v", bulkErr)
	}
}

func TestBulkIndex_Empty(t *testing.T) {
	s := NewStoreForTest(nil, FlavorRedis)
	if err := s.BulkIndex(context.Background(), "q", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- search.go tests ---

func TestSearchKNN_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("mathdex:q:q_1"),
			mock.RedisArray(
				mock.RedisString(scoreField), mock.RedisString("0.1"),
				mock.RedisString("question_text"), mock.RedisString("What is 5 + 3?"),
			),
			mock.RedisString("mathdex:q:q_2"),
			mock.RedisArray(
				mock.RedisString(scoreField), mock.RedisString("1.2"),
			),
		)))

	s := NewStoreForTest(c, FlavorRedis)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "q",
		Vector:    []float32{0.1, 0.2},
		K:         10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
	first := result.Entries[0]
	if first.ID != "q_1" {
		t.Errorf("expected id q_1, got %s", first.ID)
	}
	// cosine distance 0.1 maps to similarity 0.9
	if first.Score < 0.89 || first.Score > 0.91 {
		t.Errorf("expected score ~0.9, got %f", first.Score)
	}
	if _, ok := first.Fields[scoreField]; ok {
		t.Error("score field should be removed from fields")
	}
	if first.Fields["question_text"] != "What is 5 + 3?" {
		t.Errorf("unexpected fields: %v", first.Fields)
	}
	// opposite-ish vectors keep a negative similarity
	if result.Entries[1].Score > -0.19 || result.Entries[1].Score < -0.21 {
		t.Errorf("expected score ~-0.2, got %f", result.Entries[1].Score)
	}
}

func TestSearchKNN_Args(t *testing.T) {
	expr, _ := filter.NewExpression(
		[]filter.Condition{mustMatch(t, "grade", "3"), mustMatch(t, "topic", "addition")},
		[]filter.Condition{mustMatchAny(t, "question_id", "q_1", "q-2")},
	)
	q := &db.KNNQuery{
		IndexName:    "q",
		Filters:      expr,
		Vector:       []float32{1, 0},
		K:            20,
		ReturnFields: []string{"question_text"},
	}

	redisArgs := strings.Join(NewStoreForTest(nil, FlavorRedis).buildKNNArgs(q), " ")
	for _, want := range []string{
		`mathdex:q:idx (@grade:{3} @topic:{addition} -@question_id:{q_1 | q\-2})=>[KNN 20 @embedding $BLOB]`,
		"RETURN 2 question_text " + scoreField,
		"SORTBY " + scoreField,
		"LIMIT 0 20",
		"DIALECT 2",
	} {
		if !strings.Contains(redisArgs, want) {
			t.Errorf("redis args missing %q in %q", want, redisArgs)
		}
	}

	valkeyArgs := strings.Join(NewStoreForTest(nil, FlavorValkey).buildKNNArgs(q), " ")
	if strings.Contains(valkeyArgs, "SORTBY") {
		t.Errorf("valkey args must not contain SORTBY: %q", valkeyArgs)
	}
}

func TestSearchKNN_NoFilter(t *testing.T) {
	q := &db.KNNQuery{IndexName: "q", Vector: []float32{1}, K: 10}
	args := NewStoreForTest(nil, FlavorRedis).buildKNNArgs(q)
	if args[1] != "*=>[KNN 10 @embedding $BLOB]" {
		t.Errorf("unexpected query: %q", args[1])
	}
}

func TestSearchKNN_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c, FlavorRedis)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{IndexName: "q", Vector: []float32{0.1}, K: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(result.Entries))
	}
}

func TestSearchKNN_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, FlavorRedis)
	_, err := s.SearchKNN(context.Background(), &db.KNNQuery{IndexName: "q", Vector: []float32{0.1}, K: 10})
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestSearchKNN_UnknownIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisError("mathdex:q:idx: no such index")))

	s := NewStoreForTest(c, FlavorRedis)
	_, err := s.SearchKNN(context.Background(), &db.KNNQuery{IndexName: "q", Vector: []float32{0.1}, K: 10})
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestSearchKNN_Validation(t *testing.T) {
	s := NewStoreForTest(nil, FlavorRedis)
	ctx := context.Background()

	if _, err := s.SearchKNN(ctx, &db.KNNQuery{Vector: []float32{0.1}, K: 10}); err == nil {
		t.Error("expected error for empty index name")
	}
	if _, err := s.SearchKNN(ctx, &db.KNNQuery{IndexName: "q", K: 10}); err == nil {
		t.Error("expected error for empty vector")
	}
	if _, err := s.SearchKNN(ctx, &db.KNNQuery{IndexName: "q", Vector: []float32{0.1}, K: 0}); err == nil {
		t.Error("expected error for k=0")
	}
}

// --- filter tests ---

func TestBuildFilter_Empty(t *testing.T) {
	if got := buildFilter(filter.Expression{}); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestBuildFilter_Numeric(t *testing.T) {
	lo, hi := 0.2, 0.5
	r, _ := filter.NewRangeFilter(nil, &lo, &hi, nil)
	c, _ := filter.NewRange("difficulty_score", r)
	expr, _ := filter.NewExpression([]filter.Condition{c}, nil)

	if got := buildFilter(expr); got != "@difficulty_score:[0.2 (0.5]" {
		t.Errorf("unexpected filter: %q", got)
	}
}

func TestBuildNumericFilter_OpenBounds(t *testing.T) {
	v := 1.0
	r, _ := filter.NewRangeFilter(&v, nil, nil, nil)
	if got := buildNumericFilter("f", r); got != "@f:[(1 +inf]" {
		t.Errorf("unexpected filter: %q", got)
	}
	r, _ = filter.NewRangeFilter(nil, nil, nil, &v)
	if got := buildNumericFilter("f", r); got != "@f:[-inf 1]" {
		t.Errorf("unexpected filter: %q", got)
	}
}

func TestBuildTagFilter_Escaping(t *testing.T) {
	got := buildTagFilter("topic", []string{"long division", "a|b"})
	if got != `@topic:{long\ division | a\|b}` {
		t.Errorf("unexpected filter: %q", got)
	}
}

func TestVectorToBytes(t *testing.T) {
	b := vectorToBytes([]float32{1.0, -2.5})
	if len(b) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(b))
	}
	// 1.0 = 0x3f800000 little-endian
	if b[0] != 0x00 || b[3] != 0x3f {
		t.Errorf("unexpected encoding: %x", b)
	}
}

func mustMatch(t *testing.T, key, value string) filter.Condition {
	t.Helper()
	c, err := filter.NewMatch(key, value)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return c
}

func mustMatchAny(t *testing.T, key string, values ...string) filter.Condition {
	t.Helper()
	c, err := filter.NewMatchAny(key, values...)
	if err != nil {
		t.Fatalf("NewMatchAny: %v", err)
	}
	return c
}

func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
