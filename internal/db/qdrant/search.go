package qdrant

import (
	"context"
	"fmt"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/mathdex/internal/db"
	"github.com/kailas-cloud/mathdex/internal/domain/search/filter"
)

// SearchKNN runs a nearest-neighbor query. Qdrant returns cosine similarity directly.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	points, err := s.client.Query(ctx, s.buildQuery(q))
	if err != nil {
		if isNotFound(err) {
			return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	entries := make([]db.SearchEntry, 0, len(points))
	for _, p := range points {
		entries = append(entries, toEntry(p))
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func (s *Store) buildQuery(q *db.KNNQuery) *qdrant.QueryPoints {
	req := &qdrant.QueryPoints{
		CollectionName: s.collection(q.IndexName),
		Query:          qdrant.NewQuery(q.Vector...),
		Filter:         buildFilter(q.Filters),
		Limit:          qdrant.PtrOf(uint64(q.K)),
		WithVectors:    qdrant.NewWithVectors(false),
	}
	if len(q.ReturnFields) > 0 {
		include := make([]string, 0, len(q.ReturnFields)+1)
		include = append(include, q.ReturnFields...)
		include = append(include, docIDField)
		req.WithPayload = qdrant.NewWithPayloadInclude(include...)
	} else {
		req.WithPayload = qdrant.NewWithPayload(true)
	}
	if s.ef > 0 {
		req.Params = &qdrant.SearchParams{HnswEf: qdrant.PtrOf(uint64(s.ef))}
	}
	return req
}

func toEntry(p *qdrant.ScoredPoint) db.SearchEntry {
	fields := make(map[string]string, len(p.GetPayload()))
	for k, v := range p.GetPayload() {
		if k == docIDField {
			continue
		}
		fields[k] = valueString(v)
	}
	id := p.GetPayload()[docIDField].GetStringValue()
	if id == "" {
		id = p.GetId().GetUuid()
	}
	return db.SearchEntry{ID: id, Score: float64(p.GetScore()), Fields: fields}
}

func valueString(v *qdrant.Value) string {
	switch k := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return k.StringValue
	case *qdrant.Value_IntegerValue:
		return strconv.FormatInt(k.IntegerValue, 10)
	case *qdrant.Value_DoubleValue:
		return strconv.FormatFloat(k.DoubleValue, 'f', -1, 64)
	case *qdrant.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	default:
		return ""
	}
}

// buildFilter maps the expression to Qdrant must/must_not conditions; nil when empty.
func buildFilter(expr filter.Expression) *qdrant.Filter {
	if expr.IsEmpty() {
		return nil
	}
	f := &qdrant.Filter{}
	for _, c := range expr.Must() {
		f.Must = append(f.Must, buildCondition(c))
	}
	for _, c := range expr.MustNot() {
		f.MustNot = append(f.MustNot, buildCondition(c))
	}
	return f
}

func buildCondition(c filter.Condition) *qdrant.Condition {
	if c.IsRange() {
		r := c.Range()
		return qdrant.NewRange(c.Key(), &qdrant.Range{
			Gt:  r.GT(),
			Gte: r.GTE(),
			Lt:  r.LT(),
			Lte: r.LTE(),
		})
	}
	values := c.Values()
	if len(values) == 1 {
		return qdrant.NewMatch(c.Key(), values[0])
	}
	return qdrant.NewMatchKeywords(c.Key(), values...)
}
