package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/kailas-cloud/mathdex/internal/db"
	"github.com/kailas-cloud/mathdex/internal/domain/search/filter"
)

// SearchKNN orders rows by cosine distance and reports 1 - distance as the score.
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

	query, args := buildSearchSQL(s.table(q.IndexName), q)

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if s.ef > 0 {
		// SET does not take bind parameters.
		if _, err := tx.ExecContext(ctx, "SET LOCAL hnsw.ef_search = "+strconv.Itoa(s.ef)); err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: err}
		}
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		if hasCode(err, codeUndefinedTable) {
			return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer rows.Close()

	entries := make([]db.SearchEntry, 0, q.K)
	for rows.Next() {
		var (
			id    string
			raw   []byte
			score float64
		)
		if err := rows.Scan(&id, &raw, &score); err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("scan row: %w", err)}
		}
		fields, err := decodeFields(raw, q.ReturnFields)
		if err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("row %s: %w", id, err)}
		}
		entries = append(entries, db.SearchEntry{ID: id, Score: score, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

// buildSearchSQL renders the KNN query. $1 is the query vector; filter values follow; the limit is last.
func buildSearchSQL(table string, q *db.KNNQuery) (string, []any) {
	args := []any{pgvector.NewVector(q.Vector)}
	where := buildWhere(q.Filters, &args)
	args = append(args, q.K)

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT id, fields, 1 - (%s <=> $1) AS score FROM %s", db.VectorField, ident(table))
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	fmt.Fprintf(&sb, " ORDER BY %s <=> $1 LIMIT $%d", db.VectorField, len(args))
	return sb.String(), args
}

func buildWhere(expr filter.Expression, args *[]any) string {
	if expr.IsEmpty() {
		return ""
	}
	parts := make([]string, 0, len(expr.Must())+len(expr.MustNot()))
	for _, c := range expr.Must() {
		parts = append(parts, buildCondition(c, args))
	}
	for _, c := range expr.MustNot() {
		// IS NOT TRUE keeps rows where the field is missing.
		parts = append(parts, "("+buildCondition(c, args)+") IS NOT TRUE")
	}
	return strings.Join(parts, " AND ")
}

func buildCondition(c filter.Condition, args *[]any) string {
	if c.IsRange() {
		return buildRange(c.Key(), c.Range(), args)
	}
	values := c.Values()
	if len(values) == 1 {
		*args = append(*args, values[0])
		return fmt.Sprintf("%s = $%d", textExpr(c.Key()), len(*args))
	}
	*args = append(*args, values)
	return fmt.Sprintf("%s = ANY($%d)", textExpr(c.Key()), len(*args))
}

func buildRange(key string, r *filter.Range, args *[]any) string {
	var parts []string
	add := func(op string, v *float64) {
		if v == nil {
			return
		}
		*args = append(*args, *v)
		parts = append(parts, fmt.Sprintf("%s %s $%d", numericExpr(key), op, len(*args)))
	}
	add(">", r.GT())
	add(">=", r.GTE())
	add("<", r.LT())
	add("<=", r.LTE())
	return strings.Join(parts, " AND ")
}

func textExpr(key string) string {
	return "fields->>'" + strings.ReplaceAll(key, "'", "''") + "'"
}

func numericExpr(key string) string {
	return "(" + textExpr(key) + ")::float8"
}

// decodeFields flattens the JSON row fields to strings, keeping only the requested ones when set.
func decodeFields(raw []byte, want []string) (map[string]string, error) {
	if len(raw) == 0 {
		return map[string]string{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var all map[string]any
	if err := dec.Decode(&all); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(all))
	if len(want) == 0 {
		for k, v := range all {
			out[k] = jsonString(v)
		}
		return out, nil
	}
	for _, k := range want {
		if v, ok := all[k]; ok {
			out[k] = jsonString(v)
		}
	}
	return out, nil
}

func jsonString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
