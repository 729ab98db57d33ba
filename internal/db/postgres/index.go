package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/mathdex/internal/db"
)

// CreateIndex creates the table, its HNSW index and one expression index per filterable field.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	stmts, err := buildCreateStatements(s.table(def.Name), def)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			if hasCode(err, codeDuplicateTable) {
				return db.ErrIndexExists
			}
			return &db.Error{Op: db.OpCreateIndex, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex drops the table with all its rows and indexes.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, "DROP TABLE "+ident(s.table(name)))
	if err != nil {
		if hasCode(err, codeUndefinedTable) {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexExists reports whether the table exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", ident(s.table(name))).Scan(&exists)
	if err != nil {
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return exists, nil
}

// IndexStats returns the row count and total relation size, indexes included.
func (s *Store) IndexStats(ctx context.Context, name string) (*db.IndexStats, error) {
	t := ident(s.table(name))
	var stats db.IndexStats
	err := s.db.QueryRowContext(ctx,
		"SELECT count(*), pg_total_relation_size($1::regclass) FROM "+t, t,
	).Scan(&stats.NumDocs, &stats.SizeBytes)
	if err != nil {
		if hasCode(err, codeUndefinedTable) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return &stats, nil
}

// SupportsTextSearch returns true: text fields get a tsvector GIN index.
func (s *Store) SupportsTextSearch(_ context.Context) bool {
	return true
}

func buildCreateStatements(table string, def *db.IndexDefinition) ([]string, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	vf := def.VectorField()
	if vf.VectorDistance != "" && vf.VectorDistance != db.DistanceCosine {
		return nil, fmt.Errorf("unsupported distance metric %s: only COSINE", vf.VectorDistance)
	}

	t := ident(table)
	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf("CREATE TABLE %s (id TEXT PRIMARY KEY, %s vector(%d) NOT NULL, fields JSONB NOT NULL DEFAULT '{}')",
			t, db.VectorField, vf.VectorDim),
		buildVectorIndex(table, vf),
	}
	for i := range def.Fields {
		if stmt := buildFieldIndex(table, &def.Fields[i]); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}

func buildVectorIndex(table string, vf *db.IndexField) string {
	stmt := fmt.Sprintf("CREATE INDEX %s ON %s USING hnsw (%s vector_cosine_ops)",
		ident(table+"_"+db.VectorField+"_idx"), ident(table), db.VectorField)

	var with []string
	if vf.VectorM > 0 {
		with = append(with, fmt.Sprintf("m = %d", vf.VectorM))
	}
	if vf.VectorEFConstruct > 0 {
		with = append(with, fmt.Sprintf("ef_construction = %d", vf.VectorEFConstruct))
	}
	if len(with) > 0 {
		stmt += " WITH (" + strings.Join(with, ", ") + ")"
	}
	return stmt
}

// buildFieldIndex returns "" for fields that need no secondary index.
func buildFieldIndex(table string, f *db.IndexField) string {
	name := ident(table + "_" + f.Name + "_idx")
	switch f.Type {
	case db.IndexFieldTag:
		return fmt.Sprintf("CREATE INDEX %s ON %s ((%s))", name, ident(table), textExpr(f.Name))
	case db.IndexFieldNumeric, db.IndexFieldInteger, db.IndexFieldDate:
		return fmt.Sprintf("CREATE INDEX %s ON %s ((%s))", name, ident(table), numericExpr(f.Name))
	case db.IndexFieldText:
		return fmt.Sprintf("CREATE INDEX %s ON %s USING gin (to_tsvector('simple', %s))",
			name, ident(table), textExpr(f.Name))
	default:
		return ""
	}
}
