package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/kailas-cloud/mathdex/internal/db"
)

// IndexDocument upserts a single row.
func (s *Store) IndexDocument(ctx context.Context, index string, doc *db.Document) error {
	args, err := upsertArgs(doc)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertSQL(s.table(index)), args...); err != nil {
		if hasCode(err, codeUndefinedTable) {
			return &db.Error{Op: db.OpUpsert, Err: db.ErrIndexNotFound}
		}
		return &db.Error{Op: db.OpUpsert, Err: fmt.Errorf("row %s: %w", doc.ID, err)}
	}
	return nil
}

// BulkIndex upserts all rows in one transaction; nothing is written if any row fails.
func (s *Store) BulkIndex(ctx context.Context, index string, docs []db.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.BulkError{Index: index, Position: db.WholeBatch, Err: &db.Error{Op: db.OpUpsert, Err: err}}
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertSQL(s.table(index)))
	if err != nil {
		return &db.BulkError{Index: index, Position: db.WholeBatch, Err: pgWriteErr(err)}
	}
	defer stmt.Close()

	for i := range docs {
		args, err := upsertArgs(&docs[i])
		if err != nil {
			return &db.BulkError{Index: index, Position: i, ID: docs[i].ID, Err: err}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return &db.BulkError{Index: index, Position: i, ID: docs[i].ID, Err: pgWriteErr(err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &db.BulkError{Index: index, Position: db.WholeBatch, Err: &db.Error{Op: db.OpUpsert, Err: err}}
	}
	return nil
}

func pgWriteErr(err error) error {
	if hasCode(err, codeUndefinedTable) {
		return &db.Error{Op: db.OpUpsert, Err: db.ErrIndexNotFound}
	}
	return &db.Error{Op: db.OpUpsert, Err: err}
}

func upsertSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (id, %s, fields) VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET %s = EXCLUDED.%s, fields = EXCLUDED.fields`,
		ident(table), db.VectorField, db.VectorField, db.VectorField)
}

func upsertArgs(doc *db.Document) ([]any, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("document id is required")
	}
	if len(doc.Vector) == 0 {
		return nil, fmt.Errorf("document %s has no vector", doc.ID)
	}
	fields, err := encodeFields(doc.Fields)
	if err != nil {
		return nil, fmt.Errorf("document %s fields: %w", doc.ID, err)
	}
	return []any{doc.ID, pgvector.NewVector(doc.Vector), fields}, nil
}

// encodeFields serializes scalar fields to JSON. Timestamps become unix milliseconds.
func encodeFields(fields map[string]any) ([]byte, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if t, ok := v.(time.Time); ok {
			out[k] = t.UnixMilli()
			continue
		}
		out[k] = v
	}
	return json.Marshal(out)
}
