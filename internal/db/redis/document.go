package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/mathdex/internal/db"
)

// IndexDocument stores a single document as a hash.
func (s *Store) IndexDocument(ctx context.Context, index string, doc *db.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}
	if err := s.do(ctx, s.buildHSet(index, doc)).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", s.docKey(index, doc.ID), err)}
	}
	return nil
}

// BulkIndex stores documents in a single DoMulti round-trip.
// Commands are not transactional: items before the failed one may already be written.
func (s *Store) BulkIndex(ctx context.Context, index string, docs []db.Document) error {
	if len(docs) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(docs))
	for i := range docs {
		if docs[i].ID == "" {
			return &db.BulkError{Index: index, Position: i, Err: fmt.Errorf("document id is required")}
		}
		cmds[i] = s.buildHSet(index, &docs[i])
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.BulkError{
				Index:    index,
				Position: i,
				ID:       docs[i].ID,
				Err:      &db.Error{Op: db.OpHSet, Err: err},
			}
		}
	}
	return nil
}

func (s *Store) buildHSet(index string, doc *db.Document) rueidis.Completed {
	cmd := s.b().Hset().Key(s.docKey(index, doc.ID)).FieldValue()
	for k, v := range buildHashFields(doc) {
		cmd = cmd.FieldValue(k, v)
	}
	return cmd.Build()
}

func buildHashFields(doc *db.Document) map[string]string {
	fields := make(map[string]string, len(doc.Fields)+1)
	for k, v := range doc.Fields {
		fields[k] = db.FormatValue(v)
	}
	if len(doc.Vector) > 0 {
		fields[db.VectorField] = vectorToBytes(doc.Vector)
	}
	return fields
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
