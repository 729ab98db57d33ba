package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/mathdex/internal/db"
)

// docIDField carries the caller's document id; Qdrant point ids must be integers or UUIDs.
const docIDField = "_doc_id"

// pointNamespace derives stable point ids from document ids (UUIDv5).
var pointNamespace = uuid.MustParse("6f1c1f7e-0d7a-4c8e-9a53-6b2f5c8d9e10")

// IndexDocument upserts a single point.
func (s *Store) IndexDocument(ctx context.Context, index string, doc *db.Document) error {
	point, err := buildPoint(doc)
	if err != nil {
		return err
	}
	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection(index),
		Wait:           qdrant.PtrOf(true),
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return &db.Error{Op: db.OpUpsert, Err: fmt.Errorf("point %s: %w", doc.ID, err)}
	}
	return nil
}

// BulkIndex upserts all points in one request. A failed request is reported
// against the whole batch.
func (s *Store) BulkIndex(ctx context.Context, index string, docs []db.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(docs))
	for i := range docs {
		p, err := buildPoint(&docs[i])
		if err != nil {
			return &db.BulkError{Index: index, Position: i, ID: docs[i].ID, Err: err}
		}
		points[i] = p
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection(index),
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return &db.BulkError{Index: index, Position: db.WholeBatch, Err: &db.Error{Op: db.OpUpsert, Err: err}}
	}
	return nil
}

func buildPoint(doc *db.Document) (*qdrant.PointStruct, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("document id is required")
	}
	if len(doc.Vector) == 0 {
		return nil, fmt.Errorf("document %s has no vector", doc.ID)
	}

	raw := make(map[string]any, len(doc.Fields)+1)
	for k, v := range doc.Fields {
		raw[k] = payloadValue(v)
	}
	raw[docIDField] = doc.ID

	payload, err := qdrant.TryValueMap(raw)
	if err != nil {
		return nil, fmt.Errorf("document %s payload: %w", doc.ID, err)
	}

	return &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(pointID(doc.ID)),
		Vectors: qdrant.NewVectors(doc.Vector...),
		Payload: payload,
	}, nil
}

func pointID(docID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(docID)).String()
}

// payloadValue normalizes field values to types the payload encoder accepts.
func payloadValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.UnixMilli()
	case int:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}
