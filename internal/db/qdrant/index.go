package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/mathdex/internal/db"
)

// CreateIndex creates the collection with cosine HNSW vectors, then one payload index per schema field.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	req, err := buildCreateCollection(s.collection(def.Name), def)
	if err != nil {
		return err
	}

	if err := s.client.CreateCollection(ctx, req); err != nil {
		if isAlreadyExists(err) {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	for _, fi := range buildFieldIndexes(s.collection(def.Name), def) {
		if _, err := s.client.CreateFieldIndex(ctx, fi); err != nil {
			return &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("payload index %s: %w", fi.GetFieldName(), err)}
		}
	}
	return nil
}

// DropIndex deletes the collection and its points.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	exists, err := s.IndexExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return db.ErrIndexNotFound
	}
	if err := s.client.DeleteCollection(ctx, s.collection(name)); err != nil {
		if isNotFound(err) {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexExists reports whether the collection exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection(name))
	if err != nil {
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return exists, nil
}

// IndexStats returns the point count and the raw vector footprint (points * dim * 4 bytes).
func (s *Store) IndexStats(ctx context.Context, name string) (*db.IndexStats, error) {
	info, err := s.client.GetCollectionInfo(ctx, s.collection(name))
	if err != nil {
		if isNotFound(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return collectionStats(info), nil
}

// SupportsTextSearch returns true: Qdrant has full-text payload indexes.
func (s *Store) SupportsTextSearch(_ context.Context) bool {
	return true
}

func collectionStats(info *qdrant.CollectionInfo) *db.IndexStats {
	points := int64(info.GetPointsCount())
	dim := int64(info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize())
	return &db.IndexStats{NumDocs: points, SizeBytes: points * dim * 4}
}

func buildCreateCollection(name string, def *db.IndexDefinition) (*qdrant.CreateCollection, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	vf := def.VectorField()

	distance := qdrant.Distance_Cosine
	switch vf.VectorDistance {
	case db.DistanceL2:
		distance = qdrant.Distance_Euclid
	case db.DistanceIP:
		distance = qdrant.Distance_Dot
	}

	req := &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vf.VectorDim),
			Distance: distance,
		}),
		HnswConfig: &qdrant.HnswConfigDiff{},
	}
	if vf.VectorM > 0 {
		req.HnswConfig.M = qdrant.PtrOf(uint64(vf.VectorM))
	}
	if vf.VectorEFConstruct > 0 {
		req.HnswConfig.EfConstruct = qdrant.PtrOf(uint64(vf.VectorEFConstruct))
	}
	if def.Settings.Shards > 0 {
		req.ShardNumber = qdrant.PtrOf(uint32(def.Settings.Shards))
	}
	// Qdrant counts the primary copy in the replication factor.
	req.ReplicationFactor = qdrant.PtrOf(uint32(def.Settings.Replicas + 1))

	return req, nil
}

// buildFieldIndexes maps schema fields to payload indexes. Dates are unix milliseconds, so integer.
func buildFieldIndexes(collection string, def *db.IndexDefinition) []*qdrant.CreateFieldIndexCollection {
	out := make([]*qdrant.CreateFieldIndexCollection, 0, len(def.Fields))
	for i := range def.Fields {
		f := &def.Fields[i]
		var ft qdrant.FieldType
		switch f.Type {
		case db.IndexFieldTag:
			ft = qdrant.FieldType_FieldTypeKeyword
		case db.IndexFieldText:
			ft = qdrant.FieldType_FieldTypeText
		case db.IndexFieldNumeric:
			ft = qdrant.FieldType_FieldTypeFloat
		case db.IndexFieldInteger, db.IndexFieldDate:
			ft = qdrant.FieldType_FieldTypeInteger
		default:
			continue
		}
		out = append(out, &qdrant.CreateFieldIndexCollection{
			CollectionName: collection,
			FieldName:      f.Name,
			FieldType:      ft.Enum(),
			Wait:           qdrant.PtrOf(true),
		})
	}
	return out
}
