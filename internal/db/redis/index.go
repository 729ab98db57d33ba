package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/mathdex/internal/db"
)

// CreateIndex creates an FT index over the hashes of the logical index.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := s.buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") || isRedisErr(err, "already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex removes the FT index together with its documents.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	args := []string{s.ftName(name)}
	if s.flavor == FlavorRedis {
		args = append(args, "DD")
	}

	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isUnknownIndex(err) {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}

	if s.flavor == FlavorValkey {
		return s.purgeKeys(ctx, s.keyPrefix(name))
	}
	return nil
}

// IndexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(s.ftName(name)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isUnknownIndex(err) {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

// SupportsTextSearch reports whether TEXT fields are available: Redis yes, valkey-search no.
func (s *Store) SupportsTextSearch(_ context.Context) bool {
	return s.flavor == FlavorRedis
}

// purgeKeys deletes every key under prefix. valkey-search has no DROPINDEX DD.
func (s *Store) purgeKeys(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		cmd := s.b().Scan().Cursor(cursor).Match(prefix + "*").Count(500).Build()
		entry, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return &db.Error{Op: db.OpDropIndex, Err: fmt.Errorf("scan %s: %w", prefix, err)}
		}
		if len(entry.Elements) > 0 {
			del := s.b().Unlink().Key(entry.Elements...).Build()
			if err := s.do(ctx, del).Error(); err != nil {
				return &db.Error{Op: db.OpDropIndex, Err: fmt.Errorf("unlink: %w", err)}
			}
		}
		cursor = entry.Cursor
		if cursor == 0 {
			return nil
		}
	}
}

func (s *Store) buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	args := []string{
		s.ftName(idx.Name),
		"ON", "HASH",
		"PREFIX", "1", s.keyPrefix(idx.Name),
		"SCHEMA",
	}

	for i := range idx.Fields {
		fieldArgs, err := s.buildFieldArgs(&idx.Fields[i], idx.Settings)
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}

	return args, nil
}

// buildFieldArgs maps a schema field to FT.CREATE arguments.
// Integer and date fields are NUMERIC; dates are stored as unix milliseconds.
func (s *Store) buildFieldArgs(f *db.IndexField, settings db.IndexSettings) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	args := []string{f.Name}

	switch f.Type {
	case db.IndexFieldNumeric, db.IndexFieldInteger, db.IndexFieldDate:
		args = append(args, "NUMERIC")

	case db.IndexFieldText:
		if s.flavor == FlavorValkey {
			// still stored in the hash, just not indexed
			return nil, nil
		}
		args = append(args, "TEXT")

	case db.IndexFieldTag:
		args = append(args, "TAG")
		if f.TagCaseSensitive {
			args = append(args, "CASESENSITIVE")
		}

	case db.IndexFieldVector:
		vectorArgs, err := buildVectorFieldArgs(f, settings.EFRuntime)
		if err != nil {
			return nil, err
		}
		args = append(args, vectorArgs...)

	default:
		return nil, errors.New("unknown field type")
	}

	return args, nil
}

func buildVectorFieldArgs(f *db.IndexField, efRuntime int) ([]string, error) {
	if f.VectorDim <= 0 {
		return nil, errors.New("vector DIM must be positive")
	}

	algo := f.VectorAlgo
	if algo == "" {
		algo = db.VectorHNSW
	}

	distance := f.VectorDistance
	if distance == "" {
		distance = db.DistanceCosine
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(f.VectorDim),
		"DISTANCE_METRIC", string(distance),
	}

	if algo == db.VectorHNSW {
		if f.VectorM > 0 {
			attrs = append(attrs, "M", strconv.Itoa(f.VectorM))
		}
		if f.VectorEFConstruct > 0 {
			attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(f.VectorEFConstruct))
		}
		if efRuntime > 0 {
			attrs = append(attrs, "EF_RUNTIME", strconv.Itoa(efRuntime))
		}
	}

	result := make([]string, 0, 3+len(attrs))
	result = append(result, "VECTOR", string(algo), strconv.Itoa(len(attrs)))
	result = append(result, attrs...)

	return result, nil
}
