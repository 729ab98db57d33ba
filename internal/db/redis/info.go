package redis

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/mathdex/internal/db"
)

// IndexStats reads document count and memory footprint from FT.INFO.
// Size is the sum of all *_sz_mb / *_size_mb entries, converted to bytes.
func (s *Store) IndexStats(ctx context.Context, name string) (*db.IndexStats, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(s.ftName(name)).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return parseIndexInfo(raw), nil
}

func parseIndexInfo(raw []rueidis.RedisMessage) *db.IndexStats {
	stats := &db.IndexStats{}
	var sizeMB float64

	// flat key/value pairs; nested values (attributes, gc_stats...) are skipped
	for i := 0; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		val, ok := messageFloat(&raw[i+1])
		if !ok {
			continue
		}
		switch {
		case key == "num_docs":
			stats.NumDocs = int64(val)
		case strings.HasSuffix(key, "_sz_mb") || strings.HasSuffix(key, "_size_mb"):
			sizeMB += val
		case key == "space_usage" || key == "memory_usage":
			stats.SizeBytes += int64(val)
		}
	}

	stats.SizeBytes += int64(math.Round(sizeMB * 1024 * 1024))
	return stats
}

// messageFloat reads a scalar reply that may arrive as a bulk string, integer or double.
func messageFloat(m *rueidis.RedisMessage) (float64, bool) {
	if str, err := m.ToString(); err == nil {
		f, err := strconv.ParseFloat(str, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	if n, err := m.AsInt64(); err == nil {
		return float64(n), true
	}
	if f, err := m.AsFloat64(); err == nil {
		return f, true
	}
	return 0, false
}
