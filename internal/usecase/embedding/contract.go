package embedding

import "github.com/kailas-cloud/mathdex/internal/repository/embcache"

// CacheStats reports cache occupancy.
type CacheStats = embcache.Stats

// Cache is the consumer interface for the embedding cache (ISP).
type Cache interface {
	Get(text string) ([]float32, bool)
	Put(text string, vec []float32)
	Clear()
	Stats() embcache.Stats
}
