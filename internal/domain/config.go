package domain

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model          string
	Dimensions     int
	DistanceMetric string
	Algorithm      string
	HNSWM          int
	EFConstruction int
	EFRuntime      int
	Shards         int
	Replicas       int
}

// DefaultVectorConfig returns the default configuration tuned for nomic-embed-text.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:          "nomic-embed-text",
		Dimensions:     DefaultDimensions,
		DistanceMetric: "cosine",
		Algorithm:      "hnsw",
		HNSWM:          16,
		EFConstruction: 100,
		EFRuntime:      100,
		Shards:         1,
	}
}
