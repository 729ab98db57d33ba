package domain

// IndexStats describes the question index size.
type IndexStats struct {
	Name          string
	DocumentCount int64
	StorageBytes  int64
}
