package domain

import "errors"

var (
	// ErrEmbedding signals an unusable embedding: provider unreachable, empty or malformed response,
	// or a dimension mismatch. Such vectors are never cached.
	ErrEmbedding = errors.New("embedding error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrIndexLifecycle signals a failed create/delete/stats call against the vector store.
	ErrIndexLifecycle = errors.New("index lifecycle error")
	// ErrSearch signals a failed similarity search (query embedding or query execution).
	ErrSearch = errors.New("search error")
	// ErrDuplicateCheck signals a failed duplicate check.
	ErrDuplicateCheck = errors.New("duplicate check error")
	// ErrIndexing signals a failed single or bulk question write.
	ErrIndexing = errors.New("indexing error")

	// ErrInvalidQuestion signals a question that cannot be indexed.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrInvalidFilter signals a malformed search filter.
	ErrInvalidFilter = errors.New("invalid filter")
)
