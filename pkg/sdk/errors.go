package mathdex

import (
	"github.com/kailas-cloud/mathdex/internal/db"
	"github.com/kailas-cloud/mathdex/internal/domain"
)

// Sentinel errors re-exported from the domain and storage layers.
// Use errors.Is() to check.
var (
	ErrEmbedding              = domain.ErrEmbedding
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrIndexLifecycle         = domain.ErrIndexLifecycle
	ErrSearch                 = domain.ErrSearch
	ErrDuplicateCheck         = domain.ErrDuplicateCheck
	ErrIndexing               = domain.ErrIndexing
	ErrInvalidQuestion        = domain.ErrInvalidQuestion
	ErrInvalidFilter          = domain.ErrInvalidFilter
	ErrIndexNotFound          = db.ErrIndexNotFound
	ErrStoreUnavailable       = db.ErrUnavailable
)
