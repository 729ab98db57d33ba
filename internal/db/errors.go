package db

import (
	"errors"
	"fmt"
)

// Sentinel errors for database operations.
var (
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
	ErrUnavailable   = errors.New("db: backend unavailable")
)

// Op names used for error context. Redis-family backends use the command names.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpHSet        = "HSET"
	OpPing        = "PING"
	OpUpsert      = "UPSERT"
	OpHealth      = "HEALTH"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// WholeBatch is the BulkError position of a failure not caused by any single document.
const WholeBatch = -1

// BulkError reports the first failed document of a bulk write, or a request-level
// failure when Position is WholeBatch.
type BulkError struct {
	Index    string
	Position int
	ID       string
	Err      error
}

func (e *BulkError) Error() string {
	if e.Position == WholeBatch {
		return fmt.Sprintf("bulk index %s: batch: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("bulk index %s: item %d (%s): %v", e.Index, e.Position, e.ID, e.Err)
}

func (e *BulkError) Unwrap() error { return e.Err }
