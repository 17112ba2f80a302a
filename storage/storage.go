package storage

import (
	"context"
	"errors"

	"github.com/hupe1980/vecdb/index"
)

// ErrNotFound is returned when no record is stored under a key.
var ErrNotFound = errors.New("record not found")

// Record is the payload stored for one vector.
type Record struct {
	ID         int64          `json:"id" msgpack:"id"`
	Index      index.Type     `json:"index_type" msgpack:"index_type"`
	Vector     []float32      `json:"vector" msgpack:"vector"`
	Attributes map[string]any `json:"attributes,omitempty" msgpack:"attributes,omitempty"`
}

// Store persists records keyed by (index type, id).
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores or replaces a record.
	Put(ctx context.Context, rec Record) error

	// PutBatch stores or replaces several records in one write batch.
	PutBatch(ctx context.Context, recs []Record) error

	// Get returns the record, or ErrNotFound.
	Get(ctx context.Context, t index.Type, id int64) (Record, error)

	// Delete removes the listed records. Missing ids are ignored.
	Delete(ctx context.Context, t index.Type, ids []int64) error

	// DeleteAll removes every record of an index type.
	DeleteAll(ctx context.Context, t index.Type) error

	// Count returns the number of records of an index type.
	Count(ctx context.Context, t index.Type) (int, error)

	// Close releases the store.
	Close() error
}
