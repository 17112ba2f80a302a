package vecdb

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vecdb/engine"
	"github.com/hupe1980/vecdb/index"
	"github.com/hupe1980/vecdb/storage"
)

var (
	// ErrNotFound is matched by every "does not exist" error of this package.
	ErrNotFound = errors.New("not found")

	// ErrRecordNotFound is returned by Query when no record is stored under an id.
	ErrRecordNotFound = fmt.Errorf("record %w", ErrNotFound)

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrDuplicateID is returned when an id is already stored and the index
	// rejects duplicates.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrInvalidArgument is returned for invalid ids, dimensions and metrics.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownIndexType is returned for index type tags that do not exist.
	ErrUnknownIndexType = index.ErrUnknownType

	// ErrUnsupported is returned for operations an index type cannot perform,
	// such as removing from a graph index.
	ErrUnsupported = index.ErrUnsupported

	// ErrAlreadyInitialized is returned when an index type is initialized twice.
	ErrAlreadyInitialized = engine.ErrAlreadyInitialized

	// ErrPoisoned is returned for an index whose lock guard was poisoned by a
	// panic. The instance must be Reset before it can be used again.
	ErrPoisoned = engine.ErrPoisoned
)

// ErrIndexNotFound is returned when an operation targets an index type that
// was never initialized. It matches ErrNotFound.
type ErrIndexNotFound struct {
	Type index.Type
}

func (e *ErrIndexNotFound) Error() string {
	return fmt.Sprintf("index %s not found", e.Type)
}

// Is reports ErrNotFound as a match.
func (e *ErrIndexNotFound) Is(target error) bool { return target == ErrNotFound }

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, engine.ErrNotInitialized) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrRecordNotFound, err)
	}

	// Dimension and argument normalization.
	var dm *index.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	var dup *index.ErrDuplicateID
	if errors.As(err, &dup) {
		return fmt.Errorf("%w: %w", ErrDuplicateID, err)
	}
	var invID *index.ErrInvalidID
	if errors.As(err, &invID) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	var invDim *index.ErrInvalidDimension
	if errors.As(err, &invDim) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	var invMetric *index.ErrInvalidMetric
	if errors.As(err, &invMetric) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if errors.Is(err, index.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}

	return err
}

// Error kinds returned by Kind.
const (
	KindIndexNotFound      = "index_not_found"
	KindRecordNotFound     = "record_not_found"
	KindUnknownIndexType   = "unknown_index_type"
	KindDimensionMismatch  = "dimension_mismatch"
	KindUnsupported        = "unsupported"
	KindPoisoned           = "poisoned"
	KindInvalidK           = "invalid_k"
	KindDuplicateID        = "duplicate_id"
	KindInvalidArgument    = "invalid_argument"
	KindAlreadyInitialized = "already_initialized"
	KindInternal           = "internal"
)

// Kind classifies err into one of the Kind* constants. It returns "" for a
// nil error.
func Kind(err error) string {
	var (
		inf *ErrIndexNotFound
		dm  *ErrDimensionMismatch
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &inf), errors.Is(err, engine.ErrNotInitialized):
		return KindIndexNotFound
	case errors.Is(err, ErrRecordNotFound):
		return KindRecordNotFound
	case errors.Is(err, ErrUnknownIndexType):
		return KindUnknownIndexType
	case errors.As(err, &dm):
		return KindDimensionMismatch
	case errors.Is(err, ErrPoisoned):
		return KindPoisoned
	case errors.Is(err, ErrUnsupported):
		return KindUnsupported
	case errors.Is(err, ErrInvalidK):
		return KindInvalidK
	case errors.Is(err, ErrDuplicateID):
		return KindDuplicateID
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrAlreadyInitialized):
		return KindAlreadyInitialized
	default:
		return KindInternal
	}
}
