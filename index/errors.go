package index

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vecdb/distance"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrUnsupported is returned for operations an index type cannot perform.
	ErrUnsupported = errors.New("operation not supported")

	// ErrUnknownType is returned when an index type tag is not recognized.
	ErrUnknownType = errors.New("unknown index type")
)

// ErrDimensionMismatch is a named error type for dimension mismatch
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidDimension is returned when an index is configured with a non-positive dimension.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

// ErrInvalidMetric is returned for metrics an index cannot score with.
type ErrInvalidMetric struct {
	Metric distance.Metric
}

func (e *ErrInvalidMetric) Error() string {
	return fmt.Sprintf("invalid metric: %v", e.Metric)
}

// ErrDuplicateID is returned when an identifier is already stored.
type ErrDuplicateID struct {
	ID int64
}

func (e *ErrDuplicateID) Error() string {
	return fmt.Sprintf("duplicate id: %d", e.ID)
}

// ErrInvalidID is returned for identifiers in the reserved negative range.
type ErrInvalidID struct {
	ID int64
}

func (e *ErrInvalidID) Error() string {
	return fmt.Sprintf("invalid id: %d (negative ids are reserved)", e.ID)
}

// CheckDimension validates v against the configured dimension.
func CheckDimension(expected int, v []float32) error {
	if len(v) != expected {
		return &ErrDimensionMismatch{Expected: expected, Actual: len(v)}
	}
	return nil
}

// CheckK validates a result count.
func CheckK(k int) error {
	if k <= 0 {
		return ErrInvalidK
	}
	return nil
}

// Unsupported wraps ErrUnsupported with the index type and operation name.
func Unsupported(t Type, op string) error {
	return fmt.Errorf("%s: %s: %w", t, op, ErrUnsupported)
}
