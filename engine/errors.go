package engine

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vecdb/index"
)

var (
	// ErrAlreadyInitialized is returned when Initialize is called for a type
	// that already has an instance. Use Reset to replace it.
	ErrAlreadyInitialized = errors.New("index already initialized")

	// ErrNotInitialized is returned by Reset for a type without an instance.
	ErrNotInitialized = errors.New("index not initialized")

	// ErrPoisoned is returned by Handle.Do once an operation on the handle
	// has panicked.
	ErrPoisoned = errors.New("index poisoned by an earlier panic")
)

// PanicError is returned by the Handle.Do call whose function panicked.
// It matches ErrPoisoned via errors.Is.
type PanicError struct {
	Type  index.Type
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: panic: %v", e.Type, e.Value)
}

// Is reports ErrPoisoned as a match.
func (e *PanicError) Is(target error) bool {
	return target == ErrPoisoned
}
