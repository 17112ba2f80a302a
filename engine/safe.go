package engine

import (
	"runtime/debug"

	"github.com/hupe1980/vecdb/index"
)

// callSafe runs fn and converts a panic into a *PanicError carrying the
// stack trace.
func callSafe(t index.Type, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Type: t, Value: r, Stack: debug.Stack()}
		}
	}()

	return fn()
}
