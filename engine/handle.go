package engine

import (
	"errors"
	"sync"

	"github.com/hupe1980/vecdb/index"
)

// Handle is the lock-guarded access point to one index instance.
type Handle struct {
	cfg     index.Config
	metrics MetricsObserver

	mu       sync.Mutex
	idx      index.Index
	poisoned bool
}

// Type returns the index type served by the handle.
func (h *Handle) Type() index.Type { return h.cfg.Type }

// Config returns the config the instance was built from.
func (h *Handle) Config() index.Config { return h.cfg }

// Do runs fn with exclusive access to the instance. The lock is held for the
// whole call and released on every exit path. If fn panics the handle is
// poisoned: this call returns a *PanicError and every later call returns
// ErrPoisoned without running fn.
func (h *Handle) Do(fn func(idx index.Index) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.poisoned {
		return ErrPoisoned
	}

	err := callSafe(h.cfg.Type, func() error {
		return fn(h.idx)
	})

	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		h.poisoned = true
		h.metrics.OnPoison(h.cfg.Type)
	}

	return err
}

// Poisoned reports whether an earlier operation panicked.
func (h *Handle) Poisoned() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.poisoned
}

// replace swaps in a fresh instance and clears the poison flag. A non-nil
// prepare runs first under the same lock; when it fails the old instance
// stays in place.
func (h *Handle) replace(idx index.Index, prepare func() error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prepare != nil {
		if err := prepare(); err != nil {
			return err
		}
	}

	h.idx = idx
	h.poisoned = false

	return nil
}
