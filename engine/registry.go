package engine

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hupe1980/vecdb/index"
)

// Registry maps index types to their live instances.
// It is safe for concurrent use.
type Registry struct {
	factory Factory
	metrics MetricsObserver

	mu      sync.RWMutex // guards handles only, never held across an index operation
	handles map[index.Type]*Handle
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		factory: NewIndex,
		metrics: &NoopMetricsObserver{},
		handles: make(map[index.Type]*Handle),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Initialize constructs a fresh instance for cfg.Type. It fails with
// ErrAlreadyInitialized when the type already has an instance.
func (r *Registry) Initialize(cfg index.Config) error {
	return r.InitializeWith(cfg, nil)
}

// InitializeWith is Initialize with a prepare step. prepare runs after the
// instance is built and before it becomes visible to Lookup; when it fails
// the type stays uninitialized.
func (r *Registry) InitializeWith(cfg index.Config, prepare func() error) error {
	r.mu.RLock()
	_, exists := r.handles[cfg.Type]
	r.mu.RUnlock()

	if exists {
		return fmt.Errorf("%s: %w", cfg.Type, ErrAlreadyInitialized)
	}

	// Build outside the lock; the re-check below settles races.
	idx, err := r.build(cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handles[cfg.Type]; exists {
		return fmt.Errorf("%s: %w", cfg.Type, ErrAlreadyInitialized)
	}

	if prepare != nil {
		if err := prepare(); err != nil {
			return err
		}
	}

	r.handles[cfg.Type] = &Handle{
		cfg:     cfg,
		metrics: r.metrics,
		idx:     idx,
	}

	return nil
}

// Reset replaces the instance of t with an empty one built from the same
// config. Operations already waiting on the handle run against the new
// instance.
func (r *Registry) Reset(t index.Type) error {
	return r.ResetWith(t, nil)
}

// ResetWith is Reset with a prepare step that runs under the handle lock
// right before the swap. When prepare fails the old instance stays live and
// no operation observes a state in between.
func (r *Registry) ResetWith(t index.Type, prepare func() error) error {
	h, ok := r.Lookup(t)
	if !ok {
		return fmt.Errorf("%s: %w", t, ErrNotInitialized)
	}

	idx, err := r.build(h.cfg)
	if err != nil {
		return err
	}

	return h.replace(idx, prepare)
}

// Lookup returns the handle for t, or false if t was never initialized.
func (r *Registry) Lookup(t index.Type) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handles[t]

	return h, ok
}

// Types returns the initialized index types in ascending order.
func (r *Registry) Types() []index.Type {
	r.mu.RLock()
	types := make([]index.Type, 0, len(r.handles))
	for t := range r.handles {
		types = append(types, t)
	}
	r.mu.RUnlock()

	slices.Sort(types)

	return types
}

func (r *Registry) build(cfg index.Config) (index.Index, error) {
	start := time.Now()
	idx, err := r.factory(cfg)
	r.metrics.OnBuild(time.Since(start), cfg.Type, err)

	return idx, err
}
