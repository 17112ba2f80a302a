package engine

import "github.com/hupe1980/vecdb/index"

// Factory constructs an index instance from its config.
type Factory func(cfg index.Config) (index.Index, error)

// Option configures a Registry.
type Option func(*Registry)

// WithFactory replaces the index constructor. Used by tests to inject
// instrumented indexes.
func WithFactory(f Factory) Option {
	return func(r *Registry) {
		r.factory = f
	}
}

// WithMetricsObserver sets the observer notified of builds and poisonings.
func WithMetricsObserver(observer MetricsObserver) Option {
	return func(r *Registry) {
		r.metrics = observer
	}
}
