package vecdb

import (
	"log/slog"

	"github.com/hupe1980/vecdb/engine"
	"github.com/hupe1980/vecdb/storage"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	store            storage.Store
	registryOptions  []engine.Option
}

// Option configures a DB.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &vecdb.BasicMetricsCollector{}
//	db, _ := vecdb.New(vecdb.WithMetricsCollector(metrics))
//	// ... use db ...
//	stats := metrics.GetStats()
//	fmt.Printf("Inserts: %d, Avg latency: %dns\n", stats.InsertCount, stats.InsertAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := vecdb.NewJSONLogger(slog.LevelInfo)
//	db, _ := vecdb.New(vecdb.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithStore sets the record store. The DB does not close a store passed in
// here. By default an in-memory BadgerDB store is opened and owned by the DB.
func WithStore(s storage.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithRegistryOptions passes options through to the index registry.
func WithRegistryOptions(opts ...engine.Option) Option {
	return func(o *options) {
		o.registryOptions = append(o.registryOptions, opts...)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
