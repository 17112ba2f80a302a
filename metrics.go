package vecdb

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/vecdb/engine"
	"github.com/hupe1980/vecdb/index"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// A collector that also implements engine.MetricsObserver is handed to the
// registry and receives index build and poison events.
type MetricsCollector interface {
	// RecordInsert is called after each insert operation.
	// duration is the total time taken, err is nil if successful.
	RecordInsert(duration time.Duration, err error)

	// RecordBatchInsert is called after each batch insert operation.
	// count is the number of items attempted, failed is the number that failed,
	// duration is the total time taken.
	RecordBatchInsert(count, failed int, duration time.Duration)

	// RecordSearch is called after each search operation.
	// k is the number of neighbors requested, duration is the time taken,
	// err is nil if successful.
	RecordSearch(k int, duration time.Duration, err error)

	// RecordRemove is called after each remove operation.
	RecordRemove(count int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)         {}
func (NoopMetricsCollector) RecordBatchInsert(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordRemove(int, time.Duration, error)    {}

// Compile-time check: BasicMetricsCollector also observes the registry.
var _ engine.MetricsObserver = (*BasicMetricsCollector)(nil)

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount       atomic.Int64
	InsertErrors      atomic.Int64
	InsertTotalNanos  atomic.Int64
	BatchInsertCount  atomic.Int64
	BatchInsertItems  atomic.Int64
	BatchInsertFailed atomic.Int64
	SearchCount       atomic.Int64
	SearchErrors      atomic.Int64
	SearchTotalNanos  atomic.Int64
	RemoveCount       atomic.Int64
	RemoveItems       atomic.Int64
	RemoveErrors      atomic.Int64
	BuildCount        atomic.Int64
	BuildErrors       atomic.Int64
	PoisonCount       atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordBatchInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchInsert(count, failed int, duration time.Duration) {
	b.BatchInsertCount.Add(1)
	b.BatchInsertItems.Add(int64(count))
	b.BatchInsertFailed.Add(int64(failed))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(k int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(count int, duration time.Duration, err error) {
	b.RemoveCount.Add(1)
	b.RemoveItems.Add(int64(count))
	if err != nil {
		b.RemoveErrors.Add(1)
	}
}

// OnBuild implements engine.MetricsObserver.
func (b *BasicMetricsCollector) OnBuild(duration time.Duration, indexType index.Type, err error) {
	b.BuildCount.Add(1)
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// OnPoison implements engine.MetricsObserver.
func (b *BasicMetricsCollector) OnPoison(indexType index.Type) {
	b.PoisonCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:       b.InsertCount.Load(),
		InsertErrors:      b.InsertErrors.Load(),
		InsertAvgNanos:    b.getAvgInsertNanos(),
		BatchInsertCount:  b.BatchInsertCount.Load(),
		BatchInsertItems:  b.BatchInsertItems.Load(),
		BatchInsertFailed: b.BatchInsertFailed.Load(),
		SearchCount:       b.SearchCount.Load(),
		SearchErrors:      b.SearchErrors.Load(),
		SearchAvgNanos:    b.getAvgSearchNanos(),
		RemoveCount:       b.RemoveCount.Load(),
		RemoveItems:       b.RemoveItems.Load(),
		RemoveErrors:      b.RemoveErrors.Load(),
		BuildCount:        b.BuildCount.Load(),
		BuildErrors:       b.BuildErrors.Load(),
		PoisonCount:       b.PoisonCount.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgInsertNanos() int64 {
	count := b.InsertCount.Load()
	if count == 0 {
		return 0
	}
	return b.InsertTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount       int64 `json:"insert_count"`
	InsertErrors      int64 `json:"insert_errors"`
	InsertAvgNanos    int64 `json:"insert_avg_nanos"`
	BatchInsertCount  int64 `json:"batch_insert_count"`
	BatchInsertItems  int64 `json:"batch_insert_items"`
	BatchInsertFailed int64 `json:"batch_insert_failed"`
	SearchCount       int64 `json:"search_count"`
	SearchErrors      int64 `json:"search_errors"`
	SearchAvgNanos    int64 `json:"search_avg_nanos"`
	RemoveCount       int64 `json:"remove_count"`
	RemoveItems       int64 `json:"remove_items"`
	RemoveErrors      int64 `json:"remove_errors"`
	BuildCount        int64 `json:"build_count"`
	BuildErrors       int64 `json:"build_errors"`
	PoisonCount       int64 `json:"poison_count"`
}
