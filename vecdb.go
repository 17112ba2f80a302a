package vecdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/vecdb/engine"
	"github.com/hupe1980/vecdb/index"
	"github.com/hupe1980/vecdb/storage"
)

// DB routes operations to the index instance selected by an index.Type tag.
// It is safe for concurrent use.
type DB struct {
	registry  *engine.Registry
	store     storage.Store
	ownsStore bool
	metrics   MetricsCollector
	logger    *Logger
}

// New creates a DB without any index instance. Call Initialize for every
// index type that should serve requests.
func New(optFns ...Option) (*DB, error) {
	opts := applyOptions(optFns)

	registryOpts := opts.registryOptions
	if observer, ok := opts.metricsCollector.(engine.MetricsObserver); ok {
		registryOpts = append([]engine.Option{engine.WithMetricsObserver(observer)}, registryOpts...)
	}

	db := &DB{
		registry: engine.New(registryOpts...),
		store:    opts.store,
		metrics:  opts.metricsCollector,
		logger:   opts.logger,
	}

	if db.store == nil {
		s, err := storage.NewBadger(storage.BadgerOptions{
			InMemory: true,
			Logger:   opts.logger.Logger,
		})
		if err != nil {
			return nil, err
		}
		db.store = s
		db.ownsStore = true
	}

	return db, nil
}

// Close releases the record store if the DB opened it.
func (db *DB) Close() error {
	if db.ownsStore {
		return db.store.Close()
	}
	return nil
}

// Initialize constructs a fresh, empty instance for cfg.Type and drops any
// records the store still holds for that type. A type can be initialized
// once; use Reset to start it over.
func (db *DB) Initialize(ctx context.Context, cfg index.Config) error {
	err := db.registry.InitializeWith(cfg, func() error {
		return db.store.DeleteAll(ctx, cfg.Type)
	})

	err = translateError(err)
	db.logger.LogInitialize(ctx, cfg, err)
	return err
}

// Reset replaces the instance of t with an empty one built from the same
// config and drops its records. Reset also recovers a poisoned instance.
func (db *DB) Reset(ctx context.Context, t index.Type) error {
	if _, ok := db.registry.Lookup(t); !ok {
		err := &ErrIndexNotFound{Type: t}
		db.logger.LogReset(ctx, t, err)
		return err
	}

	err := db.registry.ResetWith(t, func() error {
		return db.store.DeleteAll(ctx, t)
	})

	err = translateError(err)
	db.logger.LogReset(ctx, t, err)

	return err
}

// Item is one vector to insert.
type Item struct {
	// ID is the identifier to store the vector under. For a graph index
	// index.AutoID lets the index choose.
	ID int64

	// Vector must match the dimension of the target index.
	Vector []float32

	// Attributes are stored with the record and returned by Query.
	Attributes map[string]any
}

// Insert stores vector under id in the index of type t and returns the id it
// was stored under. The vector and its record are written under the index
// lock. When the record cannot be stored the flat index is rolled back to its
// previous state; the graph index cannot remove and keeps the vector.
func (db *DB) Insert(ctx context.Context, t index.Type, vector []float32, id int64) (int64, error) {
	return db.InsertItem(ctx, t, Item{ID: id, Vector: vector})
}

// InsertItem is Insert with attributes.
func (db *DB) InsertItem(ctx context.Context, t index.Type, item Item) (int64, error) {
	start := time.Now()

	id, err := db.insert(ctx, t, item)

	err = translateError(err)
	db.metrics.RecordInsert(time.Since(start), err)
	db.logger.LogInsert(ctx, t, id, len(item.Vector), err)

	return id, err
}

func (db *DB) insert(ctx context.Context, t index.Type, item Item) (int64, error) {
	h, ok := db.registry.Lookup(t)
	if !ok {
		return 0, &ErrIndexNotFound{Type: t}
	}

	var id int64

	err := h.Do(func(idx index.Index) error {
		prev := lookupVector(idx, item.ID)

		var err error
		id, err = idx.Insert(item.Vector, item.ID)
		if err != nil {
			return err
		}

		if err := db.store.Put(ctx, newRecord(t, id, item)); err != nil {
			undoInsert(idx, id, prev)
			return fmt.Errorf("store record %d: %w", id, err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// BatchInsertResult reports the outcome of every item of a batch insert.
type BatchInsertResult struct {
	IDs    []int64 // IDs[i] is the stored id of item i; only valid when Errors[i] is nil
	Errors []error // Errors for failed insertions (nil for successful)
}

// Failed returns the number of items that were not inserted.
func (r BatchInsertResult) Failed() int {
	n := 0
	for _, err := range r.Errors {
		if err != nil {
			n++
		}
	}
	return n
}

// InsertBatch inserts items under one acquisition of the index lock. A
// failing item does not stop the batch; its error is reported in the result.
// The returned error is non-nil only when the batch could not run at all or
// its records could not be stored, in which case the flat index is rolled
// back as in Insert.
func (db *DB) InsertBatch(ctx context.Context, t index.Type, items []Item) (BatchInsertResult, error) {
	start := time.Now()
	result := BatchInsertResult{
		IDs:    make([]int64, len(items)),
		Errors: make([]error, len(items)),
	}

	err := db.insertBatch(ctx, t, items, &result)
	err = translateError(err)

	failed := result.Failed()
	if err != nil {
		failed = len(items)
	}

	db.metrics.RecordBatchInsert(len(items), failed, time.Since(start))
	db.logger.LogBatchInsert(ctx, t, len(items), failed)

	if err != nil {
		return BatchInsertResult{}, err
	}

	return result, nil
}

func (db *DB) insertBatch(ctx context.Context, t index.Type, items []Item, result *BatchInsertResult) error {
	h, ok := db.registry.Lookup(t)
	if !ok {
		return &ErrIndexNotFound{Type: t}
	}

	return h.Do(func(idx index.Index) error {
		prev := make([][]float32, len(items))
		records := make([]storage.Record, 0, len(items))

		for i, item := range items {
			prev[i] = lookupVector(idx, item.ID)

			id, err := idx.Insert(item.Vector, item.ID)
			result.IDs[i] = id
			result.Errors[i] = translateError(err)

			if err == nil {
				records = append(records, newRecord(t, id, item))
			}
		}

		if err := db.store.PutBatch(ctx, records); err != nil {
			// Undo in reverse so repeated ids restore the oldest vector last.
			for i := len(items) - 1; i >= 0; i-- {
				if result.Errors[i] == nil {
					undoInsert(idx, result.IDs[i], prev[i])
				}
			}
			return fmt.Errorf("store records: %w", err)
		}

		return nil
	})
}

// Remove deletes ids from the index of type t and drops their records under
// the index lock. Unknown ids are ignored by the flat index; the graph index
// does not support removal and returns ErrUnsupported, leaving records
// untouched. When the records cannot be dropped the removed vectors are
// restored.
func (db *DB) Remove(ctx context.Context, t index.Type, ids []int64) error {
	start := time.Now()

	err := db.remove(ctx, t, ids)

	err = translateError(err)
	db.metrics.RecordRemove(len(ids), time.Since(start), err)
	db.logger.LogRemove(ctx, t, len(ids), err)

	return err
}

func (db *DB) remove(ctx context.Context, t index.Type, ids []int64) error {
	h, ok := db.registry.Lookup(t)
	if !ok {
		return &ErrIndexNotFound{Type: t}
	}

	return h.Do(func(idx index.Index) error {
		removed := make(map[int64][]float32, len(ids))
		for _, id := range ids {
			if v := lookupVector(idx, id); v != nil {
				removed[id] = v
			}
		}

		if err := idx.Remove(ids); err != nil {
			return err
		}

		if err := db.store.Delete(ctx, t, ids); err != nil {
			for _, id := range ids {
				if v, ok := removed[id]; ok {
					_, _ = idx.Insert(v, id)
					delete(removed, id)
				}
			}
			return err
		}

		return nil
	})
}

// Search returns the k nearest neighbors of query in the index of type t as
// parallel id and distance slices, closest first. efSearch is the beam
// breadth of the graph index and ignored by the flat index.
//
// The flat index returns at most k results. The graph index always returns k
// results, padding a shortfall with index.NotFoundID and index.MaxDistance.
func (db *DB) Search(ctx context.Context, t index.Type, query []float32, k int, efSearch int) ([]int64, []float32, error) {
	start := time.Now()

	results, err := db.search(t, query, k, efSearch)

	err = translateError(err)
	db.metrics.RecordSearch(k, time.Since(start), err)
	db.logger.LogSearch(ctx, t, k, len(index.Found(results)), err)

	if err != nil {
		return nil, nil, err
	}

	ids, distances := index.Split(results)

	return ids, distances, nil
}

func (db *DB) search(t index.Type, query []float32, k int, efSearch int) ([]index.Result, error) {
	h, ok := db.registry.Lookup(t)
	if !ok {
		return nil, &ErrIndexNotFound{Type: t}
	}

	var results []index.Result

	err := h.Do(func(idx index.Index) error {
		var err error
		results, err = idx.Search(query, k, efSearch)
		return err
	})

	return results, err
}

// Query returns the record stored under id in the index of type t.
func (db *DB) Query(ctx context.Context, t index.Type, id int64) (storage.Record, error) {
	if _, ok := db.registry.Lookup(t); !ok {
		return storage.Record{}, &ErrIndexNotFound{Type: t}
	}

	rec, err := db.store.Get(ctx, t, id)

	return rec, translateError(err)
}

// IndexStats describes one initialized index instance.
type IndexStats struct {
	index.Stats
	Records  int  `json:"records"`
	Poisoned bool `json:"poisoned,omitempty"`
}

// Stats describes every initialized index instance, ordered by type.
func (db *DB) Stats(ctx context.Context) ([]IndexStats, error) {
	types := db.registry.Types()
	out := make([]IndexStats, 0, len(types))

	for _, t := range types {
		h, ok := db.registry.Lookup(t)
		if !ok {
			continue
		}

		var st IndexStats
		err := h.Do(func(idx index.Index) error {
			st.Stats = idx.Stats()
			return nil
		})

		switch {
		case errors.Is(err, ErrPoisoned):
			cfg := h.Config()
			st.Stats = index.Stats{Type: cfg.Type, Dimension: cfg.Dimension, Metric: cfg.Metric}
			st.Poisoned = true
		case err != nil:
			return nil, translateError(err)
		}

		n, err := db.store.Count(ctx, t)
		if err != nil {
			return nil, err
		}
		st.Records = n

		out = append(out, st)
	}

	return out, nil
}

// Types returns the initialized index types in ascending order.
func (db *DB) Types() []index.Type {
	return db.registry.Types()
}

// vectorLookup is implemented by indexes that can hand back a stored vector.
type vectorLookup interface {
	Vector(id int64) ([]float32, bool)
}

// lookupVector returns the vector idx holds under id, or nil.
func lookupVector(idx index.Index, id int64) []float32 {
	lk, ok := idx.(vectorLookup)
	if !ok {
		return nil
	}

	v, ok := lk.Vector(id)
	if !ok {
		return nil
	}

	return v
}

// undoInsert reverts an insert of id. prev is the vector id held before the
// insert, or nil. Indexes that cannot remove keep the inserted vector.
func undoInsert(idx index.Index, id int64, prev []float32) {
	if err := idx.Remove([]int64{id}); err != nil {
		return
	}

	if prev != nil {
		_, _ = idx.Insert(prev, id)
	}
}

func newRecord(t index.Type, id int64, item Item) storage.Record {
	vec := make([]float32, len(item.Vector))
	copy(vec, item.Vector)

	return storage.Record{
		ID:         id,
		Index:      t,
		Vector:     vec,
		Attributes: item.Attributes,
	}
}
