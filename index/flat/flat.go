// Package flat provides an implementation of a flat index for vector storage and search.
package flat

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/vecdb/distance"
	"github.com/hupe1980/vecdb/index"
	"github.com/hupe1980/vecdb/internal/queue"
)

// Compile-time check to ensure Flat satisfies the index interface.
var _ index.Index = (*Flat)(nil)

// DuplicatePolicy decides what Insert does with an id that is already stored.
type DuplicatePolicy int

const (
	// DuplicateReject fails the insert with *index.ErrDuplicateID.
	DuplicateReject DuplicatePolicy = iota

	// DuplicateOverwrite tombstones the old vector and stores the new one.
	DuplicateOverwrite
)

// Options contains configuration options for the flat index.
type Options struct {
	// Dimension is the fixed vector dimensionality for this index.
	// It must be > 0 and is enforced for all inserts and searches.
	Dimension int

	// Metric is the distance metric used for scoring.
	Metric distance.Metric

	// DuplicatePolicy controls inserts of an id that is already stored.
	DuplicatePolicy DuplicatePolicy
}

// DefaultOptions contains the default configuration options for the flat index.
var DefaultOptions = Options{
	Dimension:       0,
	Metric:          distance.Euclidean,
	DuplicatePolicy: DuplicateReject,
}

type entry struct {
	id     int64
	vector []float32 // nil once tombstoned
}

// Flat represents a flat index for vector storage and search.
//
// Vectors live in an append-only slot slice. Removal tombstones the slot;
// slots are never reused, so slot order is insertion order.
// Flat is not safe for concurrent use.
type Flat struct {
	opts         Options
	distanceFunc distance.Func

	entries    []entry
	slots      map[int64]uint32 // live id -> slot
	tombstones *roaring.Bitmap
}

// New creates a new instance of the flat index.
// Dimension is required and must be set at creation time.
func New(optFns ...func(o *Options)) (*Flat, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Dimension <= 0 {
		return nil, &index.ErrInvalidDimension{Dimension: opts.Dimension}
	}

	fn, err := distance.Provider(opts.Metric)
	if err != nil {
		return nil, &index.ErrInvalidMetric{Metric: opts.Metric}
	}

	return &Flat{
		opts:         opts,
		distanceFunc: fn,
		slots:        make(map[int64]uint32),
		tombstones:   roaring.New(),
	}, nil
}

// Type returns index.TypeFlat.
func (f *Flat) Type() index.Type { return index.TypeFlat }

// Dimension returns the fixed vector dimension.
func (f *Flat) Dimension() int { return f.opts.Dimension }

// Metric returns the distance metric.
func (f *Flat) Metric() distance.Metric { return f.opts.Metric }

// Len returns the number of live vectors.
func (f *Flat) Len() int { return len(f.slots) }

// Insert stores a copy of v under id.
func (f *Flat) Insert(v []float32, id int64) (int64, error) {
	if err := index.CheckDimension(f.opts.Dimension, v); err != nil {
		return 0, err
	}

	// Negative ids are reserved for the NotFoundID/AutoID sentinel.
	if id < 0 {
		return 0, &index.ErrInvalidID{ID: id}
	}

	if old, ok := f.slots[id]; ok {
		if f.opts.DuplicatePolicy != DuplicateOverwrite {
			return 0, &index.ErrDuplicateID{ID: id}
		}
		f.tombstone(old)
	}

	// Make a copy of the vector to ensure changes outside this function don't affect the index
	vec := make([]float32, len(v))
	copy(vec, v)

	slot := uint32(len(f.entries))
	f.entries = append(f.entries, entry{id: id, vector: vec})
	f.slots[id] = slot

	return id, nil
}

// Remove tombstones every listed id. Unknown ids are ignored.
func (f *Flat) Remove(ids []int64) error {
	for _, id := range ids {
		slot, ok := f.slots[id]
		if !ok {
			continue
		}
		delete(f.slots, id)
		f.tombstone(slot)
	}
	return nil
}

func (f *Flat) tombstone(slot uint32) {
	f.tombstones.Add(slot)
	f.entries[slot].vector = nil
}

// Search scans every live vector and returns the k closest to q in ascending
// distance order. Ties go to the vector inserted first. When fewer than k
// vectors are stored all of them are returned; there is no padding.
// efSearch is ignored.
func (f *Flat) Search(q []float32, k int, _ int) ([]index.Result, error) {
	if err := index.CheckK(k); err != nil {
		return nil, err
	}

	if err := index.CheckDimension(f.opts.Dimension, q); err != nil {
		return nil, err
	}

	limit := min(k, len(f.slots))
	if limit == 0 {
		return []index.Result{}, nil
	}

	topCandidates := queue.NewMax(limit)

	for slot, e := range f.entries {
		if f.tombstones.Contains(uint32(slot)) {
			continue
		}
		topCandidates.PushBounded(queue.PriorityQueueItem{
			Node:     uint32(slot),
			Distance: f.distanceFunc(q, e.vector),
		}, limit)
	}

	items := topCandidates.Ascending()
	results := make([]index.Result, len(items))
	for i, item := range items {
		results[i] = index.Result{ID: f.entries[item.Node].id, Distance: item.Distance}
	}

	return results, nil
}

// Vector returns the vector stored under id.
// The returned slice aliases index memory and must not be modified.
func (f *Flat) Vector(id int64) ([]float32, bool) {
	slot, ok := f.slots[id]
	if !ok {
		return nil, false
	}
	return f.entries[slot].vector, true
}
