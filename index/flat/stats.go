package flat

import "github.com/hupe1980/vecdb/index"

// Stats returns statistics about the flat index.
func (f *Flat) Stats() index.Stats {
	return index.Stats{
		Type:       index.TypeFlat,
		Dimension:  f.opts.Dimension,
		Metric:     f.opts.Metric,
		Len:        len(f.slots),
		Tombstones: int(f.tombstones.GetCardinality()),
	}
}
