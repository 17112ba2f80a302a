// Package index defines the capability shared by every vector index and the
// types that travel across it.
//
// Vecdb ships two index types:
//
//   - Flat: exact nearest neighbor search by exhaustive scan (package flat)
//   - Graph: approximate search over a multi-layer navigable small-world graph
//     (package hnsw)
//
// A third tag, Filter, is reserved. It parses, but no implementation can be
// constructed for it.
//
// # Index Selection
//
//   - Flat: ground truth, small collections, 100% recall required
//   - Graph: larger collections where sub-linear search matters and recall in
//     the high nineties is acceptable
//
// # Index Interface
//
//	type Index interface {
//	    Type() Type
//	    Dimension() int
//	    Metric() distance.Metric
//	    Len() int
//	    Insert(v []float32, id int64) (int64, error)
//	    Remove(ids []int64) error
//	    Search(q []float32, k int, efSearch int) ([]Result, error)
//	}
//
// Implementations are not safe for concurrent use; callers serialize access
// (see package engine).
package index
