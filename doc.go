// Package vecdb provides an in-memory vector similarity search service.
//
// Vectors are stored under int64 identifiers in one of two index types,
// selected per call by an index.Type tag:
//
//   - index.TypeFlat: exact brute-force search, the reference index.
//   - index.TypeGraph: approximate search over a multi-layer navigable
//     small world graph (HNSW).
//
// # Quick Start
//
//	ctx := context.Background()
//	db, _ := vecdb.New()
//	defer db.Close()
//
//	_ = db.Initialize(ctx, index.Config{Type: index.TypeFlat, Dimension: 2})
//	_, _ = db.Insert(ctx, index.TypeFlat, []float32{0, 0}, 1)
//	_, _ = db.Insert(ctx, index.TypeFlat, []float32{3, 4}, 2)
//
//	ids, dists, _ := db.Search(ctx, index.TypeFlat, []float32{0, 0}, 2, 0)
//	// ids = [1 2], dists = [0 5]
//
// # Concurrency
//
// Every operation on an index instance holds that instance's exclusive lock
// for its full duration; search included. Different index types never block
// each other. Operations are not cancellable: the context is used for
// logging only.
//
// # Records
//
// Next to the index, every successful insert stores its vector and
// attributes in a record store (in-memory BadgerDB by default), so the
// payload can be fetched back with Query.
//
// # Errors
//
// Errors can be inspected with errors.Is/errors.As against the sentinels and
// types in this package. Kind maps any error to a stable string for
// transport layers.
package vecdb
