// Package storage keeps the insert payload of every vector so it can be
// returned by id.
//
// Records are msgpack-encoded and stored in BadgerDB, by default in
// memory-only mode. Keys are "<TYPE>:" followed by the big-endian id, so
// all records of one index type share a prefix.
package storage
