// Package engine owns the live index instances of a vecdb process.
//
// # Registry
//
// A Registry maps each index.Type to at most one instance. The map is guarded
// by a short-lived lock that is held only while a handle is inserted or
// fetched, never across an index operation, so unrelated index types never
// block each other.
//
//   - Initialize builds a fresh instance from an index.Config. Initializing a
//     type twice fails with ErrAlreadyInitialized.
//   - Reset replaces the instance of a type with an empty one built from the
//     same config. It is also the way to recover a poisoned handle.
//   - Lookup returns the Handle of a type, if initialized.
//
// # Handles
//
// Every instance sits behind a Handle with one exclusive lock. Insert, remove
// and search all run through Handle.Do, which holds that lock for the whole
// operation and releases it on every exit path.
//
// A panic inside Do poisons the handle: the panic is converted into a
// *PanicError and every later Do fails with ErrPoisoned without touching the
// instance, because its state may be half-mutated.
package engine
