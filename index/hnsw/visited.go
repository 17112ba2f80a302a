package hnsw

import "github.com/bits-and-blooms/bitset"

// visitedSet tracks the slots touched by one layer search.
type visitedSet struct {
	bits *bitset.BitSet
}

func newVisitedSet(capacity int) *visitedSet {
	return &visitedSet{bits: bitset.New(uint(capacity))}
}

// Visit marks a slot as visited.
func (v *visitedSet) Visit(slot uint32) {
	v.bits.Set(uint(slot))
}

// Visited returns true if the slot has been visited.
func (v *visitedSet) Visited(slot uint32) bool {
	return v.bits.Test(uint(slot))
}

// Reset clears the set for a new search.
func (v *visitedSet) Reset() {
	v.bits.ClearAll()
}
