package hnsw

import "cmp"

// Neighbor represents a connection to another node with its cached distance.
type Neighbor struct {
	ID   uint32
	Dist float32
}

// compareNeighbors orders by distance, then by slot.
func compareNeighbors(a, b Neighbor) int {
	if c := cmp.Compare(a.Dist, b.Dist); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// node represents a vector in the graph.
type node struct {
	vector      []float32
	level       int          // highest layer the node participates in
	connections [][]Neighbor // one neighbor list per layer 0..level
}

func newNode(vector []float32, level int) *node {
	return &node{
		vector:      vector,
		level:       level,
		connections: make([][]Neighbor, level+1),
	}
}
