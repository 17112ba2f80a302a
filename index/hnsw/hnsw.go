// Package hnsw implements the Hierarchical Navigable Small World (HNSW) graph for approximate nearest neighbor search.
package hnsw

import (
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/hupe1980/vecdb/distance"
	"github.com/hupe1980/vecdb/index"
	"github.com/hupe1980/vecdb/internal/queue"
)

const (
	// mmax0Multiplier is the multiplier for calculating maximum connections at layer 0.
	mmax0Multiplier = 2

	// minimumM is the minimum valid value for M.
	minimumM = 2

	// DefaultM is the default number of neighbors per node on levels above 0.
	DefaultM = 12
)

// Compile-time check to ensure HNSW satisfies the index interface.
var _ index.Index = (*HNSW)(nil)

// Options represents the options for configuring HNSW.
type Options struct {
	// Dimension is the fixed vector dimensionality. It must be > 0.
	Dimension int

	// Metric is the distance metric used for scoring.
	Metric distance.Metric

	// M specifies the maximum number of neighbors a node keeps on levels above 0.
	// Values below 2 are raised to 2.
	M int

	// MMax0 is the neighbor cap on level 0. Zero means 2*M.
	MMax0 int

	// EfConstruction is the candidate breadth used while linking a new node.
	// Zero means M.
	EfConstruction int

	// LevelMultiplier scales the level distribution. Zero means 1/ln(M).
	LevelMultiplier float64

	// Seed seeds the level generator. Zero seeds from the clock.
	Seed int64
}

// DefaultOptions contains the default configuration options for HNSW.
var DefaultOptions = Options{
	Dimension: 0,
	Metric:    distance.Euclidean,
	M:         DefaultM,
}

// HNSW represents the Hierarchical Navigable Small World graph.
//
// Nodes are addressed internally by slot (insertion order). Caller ids are
// mapped onto slots, so any non-negative id can be stored.
// HNSW is not safe for concurrent use.
type HNSW struct {
	opts         Options
	distanceFunc distance.Func

	mmax           int     // Max number of connections per element/per layer
	mmax0          int     // Max for the 0 layer
	efConstruction int     // Candidate breadth during insert
	ml             float64 // Normalization factor for level generation

	ep       uint32 // Entry point, always on the top layer
	maxLevel int    // Track the current max level used

	nodes  []*node
	ids    []int64          // slot -> id
	slots  map[int64]uint32 // id -> slot
	nextID int64            // next candidate for AutoID

	rng     *rand.Rand
	visited *visitedSet
}

// New creates a new HNSW instance.
func New(optFns ...func(o *Options)) (*HNSW, error) {
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

	if opts.M < minimumM {
		// M == 1 would result in division by zero
		// 1 / log(1.0 * M) = 1 / 0
		opts.M = minimumM
	}

	if opts.MMax0 <= 0 {
		opts.MMax0 = mmax0Multiplier * opts.M
	}

	if opts.EfConstruction <= 0 {
		opts.EfConstruction = opts.M
	}

	if opts.LevelMultiplier <= 0 {
		opts.LevelMultiplier = 1 / math.Log(float64(opts.M))
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &HNSW{
		opts:           opts,
		distanceFunc:   fn,
		mmax:           opts.M,
		mmax0:          opts.MMax0,
		efConstruction: opts.EfConstruction,
		ml:             opts.LevelMultiplier,
		slots:          make(map[int64]uint32),
		rng:            rand.New(rand.NewSource(seed)), // nolint gosec
		visited:        newVisitedSet(1024),
	}, nil
}

// Type returns index.TypeGraph.
func (h *HNSW) Type() index.Type { return index.TypeGraph }

// Dimension returns the fixed vector dimension.
func (h *HNSW) Dimension() int { return h.opts.Dimension }

// Metric returns the distance metric.
func (h *HNSW) Metric() distance.Metric { return h.opts.Metric }

// Len returns the number of nodes in the graph.
func (h *HNSW) Len() int { return len(h.nodes) }

// Insert inserts a new element into the HNSW graph.
// Pass index.AutoID to let the graph pick the next free sequential id.
func (h *HNSW) Insert(v []float32, id int64) (int64, error) {
	if err := index.CheckDimension(h.opts.Dimension, v); err != nil {
		return 0, err
	}

	id, err := h.assignID(id)
	if err != nil {
		return 0, err
	}

	// Make a copy of the vector to ensure changes outside this function don't affect the node
	vectorCopy := make([]float32, len(v))
	copy(vectorCopy, v)

	slot := uint32(len(h.nodes))
	n := newNode(vectorCopy, h.randomLevel())

	h.nodes = append(h.nodes, n)
	h.ids = append(h.ids, id)
	h.slots[id] = slot

	if slot == 0 {
		h.ep = slot
		h.maxLevel = n.level
		return id, nil
	}

	// Find single shortest path from top layers above our current node, which will be our new starting-point
	entry := h.findEp(vectorCopy, h.maxLevel, n.level)
	entries := []queue.PriorityQueueItem{entry}

	// For all levels equal and below our current node, find the top (closest) candidates and create a link
	for level := min(n.level, h.maxLevel); level >= 0; level-- {
		candidates := h.searchLayer(vectorCopy, entries, h.efConstruction, level)

		maxConnections := h.maxConnections(level)
		neighbours := make([]Neighbor, 0, min(len(candidates), maxConnections))
		for _, c := range candidates {
			if len(neighbours) == maxConnections {
				break
			}
			neighbours = append(neighbours, Neighbor{ID: c.Node, Dist: c.Distance})
		}

		n.connections[level] = neighbours

		// Next link the neighbour nodes to our new node, making it visible
		for _, nb := range neighbours {
			h.link(nb.ID, Neighbor{ID: slot, Dist: nb.Dist}, level)
		}

		entries = candidates
	}

	if n.level > h.maxLevel {
		h.ep = slot
		h.maxLevel = n.level
	}

	return id, nil
}

// Remove is not supported: unlinking a node would require re-linking its
// neighbors to keep the graph navigable.
func (h *HNSW) Remove(_ []int64) error {
	return index.Unsupported(index.TypeGraph, "remove")
}

// Search performs a k-nearest neighbor search in the HNSW graph.
//
// The layer 0 beam keeps max(efSearch, k) candidates. The result always has
// exactly k entries: a shortfall is padded with index.NotFoundID and
// index.MaxDistance. An empty graph returns an empty result.
func (h *HNSW) Search(q []float32, k int, efSearch int) ([]index.Result, error) {
	if err := index.CheckK(k); err != nil {
		return nil, err
	}

	if err := index.CheckDimension(h.opts.Dimension, q); err != nil {
		return nil, err
	}

	if len(h.nodes) == 0 {
		return []index.Result{}, nil
	}

	ef := max(efSearch, k)

	entry := h.findEp(q, h.maxLevel, 0)
	candidates := h.searchLayer(q, []queue.PriorityQueueItem{entry}, ef, 0)

	results := make([]index.Result, 0, k)
	for _, c := range candidates {
		if len(results) == k {
			break
		}
		results = append(results, index.Result{ID: h.ids[c.Node], Distance: c.Distance})
	}

	return index.Pad(results, k), nil
}

// storedVector returns the vector stored under id.
// The returned slice aliases index memory and must not be modified.
func (h *HNSW) storedVector(id int64) ([]float32, bool) {
	slot, ok := h.slots[id]
	if !ok {
		return nil, false
	}
	return h.nodes[slot].vector, true
}

func (h *HNSW) assignID(id int64) (int64, error) {
	if id == index.AutoID {
		for {
			if _, taken := h.slots[h.nextID]; !taken {
				break
			}
			h.nextID++
		}
		id = h.nextID
		h.nextID++
		return id, nil
	}

	if id < 0 {
		return 0, &index.ErrInvalidID{ID: id}
	}

	if _, taken := h.slots[id]; taken {
		return 0, &index.ErrDuplicateID{ID: id}
	}

	return id, nil
}

// randomLevel samples floor(-ln(U) * ml) with U in (0, 1].
func (h *HNSW) randomLevel() int {
	u := 1 - h.rng.Float64()
	return int(math.Floor(-math.Log(u) * h.ml))
}

func (h *HNSW) maxConnections(level int) int {
	// HNSW allows more connections for the bottom level (0)
	if level == 0 {
		return h.mmax0
	}
	return h.mmax
}

// findEp descends greedily from the entry point through the levels
// above stopLevel, hopping to the single closest neighbor until no hop
// improves the distance.
func (h *HNSW) findEp(q []float32, topLevel, stopLevel int) queue.PriorityQueueItem {
	curr := queue.PriorityQueueItem{
		Node:     h.ep,
		Distance: h.distanceFunc(q, h.nodes[h.ep].vector),
	}

	for level := topLevel; level > stopLevel; level-- {
		changed := true
		for changed {
			changed = false

			currObj := h.nodes[curr.Node]
			if level > currObj.level {
				break
			}

			for _, nb := range currObj.connections[level] {
				item := queue.PriorityQueueItem{
					Node:     nb.ID,
					Distance: h.distanceFunc(q, h.nodes[nb.ID].vector),
				}

				if queue.Closer(item, curr) {
					// Update the starting point to our new node
					curr = item
					changed = true
				}
			}
		}
	}

	return curr
}

// searchLayer performs a beam search of breadth ef on one level and returns
// the kept candidates closest first.
func (h *HNSW) searchLayer(q []float32, entries []queue.PriorityQueueItem, ef int, level int) []queue.PriorityQueueItem {
	h.visited.Reset()

	candidates := queue.NewMin(ef)
	topCandidates := queue.NewMax(ef)

	for _, ep := range entries {
		if h.visited.Visited(ep.Node) {
			continue
		}
		h.visited.Visit(ep.Node)
		candidates.PushItem(ep)
		topCandidates.PushBounded(ep, ef)
	}

	for candidates.Len() > 0 {
		candidate, _ := candidates.PopItem()

		farthest, _ := topCandidates.TopItem()
		if candidate.Distance > farthest.Distance {
			break
		}

		node := h.nodes[candidate.Node]
		if level > node.level {
			continue
		}

		for _, nb := range node.connections[level] {
			if h.visited.Visited(nb.ID) {
				continue
			}
			h.visited.Visit(nb.ID)

			item := queue.PriorityQueueItem{
				Node:     nb.ID,
				Distance: h.distanceFunc(q, h.nodes[nb.ID].vector),
			}

			// Add the element to topCandidates if size < ef or it beats the farthest kept item
			if topCandidates.PushBounded(item, ef) {
				candidates.PushItem(item)
			}
		}
	}

	return topCandidates.Ascending()
}

// link adds a connection from the node in slot first to nb on the given
// level and prunes the list back to the level cap, keeping the closest.
func (h *HNSW) link(first uint32, nb Neighbor, level int) {
	node := h.nodes[first]
	node.connections[level] = append(node.connections[level], nb)

	maxConnections := h.maxConnections(level)
	if len(node.connections[level]) <= maxConnections {
		return
	}

	// Order by best performing match (index 0) .. lowest
	slices.SortFunc(node.connections[level], compareNeighbors)
	node.connections[level] = slices.Clip(node.connections[level][:maxConnections])
}
