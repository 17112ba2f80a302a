// Package queue provides the distance-ordered heaps used by the flat scan
// and the graph beam search.
//
// Items compare by Distance first and by Node second, so equal distances
// are resolved in favor of the lower node (slot) number. Slots are handed out
// in insertion order, which makes "first inserted wins" the tie-break rule
// for every index built on this package.
package queue

// PriorityQueueItem represents an item in the priority queue.
type PriorityQueueItem struct {
	Node     uint32  // Internal slot of the vector.
	Distance float32 // Distance is the priority of the item in the queue.
}

// Closer reports whether a ranks strictly before b in ascending order.
func Closer(a, b PriorityQueueItem) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Node < b.Node
}

// PriorityQueue implements heap.Interface and holds PriorityQueueItems.
type PriorityQueue struct {
	isMaxHeap bool // true = farthest on top, false = closest on top
	items     []PriorityQueueItem
}

// NewMin initializes a queue that keeps the closest item on top.
func NewMin(capacity int) *PriorityQueue {
	return &PriorityQueue{
		isMaxHeap: false,
		items:     make([]PriorityQueueItem, 0, capacity),
	}
}

// NewMax initializes a queue that keeps the farthest item on top.
func NewMax(capacity int) *PriorityQueue {
	return &PriorityQueue{
		isMaxHeap: true,
		items:     make([]PriorityQueueItem, 0, capacity),
	}
}

// TopItem returns the top element of the heap.
func (pq *PriorityQueue) TopItem() (PriorityQueueItem, bool) {
	if len(pq.items) == 0 {
		return PriorityQueueItem{}, false
	}
	return pq.items[0], true
}

// PushItem inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue) PushItem(item PriorityQueueItem) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// PopItem removes and returns the top element while maintaining the heap invariant.
func (pq *PriorityQueue) PopItem() (PriorityQueueItem, bool) {
	n := len(pq.items)
	if n == 0 {
		return PriorityQueueItem{}, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items[n-1] = PriorityQueueItem{}
	pq.items = pq.items[:n-1]
	if n-1 > 0 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	return root, true
}

// PushBounded keeps at most limit items in a max-heap: the item is added
// while there is room, otherwise it replaces the current farthest item when
// it ranks closer. It reports whether the item was kept.
func (pq *PriorityQueue) PushBounded(item PriorityQueueItem, limit int) bool {
	if len(pq.items) < limit {
		pq.PushItem(item)
		return true
	}
	top, ok := pq.TopItem()
	if !ok || !Closer(item, top) {
		return false
	}
	pq.items[0] = item
	pq.siftDown(0)
	return true
}

// Ascending drains the queue and returns its items closest first.
func (pq *PriorityQueue) Ascending() []PriorityQueueItem {
	out := make([]PriorityQueueItem, len(pq.items))
	if pq.isMaxHeap {
		for i := len(out) - 1; i >= 0; i-- {
			out[i], _ = pq.PopItem()
		}
		return out
	}
	for i := range out {
		out[i], _ = pq.PopItem()
	}
	return out
}

func (pq *PriorityQueue) less(i, j int) bool {
	if pq.isMaxHeap {
		return Closer(pq.items[j], pq.items[i])
	}
	return Closer(pq.items[i], pq.items[j])
}

func (pq *PriorityQueue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !pq.less(i, p) {
			return
		}
		pq.items[i], pq.items[p] = pq.items[p], pq.items[i]
		i = p
	}
}

func (pq *PriorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && pq.less(r, l) {
			best = r
		}
		if !pq.less(best, i) {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}

// Len returns the number of elements in the priority queue.
func (pq *PriorityQueue) Len() int { return len(pq.items) }
