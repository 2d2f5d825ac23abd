package table

import (
	"container/heap"

	"golang.org/x/exp/constraints"
)

// pqItem is one entry in a PriorityQueue's backing heap.
type pqItem[V any, P constraints.Ordered] struct {
	value    V
	priority P
	index    int
}

type pqHeap[V any, P constraints.Ordered] []*pqItem[V, P]

func (h pqHeap[V, P]) Len() int { return len(h) }
func (h pqHeap[V, P]) Less(i, j int) bool {
	return h[i].priority < h[j].priority
}
func (h pqHeap[V, P]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *pqHeap[V, P]) Push(x any) {
	item := x.(*pqItem[V, P])
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *pqHeap[V, P]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// PriorityQueue is a generic min-heap keyed by an ordered priority,
// grounded on the teacher's non-generic fw/table/priority-queue.go and
// the generic std/utils/priority_queue package, reimplemented directly
// over container/heap with golang.org/x/exp/constraints so it can live
// in this module without vendoring a sibling package. The PIT's single
// expiry timer (table/pit.go) is the only consumer.
type PriorityQueue[V any, P constraints.Ordered] struct {
	h pqHeap[V, P]
}

// NewPriorityQueue constructs an empty queue.
func NewPriorityQueue[V any, P constraints.Ordered]() *PriorityQueue[V, P] {
	return &PriorityQueue[V, P]{}
}

func (q *PriorityQueue[V, P]) Len() int { return len(q.h) }

// Push adds value with the given priority; lowest priority is popped
// first.
func (q *PriorityQueue[V, P]) Push(value V, priority P) {
	heap.Push(&q.h, &pqItem[V, P]{value: value, priority: priority})
}

// Peek returns the minimum-priority item without removing it.
func (q *PriorityQueue[V, P]) Peek() (value V, priority P, ok bool) {
	if len(q.h) == 0 {
		return value, priority, false
	}
	return q.h[0].value, q.h[0].priority, true
}

// Pop removes and returns the minimum-priority item.
func (q *PriorityQueue[V, P]) Pop() (value V, priority P, ok bool) {
	if len(q.h) == 0 {
		return value, priority, false
	}
	item := heap.Pop(&q.h).(*pqItem[V, P])
	return item.value, item.priority, true
}
