package eventbus

import (
	"container/heap"
)

// heapEntry pairs a WorkItem with its insertion sequence, used as the final
// tiebreak so equal-priority, equal-timestamp items still pop FIFO.
type heapEntry struct {
	item *WorkItem
	seq  int
}

type heapQueue []*heapEntry

func (q heapQueue) Len() int { return len(q) }

func (q heapQueue) Less(i, j int) bool {
	if q[i].item.Priority != q[j].item.Priority {
		return q[i].item.Priority < q[j].item.Priority
	}
	if !q[i].item.CreatedAt.Equal(q[j].item.CreatedAt) {
		return q[i].item.CreatedAt.Before(q[j].item.CreatedAt)
	}
	return q[i].seq < q[j].seq
}

func (q heapQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *heapQueue) Push(x any) { *q = append(*q, x.(*heapEntry)) }

func (q *heapQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// priorityQueue is a container/heap priority queue ordered by (priority,
// createdAt, sequence) ascending — no third-party queue package appears
// anywhere in the retrieval pack for this concern, so container/heap is the
// idiomatic stdlib choice (see DESIGN.md).
type priorityQueue struct {
	h   heapQueue
	seq int
}

func newPriorityQueue() *priorityQueue {
	pq := &priorityQueue{}
	heap.Init(&pq.h)
	return pq
}

func (pq *priorityQueue) push(w *WorkItem) {
	pq.seq++
	heap.Push(&pq.h, &heapEntry{item: w, seq: pq.seq})
}

func (pq *priorityQueue) len() int { return pq.h.Len() }

func (pq *priorityQueue) all() []*WorkItem {
	items := make([]*WorkItem, pq.h.Len())
	for i, e := range pq.h {
		items[i] = e.item
	}
	return items
}

// removeWork removes and returns the item with the given workId, if pending.
func (pq *priorityQueue) removeWork(workId string) *WorkItem {
	for i, e := range pq.h {
		if e.item.WorkId == workId {
			removed := heap.Remove(&pq.h, i).(*heapEntry)
			return removed.item
		}
	}
	return nil
}
