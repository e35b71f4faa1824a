package sim

import "container/heap"

// Completion is a started process waiting for its results to be credited.
type Completion struct {
	Cycle   int64     // start + duration
	Process ProcessID // process whose results are credited
	seq     uint64    // insertion order, breaks ties between equal cycles
}

// PendingHeap is a priority queue of completions with deterministic ordering.
// Ordering: completion cycle → insertion order.
type PendingHeap struct {
	items   []Completion
	nextSeq uint64
}

// NewPendingHeap creates an empty pending heap.
func NewPendingHeap() *PendingHeap {
	h := &PendingHeap{
		items: make([]Completion, 0),
	}
	heap.Init(h)
	return h
}

// Len implements heap.Interface
func (h *PendingHeap) Len() int {
	return len(h.items)
}

// Less implements heap.Interface with deterministic ordering
func (h *PendingHeap) Less(i, j int) bool {
	ci, cj := h.items[i], h.items[j]
	if ci.Cycle != cj.Cycle {
		return ci.Cycle < cj.Cycle
	}
	return ci.seq < cj.seq
}

// Swap implements heap.Interface
func (h *PendingHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

// Push implements heap.Interface
func (h *PendingHeap) Push(x any) {
	h.items = append(h.items, x.(Completion))
}

// Pop implements heap.Interface
func (h *PendingHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[0 : n-1]
	return item
}

// Schedule inserts a completion; equal cycles keep insertion order.
func (h *PendingHeap) Schedule(cycle int64, p ProcessID) {
	h.nextSeq++
	heap.Push(h, Completion{Cycle: cycle, Process: p, seq: h.nextSeq})
}

// PopNext removes and returns the earliest completion. ok is false when empty.
func (h *PendingHeap) PopNext() (c Completion, ok bool) {
	if h.Len() == 0 {
		return Completion{}, false
	}
	return heap.Pop(h).(Completion), true
}

// Peek returns the earliest completion without removing it.
func (h *PendingHeap) Peek() (c Completion, ok bool) {
	if h.Len() == 0 {
		return Completion{}, false
	}
	return h.items[0], true
}

// Sorted returns the completions in drain order. The heap is not modified.
func (h *PendingHeap) Sorted() []Completion {
	cp := &PendingHeap{items: append([]Completion(nil), h.items...)}
	out := make([]Completion, 0, len(cp.items))
	for cp.Len() > 0 {
		out = append(out, heap.Pop(cp).(Completion))
	}
	return out
}

func (h *PendingHeap) clone() *PendingHeap {
	return &PendingHeap{items: append([]Completion(nil), h.items...), nextSeq: h.nextSeq}
}
