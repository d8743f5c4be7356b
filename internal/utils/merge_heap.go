package utils

const (
	defaultHeapPrealloc = 8192
)

// MergeCand is a pending pair merge found while encoding with a ranked
// merge table. Ver* snapshot the per-slot versions at push time so a
// candidate whose slots changed since can be told apart and dropped.
type MergeCand struct {
	Rank  int // lower wins
	Pos   int // left slot; lower wins on tie to enforce leftmost
	Left  int32
	Right int32
	VerL  uint32
	VerR  uint32
}

// MergeQueue orders merge candidates by (Rank, Pos).
type MergeQueue interface {
	Push(c MergeCand)
	Pop() (MergeCand, bool)
	Len() int
	Reset()
}

// MergeHeap is a binary min-heap of merge candidates.
type MergeHeap struct {
	items        []MergeCand
	preAllocated bool
}

func NewMergeHeap(preAlloc ...bool) *MergeHeap {
	shouldPreAlloc := len(preAlloc) > 0 && preAlloc[0]

	capacity := 64
	if shouldPreAlloc {
		capacity = defaultHeapPrealloc
	}
	return &MergeHeap{
		items:        make([]MergeCand, 0, capacity),
		preAllocated: shouldPreAlloc,
	}
}

func (h *MergeHeap) Len() int {
	return len(h.items)
}

func candLess(a, b MergeCand) bool {
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	return a.Pos < b.Pos
}

func (h *MergeHeap) Push(c MergeCand) {
	h.items = append(h.items, c)
	h.up(len(h.items) - 1)
}

func (h *MergeHeap) Pop() (MergeCand, bool) {
	if len(h.items) == 0 {
		return MergeCand{}, false
	}

	n := len(h.items) - 1
	h.items[0], h.items[n] = h.items[n], h.items[0]

	result := h.items[n]
	h.items = h.items[:n]

	if len(h.items) > 0 {
		h.down(0)
	}

	return result, true
}

func (h *MergeHeap) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !candLess(h.items[i], h.items[parent]) {
			break
		}
		h.items[parent], h.items[i] = h.items[i], h.items[parent]
		i = parent
	}
}

func (h *MergeHeap) down(i int) {
	n := len(h.items)
	for {
		left := 2*i + 1
		right := 2*i + 2
		smallest := i

		if left < n && candLess(h.items[left], h.items[smallest]) {
			smallest = left
		}
		if right < n && candLess(h.items[right], h.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

func (h *MergeHeap) Reset() {
	if h.preAllocated {
		h.items = h.items[:0]
	} else {
		h.items = nil
	}
}
