package utils

import (
	"cmp"
	"container/heap"
)

// frontier is the container/heap adapter used by TopK. It holds positions in
// a Multiset's heap array and pops the highest scoring one first.
type frontier[K cmp.Ordered] struct {
	m    *Multiset[K]
	list []int
}

func (f frontier[K]) Len() int { return len(f.list) }
func (f frontier[K]) Less(i, j int) bool {
	return f.m.less(f.m.heap[f.list[j]], f.m.heap[f.list[i]])
}
func (f frontier[K]) Swap(i, j int) { f.list[i], f.list[j] = f.list[j], f.list[i] }
func (f *frontier[K]) Push(x any)   { f.list = append(f.list, x.(int)) }
func (f *frontier[K]) Pop() any {
	old := f.list
	n := len(old)
	x := old[n-1]
	f.list = old[:n-1]
	return x
}

// TopK returns the k highest scoring entries in non-increasing order.
//
// No entry of a max-heap outranks its parent, so the top k are reachable by
// expanding a frontier from the root: pop the best position, emit it, push its
// two children. The frontier never holds more than k+1 positions, which makes
// this O(k log k) instead of sorting every entry.
func (m *Multiset[K]) TopK(k int) []Scored[K] {
	m.Commit()
	if k <= 0 || len(m.heap) == 0 {
		return nil
	}

	f := &frontier[K]{m: m, list: make([]int, 0, k+1)}
	heap.Push(f, 0)

	out := make([]Scored[K], 0, k)
	for len(out) < k && f.Len() > 0 {
		p := heap.Pop(f).(int)
		e := m.heap[p]
		out = append(out, Scored[K]{Item: e.item, Count: e.count, Score: m.score(e)})
		for _, c := range [2]int{2*p + 1, 2*p + 2} {
			if c < len(m.heap) {
				heap.Push(f, c)
			}
		}
	}
	return out
}
