package sequence

// Handle addresses a node in a List. Handles are stable for the lifetime of
// the list: removed nodes are tombstoned, never reused or freed, so stale
// references held by an index still point at a readable node.
type Handle int32

// Nil is the handle of no node.
const Nil Handle = -1

// List is an arena backed doubly linked list. All nodes live in parallel
// slices indexed by Handle; prev/next are handles rather than pointers.
// Nodes are only ever appended, so for live nodes handle order is list order.
type List[V comparable] struct {
	vals []V
	prev []Handle
	next []Handle
	dead []bool

	head Handle
	tail Handle
	size int
}

// Sequence is the list of symbols being merged.
type Sequence = List[Symbol]

// NewList returns an empty list with room for capHint nodes.
func NewList[V comparable](capHint int) *List[V] {
	return &List[V]{
		vals: make([]V, 0, capHint),
		prev: make([]Handle, 0, capHint),
		next: make([]Handle, 0, capHint),
		dead: make([]bool, 0, capHint),
		head: Nil,
		tail: Nil,
	}
}

// FromBytes builds a Sequence holding one raw byte symbol per input byte.
func FromBytes(input []byte) *Sequence {
	s := NewList[Symbol](len(input))
	for _, b := range input {
		s.Append(Symbol(b))
	}
	return s
}

// FromSymbols builds a Sequence over a copy of syms.
func FromSymbols(syms []Symbol) *Sequence {
	s := NewList[Symbol](len(syms))
	for _, v := range syms {
		s.Append(v)
	}
	return s
}

// Append adds v at the end of the list in O(1).
func (l *List[V]) Append(v V) Handle {
	h := Handle(len(l.vals))
	l.vals = append(l.vals, v)
	l.prev = append(l.prev, l.tail)
	l.next = append(l.next, Nil)
	l.dead = append(l.dead, false)
	if l.tail == Nil {
		l.head = h
	} else {
		l.next[l.tail] = h
	}
	l.tail = h
	l.size++
	return h
}

// Delete unlinks h in O(1). The node keeps its value and stays addressable.
func (l *List[V]) Delete(h Handle) {
	if l.dead[h] {
		return
	}
	p, n := l.prev[h], l.next[h]
	if p != Nil {
		l.next[p] = n
	} else {
		l.head = n
	}
	if n != Nil {
		l.prev[n] = p
	} else {
		l.tail = p
	}
	l.prev[h], l.next[h] = Nil, Nil
	l.dead[h] = true
	l.size--
}

// MergeWindow unlinks the k-1 nodes following h and stores v in h. It returns
// the number of nodes removed, which is smaller than k-1 near the tail.
func (l *List[V]) MergeWindow(h Handle, k int, v V) int {
	removed := 0
	for i := 1; i < k; i++ {
		n := l.next[h]
		if n == Nil {
			break
		}
		l.Delete(n)
		removed++
	}
	l.vals[h] = v
	return removed
}

// Window returns up to n nodes starting at h (h included).
func (l *List[V]) Window(h Handle, n int) []Handle {
	return l.AppendWindow(make([]Handle, 0, n), h, n)
}

// AppendWindow is Window appending into dst.
func (l *List[V]) AppendWindow(dst []Handle, h Handle, n int) []Handle {
	for i := 0; i < n && h != Nil; i++ {
		dst = append(dst, h)
		h = l.next[h]
	}
	return dst
}

// GoBack walks up to n predecessors of h and returns the node reached and how
// many steps were actually taken.
func (l *List[V]) GoBack(h Handle, n int) (Handle, int) {
	for i := 0; i < n; i++ {
		p := l.prev[h]
		if p == Nil {
			return h, i
		}
		h = p
	}
	return h, n
}

func (l *List[V]) Value(h Handle) V       { return l.vals[h] }
func (l *List[V]) SetValue(h Handle, v V) { l.vals[h] = v }
func (l *List[V]) Next(h Handle) Handle   { return l.next[h] }
func (l *List[V]) Prev(h Handle) Handle   { return l.prev[h] }
func (l *List[V]) Head() Handle           { return l.head }
func (l *List[V]) Tail() Handle           { return l.tail }

// Alive reports whether h is still linked into the list.
func (l *List[V]) Alive(h Handle) bool { return h >= 0 && int(h) < len(l.dead) && !l.dead[h] }

// Len is the number of live nodes.
func (l *List[V]) Len() int { return l.size }

// Values returns the live values in list order.
func (l *List[V]) Values() []V {
	out := make([]V, 0, l.size)
	for h := l.head; h != Nil; h = l.next[h] {
		out = append(out, l.vals[h])
	}
	return out
}

// TupleAt reads up to k consecutive symbols starting at h. Near the tail the
// returned tuple is shorter than k.
func TupleAt(s *Sequence, h Handle, k int) Tuple {
	var buf [16]Symbol
	syms := buf[:0]
	for i := 0; i < k && h != Nil; i++ {
		syms = append(syms, s.vals[h])
		h = s.next[h]
	}
	return NewTuple(syms...)
}
