package sequence

// Leap is a List whose nodes are additionally chained per exact value, so all
// live nodes holding one value can be walked in O(1) per node without any
// revalidation. The price is two extra links per node and two maps of chain
// ends.
//
//	first(v), last(v)  first/last live node holding v
//	leap(h)            next node after h holding the same value
//	leapBack(h)        previous node before h holding the same value
type Leap[V comparable] struct {
	list     *List[V]
	leap     []Handle
	leapBack []Handle
	first    map[V]Handle
	last     map[V]Handle
}

// NewLeap returns an empty leap with room for capHint nodes.
func NewLeap[V comparable](capHint int) *Leap[V] {
	return &Leap[V]{
		list:     NewList[V](capHint),
		leap:     make([]Handle, 0, capHint),
		leapBack: make([]Handle, 0, capHint),
		first:    make(map[V]Handle),
		last:     make(map[V]Handle),
	}
}

// Append adds v at the end of the leap and of v's value chain.
func (lp *Leap[V]) Append(v V) Handle {
	h := lp.list.Append(v)
	lp.leap = append(lp.leap, Nil)
	lp.leapBack = append(lp.leapBack, Nil)
	lp.appendToValue(h)
	return h
}

// Delete unlinks h from both the list and its value chain.
func (lp *Leap[V]) Delete(h Handle) {
	if !lp.list.Alive(h) {
		return
	}
	lp.deleteFromValue(h)
	lp.list.Delete(h)
}

// SetValue moves h from its current value chain to the end of v's chain. The
// node keeps its place in the list.
func (lp *Leap[V]) SetValue(h Handle, v V) {
	lp.deleteFromValue(h)
	lp.list.SetValue(h, v)
	lp.appendToValue(h)
}

// Occurrences returns every live node holding v, in chain order. The result
// is a snapshot: editing the leap while iterating it is allowed, but callers
// must check that a node still holds v before acting on it.
func (lp *Leap[V]) Occurrences(v V) []Handle {
	var out []Handle
	h, ok := lp.first[v]
	if !ok {
		return nil
	}
	for ; h != Nil; h = lp.leap[h] {
		out = append(out, h)
	}
	return out
}

// First returns the first node holding v, or Nil.
func (lp *Leap[V]) First(v V) Handle {
	if h, ok := lp.first[v]; ok {
		return h
	}
	return Nil
}

// Last returns the last node holding v, or Nil.
func (lp *Leap[V]) Last(v V) Handle {
	if h, ok := lp.last[v]; ok {
		return h
	}
	return Nil
}

func (lp *Leap[V]) Leap(h Handle) Handle     { return lp.leap[h] }
func (lp *Leap[V]) LeapBack(h Handle) Handle { return lp.leapBack[h] }
func (lp *Leap[V]) Value(h Handle) V         { return lp.list.Value(h) }
func (lp *Leap[V]) Next(h Handle) Handle     { return lp.list.Next(h) }
func (lp *Leap[V]) Prev(h Handle) Handle     { return lp.list.Prev(h) }
func (lp *Leap[V]) Head() Handle             { return lp.list.Head() }
func (lp *Leap[V]) Tail() Handle             { return lp.list.Tail() }
func (lp *Leap[V]) Alive(h Handle) bool      { return lp.list.Alive(h) }
func (lp *Leap[V]) Len() int                 { return lp.list.Len() }
func (lp *Leap[V]) Values() []V              { return lp.list.Values() }

func (lp *Leap[V]) deleteFromValue(h Handle) {
	v := lp.list.Value(h)
	back, fwd := lp.leapBack[h], lp.leap[h]
	if back != Nil {
		lp.leap[back] = fwd
	}
	if fwd != Nil {
		lp.leapBack[fwd] = back
	}
	if f, ok := lp.first[v]; ok && f == h {
		if fwd == Nil {
			delete(lp.first, v)
		} else {
			lp.first[v] = fwd
		}
	}
	if l, ok := lp.last[v]; ok && l == h {
		if back == Nil {
			delete(lp.last, v)
		} else {
			lp.last[v] = back
		}
	}
	lp.leap[h], lp.leapBack[h] = Nil, Nil
}

func (lp *Leap[V]) appendToValue(h Handle) {
	v := lp.list.Value(h)
	tail, ok := lp.last[v]
	if !ok {
		lp.first[v] = h
	} else {
		lp.leap[tail] = h
		lp.leapBack[h] = tail
	}
	lp.last[v] = h
}
