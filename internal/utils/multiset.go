package utils

import (
	"cmp"
	"fmt"
)

// Scorer maps an item and its raw count to the key the multiset orders by.
type Scorer[K cmp.Ordered] interface {
	Score(item K, count int) float64
}

// ScoreFunc adapts a plain function to Scorer.
type ScoreFunc[K cmp.Ordered] func(item K, count int) float64

func (f ScoreFunc[K]) Score(item K, count int) float64 { return f(item, count) }

// Frequency orders items by their raw count.
func Frequency[K cmp.Ordered]() Scorer[K] {
	return ScoreFunc[K](func(_ K, count int) float64 { return float64(count) })
}

type entry[K cmp.Ordered] struct {
	item  K
	count int
	pos   int
}

// Scored is one live item of a Multiset with its count and score.
type Scored[K cmp.Ordered] struct {
	Item  K
	Count int
	Score float64
}

// Multiset is a counter of items that answers "which item has the highest
// score" in O(1).
//
// Internally it is an array backed max-heap of entries, each entry knowing its
// own heap position so its count can be raised or lowered in place. Updates
// are buffered: Add and Remove only record a signed delta, and Commit applies
// all deltas, sifting every touched entry exactly once however many times it
// was touched. Entries compare by score, then by item, so ties are broken
// deterministically.
//
// Multiset is not safe for concurrent use.
type Multiset[K cmp.Ordered] struct {
	heap  []*entry[K]
	index map[K]*entry[K]

	pending map[K]int
	touched []K

	scorer Scorer[K]
	retain bool
	err    error
}

// MultisetOption configures a Multiset.
type MultisetOption[K cmp.Ordered] func(*Multiset[K])

// WithScorer orders entries by s instead of their raw count.
func WithScorer[K cmp.Ordered](s Scorer[K]) MultisetOption[K] {
	return func(m *Multiset[K]) { m.scorer = s }
}

// WithRetainEmpty keeps entries whose count drops to zero. Scorers whose key
// depends on counters outside the multiset may need them. Such entries stay
// visible to MostCommon and TopK, so callers looking for a live item must
// check Count.
func WithRetainEmpty[K cmp.Ordered]() MultisetOption[K] {
	return func(m *Multiset[K]) { m.retain = true }
}

// NewMultiset returns an empty multiset.
func NewMultiset[K cmp.Ordered](opts ...MultisetOption[K]) *Multiset[K] {
	m := &Multiset[K]{
		index:   make(map[K]*entry[K]),
		pending: make(map[K]int),
		scorer:  Frequency[K](),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Add buffers n more copies of item.
func (m *Multiset[K]) Add(item K, n int) { m.delta(item, n) }

// Remove buffers the removal of n copies of item.
func (m *Multiset[K]) Remove(item K, n int) { m.delta(item, -n) }

func (m *Multiset[K]) delta(item K, n int) {
	if _, ok := m.pending[item]; !ok {
		m.touched = append(m.touched, item)
	}
	m.pending[item] += n
}

// Commit applies every buffered delta. A count going negative means the
// caller removed something it never added; the first such error is returned
// and also kept for Err.
func (m *Multiset[K]) Commit() error {
	if len(m.touched) == 0 {
		return m.err
	}
	for _, item := range m.touched {
		d := m.pending[item]
		delete(m.pending, item)
		if d == 0 {
			continue
		}
		e := m.index[item]
		if e == nil {
			e = &entry[K]{item: item, pos: len(m.heap)}
			m.heap = append(m.heap, e)
			m.index[item] = e
		}
		e.count += d
		if e.count < 0 && m.err == nil {
			m.err = fmt.Errorf("%w: %v has count %d", ErrNegativeCount, item, e.count)
		}
		if d > 0 {
			m.up(e.pos)
			continue
		}
		m.down(e.pos)
		if e.count <= 0 && !m.retain {
			m.removeAt(e.pos)
		}
	}
	m.touched = m.touched[:0]
	return m.err
}

// Err returns the first error met while committing.
func (m *Multiset[K]) Err() error { return m.err }

// Count returns the committed count of item, or 0.
func (m *Multiset[K]) Count(item K) int {
	m.Commit()
	if e, ok := m.index[item]; ok {
		return e.count
	}
	return 0
}

// MostCommon returns the item with the highest score.
func (m *Multiset[K]) MostCommon() (item K, score float64, ok bool) {
	m.Commit()
	if len(m.heap) == 0 {
		return item, 0, false
	}
	e := m.heap[0]
	return e.item, m.score(e), true
}

// NonEmpty reports whether any entry is left.
func (m *Multiset[K]) NonEmpty() bool {
	m.Commit()
	return len(m.heap) > 0
}

// Len is the number of entries, including retained empty ones.
func (m *Multiset[K]) Len() int {
	m.Commit()
	return len(m.heap)
}

// Entries returns every entry in heap order.
func (m *Multiset[K]) Entries() []Scored[K] {
	m.Commit()
	out := make([]Scored[K], len(m.heap))
	for i, e := range m.heap {
		out[i] = Scored[K]{Item: e.item, Count: e.count, Score: m.score(e)}
	}
	return out
}

// Less reports whether a orders before b under the multiset's comparator.
func (m *Multiset[K]) Less(a, b Scored[K]) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Item < b.Item
}

func (m *Multiset[K]) score(e *entry[K]) float64 { return m.scorer.Score(e.item, e.count) }

func (m *Multiset[K]) less(a, b *entry[K]) bool {
	sa, sb := m.score(a), m.score(b)
	if sa != sb {
		return sa < sb
	}
	return a.item < b.item
}

func (m *Multiset[K]) swap(i, j int) {
	m.heap[i], m.heap[j] = m.heap[j], m.heap[i]
	m.heap[i].pos = i
	m.heap[j].pos = j
}

func (m *Multiset[K]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !m.less(m.heap[parent], m.heap[i]) {
			break
		}
		m.swap(parent, i)
		i = parent
	}
}

func (m *Multiset[K]) down(i int) {
	n := len(m.heap)
	for {
		left := 2*i + 1
		right := 2*i + 2
		largest := i

		if left < n && m.less(m.heap[largest], m.heap[left]) {
			largest = left
		}
		if right < n && m.less(m.heap[largest], m.heap[right]) {
			largest = right
		}
		if largest == i {
			break
		}
		m.swap(i, largest)
		i = largest
	}
}

// removeAt drops the entry at pos by moving the last entry into its slot and
// restoring heap order from there.
func (m *Multiset[K]) removeAt(pos int) {
	e := m.heap[pos]
	last := len(m.heap) - 1
	moved := m.heap[last]
	m.heap[last] = nil
	m.heap = m.heap[:last]
	delete(m.index, e.item)
	if pos == last {
		return
	}
	m.heap[pos] = moved
	moved.pos = pos
	if m.less(e, moved) {
		m.up(pos)
	} else {
		m.down(pos)
	}
}
