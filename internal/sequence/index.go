package sequence

import "slices"

// StaleIndex maps a tuple to every node that might start an occurrence of it.
//
// Entries are only ever appended. After an edit the node behind an entry may
// hold a different window, so callers must re-read the window (Valid) before
// acting on a handle. Keeping old entries is what lets the merge loop ask for
// the tuples that touched a window before it was edited.
//
// The index covers tuple lengths lo..hi. Fixed k indexing is lo == hi == k;
// the windowed indexer covers 2..x.
type StaleIndex struct {
	seq     *Sequence
	lo, hi  int
	entries map[Tuple][]Handle

	scratch []Handle
	syms    []Symbol
}

// NewStaleIndex returns an empty index over seq for tuple lengths lo..hi.
func NewStaleIndex(seq *Sequence, lo, hi int) *StaleIndex {
	return &StaleIndex{
		seq:     seq,
		lo:      lo,
		hi:      hi,
		entries: make(map[Tuple][]Handle),
	}
}

// BuildIndex indexes every tuple of length lo..hi currently in seq.
func BuildIndex(seq *Sequence, lo, hi int) *StaleIndex {
	ix := NewStaleIndex(seq, lo, hi)
	for h := seq.Head(); h != Nil; h = seq.Next(h) {
		ix.Touching(h, false, ix.Register)
	}
	return ix
}

// Bounds returns the indexed tuple lengths.
func (ix *StaleIndex) Bounds() (lo, hi int) { return ix.lo, ix.hi }

// Sequence returns the indexed sequence.
func (ix *StaleIndex) Sequence() *Sequence { return ix.seq }

// Register records h as a candidate start of t.
func (ix *StaleIndex) Register(t Tuple, h Handle) {
	ix.entries[t] = append(ix.entries[t], h)
}

// Lookup returns the raw, possibly stale, candidates for t. The slice is owned
// by the index.
func (ix *StaleIndex) Lookup(t Tuple) []Handle { return ix.entries[t] }

// Candidates returns the candidates for t sorted into list order with
// duplicates removed. The result is a copy, so registering while iterating it
// is safe.
func (ix *StaleIndex) Candidates(t Tuple) []Handle {
	raw := ix.entries[t]
	if len(raw) == 0 {
		return nil
	}
	out := slices.Clone(raw)
	slices.Sort(out)
	return slices.Compact(out)
}

// Valid reports whether h is live and currently starts an occurrence of t.
func (ix *StaleIndex) Valid(h Handle, t Tuple) bool {
	return ix.seq.Alive(h) && TupleAt(ix.seq, h, t.Len()) == t
}

// Touching calls fn for every tuple of an indexed length whose window contains
// h. With includePrev false only tuples starting at h are reported. The span
// visited is bounded by hi, never by the sequence length.
func (ix *StaleIndex) Touching(h Handle, includePrev bool, fn func(Tuple, Handle)) {
	start, nPrev := h, 0
	if includePrev {
		start, nPrev = ix.seq.GoBack(h, ix.hi-1)
	}
	nodes := ix.seq.AppendWindow(ix.scratch[:0], start, nPrev+ix.hi)
	syms := ix.syms[:0]
	for _, n := range nodes {
		syms = append(syms, ix.seq.Value(n))
	}
	ix.scratch, ix.syms = nodes, syms

	for k := ix.lo; k <= ix.hi; k++ {
		from := max(0, nPrev-(k-1))
		to := min(nPrev+1, len(nodes)-(k-1))
		for i := from; i < to; i++ {
			fn(NewTuple(syms[i:i+k]...), nodes[i])
		}
	}
}

// Reindex registers every tuple touching h. Called after an edit at h.
func (ix *StaleIndex) Reindex(h Handle) {
	ix.Touching(h, true, ix.Register)
}

// Counts calls fn with the number of entries of each tuple. On a freshly
// built index these are exact occurrence counts.
func (ix *StaleIndex) Counts(fn func(Tuple, int)) {
	for t, hs := range ix.entries {
		fn(t, len(hs))
	}
}

// Size is the number of distinct tuples ever registered.
func (ix *StaleIndex) Size() int { return len(ix.entries) }
