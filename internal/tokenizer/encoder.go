package tokenizer

import (
	"github.com/bketok/internal/sequence"
)

// Tokenize converts input to symbols by replaying merges strictly in order.
// Every merge rewrites all of its live occurrences, left to right, before the
// next merge is looked at, which is exactly what training did. No statistics
// are kept.
//
// The index covers the tuple lengths that occur in merges, so any mix of
// pair and longer merges replays correctly.
func Tokenize(input []byte, merges MergeList) []Symbol {
	if len(input) == 0 {
		return nil
	}

	seq := sequence.FromBytes(input)
	if len(merges) == 0 {
		return seq.Values()
	}

	lo, hi := merges.Bounds()
	ix := sequence.BuildIndex(seq, lo, hi)
	for _, m := range merges {
		k := m.Tuple.Len()
		for _, h := range ix.Candidates(m.Tuple) {
			// earlier merges in this pass may have consumed h or its window
			if !ix.Valid(h, m.Tuple) {
				continue
			}
			seq.MergeWindow(h, k, m.ID)
			ix.Reindex(h)
		}
	}
	return seq.Values()
}

// TokenizeLeap replays a pair-only merge list on a leap of pairs. The input
// gets a trailing pair padded with a symbol no merge mentions, so the last
// real symbol survives as the first half of a node.
//
// It panics if merges holds anything but pairs.
func TokenizeLeap(input []byte, merges MergeList) []Symbol {
	if len(input) == 0 {
		return nil
	}
	if !merges.PairsOnly() {
		panic("tokenizer: TokenizeLeap needs a pair-only merge list")
	}

	syms := make([]Symbol, len(input))
	for i, b := range input {
		syms[i] = Symbol(b)
	}
	lp := pairLeap(syms, true)
	for _, m := range merges {
		mergePairs(lp, m.Tuple, m.ID, nil, nil)
	}
	return pairSymbols(lp, false)
}
