package tokenizer

import (
	"slices"

	"github.com/bketok/internal/sequence"
	"github.com/bketok/internal/utils"
)

// noSymbol pads the last pair of a replay leap so the final symbol has a node
// of its own.
const noSymbol Symbol = -1

// pairLeap builds a leap holding every adjacent pair of syms. With pad set a
// trailing (last, noSymbol) pair is added.
func pairLeap(syms []Symbol, pad bool) *sequence.Leap[Tuple] {
	lp := sequence.NewLeap[Tuple](len(syms))
	for i := 0; i+1 < len(syms); i++ {
		lp.Append(sequence.NewTuple(syms[i], syms[i+1]))
	}
	if pad && len(syms) > 0 {
		lp.Append(sequence.NewTuple(syms[len(syms)-1], noSymbol))
	}
	return lp
}

// pairSymbols reads the symbols back out of a pair leap. withTail adds the
// second symbol of the last pair, which padded leaps do not want.
func pairSymbols(lp *sequence.Leap[Tuple], withTail bool) []Symbol {
	out := make([]Symbol, 0, lp.Len()+1)
	for h := lp.Head(); h != sequence.Nil; h = lp.Next(h) {
		out = append(out, lp.Value(h).At(0))
	}
	if withTail && lp.Tail() != sequence.Nil {
		out = append(out, lp.Value(lp.Tail()).At(1))
	}
	return out
}

// mergePairs replaces every live occurrence of the pair t by id. The node
// holding t is removed; its neighbours take id into their pairs. When stats
// is non-nil every pair that disappears or appears is buffered into it.
func mergePairs(lp *sequence.Leap[Tuple], t Tuple, id Symbol, stats *utils.Multiset[Tuple], obs MergeObserver) int {
	occ := lp.Occurrences(t)
	// chains are in insertion order; handles are in list order
	slices.Sort(occ)

	relink := func(h sequence.Handle, v Tuple) {
		if stats != nil {
			stats.Remove(lp.Value(h), 1)
			stats.Add(v, 1)
		}
		lp.SetValue(h, v)
	}

	merged := 0
	for _, h := range occ {
		if !lp.Alive(h) || lp.Value(h) != t {
			continue
		}
		if p := lp.Prev(h); p != sequence.Nil {
			relink(p, sequence.NewTuple(lp.Value(p).At(0), id))
		}
		if n := lp.Next(h); n != sequence.Nil {
			relink(n, sequence.NewTuple(id, lp.Value(n).At(1)))
		}
		if stats != nil {
			stats.Remove(t, 1)
		}
		lp.Delete(h)
		if obs != nil {
			obs.ObserveMerge(t, id)
		}
		merged++
	}
	return merged
}
