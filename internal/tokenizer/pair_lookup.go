package tokenizer

// pairInfo packs a merge's rank in the high half and its id in the low half.
type pairInfo uint64

func (p pairInfo) rank() int  { return int(p >> 32) }
func (p pairInfo) id() Symbol { return Symbol(uint32(p)) }

const noPair = ^pairInfo(0)

func packPair(a, b Symbol) uint64 { return uint64(uint32(a))<<32 | uint64(uint32(b)) }

// PairLookup finds the rank and id of a pair merge:
//   - a dense 2D table for pairs whose members are both below fastLookupSize
//   - a map for the rest
type PairLookup struct {
	fastLookup     [][]pairInfo
	fastLookupSize int
	fallback       map[uint64]pairInfo
}

// NewPairLookup indexes a pair-only merge list. A merge's rank is its
// position in the list.
func NewPairLookup(merges MergeList, vocabSize int) *PairLookup {
	fastLookupSize := min(2048, vocabSize)

	fastLookup := make([][]pairInfo, fastLookupSize)
	for i := range fastLookup {
		fastLookup[i] = make([]pairInfo, fastLookupSize)
		for j := range fastLookup[i] {
			fastLookup[i][j] = noPair
		}
	}

	fallback := make(map[uint64]pairInfo, len(merges)/10)
	for rank, m := range merges {
		a, b := m.Tuple.At(0), m.Tuple.At(1)
		info := pairInfo(uint64(rank)<<32 | uint64(uint32(m.ID)))
		if int(a) < fastLookupSize && int(b) < fastLookupSize {
			fastLookup[a][b] = info
		} else {
			fallback[packPair(a, b)] = info
		}
	}

	return &PairLookup{
		fastLookup:     fastLookup,
		fastLookupSize: fastLookupSize,
		fallback:       fallback,
	}
}

// Lookup returns the rank and merged id of (a, b).
func (pl *PairLookup) Lookup(a, b Symbol) (rank int, id Symbol, ok bool) {
	var info pairInfo
	if a >= 0 && int(a) < pl.fastLookupSize && b >= 0 && int(b) < pl.fastLookupSize {
		info = pl.fastLookup[a][b]
		if info == noPair {
			return 0, 0, false
		}
	} else if info, ok = pl.fallback[packPair(a, b)]; !ok {
		return 0, 0, false
	}
	return info.rank(), info.id(), true
}
