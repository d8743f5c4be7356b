package tokenizer

import (
	"errors"
	"sync"

	"github.com/bketok/internal/utils"
)

// RankedEncoder encodes with a pair-only merge list by always applying the
// lowest ranked mergeable pair, leftmost first, instead of replaying the list
// pass by pass. For pair merges both orders produce the same symbols; this
// one only touches pairs that can actually merge.
//
// A RankedEncoder is immutable and safe for concurrent use.
type RankedEncoder struct {
	pairLookup *PairLookup
	maxRank    int

	scratchPool sync.Pool
}

// NewRankedEncoder builds an encoder for merges, which must hold only pairs.
func NewRankedEncoder(merges MergeList) (*RankedEncoder, error) {
	if !merges.PairsOnly() {
		return nil, errors.New("ranked encoding needs a pair-only merge list")
	}
	return &RankedEncoder{
		pairLookup: NewPairLookup(merges, ByteAlphabet+len(merges)),
		maxRank:    len(merges),
	}, nil
}

// Encode converts input to symbols.
func (t *RankedEncoder) Encode(input []byte) []Symbol {
	n := len(input)
	if n == 0 {
		return nil
	}

	scratch := t.acquireScratch(n)
	defer t.releaseScratch(scratch)

	tokens := scratch.tokens
	for i, b := range input {
		tokens[i] = Symbol(b)
	}

	// doubly linked-list
	prev := scratch.prev
	next := scratch.next
	for i := 0; i < n; i++ {
		prev[i] = i - 1
		next[i] = i + 1
	}
	next[n-1] = -1

	// per-slot versioning to invalidate queued candidates
	liveVersion := scratch.live
	for i := range liveVersion {
		liveVersion[i] = 0
	}

	h := scratch.queue(t.maxRank)

	pushIfMergeable := func(i int) {
		j := next[i]
		if i == -1 || j == -1 {
			return
		}

		a := tokens[i]
		b := tokens[j]

		if rank, _, ok := t.pairLookup.Lookup(a, b); ok {
			h.Push(utils.MergeCand{
				Rank:  rank,
				Pos:   i,
				Left:  a,
				Right: b,
				VerL:  liveVersion[i],
				VerR:  liveVersion[j],
			})
		}
	}

	for i := 0; i != -1 && next[i] != -1; i = next[i] {
		pushIfMergeable(i)
	}

	for {
		c, ok := h.Pop()
		if !ok {
			break
		}
		i := c.Pos
		j := next[i]
		if j == -1 {
			continue
		}

		// stale: one of the slots changed since the push
		if liveVersion[i] != c.VerL || liveVersion[j] != c.VerR {
			continue
		}

		a := tokens[i]
		b := tokens[j]
		if a != c.Left || b != c.Right {
			continue
		}
		_, id, ok := t.pairLookup.Lookup(a, b)
		if !ok {
			continue
		}

		// collapse into slot i
		tokens[i] = id

		nj := next[j]
		next[i] = nj
		if nj != -1 {
			prev[nj] = i
		}
		prev[j], next[j] = -1, -1

		liveVersion[i]++
		liveVersion[j]++

		if pi := prev[i]; pi != -1 {
			pushIfMergeable(pi)
		}
		pushIfMergeable(i)
	}

	// slot 0 never dies, merges keep the left slot
	out := make([]Symbol, 0, n)
	for i := 0; i != -1; i = next[i] {
		out = append(out, tokens[i])
	}
	return out
}

type encodeScratch struct {
	tokens []Symbol
	prev   []int
	next   []int
	live   []uint32
	q      utils.MergeQueue
}

// maxBucketRank bounds the rank range a bucket queue is used for. Larger
// merge lists fall back to a binary heap.
const maxBucketRank = 1 << 16

// queue returns the scratch merge queue, emptied.
func (sc *encodeScratch) queue(maxRank int) utils.MergeQueue {
	if sc.q != nil {
		sc.q.Reset()
		return sc.q
	}
	if maxRank <= maxBucketRank {
		sc.q = utils.NewBucketQueue(maxRank)
	} else {
		sc.q = utils.NewMergeHeap(true)
	}
	return sc.q
}

func (t *RankedEncoder) acquireScratch(n int) *encodeScratch {
	sc, _ := t.scratchPool.Get().(*encodeScratch)
	if sc == nil {
		sc = &encodeScratch{}
	}
	sc.tokens = ensureCapacity(sc.tokens, n)
	sc.prev = ensureCapacity(sc.prev, n)
	sc.next = ensureCapacity(sc.next, n)
	sc.live = ensureCapacity(sc.live, n)
	return sc
}

func (t *RankedEncoder) releaseScratch(sc *encodeScratch) {
	t.scratchPool.Put(sc)
}

func ensureCapacity[T any](buf []T, n int) []T {
	if cap(buf) < n {
		return make([]T, n)
	}
	return buf[:n]
}
