package tokenizer

import (
	"fmt"

	"github.com/bketok/internal/sequence"
)

type (
	Symbol = sequence.Symbol
	Tuple  = sequence.Tuple
)

// ByteAlphabet is the number of symbols that stand for a raw byte.
const ByteAlphabet = 256

// Merge is one recorded training decision: every occurrence of Tuple was
// replaced by ID.
type Merge struct {
	Tuple Tuple
	ID    Symbol
}

// MergeList is the ordered list of merges. Replay must follow this order:
// later tuples mention ids introduced by earlier merges.
type MergeList []Merge

// Bounds returns the shortest and longest tuple length in the list.
func (ml MergeList) Bounds() (lo, hi int) {
	for i, m := range ml {
		n := m.Tuple.Len()
		if i == 0 || n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	return lo, hi
}

// PairsOnly reports whether every merge is a pair merge.
func (ml MergeList) PairsOnly() bool {
	for _, m := range ml {
		if m.Tuple.Len() != 2 {
			return false
		}
	}
	return true
}

// Vocabulary maps every symbol id to the bytes it expands to. Ids 0..255 are
// the raw bytes; every merge appends one id whose expansion is the
// concatenation of its members' expansions. Entries are never changed once
// added.
type Vocabulary struct {
	// for decoding, index = symbol id, value is the byte expansion
	revVocab [][]byte
}

// NewVocabulary returns the byte-only vocabulary.
func NewVocabulary() *Vocabulary {
	v := &Vocabulary{revVocab: make([][]byte, ByteAlphabet, 2*ByteAlphabet)}
	for b := 0; b < ByteAlphabet; b++ {
		v.revVocab[b] = []byte{byte(b)}
	}
	return v
}

// Len is the number of ids, which is also the id the next merge receives.
func (v *Vocabulary) Len() int { return len(v.revVocab) }

// NextID returns the id Add will assign.
func (v *Vocabulary) NextID() Symbol { return Symbol(len(v.revVocab)) }

// Add assigns the next id to t and records its expansion.
func (v *Vocabulary) Add(t Tuple) (Symbol, error) {
	var exp []byte
	for i := 0; i < t.Len(); i++ {
		s := t.At(i)
		if !v.Has(s) {
			return 0, fmt.Errorf("%w: %d in %v", ErrUnknownSymbol, s, t)
		}
		exp = append(exp, v.revVocab[s]...)
	}
	id := v.NextID()
	v.revVocab = append(v.revVocab, exp)
	return id, nil
}

// Has reports whether id is in the vocabulary.
func (v *Vocabulary) Has(id Symbol) bool { return id >= 0 && int(id) < len(v.revVocab) }

// Bytes returns the expansion of id. The slice must be treated as read-only.
func (v *Vocabulary) Bytes(id Symbol) []byte {
	if !v.Has(id) {
		return nil
	}
	return v.revVocab[id]
}

// Clone returns a vocabulary that can grow independently of v. Expansions are
// immutable, so they are shared.
func (v *Vocabulary) Clone() *Vocabulary {
	out := make([][]byte, len(v.revVocab), cap(v.revVocab))
	copy(out, v.revVocab)
	return &Vocabulary{revVocab: out}
}

// MaxTokenByteLen returns the longest expansion.
func (v *Vocabulary) MaxTokenByteLen() int {
	n := 0
	for _, b := range v.revVocab {
		n = max(n, len(b))
	}
	return n
}

// NewTuple packs syms into a Tuple.
func NewTuple(syms ...Symbol) Tuple { return sequence.NewTuple(syms...) }
