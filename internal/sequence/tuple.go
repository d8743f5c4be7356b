package sequence

import (
	"encoding/binary"
	"strconv"
	"strings"
)

// Symbol is a raw byte (0..255) or the id of a previously merged tuple.
type Symbol = int32

const symbolWidth = 4

// Tuple packs consecutive symbols into a comparable key. Each symbol takes 4
// big-endian bytes, so comparing two tuples as strings orders them by their
// symbol values, with a shorter prefix sorting first.
type Tuple string

// NewTuple packs syms into a Tuple.
func NewTuple(syms ...Symbol) Tuple {
	var buf [16 * symbolWidth]byte
	var b []byte
	if len(syms)*symbolWidth <= len(buf) {
		b = buf[:len(syms)*symbolWidth]
	} else {
		b = make([]byte, len(syms)*symbolWidth)
	}
	for i, s := range syms {
		binary.BigEndian.PutUint32(b[i*symbolWidth:], uint32(s))
	}
	return Tuple(b)
}

// Len returns the number of symbols in t.
func (t Tuple) Len() int { return len(t) / symbolWidth }

// At returns the i'th symbol of t.
func (t Tuple) At(i int) Symbol {
	off := i * symbolWidth
	return Symbol(uint32(t[off])<<24 | uint32(t[off+1])<<16 | uint32(t[off+2])<<8 | uint32(t[off+3]))
}

// Symbols unpacks t.
func (t Tuple) Symbols() []Symbol {
	out := make([]Symbol, t.Len())
	for i := range out {
		out[i] = t.At(i)
	}
	return out
}

func (t Tuple) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(int(t.At(i))))
	}
	sb.WriteByte(')')
	return sb.String()
}
