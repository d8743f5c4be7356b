package tokenizer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// modelJSON is the JSON layout of a model. Vocabulary entries use the GPT-2
// byte-to-rune mapping so every expansion is a printable JSON string.
type modelJSON struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Indexer   string    `json:"indexer"`
	Window    int       `json:"window"`
	MaxWindow int       `json:"max_window,omitempty"`
	Merges    [][]int32 `json:"merges"`
	Vocab     []string  `json:"vocab"`
}

// MarshalJSON encodes m with an id-indexed list of escaped expansions.
func (m *Model) MarshalJSON() ([]byte, error) {
	enc, _ := gpt2ByteTables()
	j := modelJSON{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		Indexer:   m.Indexer.String(),
		Window:    m.Window,
		MaxWindow: m.MaxWindow,
		Merges:    make([][]int32, len(m.Merges)),
		Vocab:     make([]string, m.Vocab.Len()),
	}
	for i, mg := range m.Merges {
		j.Merges[i] = mg.Tuple.Symbols()
	}
	var sb strings.Builder
	for id := range j.Vocab {
		sb.Reset()
		for _, b := range m.Vocab.Bytes(Symbol(id)) {
			sb.WriteRune(enc[b])
		}
		j.Vocab[id] = sb.String()
	}
	return json.MarshalIndent(j, "", "  ")
}

// UnmarshalJSON decodes and validates a model.
func (m *Model) UnmarshalJSON(data []byte) error {
	var j modelJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("error while unmarshalling model: %w", err)
	}
	kind, err := ParseIndexKind(j.Indexer)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if len(j.Vocab) != ByteAlphabet+len(j.Merges) {
		return fmt.Errorf("%w: vocab length mismatch. expected %d, received %d", ErrInvalidModel, ByteAlphabet+len(j.Merges), len(j.Vocab))
	}

	_, dec := gpt2ByteTables()
	rev := make([][]byte, len(j.Vocab))
	for id, s := range j.Vocab {
		b, err := decodeTokenString(s, dec)
		if err != nil {
			return fmt.Errorf("%w: token %d: %w", ErrInvalidModel, id, err)
		}
		if len(b) == 0 {
			return fmt.Errorf("%w: decoded empty byte sequence for token id %d", ErrInvalidModel, id)
		}
		rev[id] = b
	}

	out := Model{
		ID:        j.ID,
		CreatedAt: j.CreatedAt,
		Indexer:   kind,
		Window:    j.Window,
		MaxWindow: j.MaxWindow,
		Merges:    make(MergeList, len(j.Merges)),
		Vocab:     &Vocabulary{revVocab: rev},
	}
	for i, syms := range j.Merges {
		out.Merges[i] = Merge{Tuple: NewTuple(syms...), ID: Symbol(ByteAlphabet + i)}
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*m = out
	return nil
}

// decodeTokenString turns an escaped vocab entry back into its raw bytes.
// Runes in the byte table stand for one byte each; any other rune is taken
// literally as its UTF-8 encoding, so hand-edited files with plain text still
// load.
func decodeTokenString(s string, byteDecoder map[rune]byte) ([]byte, error) {
	var out []byte

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			return nil, fmt.Errorf("invalid utf8 in token string at %q", s)
		}

		if b, ok := byteDecoder[r]; ok {
			out = append(out, b)
		} else {
			var tmp [utf8.UTFMax]byte
			n := utf8.EncodeRune(tmp[:], r)
			out = append(out, tmp[:n]...)
		}

		s = s[size:]
	}

	return out, nil
}

// gpt2ByteTables returns the GPT-2 mapping of bytes to printable runes and its
// inverse. Printable latin-1 bytes map to themselves; the rest get stand-ins
// from 256 upwards, in byte order.
func gpt2ByteTables() (enc [256]rune, dec map[rune]byte) {
	printable := func(b int) bool {
		return (b >= 33 && b <= 126) || (b >= 161 && b <= 172) || (b >= 174 && b <= 255)
	}

	dec = make(map[rune]byte, 256)
	next := rune(256)
	for b := 0; b < 256; b++ {
		r := rune(b)
		if !printable(b) {
			r = next
			next++
		}
		enc[b] = r
		dec[r] = byte(b)
	}
	return enc, dec
}
