package tokenizer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Model is a trained merge list with its vocabulary and the settings it was
// trained with.
type Model struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Indexer   IndexKind
	Window    int
	MaxWindow int
	Merges    MergeList
	Vocab     *Vocabulary
}

// NewModel wraps a training result. Every model gets a fresh ID.
func NewModel(res *Result, cfg Config) *Model {
	cfg = cfg.withDefaults()
	return &Model{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Indexer:   cfg.Indexer,
		Window:    cfg.Window,
		MaxWindow: cfg.MaxWindow,
		Merges:    res.Merges,
		Vocab:     res.Vocab,
	}
}

// Validate checks that merge ids are dense from 256, that every merge only
// mentions earlier ids and that every expansion is the concatenation of its
// members' expansions.
func (m *Model) Validate() error {
	if m.Vocab == nil {
		return fmt.Errorf("%w: no vocabulary", ErrInvalidModel)
	}
	if want := ByteAlphabet + len(m.Merges); m.Vocab.Len() != want {
		return fmt.Errorf("%w: vocabulary has %d ids, want %d", ErrInvalidModel, m.Vocab.Len(), want)
	}
	for b := 0; b < ByteAlphabet; b++ {
		if e := m.Vocab.Bytes(Symbol(b)); len(e) != 1 || e[0] != byte(b) {
			return fmt.Errorf("%w: byte id %d expands to %q", ErrInvalidModel, b, e)
		}
	}

	var exp []byte
	for i, mg := range m.Merges {
		want := Symbol(ByteAlphabet + i)
		if mg.ID != want {
			return fmt.Errorf("%w: merge %d has id %d, want %d", ErrInvalidModel, i, mg.ID, want)
		}
		if mg.Tuple.Len() < 2 {
			return fmt.Errorf("%w: merge %d has %d members", ErrInvalidModel, i, mg.Tuple.Len())
		}
		exp = exp[:0]
		for j := 0; j < mg.Tuple.Len(); j++ {
			s := mg.Tuple.At(j)
			if s < 0 || s >= mg.ID {
				return fmt.Errorf("%w: merge %d mentions id %d", ErrInvalidModel, i, s)
			}
			exp = append(exp, m.Vocab.Bytes(s)...)
		}
		if !bytes.Equal(exp, m.Vocab.Bytes(mg.ID)) {
			return fmt.Errorf("%w: id %d expands to %q, its members to %q", ErrInvalidModel, mg.ID, m.Vocab.Bytes(mg.ID), exp)
		}
	}
	return nil
}

// modelWire is the CBOR layout of a model file. Merge ids are implied by
// position and the byte ids of the vocabulary are not stored.
type modelWire struct {
	Version   uint64    `cbor:"1,keyasint"`
	ID        []byte    `cbor:"2,keyasint"`
	CreatedAt int64     `cbor:"3,keyasint"`
	Indexer   string    `cbor:"4,keyasint"`
	Window    int       `cbor:"5,keyasint"`
	MaxWindow int       `cbor:"6,keyasint,omitempty"`
	Merges    [][]int32 `cbor:"7,keyasint"`
	Vocab     [][]byte  `cbor:"8,keyasint"`
}

const modelVersion = 1

var modelEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

func (m *Model) toWire() modelWire {
	w := modelWire{
		Version:   modelVersion,
		ID:        m.ID[:],
		CreatedAt: m.CreatedAt.Unix(),
		Indexer:   m.Indexer.String(),
		Window:    m.Window,
		MaxWindow: m.MaxWindow,
		Merges:    make([][]int32, len(m.Merges)),
		Vocab:     make([][]byte, 0, len(m.Merges)),
	}
	for i, mg := range m.Merges {
		w.Merges[i] = mg.Tuple.Symbols()
		w.Vocab = append(w.Vocab, m.Vocab.Bytes(mg.ID))
	}
	return w
}

func fromWire(w modelWire) (*Model, error) {
	if w.Version != modelVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidModel, w.Version)
	}
	id, err := uuid.FromBytes(w.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: id: %w", ErrInvalidModel, err)
	}
	kind, err := ParseIndexKind(w.Indexer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if len(w.Vocab) != len(w.Merges) {
		return nil, fmt.Errorf("%w: %d merges but %d expansions", ErrInvalidModel, len(w.Merges), len(w.Vocab))
	}

	m := &Model{
		ID:        id,
		CreatedAt: time.Unix(w.CreatedAt, 0).UTC(),
		Indexer:   kind,
		Window:    w.Window,
		MaxWindow: w.MaxWindow,
		Merges:    make(MergeList, len(w.Merges)),
		Vocab:     NewVocabulary(),
	}
	for i, syms := range w.Merges {
		m.Merges[i] = Merge{Tuple: NewTuple(syms...), ID: Symbol(ByteAlphabet + i)}
		m.Vocab.revVocab = append(m.Vocab.revVocab, w.Vocab[i])
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// MarshalCBOR encodes m with deterministic core encoding.
func (m *Model) MarshalCBOR() ([]byte, error) {
	return modelEncMode.Marshal(m.toWire())
}

// UnmarshalCBOR decodes and validates a model.
func (m *Model) UnmarshalCBOR(data []byte) error {
	var w modelWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	dec, err := fromWire(w)
	if err != nil {
		return err
	}
	*m = *dec
	return nil
}

// SaveModel writes m to path, as JSON when path ends in .json and as CBOR
// otherwise.
func SaveModel(path string, m *Model) error {
	var (
		data []byte
		err  error
	)
	if isJSONPath(path) {
		data, err = m.MarshalJSON()
	} else {
		data, err = m.MarshalCBOR()
	}
	if err != nil {
		return fmt.Errorf("error while encoding model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error while writing model file: %w", err)
	}
	return nil
}

// LoadModel reads a model written by SaveModel.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error while reading model file: %w", err)
	}
	m := &Model{}
	if isJSONPath(path) {
		err = m.UnmarshalJSON(data)
	} else {
		err = m.UnmarshalCBOR(data)
	}
	if err != nil {
		return nil, fmt.Errorf("error while decoding %s: %w", path, err)
	}
	return m, nil
}

func isJSONPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
