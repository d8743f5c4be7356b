package bpetok

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/bketok/internal/tokenizer"
)

type (
	// Model is a trained merge list with its vocabulary.
	Model = tokenizer.Model
	// MergeList is the ordered list of merges a model replays.
	MergeList = tokenizer.MergeList
	// Scorer ranks merge candidates during training.
	Scorer = tokenizer.Scorer
	// IndexKind selects the occurrence index used during training.
	IndexKind = tokenizer.IndexKind
)

const (
	IndexFixed    = tokenizer.IndexFixed
	IndexWindowed = tokenizer.IndexWindowed
	IndexLeap     = tokenizer.IndexLeap
)

// Encoder interface
type Encoder interface {
	/*
		Feed consumes the next chunk of raw bytes from the input stream. It may emit zero or more
		completed token IDs.
		The returned slice is allowed to alias internal memory (zero-copy) so the caller must treat it as read-only
		and make a copy if they want edits.
	*/
	Feed(chunk []byte) []int

	/*
		Flush tells the encoder that the stream is complete. It returns any remaining token IDs that were buffered
		because they were being waited on to see if there are more merges to apply on them. After flush, the encoder
		is reset to a clean state and can be reused for a new stream.
	*/
	Flush() []int
}

// Decoder interface, no need for flush right now because we won't be maintaining internal buffer
type Decoder interface {
	/*
		Feed consumes token IDs and returns zero or more decoded bytes. Same as the encoder, there is a zero-copy rule;
		returned slice can alias internal memory, call must treat it as read-only.
		Feed panics on an ID outside the vocabulary; use Tokenizer.Decode to get an error instead.
	*/
	Feed(tokens []int) []byte
}

// Tokenizer wraps a trained model. It is immutable apart from its encode
// cache, which is internally synchronized, so it is safe for concurrent use.
type Tokenizer struct {
	model *Model
	// non-nil when every merge is a pair
	ranked *tokenizer.RankedEncoder
	cache  *lru.Cache
}

// Train learns a tokenizer with vocabSize ids from input. If ctx is cancelled
// the tokenizer built from the merges accepted so far is returned along with
// ctx.Err().
func Train(ctx context.Context, input []byte, vocabSize int, opts ...Option) (*Tokenizer, error) {
	o := newOptions(opts)
	cfg := o.cfg
	cfg.VocabSize = vocabSize

	if o.log != nil {
		cfg.Reporter = tokenizer.NewLogReporter(o.log, o.verbose)
	}

	res, err := tokenizer.Train(ctx, input, cfg)
	if res == nil {
		return nil, err
	}

	m := tokenizer.NewModel(res, cfg)
	if o.log != nil {
		o.log.Infow("training finished", "model", m.ID, "merges", len(m.Merges), "vocab", m.Vocab.Len())
	}

	tok, nerr := newTokenizer(m, o)
	if nerr != nil {
		return nil, nerr
	}
	return tok, err
}

// LoadTokenizer reads a model file written by Save.
func LoadTokenizer(path string, opts ...Option) (*Tokenizer, error) {
	m, err := tokenizer.LoadModel(path)
	if err != nil {
		return nil, err
	}
	return newTokenizer(m, newOptions(opts))
}

// NewTokenizer wraps an already validated model.
func NewTokenizer(m *Model, opts ...Option) (*Tokenizer, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return newTokenizer(m, newOptions(opts))
}

func newTokenizer(m *Model, o options) (*Tokenizer, error) {
	t := &Tokenizer{model: m}
	if m.Merges.PairsOnly() {
		enc, err := tokenizer.NewRankedEncoder(m.Merges)
		if err != nil {
			return nil, err
		}
		t.ranked = enc
	}
	if o.cacheSize > 0 {
		c, err := lru.New(o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("error while creating encode cache: %w", err)
		}
		t.cache = c
	}
	return t, nil
}

// maxCachedInput is the longest input whose encoding is cached.
const maxCachedInput = 256

// Encode converts input to token ids.
func (t *Tokenizer) Encode(input []byte) []int {
	cacheable := t.cache != nil && len(input) <= maxCachedInput
	if cacheable {
		if v, ok := t.cache.Get(string(input)); ok {
			return append([]int(nil), v.([]int)...)
		}
	}

	var syms []tokenizer.Symbol
	if t.ranked != nil {
		syms = t.ranked.Encode(input)
	} else {
		syms = tokenizer.Tokenize(input, t.model.Merges)
	}
	ids := make([]int, len(syms))
	for i, s := range syms {
		ids[i] = int(s)
	}

	if cacheable {
		t.cache.Add(string(input), append([]int(nil), ids...))
	}
	return ids
}

// Decode converts token ids back to bytes.
func (t *Tokenizer) Decode(ids []int) ([]byte, error) {
	syms := make([]tokenizer.Symbol, len(ids))
	for i, id := range ids {
		if id < 0 || id >= t.model.Vocab.Len() {
			return nil, fmt.Errorf("%w: %d", tokenizer.ErrUnknownSymbol, id)
		}
		syms[i] = tokenizer.Symbol(id)
	}
	return tokenizer.Detokenize(syms, t.model.Vocab)
}

// Save writes the model to path; see tokenizer.SaveModel for the format.
func (t *Tokenizer) Save(path string) error { return tokenizer.SaveModel(path, t.model) }

// Model returns the underlying model. It must not be modified.
func (t *Tokenizer) Model() *Model { return t.model }

// Merges returns the merge list in training order.
func (t *Tokenizer) Merges() MergeList { return t.model.Merges }

// VocabSize is the number of token ids, raw bytes included.
func (t *Tokenizer) VocabSize() int { return t.model.Vocab.Len() }

// TokenBytes returns the bytes id stands for, or nil if id is unknown.
func (t *Tokenizer) TokenBytes(id int) []byte {
	if id < 0 || id >= t.VocabSize() {
		return nil
	}
	return t.model.Vocab.Bytes(tokenizer.Symbol(id))
}

// NewEncoder returns a stream encoder.
func (t *Tokenizer) NewEncoder() Encoder { return &bufferedEncoder{tok: t} }

// NewDecoder returns a stream decoder.
func (t *Tokenizer) NewDecoder() Decoder { return &decoder{tok: t} }

// bufferedEncoder holds the whole stream until Flush. A merge recorded late in
// the list can still join bytes on both sides of any chunk boundary, so no
// prefix can be emitted early.
type bufferedEncoder struct {
	tok *Tokenizer
	buf []byte
}

func (e *bufferedEncoder) Feed(chunk []byte) []int {
	e.buf = append(e.buf, chunk...)
	return nil
}

func (e *bufferedEncoder) Flush() []int {
	out := e.tok.Encode(e.buf)
	e.buf = e.buf[:0]
	return out
}

type decoder struct {
	tok *Tokenizer
	out []byte
}

// Feed panics on an id outside the vocabulary.
func (d *decoder) Feed(tokens []int) []byte {
	d.out = d.out[:0]
	for _, id := range tokens {
		b := d.tok.TokenBytes(id)
		if b == nil {
			panic(fmt.Sprintf("bpetok: token id %d out of range (vocab size %d)", id, d.tok.VocabSize()))
		}
		d.out = append(d.out, b...)
	}
	return d.out
}
