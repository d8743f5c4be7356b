package tokenizer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeWithoutMerges(t *testing.T) {
	assert.Nil(t, Tokenize(nil, nil))
	assert.Nil(t, TokenizeLeap([]byte{}, nil))
	assert.Equal(t, []Symbol{'h', 'i'}, Tokenize([]byte("hi"), nil))
	assert.Equal(t, []Symbol{'h', 'i'}, TokenizeLeap([]byte("hi"), nil))
}

func TestTokenizeSingleByteCoverage(t *testing.T) {
	merges := MergeList{{Tuple: NewTuple('a', 'a'), ID: 256}}
	for b := 0; b < 256; b++ {
		in := []byte{byte(b)}
		ids := Tokenize(in, merges)
		require.Equal(t, []Symbol{Symbol(b)}, ids, "byte 0x%02x", b)
		require.Equal(t, ids, TokenizeLeap(in, merges), "byte 0x%02x", b)
	}
}

func TestTokenizeMixedTupleLengths(t *testing.T) {
	merges := MergeList{
		{Tuple: NewTuple('a', 'b', 'c'), ID: 256},
		{Tuple: NewTuple(256, 256), ID: 257},
		{Tuple: NewTuple('x', 'y'), ID: 258},
	}
	got := Tokenize([]byte("abcabcxyabcq"), merges)
	assert.Equal(t, []Symbol{257, 258, 256, 'q'}, got)
}

func TestTokenizeOverlappingRuns(t *testing.T) {
	merges := MergeList{{Tuple: NewTuple('a', 'a'), ID: 256}}
	for in, want := range map[string][]Symbol{
		"aa":    {256},
		"aaa":   {256, 'a'},
		"aaaa":  {256, 256},
		"baaab": {'b', 256, 'a', 'b'},
	} {
		assert.Equal(t, want, Tokenize([]byte(in), merges), in)
		assert.Equal(t, want, TokenizeLeap([]byte(in), merges), in)
	}
}

func TestTokenizeLeapRejectsLongTuples(t *testing.T) {
	merges := MergeList{{Tuple: NewTuple('a', 'b', 'c'), ID: 256}}
	assert.Panics(t, func() { TokenizeLeap([]byte("abc"), merges) })
}

func TestRankedEncoderMatchesReplay(t *testing.T) {
	r := rand.New(rand.NewSource(21))
	corpus := randomText(r, 4000, "abcdefg ")
	res := mustTrain(t, corpus, Config{VocabSize: 400})

	enc, err := NewRankedEncoder(res.Merges)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		in := randomText(r, r.Intn(300), "abcdefgh ")
		require.Equal(t, Tokenize(in, res.Merges), enc.Encode(in), "input %q", in)
	}
}

func TestRankedEncoderRejectsLongTuples(t *testing.T) {
	_, err := NewRankedEncoder(MergeList{{Tuple: NewTuple('a', 'b', 'c'), ID: 256}})
	require.Error(t, err)
}

func TestPairLookupFallback(t *testing.T) {
	merges := MergeList{
		{Tuple: NewTuple('a', 'b'), ID: 256},
		{Tuple: NewTuple(256, 'c'), ID: 257},
	}
	// a fast table of 64 leaves both merges in the map
	pl := NewPairLookup(merges, 64)

	rank, id, ok := pl.Lookup('a', 'b')
	require.True(t, ok)
	assert.Equal(t, 0, rank)
	assert.Equal(t, Symbol(256), id)

	rank, id, ok = pl.Lookup(256, 'c')
	require.True(t, ok)
	assert.Equal(t, 1, rank)
	assert.Equal(t, Symbol(257), id)

	_, _, ok = pl.Lookup('c', 'a')
	assert.False(t, ok)
}

func TestDetokenizeUnknownSymbol(t *testing.T) {
	v := NewVocabulary()
	_, err := Detokenize([]Symbol{'a', 256}, v)
	require.ErrorIs(t, err, ErrUnknownSymbol)

	_, err = Detokenize([]Symbol{-1}, v)
	require.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestVocabularyAdd(t *testing.T) {
	v := NewVocabulary()
	id, err := v.Add(NewTuple('h', 'i'))
	require.NoError(t, err)
	assert.Equal(t, Symbol(256), id)

	id, err = v.Add(NewTuple(256, '!', 256))
	require.NoError(t, err)
	assert.Equal(t, Symbol(257), id)
	assert.Equal(t, "hi!hi", string(v.Bytes(257)))
	assert.Equal(t, 5, v.MaxTokenByteLen())

	_, err = v.Add(NewTuple(999, 'a'))
	require.ErrorIs(t, err, ErrUnknownSymbol)

	c := v.Clone()
	_, err = c.Add(NewTuple('a', 'b'))
	require.NoError(t, err)
	assert.Equal(t, 258, v.Len())
	assert.Equal(t, 259, c.Len())
}
