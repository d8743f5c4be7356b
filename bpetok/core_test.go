package bpetok

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bketok/internal/tokenizer"
)

const corpus = `the quick brown fox jumps over the lazy dog.
the lazy dog sleeps while the quick brown fox runs over the hill.
a quick brown dog and a lazy fox walk over the hill to the lake.
`

func trainTest(t *testing.T, opts ...Option) *Tokenizer {
	t.Helper()
	tok, err := Train(context.Background(), []byte(strings.Repeat(corpus, 4)), 320, opts...)
	require.NoError(t, err)
	return tok
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for name, opts := range map[string][]Option{
		"fixed":    nil,
		"leap":     {WithIndexer(IndexLeap)},
		"windowed": {WithIndexer(IndexWindowed), WithMaxWindow(4), WithScorer(tokenizer.WindowScore())},
		"k3":       {WithWindow(3)},
	} {
		t.Run(name, func(t *testing.T) {
			tok := trainTest(t, opts...)
			for _, in := range []string{"", "the fox", corpus, "unseen ✓ text\x00\xff"} {
				ids := tok.Encode([]byte(in))
				got, err := tok.Decode(ids)
				require.NoError(t, err)
				assert.Equal(t, in, string(got))
			}
			assert.Less(t, len(tok.Encode([]byte(corpus))), len(corpus))
		})
	}
}

func TestRandomRoundTrip(t *testing.T) {
	tok := trainTest(t)
	for i := 0; i < 100; i++ {
		n := i * 7
		buf := make([]byte, n)
		_, err := rand.Read(buf)
		require.NoError(t, err)

		got, err := tok.Decode(tok.Encode(buf))
		require.NoError(t, err)
		require.True(t, bytes.Equal(buf, got), "mismatch for %s", hex.EncodeToString(buf))
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	tok := trainTest(t)
	want := tok.Encode([]byte("the quick brown fox"))
	for i := 0; i < 5; i++ {
		// second and later calls are served from the cache
		assert.Equal(t, want, tok.Encode([]byte("the quick brown fox")))
	}

	uncached := trainTest(t, WithCacheSize(0))
	assert.Equal(t, want, uncached.Encode([]byte("the quick brown fox")))
}

func TestCachedResultIsACopy(t *testing.T) {
	tok := trainTest(t)
	ids := tok.Encode([]byte("lazy dog"))
	ids[0] = -42
	assert.NotEqual(t, -42, tok.Encode([]byte("lazy dog"))[0])
}

func TestTokenIDsInBounds(t *testing.T) {
	tok := trainTest(t)
	assert.Equal(t, 256+len(tok.Merges()), tok.VocabSize())
	for _, id := range tok.Encode([]byte(corpus)) {
		assert.GreaterOrEqual(t, id, 0)
		assert.Less(t, id, tok.VocabSize())
	}
}

func TestDecodeUnknownID(t *testing.T) {
	tok := trainTest(t)
	_, err := tok.Decode([]int{'a', tok.VocabSize()})
	require.ErrorIs(t, err, tokenizer.ErrUnknownSymbol)

	dec := tok.NewDecoder()
	assert.Panics(t, func() { dec.Feed([]int{-1}) })
}

func TestStreamingEncoderMatchesEncode(t *testing.T) {
	tok := trainTest(t)
	enc := tok.NewEncoder()
	dec := tok.NewDecoder()

	for _, chunkSize := range []int{1, 3, 16, 1000} {
		in := []byte(corpus)
		for i := 0; i < len(in); i += chunkSize {
			assert.Empty(t, enc.Feed(in[i:min(i+chunkSize, len(in))]))
		}
		ids := enc.Flush()
		require.Equal(t, tok.Encode(in), ids, "chunk size %d", chunkSize)

		var out []byte
		for i := 0; i < len(ids); i += 5 {
			out = append(out, dec.Feed(ids[i:min(i+5, len(ids))])...)
		}
		assert.Equal(t, corpus, string(out))
	}
}

func TestSaveLoad(t *testing.T) {
	tok := trainTest(t, WithIndexer(IndexWindowed), WithMaxWindow(3), WithScorer(tokenizer.WindowScore()))
	for _, name := range []string{"m.cbor", "m.json"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, tok.Save(path))

		loaded, err := LoadTokenizer(path)
		require.NoError(t, err)
		assert.Equal(t, tok.Model().ID, loaded.Model().ID)
		assert.Equal(t, tok.Merges(), loaded.Merges())
		assert.Equal(t, tok.Encode([]byte(corpus)), loaded.Encode([]byte(corpus)))
	}
}

func TestNewTokenizerValidates(t *testing.T) {
	tok := trainTest(t)
	_, err := NewTokenizer(tok.Model())
	require.NoError(t, err)

	_, err = NewTokenizer(&Model{})
	require.ErrorIs(t, err, tokenizer.ErrInvalidModel)
}

func TestTrainCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tok, err := Train(ctx, []byte(corpus), 300, WithLogger(zap.NewNop().Sugar(), true))
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, tok)
	assert.Empty(t, tok.Merges())
	assert.Equal(t, 256, tok.VocabSize())
}

func TestTrainInvalidVocabSize(t *testing.T) {
	_, err := Train(context.Background(), []byte(corpus), 100)
	require.ErrorIs(t, err, tokenizer.ErrInvalidConfig)
}

func TestLookaheadOption(t *testing.T) {
	tok := trainTest(t, WithLookahead(3, 5))
	got, err := tok.Decode(tok.Encode([]byte(corpus)))
	require.NoError(t, err)
	assert.Equal(t, corpus, string(got))
}

func TestConcurrentEncode(t *testing.T) {
	tok := trainTest(t, WithCacheSize(8))
	want := make([][]int, 20)
	for i := range want {
		want[i] = tok.Encode([]byte(fmt.Sprintf("the fox %d", i)))
	}

	done := make(chan struct{})
	for w := 0; w < 8; w++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				k := i % len(want)
				assert.Equal(t, want[k], tok.Encode([]byte(fmt.Sprintf("the fox %d", k))))
			}
		}()
	}
	for w := 0; w < 8; w++ {
		<-done
	}
}
