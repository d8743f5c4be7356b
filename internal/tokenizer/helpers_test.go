package tokenizer

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// randomText draws n bytes from alphabet. Small alphabets give plenty of
// repeated tuples to merge.
func randomText(r *rand.Rand, n int, alphabet string) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = alphabet[r.Intn(len(alphabet))]
	}
	return out
}

func mustTrain(t testing.TB, input []byte, cfg Config) *Result {
	t.Helper()
	res, err := Train(context.Background(), input, cfg)
	require.NoError(t, err)
	return res
}

// requireRoundTrip checks decode(encode(x)) == x and the basic shape of a
// training result.
func requireRoundTrip(t *testing.T, input []byte, res *Result) {
	t.Helper()
	require.Equal(t, ByteAlphabet+len(res.Merges), res.Vocab.Len())
	require.Len(t, res.MergeCounts, len(res.Merges))
	for i, m := range res.Merges {
		require.Equal(t, Symbol(ByteAlphabet+i), m.ID, "merge %d", i)
		require.Positive(t, res.MergeCounts[i], "merge %d", i)
	}

	ids := Tokenize(input, res.Merges)
	got, err := Detokenize(ids, res.Vocab)
	require.NoError(t, err)
	require.Equal(t, string(input), string(got))
}

// recordingReporter keeps every iteration it is told about.
type recordingReporter struct {
	NopReporter
	iters  []IterationSummary
	onIter func(IterationSummary)
}

func (r *recordingReporter) Iteration(s IterationSummary) {
	r.iters = append(r.iters, s)
	if r.onIter != nil {
		r.onIter(s)
	}
}
