package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowScore(t *testing.T) {
	s := WindowScore()
	assert.Equal(t, 0.0, s.Score(NewTuple(1, 2), 1))
	assert.Equal(t, 3.0, s.Score(NewTuple(1, 2), 4))
	assert.Equal(t, 6.0, s.Score(NewTuple(1, 2, 3), 4))
}

func TestPairOnlyScore(t *testing.T) {
	s := PairOnlyScore()
	assert.Equal(t, 7.0, s.Score(NewTuple(1, 2), 7))
	assert.Equal(t, 0.0, s.Score(NewTuple(1, 2, 3), 7))
}

func TestConditionalScore(t *testing.T) {
	c := NewConditionalScore([]byte("aab"), 2, 1, 1)
	// 3^2 / n(a)=2 / n(b)=1
	assert.Equal(t, 4.5, c.Score(NewTuple('a', 'b'), 3))
	// unseen symbols count as 1
	assert.Equal(t, 4.0, c.Score(NewTuple('x', 'y'), 2))
	assert.Equal(t, 0.0, c.Score(NewTuple('a', 'a', 'b'), 5))

	clone := c.CloneScorer().(*ConditionalScore)
	clone.ObserveMerge(NewTuple('a', 'b'), 256)
	clone.ObserveMerge(NewTuple('a', 'b'), 256)
	assert.Equal(t, 2, clone.singles[256])
	assert.Zero(t, c.singles[256])
}

func TestScorerByName(t *testing.T) {
	for _, name := range []string{"", ScoreFrequency, ScoreWindow, ScorePairOnly, ScoreConditional} {
		s, err := ScorerByName(name, []byte("abc"))
		require.NoError(t, err, name)
		require.NotNil(t, s, name)
	}
	_, err := ScorerByName("entropy", nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseIndexKind(t *testing.T) {
	for _, k := range []IndexKind{IndexFixed, IndexWindowed, IndexLeap} {
		got, err := ParseIndexKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseIndexKind("")
	require.NoError(t, err)
	assert.Equal(t, IndexFixed, got)

	_, err = ParseIndexKind("suffix")
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, "IndexKind(7)", IndexKind(7).String())
}

func TestConfigBounds(t *testing.T) {
	lo, hi := Config{Window: 3}.withDefaults().bounds()
	assert.Equal(t, [2]int{3, 3}, [2]int{lo, hi})

	lo, hi = Config{Indexer: IndexWindowed, MaxWindow: 5}.withDefaults().bounds()
	assert.Equal(t, [2]int{2, 5}, [2]int{lo, hi})

	lo, hi = Config{Indexer: IndexLeap}.withDefaults().bounds()
	assert.Equal(t, [2]int{2, 2}, [2]int{lo, hi})
}
