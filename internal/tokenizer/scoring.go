package tokenizer

import (
	"fmt"
	"math"

	"github.com/bketok/internal/utils"
)

// Scorer turns a tuple and its raw count into the key candidates are ranked
// by. The engine only ever asks the multiset for its maximum, so any scorer
// can be plugged in without the engine knowing which one is active.
type Scorer = utils.Scorer[Tuple]

// ScoreFunc adapts a function to Scorer.
type ScoreFunc = utils.ScoreFunc[Tuple]

// MergeObserver is implemented by scorers that keep counters outside the
// multiset. ObserveMerge is called once per merged occurrence, before the
// tuples around the merged node are counted again.
type MergeObserver interface {
	ObserveMerge(t Tuple, id Symbol)
}

// ScorerCloner is implemented by stateful scorers so lookahead runs can work
// on a private copy.
type ScorerCloner interface {
	CloneScorer() Scorer
}

// FrequencyScore ranks by raw count. This is plain BPE.
func FrequencyScore() Scorer {
	return utils.Frequency[Tuple]()
}

// WindowScore ranks by (len-1)*(count-1): the number of symbols a merge would
// save, minus the one vocabulary slot it costs. Meant for the windowed
// indexer, where tuples of several lengths compete.
func WindowScore() Scorer {
	return ScoreFunc(func(t Tuple, count int) float64 {
		return float64((t.Len() - 1) * (count - 1))
	})
}

// PairOnlyScore ranks pairs by count and everything longer as 0.
func PairOnlyScore() Scorer {
	return ScoreFunc(func(t Tuple, count int) float64 {
		if t.Len() > 2 {
			return 0
		}
		return float64(count)
	})
}

// ConditionalScore ranks a pair (a, b) by count^P / n(a)^Q / n(b)^R where n(x)
// is how often symbol x was seen on its own: input byte counts for raw bytes,
// merged occurrences for merge ids.
//
// The heap is only re-sifted for tuples whose count changes, so a shift in
// n(x) alone does not reorder entries already in the heap.
type ConditionalScore struct {
	P, Q, R float64
	singles map[Symbol]int
}

// NewConditionalScore seeds symbol counts from input.
func NewConditionalScore(input []byte, p, q, r float64) *ConditionalScore {
	c := &ConditionalScore{P: p, Q: q, R: r, singles: make(map[Symbol]int)}
	for _, b := range input {
		c.singles[Symbol(b)]++
	}
	return c
}

func (c *ConditionalScore) Score(t Tuple, count int) float64 {
	if t.Len() != 2 {
		return 0
	}
	return math.Pow(float64(count), c.P) /
		math.Pow(c.single(t.At(0)), c.Q) /
		math.Pow(c.single(t.At(1)), c.R)
}

func (c *ConditionalScore) single(s Symbol) float64 {
	if n := c.singles[s]; n > 0 {
		return float64(n)
	}
	return 1
}

func (c *ConditionalScore) ObserveMerge(_ Tuple, id Symbol) { c.singles[id]++ }

func (c *ConditionalScore) CloneScorer() Scorer {
	out := &ConditionalScore{P: c.P, Q: c.Q, R: c.R, singles: make(map[Symbol]int, len(c.singles))}
	for k, v := range c.singles {
		out.singles[k] = v
	}
	return out
}

// Scorer names accepted by ScorerByName.
const (
	ScoreFrequency   = "frequency"
	ScoreWindow      = "window"
	ScorePairOnly    = "pair"
	ScoreConditional = "conditional"
)

// ScorerByName builds one of the named scorers. input seeds scorers that need
// symbol statistics.
func ScorerByName(name string, input []byte) (Scorer, error) {
	switch name {
	case "", ScoreFrequency:
		return FrequencyScore(), nil
	case ScoreWindow:
		return WindowScore(), nil
	case ScorePairOnly:
		return PairOnlyScore(), nil
	case ScoreConditional:
		return NewConditionalScore(input, 3, 1, 1), nil
	}
	return nil, fmt.Errorf("%w: unknown scorer %q", ErrInvalidConfig, name)
}
