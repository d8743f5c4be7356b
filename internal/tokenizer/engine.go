package tokenizer

import (
	"fmt"

	"github.com/bketok/internal/sequence"
	"github.com/bketok/internal/utils"
)

// workingSet is the editable representation training merges on. Both
// implementations buffer their statistic deltas into the multiset passed to
// them; the engine commits once per step.
type workingSet interface {
	// seed counts every tuple currently in the set.
	seed(stats *utils.Multiset[Tuple])
	// merge replaces every live occurrence of t, left to right, by id and
	// returns how many occurrences it replaced.
	merge(t Tuple, id Symbol, stats *utils.Multiset[Tuple], obs MergeObserver) int
	// values returns the current symbols in order.
	values() []Symbol
}

// newWorkingSet builds the backing selected by cfg over syms.
func newWorkingSet(cfg Config, syms []Symbol) workingSet {
	if cfg.Indexer == IndexLeap {
		return newLeapSet(syms)
	}
	lo, hi := cfg.bounds()
	return newIndexedSet(sequence.FromSymbols(syms), lo, hi)
}

// indexedSet is a sequence plus a stale index. It merges tuples of any length
// the index covers.
type indexedSet struct {
	seq    *sequence.Sequence
	ix     *sequence.StaleIndex
	window []sequence.Handle
}

func newIndexedSet(seq *sequence.Sequence, lo, hi int) *indexedSet {
	return &indexedSet{seq: seq, ix: sequence.BuildIndex(seq, lo, hi)}
}

func (s *indexedSet) seed(stats *utils.Multiset[Tuple]) {
	s.ix.Counts(func(t Tuple, n int) { stats.Add(t, n) })
}

func (s *indexedSet) merge(t Tuple, id Symbol, stats *utils.Multiset[Tuple], obs MergeObserver) int {
	k := t.Len()
	remove := func(u Tuple, _ sequence.Handle) { stats.Remove(u, 1) }
	add := func(u Tuple, h sequence.Handle) {
		s.ix.Register(u, h)
		stats.Add(u, 1)
	}

	merged := 0
	for _, h := range s.ix.Candidates(t) {
		if !s.ix.Valid(h, t) {
			continue
		}

		// every tuple overlapping the window goes away: those containing h,
		// and those starting at one of the k-1 nodes after it
		s.ix.Touching(h, true, remove)
		s.window = s.seq.AppendWindow(s.window[:0], s.seq.Next(h), k-1)
		for _, w := range s.window {
			s.ix.Touching(w, false, remove)
		}

		s.seq.MergeWindow(h, k, id)
		if obs != nil {
			obs.ObserveMerge(t, id)
		}
		s.ix.Touching(h, true, add)
		merged++
	}
	return merged
}

func (s *indexedSet) values() []Symbol { return s.seq.Values() }

// leapSet keeps one node per adjacent pair. Only pairs can be merged.
type leapSet struct {
	lp *sequence.Leap[Tuple]
	// single holds the sequence when it is too short to form a pair
	single []Symbol
}

func newLeapSet(syms []Symbol) *leapSet {
	s := &leapSet{lp: pairLeap(syms, false)}
	if len(syms) < 2 {
		s.single = append([]Symbol(nil), syms...)
	}
	return s
}

func (s *leapSet) seed(stats *utils.Multiset[Tuple]) {
	for h := s.lp.Head(); h != sequence.Nil; h = s.lp.Next(h) {
		stats.Add(s.lp.Value(h), 1)
	}
}

func (s *leapSet) merge(t Tuple, id Symbol, stats *utils.Multiset[Tuple], obs MergeObserver) int {
	merged := mergePairs(s.lp, t, id, stats, obs)
	// the last pair was merged away, id is all that is left
	if merged > 0 && s.lp.Len() == 0 {
		s.single = []Symbol{id}
	}
	return merged
}

func (s *leapSet) values() []Symbol {
	if s.lp.Len() == 0 {
		return append([]Symbol(nil), s.single...)
	}
	return pairSymbols(s.lp, true)
}

// engine owns the state of one training run.
type engine struct {
	set    workingSet
	stats  *utils.Multiset[Tuple]
	vocab  *Vocabulary
	scorer Scorer
	obs    MergeObserver

	merges MergeList
	counts []int
}

func newEngine(set workingSet, scorer Scorer, retain bool, vocab *Vocabulary) (*engine, error) {
	opts := []utils.MultisetOption[Tuple]{utils.WithScorer[Tuple](scorer)}
	if retain {
		opts = append(opts, utils.WithRetainEmpty[Tuple]())
	}
	e := &engine{
		set:    set,
		stats:  utils.NewMultiset[Tuple](opts...),
		vocab:  vocab,
		scorer: scorer,
	}
	e.obs, _ = scorer.(MergeObserver)

	set.seed(e.stats)
	if err := e.stats.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvariantViolation, err)
	}
	return e, nil
}

// best returns the highest priority tuple worth merging.
func (e *engine) best() (utils.Scored[Tuple], bool) {
	t, score, ok := e.stats.MostCommon()
	if !ok || score <= 0 {
		return utils.Scored[Tuple]{}, false
	}
	if n := e.stats.Count(t); n > 0 {
		return utils.Scored[Tuple]{Item: t, Count: n, Score: score}, true
	}

	// a retained empty entry can outrank live ones under a custom scorer
	for k := 16; ; k *= 2 {
		top := e.stats.TopK(k)
		for _, c := range top {
			if c.Score <= 0 {
				return utils.Scored[Tuple]{}, false
			}
			if c.Count > 0 {
				return c, true
			}
		}
		if len(top) < k {
			return utils.Scored[Tuple]{}, false
		}
	}
}

// apply merges every occurrence of t, commits the statistics and records the
// merge. c.Count must be positive.
func (e *engine) apply(c utils.Scored[Tuple]) (Symbol, int, error) {
	id := e.vocab.NextID()
	merged := e.set.merge(c.Item, id, e.stats, e.obs)
	if err := e.stats.Commit(); err != nil {
		return 0, merged, fmt.Errorf("%w: merging %v: %w", ErrInvariantViolation, c.Item, err)
	}
	if merged == 0 {
		return 0, 0, fmt.Errorf("%w: %v has count %d but no live occurrence", ErrInvariantViolation, c.Item, c.Count)
	}
	if _, err := e.vocab.Add(c.Item); err != nil {
		return 0, merged, err
	}
	e.merges = append(e.merges, Merge{Tuple: c.Item, ID: id})
	e.counts = append(e.counts, merged)
	return id, merged, nil
}

// fork copies the engine state into one sharing nothing mutable with e.
// Lookahead copies always use an indexed backing.
func (e *engine) fork(cfg Config) (*engine, error) {
	scorer := e.scorer
	if c, ok := scorer.(ScorerCloner); ok {
		scorer = c.CloneScorer()
	}
	lo, hi := cfg.bounds()
	set := newIndexedSet(sequence.FromSymbols(e.set.values()), lo, hi)
	return newEngine(set, scorer, cfg.RetainEmpty, e.vocab.Clone())
}
