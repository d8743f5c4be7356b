package tokenizer

import (
	"context"

	"github.com/bketok/internal/utils"
)

// Result is the outcome of a training run.
type Result struct {
	Merges MergeList
	Vocab  *Vocabulary
	// MergeCounts[i] is the number of occurrences Merges[i] replaced.
	MergeCounts []int
}

// Train learns merges from input until the vocabulary reaches cfg.VocabSize
// or no tuple is worth merging.
//
// ctx is only checked between merges. On cancellation the merges accepted so
// far are returned together with ctx.Err(); they form a valid model.
func Train(ctx context.Context, input []byte, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	rep := cfg.Reporter

	syms := make([]Symbol, len(input))
	for i, b := range input {
		syms[i] = Symbol(b)
	}

	var set workingSet
	timePhase(rep, "build_index", func() {
		set = newWorkingSet(cfg, syms)
	})

	var (
		e   *engine
		err error
	)
	timePhase(rep, "init_stats", func() {
		e, err = newEngine(set, cfg.Scorer, cfg.RetainEmpty, NewVocabulary())
	})
	if err != nil {
		return nil, err
	}

	timePhase(rep, "merge", func() {
		err = e.run(ctx, cfg, rep)
	})
	return &Result{Merges: e.merges, Vocab: e.vocab, MergeCounts: e.counts}, err
}

// run performs merges until the target size is reached.
func (e *engine) run(ctx context.Context, cfg Config, rep Reporter) error {
	total := cfg.VocabSize - ByteAlphabet
	for e.vocab.Len() < cfg.VocabSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		c, ok := e.best()
		if !ok {
			return nil
		}
		if cfg.Lookahead.Candidates > 0 {
			var err error
			c, ok, err = e.lookahead(cfg)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}

		id, merged, err := e.apply(c)
		if err != nil {
			return err
		}
		rep.Iteration(IterationSummary{
			Step:        len(e.merges),
			Total:       total,
			Tuple:       c.Item,
			ID:          id,
			Expansion:   e.vocab.Bytes(id),
			Count:       c.Count,
			Score:       c.Score,
			Occurrences: merged,
		})
	}
	return nil
}

// greedy performs up to n plain merges and returns the number of occurrences
// they replaced.
func (e *engine) greedy(n int) (int, error) {
	sum := 0
	for i := 0; i < n; i++ {
		c, ok := e.best()
		if !ok {
			break
		}
		_, merged, err := e.apply(c)
		if err != nil {
			return sum, err
		}
		sum += merged
	}
	return sum, nil
}

// lookahead scores each of the top candidates by merging it on a private copy
// and running greedy merges after it. The statistic is the total number of
// occurrences replaced. The first candidate with the largest positive total
// wins.
func (e *engine) lookahead(cfg Config) (utils.Scored[Tuple], bool, error) {
	remaining := cfg.VocabSize - e.vocab.Len()
	steps := min(cfg.Lookahead.Steps, remaining) - 1

	var (
		best      utils.Scored[Tuple]
		bestTotal int
	)
	for _, c := range e.stats.TopK(cfg.Lookahead.Candidates) {
		if c.Score <= 0 || c.Count <= 0 {
			continue
		}
		f, err := e.fork(cfg)
		if err != nil {
			return best, false, err
		}
		_, merged, err := f.apply(c)
		if err != nil {
			return best, false, err
		}
		rest, err := f.greedy(steps)
		if err != nil {
			return best, false, err
		}
		if total := merged + rest; total > bestTotal {
			best, bestTotal = c, total
		}
	}
	return best, bestTotal > 0, nil
}
