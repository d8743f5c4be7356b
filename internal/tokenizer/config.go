package tokenizer

import "fmt"

// IndexKind selects how occurrences of a candidate are found.
type IndexKind int

const (
	// IndexFixed indexes tuples of exactly Window symbols.
	IndexFixed IndexKind = iota
	// IndexWindowed indexes every tuple of 2..MaxWindow symbols.
	IndexWindowed
	// IndexLeap keeps exact per-pair chains. Pairs only.
	IndexLeap
)

var indexKindNames = map[IndexKind]string{
	IndexFixed:    "fixed",
	IndexWindowed: "windowed",
	IndexLeap:     "leap",
}

func (k IndexKind) String() string {
	if s, ok := indexKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("IndexKind(%d)", int(k))
}

// ParseIndexKind is the inverse of IndexKind.String.
func ParseIndexKind(s string) (IndexKind, error) {
	if s == "" {
		return IndexFixed, nil
	}
	for k, name := range indexKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown indexer %q", ErrInvalidConfig, s)
}

const (
	DefaultWindow              = 2
	DefaultLookaheadCandidates = 10
	DefaultLookaheadSteps      = 100
)

// Lookahead makes training less greedy: each step scores the top Candidates
// tuples by merging each on a private copy of the working set and running
// Steps greedy merges there. Zero Candidates disables it.
type Lookahead struct {
	Candidates int
	Steps      int
}

// Config holds the training parameters.
type Config struct {
	// VocabSize is the target vocabulary size, raw bytes included. Must
	// exceed 256.
	VocabSize int

	Indexer IndexKind
	// Window is k, the tuple length merged by IndexFixed. Defaults to 2.
	Window int
	// MaxWindow is x, the longest tuple indexed by IndexWindowed.
	MaxWindow int

	// Scorer ranks candidates. Defaults to FrequencyScore.
	Scorer Scorer
	// RetainEmpty keeps tuples whose count reached zero in the multiset.
	RetainEmpty bool

	Lookahead Lookahead

	// Reporter receives progress events. Defaults to NopReporter.
	Reporter Reporter
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.Window == 0 {
		c.Window = DefaultWindow
	}
	if c.Indexer == IndexWindowed && c.MaxWindow == 0 {
		c.MaxWindow = c.Window
	}
	if c.Scorer == nil {
		c.Scorer = FrequencyScore()
	}
	if c.Reporter == nil {
		c.Reporter = NopReporter{}
	}
	if c.Lookahead.Candidates > 0 && c.Lookahead.Steps == 0 {
		c.Lookahead.Steps = DefaultLookaheadSteps
	}
	return c
}

// Validate rejects configurations training cannot start with.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.VocabSize <= ByteAlphabet {
		return fmt.Errorf("%w: vocab size %d must exceed %d", ErrInvalidConfig, c.VocabSize, ByteAlphabet)
	}
	if c.Window < 2 {
		return fmt.Errorf("%w: window %d must be at least 2", ErrInvalidConfig, c.Window)
	}
	switch c.Indexer {
	case IndexFixed:
	case IndexWindowed:
		if c.MaxWindow < 2 {
			return fmt.Errorf("%w: max window %d must be at least 2", ErrInvalidConfig, c.MaxWindow)
		}
	case IndexLeap:
		if c.Window != 2 {
			return fmt.Errorf("%w: the leap indexer only merges pairs, got window %d", ErrInvalidConfig, c.Window)
		}
	default:
		return fmt.Errorf("%w: unknown indexer %v", ErrInvalidConfig, c.Indexer)
	}
	if c.Lookahead.Candidates < 0 || c.Lookahead.Steps < 0 {
		return fmt.Errorf("%w: negative lookahead %+v", ErrInvalidConfig, c.Lookahead)
	}
	return nil
}

// bounds returns the tuple lengths the index must cover.
func (c Config) bounds() (lo, hi int) {
	switch c.Indexer {
	case IndexWindowed:
		return 2, c.MaxWindow
	case IndexLeap:
		return 2, 2
	}
	return c.Window, c.Window
}
