package bpetok

import (
	"go.uber.org/zap"

	"github.com/bketok/internal/tokenizer"
)

// DefaultCacheSize is the number of encodings a Tokenizer keeps by default.
const DefaultCacheSize = 4096

type options struct {
	cfg       tokenizer.Config
	log       *zap.SugaredLogger
	verbose   bool
	cacheSize int
}

// Option configures Train, LoadTokenizer and NewTokenizer. Training options
// are ignored when loading.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithWindow sets k, the tuple length merged by the fixed indexer.
func WithWindow(k int) Option {
	return func(o *options) { o.cfg.Window = k }
}

// WithIndexer selects how occurrences are indexed during training.
func WithIndexer(kind IndexKind) Option {
	return func(o *options) { o.cfg.Indexer = kind }
}

// WithMaxWindow sets the longest tuple the windowed indexer considers.
func WithMaxWindow(x int) Option {
	return func(o *options) { o.cfg.MaxWindow = x }
}

// WithScorer replaces the frequency scorer.
func WithScorer(s Scorer) Option {
	return func(o *options) { o.cfg.Scorer = s }
}

// WithRetainEmpty keeps zero count tuples in the training multiset. Training
// skips them when picking the next merge.
func WithRetainEmpty() Option {
	return func(o *options) { o.cfg.RetainEmpty = true }
}

// WithLookahead evaluates the top candidates by simulating steps merges
// after each before committing to one.
func WithLookahead(candidates, steps int) Option {
	return func(o *options) {
		o.cfg.Lookahead = tokenizer.Lookahead{Candidates: candidates, Steps: steps}
	}
}

// WithLogger reports training progress to log. Per-merge lines are logged at
// info level when verbose is set, at debug otherwise.
func WithLogger(log *zap.SugaredLogger, verbose bool) Option {
	return func(o *options) {
		o.log = log
		o.verbose = verbose
	}
}

// WithCacheSize sets how many encodings are cached. Zero disables the cache.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}
