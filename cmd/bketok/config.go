package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/bketok/bpetok"
	"github.com/bketok/internal/tokenizer"
)

// trainConfig holds the train subcommand settings. A YAML file given with
// -config is applied first; flags set on the command line win over it.
type trainConfig struct {
	In          string `yaml:"in"`
	Out         string `yaml:"out"`
	Vocab       int    `yaml:"vocab"`
	K           int    `yaml:"k"`
	Indexer     string `yaml:"indexer"`
	X           int    `yaml:"x"`
	Score       string `yaml:"score"`
	Lookahead   int    `yaml:"lookahead"`
	Steps       int    `yaml:"steps"`
	Normalize   string `yaml:"normalize"`
	RetainEmpty bool   `yaml:"retain_empty"`
	Verbose     bool   `yaml:"verbose"`
}

func (c *trainConfig) bind(fs *flag.FlagSet) *string {
	fs.StringVar(&c.In, "in", "", "training corpus")
	fs.StringVar(&c.Out, "out", "model.cbor", "model output path (.json for JSON)")
	fs.IntVar(&c.Vocab, "vocab", 512, "target vocabulary size, raw bytes included")
	fs.IntVar(&c.K, "k", tokenizer.DefaultWindow, "tuple length for the fixed indexer")
	fs.StringVar(&c.Indexer, "indexer", "fixed", "fixed | windowed | leap")
	fs.IntVar(&c.X, "x", 0, "longest tuple for the windowed indexer")
	fs.StringVar(&c.Score, "score", "", "frequency | window | pair | conditional")
	fs.IntVar(&c.Lookahead, "lookahead", 0, "candidates evaluated per step, 0 is greedy")
	fs.IntVar(&c.Steps, "steps", tokenizer.DefaultLookaheadSteps, "merges simulated per lookahead candidate")
	fs.StringVar(&c.Normalize, "normalize", "none", "nfc | nfkc | none")
	fs.BoolVar(&c.RetainEmpty, "retain-empty", false, "keep zero count tuples in the multiset")
	fs.BoolVar(&c.Verbose, "v", false, "log every merge")
	return fs.String("config", "", "YAML file with defaults for these flags")
}

// parseTrainConfig parses args, applying the YAML file first if one is given.
func parseTrainConfig(fs *flag.FlagSet, args []string) (*trainConfig, error) {
	cfg := &trainConfig{}
	path := cfg.bind(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *path == "" {
		return cfg, nil
	}

	explicit := map[string]string{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = f.Value.String() })

	data, err := os.ReadFile(*path)
	if err != nil {
		return nil, fmt.Errorf("error while reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error while parsing %s: %w", *path, err)
	}
	for name, v := range explicit {
		if err := fs.Set(name, v); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// options turns the settings into training options. input seeds scorers that
// need symbol counts.
func (c *trainConfig) options(input []byte) ([]bpetok.Option, error) {
	kind, err := tokenizer.ParseIndexKind(c.Indexer)
	if err != nil {
		return nil, err
	}
	score := c.Score
	if score == "" && kind == tokenizer.IndexWindowed {
		score = tokenizer.ScoreWindow
	}
	scorer, err := tokenizer.ScorerByName(score, input)
	if err != nil {
		return nil, err
	}

	opts := []bpetok.Option{
		bpetok.WithIndexer(kind),
		bpetok.WithWindow(c.K),
		bpetok.WithMaxWindow(c.X),
		bpetok.WithScorer(scorer),
	}
	if c.Lookahead > 0 {
		opts = append(opts, bpetok.WithLookahead(c.Lookahead, c.Steps))
	}
	if c.RetainEmpty {
		opts = append(opts, bpetok.WithRetainEmpty())
	}
	return opts, nil
}

// normalize applies the configured Unicode normalization form.
func normalize(form string, input []byte) ([]byte, error) {
	switch form {
	case "", "none":
		return input, nil
	case "nfc":
		return norm.NFC.Bytes(input), nil
	case "nfkc":
		return norm.NFKC.Bytes(input), nil
	}
	return nil, fmt.Errorf("unknown normalization %q", form)
}
