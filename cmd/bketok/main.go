package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/bketok/bpetok"
)

const usage = `usage: bketok <command> [flags]

commands:
  train    learn a model from a corpus
  encode   print the token ids of a file or stdin
  decode   turn token ids read from a file or stdin back into bytes
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(ctx, os.Args[2:])
	case "encode":
		err = runEncode(os.Args[2:], os.Stdin, os.Stdout)
	case "decode":
		err = runDecode(os.Args[2:], os.Stdin, os.Stdout)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "bketok %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	cfg, err := parseTrainConfig(fs, args)
	if err != nil {
		return err
	}
	if cfg.In == "" {
		return errors.New("-in is required")
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Sugar()

	input, err := os.ReadFile(cfg.In)
	if err != nil {
		return fmt.Errorf("error while reading corpus: %w", err)
	}
	if input, err = normalize(cfg.Normalize, input); err != nil {
		return err
	}

	opts, err := cfg.options(input)
	if err != nil {
		return err
	}
	opts = append(opts, bpetok.WithLogger(log, cfg.Verbose))

	log.Infow("training", "corpus", cfg.In, "bytes", len(input), "vocab", cfg.Vocab, "indexer", cfg.Indexer)
	tok, err := bpetok.Train(ctx, input, cfg.Vocab, opts...)
	switch {
	case errors.Is(err, context.Canceled):
		log.Warnw("training interrupted, saving partial model", "merges", len(tok.Merges()))
	case err != nil:
		return err
	}

	if err := tok.Save(cfg.Out); err != nil {
		return err
	}
	log.Infow("model saved", "path", cfg.Out, "model", tok.Model().ID, "vocab", tok.VocabSize())
	return nil
}

func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(stdin), nil
	}
	return os.Open(path)
}

func runEncode(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	modelPath := fs.String("model", "model.cbor", "model file")
	in := fs.String("in", "", "input file, stdin when empty")
	form := fs.String("normalize", "none", "nfc | nfkc | none")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tok, err := bpetok.LoadTokenizer(*modelPath)
	if err != nil {
		return err
	}
	r, err := openInput(*in, stdin)
	if err != nil {
		return err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if data, err = normalize(*form, data); err != nil {
		return err
	}

	w := bufio.NewWriter(stdout)
	for i, id := range tok.Encode(data) {
		if i > 0 {
			w.WriteByte(' ')
		}
		w.WriteString(strconv.Itoa(id))
	}
	w.WriteByte('\n')
	return w.Flush()
}

func runDecode(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	modelPath := fs.String("model", "model.cbor", "model file")
	in := fs.String("in", "", "file of whitespace separated ids, stdin when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tok, err := bpetok.LoadTokenizer(*modelPath)
	if err != nil {
		return err
	}
	r, err := openInput(*in, stdin)
	if err != nil {
		return err
	}
	defer r.Close()

	var ids []int
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		id, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		if err != nil {
			return fmt.Errorf("bad token id %q: %w", sc.Text(), err)
		}
		ids = append(ids, id)
	}
	if err := sc.Err(); err != nil {
		return err
	}

	out, err := tok.Decode(ids)
	if err != nil {
		return err
	}
	_, err = stdout.Write(out)
	return err
}
