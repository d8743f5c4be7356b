package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bketok/bpetok"
)

func TestParseTrainConfigFlagsOverrideYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "train.yaml")
	require.NoError(t, os.WriteFile(path, []byte("in: corpus.txt\nvocab: 1000\nindexer: windowed\nx: 5\nretain_empty: true\n"), 0o644))

	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, err := parseTrainConfig(fs, []string{"-config", path, "-vocab", "600"})
	require.NoError(t, err)

	assert.Equal(t, "corpus.txt", cfg.In)
	assert.Equal(t, 600, cfg.Vocab)
	assert.Equal(t, "windowed", cfg.Indexer)
	assert.Equal(t, 5, cfg.X)
	assert.True(t, cfg.RetainEmpty)
	// untouched by both keeps the flag default
	assert.Equal(t, "model.cbor", cfg.Out)
}

func TestParseTrainConfigMissingFile(t *testing.T) {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	_, err := parseTrainConfig(fs, []string{"-config", filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, err)
}

func TestTrainConfigOptions(t *testing.T) {
	cfg := &trainConfig{Indexer: "windowed", X: 3}
	opts, err := cfg.options([]byte("abc"))
	require.NoError(t, err)
	assert.NotEmpty(t, opts)

	_, err = (&trainConfig{Indexer: "suffix"}).options(nil)
	require.Error(t, err)
	_, err = (&trainConfig{Score: "entropy"}).options(nil)
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	decomposed := []byte("e\u0301")
	got, err := normalize("nfc", decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\u00e9", string(got))

	got, err = normalize("nfkc", []byte("\ufb01"))
	require.NoError(t, err)
	assert.Equal(t, "fi", string(got))

	got, err = normalize("none", decomposed)
	require.NoError(t, err)
	assert.Equal(t, decomposed, got)

	_, err = normalize("nfd", decomposed)
	require.Error(t, err)
}

func TestTrainEncodeDecode(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "corpus.txt")
	model := filepath.Join(dir, "model.cbor")
	text := strings.Repeat("to be or not to be, that is the question. ", 20)
	require.NoError(t, os.WriteFile(corpus, []byte(text), 0o644))

	require.NoError(t, runTrain(context.Background(), []string{"-in", corpus, "-out", model, "-vocab", "300"}))

	tok, err := bpetok.LoadTokenizer(model)
	require.NoError(t, err)
	// the corpus is periodic and collapses to one token before reaching 300
	assert.Equal(t, 256+len(tok.Merges()), tok.VocabSize())
	assert.LessOrEqual(t, tok.VocabSize(), 300)
	assert.Len(t, tok.Encode([]byte(text)), 1)

	var ids bytes.Buffer
	require.NoError(t, runEncode([]string{"-model", model}, strings.NewReader(text), &ids))

	var out bytes.Buffer
	require.NoError(t, runDecode([]string{"-model", model}, &ids, &out))
	assert.Equal(t, text, out.String())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.json")
	tok, err := bpetok.Train(context.Background(), []byte("abababab"), 257)
	require.NoError(t, err)
	require.NoError(t, tok.Save(model))

	err = runDecode([]string{"-model", model}, strings.NewReader("97 x"), io.Discard)
	require.Error(t, err)
	err = runDecode([]string{"-model", model}, strings.NewReader("97 9999"), io.Discard)
	require.Error(t, err)
}
