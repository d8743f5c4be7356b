package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bketok/internal/tokenizer"
)

func main() {
	path := flag.String("model", "model.cbor", "model file to inspect")
	top := flag.Int("n", 20, "number of merges to print")
	flag.Parse()

	m, err := tokenizer.LoadModel(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load model: %v\n", err)
		os.Exit(1)
	}

	lo, hi := m.Merges.Bounds()
	fmt.Printf("model %s created %s\n", m.ID, m.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("indexer %s, window %d, max window %d\n", m.Indexer, m.Window, m.MaxWindow)
	fmt.Printf("%d merges, tuple lengths %d..%d, vocab %d ids, longest token %d bytes\n",
		len(m.Merges), lo, hi, m.Vocab.Len(), m.Vocab.MaxTokenByteLen())

	for i, mg := range m.Merges {
		if i == *top {
			break
		}
		fmt.Printf("%5d  %-24v %q\n", mg.ID, mg.Tuple, m.Vocab.Bytes(mg.ID))
	}
	fmt.Println("model is valid: ids are dense and every expansion matches its members")
}
