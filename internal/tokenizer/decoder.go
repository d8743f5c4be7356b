package tokenizer

import "fmt"

// Detokenize concatenates the expansion of every symbol in tokens. It is the
// exact inverse of Tokenize for any merge list recorded alongside vocab.
func Detokenize(tokens []Symbol, vocab *Vocabulary) ([]byte, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	total := 0
	for _, id := range tokens {
		if !vocab.Has(id) {
			return nil, fmt.Errorf("%w: %d (vocabulary has %d ids)", ErrUnknownSymbol, id, vocab.Len())
		}

		total += len(vocab.revVocab[id])
	}

	out := make([]byte, 0, total)
	for _, id := range tokens {
		out = append(out, vocab.revVocab[id]...)
	}

	return out, nil
}
