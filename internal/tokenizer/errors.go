package tokenizer

import "errors"

var (
	ErrInvalidConfig      = errors.New("invalid training configuration")
	ErrInvariantViolation = errors.New("merge statistics disagree with the sequence")
	ErrUnknownSymbol      = errors.New("symbol id not in vocabulary")
	ErrInvalidModel       = errors.New("invalid model")
)
