package utils

import "errors"

var (
	ErrNegativeCount = errors.New("multiset count went negative")
)
