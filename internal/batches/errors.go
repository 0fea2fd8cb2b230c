package batches

import "errors"

var (
	ErrNotFound     = errors.New("batch job not found")
	ErrInvalidInput = errors.New("invalid input")
)
