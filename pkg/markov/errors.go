package markov

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned by Build when the input sequence is empty.
	ErrInvalidInput = errors.New("invalid input sequence")
	// ErrInvalidConfiguration is returned when a degree, a generator or a set
	// of generation options cannot produce a usable walk.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrUnknownContext is returned when a context has no entry in the table.
	ErrUnknownContext = errors.New("unknown context")
)

// UnknownContextError reports the context that failed an exact-match
// lookup. It matches ErrUnknownContext with errors.Is.
type UnknownContextError struct {
	Context string
}

func (e *UnknownContextError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownContext, e.Context)
}

func (e *UnknownContextError) Unwrap() error {
	return ErrUnknownContext
}

func unknownContext[T comparable](context []T) error {
	return &UnknownContextError{Context: fmt.Sprintf("%v", context)}
}
