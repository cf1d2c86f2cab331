package markov

import (
	"context"
	"fmt"
)

// generateOptions Is used by the walk functions to configure default options.
type generateOptions struct {
	maxSteps   int
	reseed     bool
	loopAround bool
	// stopWhen holds a func([]T, T) bool; it is checked against the
	// generator's token type when the walk is created.
	stopWhen any
}

// GenerateOption is a function that configures a walk. It's used as a
// variadic argument in Generate and Walk.
type GenerateOption func(*generateOptions)

// WithMaxSteps sets the maximum number of draws a walk may make. The walk may
// stop earlier if the stop sentinel is drawn. A value of 0 means no limit.
func WithMaxSteps(n int) GenerateOption {
	return func(o *generateOptions) { o.maxSteps = n }
}

// WithStopWhen ends the walk right after a real token for which stop returns
// true. The token is kept in the sequence. stop receives the whole sequence,
// seed included, and the token just appended; it must not keep the slice.
func WithStopWhen[T comparable](stop func(seq []T, last T) bool) GenerateOption {
	return func(o *generateOptions) { o.stopWhen = stop }
}

// WithReseed specifies whether a walk that reaches a context missing from
// the table continues from a fresh RandomContext instead of failing with
// ErrUnknownContext. The new context is appended to the sequence.
func WithReseed(reseed bool) GenerateOption {
	return func(o *generateOptions) { o.reseed = reseed }
}

// WithLoopAround specifies whether drawing the stop sentinel wraps the walk
// around to the start of the input instead of ending it. The first `degree`
// input tokens are appended and the walk continues from them. Such a walk
// never ends on its own, so WithMaxSteps or WithStopWhen is required.
func WithLoopAround(loop bool) GenerateOption {
	return func(o *generateOptions) { o.loopAround = loop }
}

// Generate walks the model from seed and returns the whole sequence,
// starting with the seed itself. A nil seed is replaced by RandomContext; an
// empty, non-nil seed starts from the empty boundary context.
//
// Without options the walk only ends when the stop sentinel is drawn, which
// may never happen when the table contains cycles. Use WithMaxSteps,
// WithStopWhen or a context deadline to bound it.
func (g *Generator[T]) Generate(ctx context.Context, seed []T, opts ...GenerateOption) ([]T, error) {
	w, err := g.Walk(seed, opts...)
	if err != nil {
		return nil, err
	}
	for w.StepContext(ctx) {
	}
	if err = w.Err(); err != nil {
		return nil, err
	}
	return w.Sequence(), nil
}

// Walk returns a lazy Walker positioned at seed. Nothing is drawn until its
// Step method is called. Seed handling is the same as for Generate.
func (g *Generator[T]) Walk(seed []T, opts ...GenerateOption) (*Walker[T], error) {
	options := &generateOptions{}
	for _, opt := range opts {
		opt(options)
	}

	w := &Walker[T]{
		gen:     g,
		options: options,
	}
	if options.stopWhen != nil {
		stopWhen, ok := options.stopWhen.(func([]T, T) bool)
		if !ok {
			return nil, fmt.Errorf("stop predicate %T does not match token type %T: %w", options.stopWhen, *new(T), ErrInvalidConfiguration)
		}
		w.stopWhen = stopWhen
	}
	if options.maxSteps < 0 {
		return nil, fmt.Errorf("max steps %d is negative: %w", options.maxSteps, ErrInvalidConfiguration)
	}
	if options.loopAround && options.maxSteps == 0 && w.stopWhen == nil {
		return nil, fmt.Errorf("loop-around walks need a step limit or a stop predicate: %w", ErrInvalidConfiguration)
	}

	w.Reset(seed)
	return w, nil
}
