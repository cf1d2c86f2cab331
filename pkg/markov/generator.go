package markov

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
)

// generatorOptions Is used by NewGenerator to configure default options.
type generatorOptions struct {
	logger *slog.Logger
}

// GeneratorOption is a function that configures a Generator.
type GeneratorOption func(*generatorOptions)

// WithGeneratorLogger sets the logger for the Generator. Partial sequences
// are logged at debug level after every walk step, and walk terminations
// with their reason. By default, all logs are discarded.
func WithGeneratorLogger(logger *slog.Logger) GeneratorOption {
	return func(o *generatorOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Generator performs random walks over a read-only Model. It owns its random
// source and is not safe for concurrent use; create one Generator per
// goroutine to walk a shared Model in parallel.
type Generator[T comparable] struct {
	model  *Model[T]
	rng    *rand.Rand
	logger *slog.Logger
}

// NewGenerator creates a Generator drawing from src. A nil src is replaced
// by a source seeded from crypto/rand, and the seed is logged at debug level
// so the walk can be replayed with NewSource.
func NewGenerator[T comparable](model *Model[T], src rand.Source, opts ...GeneratorOption) (*Generator[T], error) {
	if model == nil {
		return nil, fmt.Errorf("generator requires a model: %w", ErrInvalidConfiguration)
	}

	options := &generatorOptions{
		logger: discardLogger(),
	}
	for _, opt := range opts {
		opt(options)
	}

	if src == nil {
		seed, err := NewSeed()
		if err != nil {
			return nil, err
		}
		src = NewSource(seed)
		options.logger.Debug("Generator seeded from crypto/rand", slog.Uint64("seed", seed))
	}

	return &Generator[T]{
		model:  model,
		rng:    rand.New(src),
		logger: options.logger,
	}, nil
}

// Model returns the model the Generator walks.
func (g *Generator[T]) Model() *Model[T] {
	return g.model
}

// RandomContext returns a copy of a context chosen uniformly from every key
// of the table. The two boundary keys are valid choices.
func (g *Generator[T]) RandomContext() []T {
	key := g.model.keys[g.rng.IntN(len(g.model.keys))]
	return g.model.decode(g.model.table[key].context)
}

// RandomContextWhere returns a context chosen uniformly among the keys for
// which keep returns true. It returns false if no key is accepted. The slice
// passed to keep is reused between calls and must not be retained.
func (g *Generator[T]) RandomContextWhere(keep func(context []T) bool) ([]T, bool) {
	buf := make([]T, 0, g.model.degree)
	var candidates []*entry
	for _, key := range g.model.keys {
		e := g.model.table[key]
		buf = buf[:0]
		for _, id := range e.context {
			buf = append(buf, g.model.tokens[id])
		}
		if keep(buf) {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	return g.model.decode(candidates[g.rng.IntN(len(candidates))].context), true
}

// IntN returns a uniform int in [0, n) drawn from the Generator's source, so
// choices made around a walk replay with the same seed. It panics if n <= 0.
func (g *Generator[T]) IntN(n int) int {
	return g.rng.IntN(n)
}

// Next draws a follower of context uniformly from its follower list; a token
// listed twice is twice as likely. The boolean result is false when the stop
// sentinel was drawn, in which case the token is the zero value.
//
// The lookup is an exact match: a context that is not a key of the table
// fails with an *UnknownContextError, and no shorter context is tried.
func (g *Generator[T]) Next(context []T) (T, bool, error) {
	var zero T
	e, ok := g.model.lookup(context)
	if !ok {
		return zero, false, unknownContext(context)
	}
	id := e.followers[g.rng.IntN(len(e.followers))]
	if id == StopTokenID {
		return zero, false, nil
	}
	return g.model.tokens[id], true, nil
}
