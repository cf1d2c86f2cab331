package markov

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
)

const (
	// StopTokenID is the reserved vocabulary ID of the stop sentinel. Real
	// tokens are numbered from 1, so the sentinel never equals a real token.
	StopTokenID = 0
	// StopTokenText is how the stop sentinel is rendered in dumps and logs.
	StopTokenText = "<STOP>"
)

// Follower is one entry of a context's follower list. Stop is set for the
// stop sentinel, in which case Token holds the zero value.
type Follower[T comparable] struct {
	Token T
	Stop  bool
}

// entry is a single row of the transition table.
type entry struct {
	context   []int
	followers []int
}

// Model is a built, read-only Markov transition table over tokens of type T.
// It is safe for concurrent use by multiple goroutines.
type Model[T comparable] struct {
	degree int
	vocab  map[T]int
	tokens []T // tokens[id]; index 0 is the stop sentinel
	table  map[string]*entry
	keys   []string // insertion order, for reproducible random starts
	head   []int
}

// buildOptions Is used by Build to configure default options.
type buildOptions struct {
	logger *slog.Logger
}

// BuildOption is a function that configures model construction. It's used
// as a variadic argument to Build.
type BuildOption func(*buildOptions)

// WithLogger sets the logger used while building. Every processed
// context->follower pair is logged at debug level, and a summary at info
// level. By default, all logs are discarded.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(o *buildOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Build scans seq once and returns its transition table of the given degree.
//
// Besides one key for every window of `degree` tokens that has a successor,
// the table holds two boundary entries: the empty context, followed only by
// seq[0], and the final `degree` tokens of seq, followed by the stop
// sentinel.
//
// An empty seq fails with ErrInvalidInput. A degree below 1, or not less
// than len(seq), fails with ErrInvalidConfiguration.
func Build[T comparable](seq []T, degree int, opts ...BuildOption) (*Model[T], error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("cannot build model from an empty sequence: %w", ErrInvalidInput)
	}
	if degree < 1 {
		return nil, fmt.Errorf("degree %d is below 1: %w", degree, ErrInvalidConfiguration)
	}
	if degree >= len(seq) {
		return nil, fmt.Errorf("degree %d must be less than the sequence length %d: %w", degree, len(seq), ErrInvalidConfiguration)
	}

	options := &buildOptions{
		logger: discardLogger(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	m := &Model[T]{
		degree: degree,
		vocab:  make(map[T]int),
		tokens: make([]T, 1, len(seq)/2+1),
		table:  make(map[string]*entry),
	}

	ids := make([]int, len(seq))
	for i, token := range seq {
		ids[i] = m.intern(token)
	}

	n := len(ids)
	var keyBuf []byte

	keyBuf = m.record(keyBuf, nil, ids[0])
	keyBuf = m.record(keyBuf, ids[n-degree:], StopTokenID)

	trace := logger.Enabled(context.Background(), slog.LevelDebug)
	for i := 0; i < n-degree; i++ {
		keyBuf = m.record(keyBuf, ids[i:i+degree], ids[i+degree])
		if trace {
			logger.Debug("Transition recorded",
				slog.Int("position", i),
				slog.Any("context", seq[i:i+degree]),
				slog.Any("follower", seq[i+degree]),
			)
		}
	}
	m.head = ids[:degree]

	logger.Info("Model built",
		slog.Int("degree", degree),
		slog.Int("sequence_length", n),
		slog.Int("contexts", len(m.keys)),
		slog.Int("vocabulary", len(m.tokens)-1),
	)

	return m, nil
}

// intern returns the vocabulary ID of token, assigning the next free one
// the first time it is seen.
func (m *Model[T]) intern(token T) int {
	if id, ok := m.vocab[token]; ok {
		return id
	}
	id := len(m.tokens)
	m.vocab[token] = id
	m.tokens = append(m.tokens, token)
	return id
}

// record appends follower to the list of context, creating the entry if the
// context is new. keyBuf is reused between calls and returned.
func (m *Model[T]) record(keyBuf []byte, context []int, follower int) []byte {
	keyBuf = appendKey(keyBuf[:0], context)
	e, ok := m.table[string(keyBuf)]
	if !ok {
		key := string(keyBuf)
		e = &entry{context: context}
		m.table[key] = e
		m.keys = append(m.keys, key)
	}
	e.followers = append(e.followers, follower)
	return keyBuf
}

// appendKey renders token IDs as a space separated prefix key.
func appendKey(keyBuf []byte, ids []int) []byte {
	for j, tokenID := range ids {
		if j > 0 {
			keyBuf = append(keyBuf, ' ')
		}
		keyBuf = strconv.AppendInt(keyBuf, int64(tokenID), 10)
	}
	return keyBuf
}

// lookup finds the table entry of context. A context holding a token that
// never occurred in the input cannot be a key.
func (m *Model[T]) lookup(context []T) (*entry, bool) {
	if len(context) > m.degree {
		return nil, false
	}
	var buf [64]byte
	keyBuf := buf[:0]
	for j, token := range context {
		id, ok := m.vocab[token]
		if !ok {
			return nil, false
		}
		if j > 0 {
			keyBuf = append(keyBuf, ' ')
		}
		keyBuf = strconv.AppendInt(keyBuf, int64(id), 10)
	}
	e, ok := m.table[string(keyBuf)]
	return e, ok
}

// decode maps token IDs back to a fresh slice of tokens.
func (m *Model[T]) decode(ids []int) []T {
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = m.tokens[id]
	}
	return out
}

// Degree returns the context length of the model.
func (m *Model[T]) Degree() int {
	return m.degree
}

// Len returns the number of contexts in the table, boundary entries included.
func (m *Model[T]) Len() int {
	return len(m.keys)
}

// Has reports whether context is a key of the table.
func (m *Model[T]) Has(context []T) bool {
	_, ok := m.lookup(context)
	return ok
}

// Head returns a copy of the first `degree` tokens of the input sequence.
func (m *Model[T]) Head() []T {
	return m.decode(m.head)
}

// Contexts returns a copy of every key of the table in insertion order. The
// empty context comes first and the final context of the input second.
func (m *Model[T]) Contexts() [][]T {
	out := make([][]T, len(m.keys))
	for i, key := range m.keys {
		out[i] = m.decode(m.table[key].context)
	}
	return out
}

// Followers returns a copy of the follower list recorded for context, with
// duplicates retained. It fails with an *UnknownContextError if context is
// not a key of the table.
func (m *Model[T]) Followers(context []T) ([]Follower[T], error) {
	e, ok := m.lookup(context)
	if !ok {
		return nil, unknownContext(context)
	}
	out := make([]Follower[T], len(e.followers))
	for i, id := range e.followers {
		if id == StopTokenID {
			out[i] = Follower[T]{Stop: true}
		} else {
			out[i] = Follower[T]{Token: m.tokens[id]}
		}
	}
	return out, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
