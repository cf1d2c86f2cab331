package markov

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
)

// WalkState is the state of a Walker. A walk starts Walking and moves to
// Stopped when it draws the stop sentinel; Stopped is terminal.
type WalkState int

const (
	Walking WalkState = iota
	Stopped
)

func (s WalkState) String() string {
	switch s {
	case Walking:
		return "walking"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("WalkState(%d)", int(s))
	}
}

// HaltReason tells why a Walker stopped producing tokens.
type HaltReason int

const (
	// HaltNone means the walk can still produce tokens.
	HaltNone HaltReason = iota
	// HaltStop means the stop sentinel was drawn.
	HaltStop
	// HaltStepLimit means the WithMaxSteps bound was reached.
	HaltStepLimit
	// HaltPredicate means the WithStopWhen predicate accepted the last token.
	HaltPredicate
	// HaltFailed means a step failed; see Err.
	HaltFailed
	// HaltCancelled means the context passed to StepContext was done.
	HaltCancelled
)

func (r HaltReason) String() string {
	switch r {
	case HaltNone:
		return "none"
	case HaltStop:
		return "stop"
	case HaltStepLimit:
		return "step_limit"
	case HaltPredicate:
		return "predicate"
	case HaltFailed:
		return "failed"
	case HaltCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("HaltReason(%d)", int(r))
	}
}

// Walker produces a random walk one token at a time. It is created by
// Generator.Walk and can be restarted with Reset. Like its Generator, a
// Walker is not safe for concurrent use.
//
// A typical loop looks like:
//
//	for w.Step() {
//		fmt.Print(w.Token())
//	}
//	if err := w.Err(); err != nil {
//		return err
//	}
type Walker[T comparable] struct {
	gen      *Generator[T]
	options  *generateOptions
	stopWhen func([]T, T) bool

	seq     []T
	start   int // first index of the current run; the context never reaches before it
	emitted int // next index of seq handed out by All
	seedLen int
	steps   int
	token   T
	state   WalkState
	reason  HaltReason
	err     error
}

// Reset restarts the walk from seed with the same options. A nil seed is
// replaced by a random context of the table.
func (w *Walker[T]) Reset(seed []T) {
	if seed == nil {
		seed = w.gen.RandomContext()
	}
	var zero T
	w.seq = slices.Clone(seed)
	if w.seq == nil {
		w.seq = []T{}
	}
	w.start = 0
	w.emitted = len(w.seq)
	w.seedLen = len(w.seq)
	w.steps = 0
	w.token = zero
	w.state = Walking
	w.reason = HaltNone
	w.err = nil
}

// Step draws the next token. It returns false once the walk has halted,
// after which Reason and Err tell why.
func (w *Walker[T]) Step() bool {
	return w.StepContext(context.Background())
}

// StepContext is like Step but halts with HaltCancelled, and an error
// wrapping ctx.Err(), once ctx is done.
func (w *Walker[T]) StepContext(ctx context.Context) bool {
	if w.reason != HaltNone {
		return false
	}
	if err := ctx.Err(); err != nil {
		w.halt(HaltCancelled, fmt.Errorf("walk cancelled after %d steps: %w", w.steps, err))
		return false
	}
	if w.options.maxSteps > 0 && w.steps >= w.options.maxSteps {
		w.halt(HaltStepLimit, nil)
		return false
	}

	token, ok, err := w.gen.Next(w.context())
	if err != nil && w.options.reseed && errors.Is(err, ErrUnknownContext) {
		w.gen.logger.Debug("Walk reseeded after unknown context",
			slog.Int("steps", w.steps),
			slog.String("error", err.Error()),
		)
		seed := w.gen.RandomContext()
		w.start = len(w.seq)
		w.seq = append(w.seq, seed...)
		token, ok, err = w.gen.Next(w.context())
	}
	if err != nil {
		w.halt(HaltFailed, fmt.Errorf("walk failed after %d steps: %w", w.steps, err))
		return false
	}
	w.steps++

	if !ok {
		if !w.options.loopAround {
			w.state = Stopped
			w.halt(HaltStop, nil)
			return false
		}
		// Wrap around to the start of the input.
		head := w.gen.model.Head()
		w.start = len(w.seq)
		w.seq = append(w.seq, head...)
		w.token = head[len(head)-1]
		w.trace()
		return true
	}

	w.token = token
	w.seq = append(w.seq, token)
	w.trace()
	if w.stopWhen != nil && w.stopWhen(w.seq, token) {
		w.halt(HaltPredicate, nil)
	}
	return true
}

// context returns the last `degree` tokens of the current run, or the whole
// run when it is shorter.
func (w *Walker[T]) context() []T {
	run := w.seq[w.start:]
	if d := w.gen.model.degree; len(run) > d {
		run = run[len(run)-d:]
	}
	return run
}

func (w *Walker[T]) halt(reason HaltReason, err error) {
	w.reason = reason
	w.err = err
	w.gen.logger.Debug("Walk terminated",
		slog.String("reason", reason.String()),
		slog.Int("steps", w.steps),
		slog.Int("generated_length", len(w.seq)),
	)
}

func (w *Walker[T]) trace() {
	if w.gen.logger.Enabled(context.Background(), slog.LevelDebug) {
		w.gen.logger.Debug("Walk step",
			slog.Int("step", w.steps),
			slog.Any("sequence", w.seq),
		)
	}
}

// Token returns the token appended by the last successful Step. After a
// loop-around step it is the last token of the appended input head.
func (w *Walker[T]) Token() T {
	return w.token
}

// State returns Stopped once the stop sentinel has been drawn, and Walking
// otherwise.
func (w *Walker[T]) State() WalkState {
	return w.state
}

// Reason returns why the walk halted, or HaltNone while it can continue.
func (w *Walker[T]) Reason() HaltReason {
	return w.reason
}

// Err returns the error that halted the walk, if any.
func (w *Walker[T]) Err() error {
	return w.err
}

// Steps returns the number of draws made since the last Reset.
func (w *Walker[T]) Steps() int {
	return w.steps
}

// Sequence returns a copy of the sequence so far, seed included.
func (w *Walker[T]) Sequence() []T {
	return slices.Clone(w.seq)
}

// Generated returns a copy of the tokens appended after the seed.
func (w *Walker[T]) Generated() []T {
	return slices.Clone(w.seq[w.seedLen:])
}

// All returns an iterator over the tokens the walk appends after its seed,
// including any context appended by a reseed or a loop-around. Iteration
// stops when the walk halts or the loop body breaks; breaking early leaves
// the walk where it is, so a later All continues from there.
func (w *Walker[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			for w.emitted < len(w.seq) {
				token := w.seq[w.emitted]
				w.emitted++
				if !yield(token) {
					return
				}
			}
			if !w.Step() {
				return
			}
		}
	}
}
