package main

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/CTAG07/markovgen/pkg/markov"
)

// unitGenerator produces words (character model) or sentences (word model).
// A unit is a walk seeded at a boundary context and halted by the first
// boundary token it draws.
type unitGenerator struct {
	cfg       *Config
	gen       *markov.Generator[string]
	tokenizer markov.Tokenizer
	isEnd     func(token string) bool
	logger    *slog.Logger

	// starts holds the full-degree contexts ending in a boundary token. When
	// it is empty, units start from any context of the table.
	starts [][]string
}

// unitResult holds the rendered output of a run.
type unitResult struct {
	Text      string
	Generated int
	Failed    int
}

func newUnitGenerator(cfg *Config, gen *markov.Generator[string], tokenizer markov.Tokenizer, isEnd func(string) bool, logger *slog.Logger) *unitGenerator {
	g := &unitGenerator{
		cfg:       cfg,
		gen:       gen,
		tokenizer: tokenizer,
		isEnd:     isEnd,
		logger:    logger,
	}

	degree := gen.Model().Degree()
	for _, start := range gen.Model().Contexts() {
		if len(start) == degree && isEnd(start[degree-1]) {
			g.starts = append(g.starts, start)
		}
	}
	if len(g.starts) == 0 {
		logger.Warn("Corpus has no unit boundary of the configured degree, starting units from random contexts",
			slog.Int("degree", degree),
		)
	}
	return g
}

// isSeparator reports whether a character token ends a word.
func isSeparator(token string) bool {
	return token == markov.LineFeed || token == markov.Space
}

// endSet returns a predicate matching the texts of the EOC tokens.
func endSet(tokens []markov.Token) func(string) bool {
	ends := make(map[string]struct{})
	for _, token := range tokens {
		if token.EOC {
			ends[token.Text] = struct{}{}
		}
	}
	return func(text string) bool {
		_, ok := ends[text]
		return ok
	}
}

// Generate produces cfg.Count units. A unit that cannot be generated within
// cfg.MaxTries attempts is logged and skipped.
func (g *unitGenerator) Generate(ctx context.Context) (*unitResult, error) {
	var (
		out     strings.Builder
		history []string
		result  = &unitResult{}
	)

	for i := 1; i <= g.cfg.Count; i++ {
		unit, err := g.next(ctx, history)
		if err != nil {
			return nil, err
		}
		if unit == nil {
			result.Failed++
			g.logger.Warn("Could not generate unit, try a lower degree",
				slog.Int("index", i),
				slog.Int("tries", g.cfg.MaxTries),
			)
			continue
		}
		result.Generated++
		history = append(history, unit...)
		out.WriteString(g.format(unit, i == g.cfg.Count))
	}

	result.Text = strings.ReplaceAll(out.String(), markov.LineFeed, g.cfg.LineFeedOut())
	return result, nil
}

// next retries walks until one yields a unit within the length bounds. It
// returns nil when every try failed.
func (g *unitGenerator) next(ctx context.Context, history []string) ([]string, error) {
	for try := 1; try <= g.cfg.MaxTries; try++ {
		unit, ok, err := g.try(ctx, g.seed(history))
		if err != nil {
			return nil, err
		}
		if ok {
			return unit, nil
		}
	}
	return nil, nil
}

// seed returns the context a unit starts from. In prose mode a unit follows
// the text written so far when its tail is a known context; otherwise a
// random context ending in a boundary token is drawn, or any context when
// the corpus has no boundary.
func (g *unitGenerator) seed(history []string) []string {
	degree := g.gen.Model().Degree()
	if !g.cfg.PrintAsList && len(history) >= degree {
		if tail := history[len(history)-degree:]; g.gen.Model().Has(tail) {
			return slices.Clone(tail)
		}
	}
	if len(g.starts) == 0 {
		return g.gen.RandomContext()
	}
	return slices.Clone(g.starts[g.gen.IntN(len(g.starts))])
}

// try runs a single walk from seed. It reports false when the walk ran out
// of steps or produced a unit outside the length bounds.
func (g *unitGenerator) try(ctx context.Context, seed []string) ([]string, bool, error) {
	limit := g.cfg.MaxLength + 1
	if g.cfg.MaxSteps > 0 && g.cfg.MaxSteps < limit {
		limit = g.cfg.MaxSteps
	}

	w, err := g.gen.Walk(seed,
		markov.WithStopWhen(func(_ []string, last string) bool { return g.isEnd(last) }),
		markov.WithMaxSteps(limit),
		markov.WithReseed(g.cfg.Reseed),
	)
	if err != nil {
		return nil, false, err
	}
	for w.StepContext(ctx) {
	}
	if err = w.Err(); err != nil {
		if errors.Is(err, markov.ErrUnknownContext) {
			g.logger.Debug("Walk reached an unknown context", slog.Any("error", err))
			return nil, false, nil
		}
		return nil, false, err
	}

	unit := w.Generated()
	switch w.Reason() {
	case markov.HaltPredicate, markov.HaltStop:
	default:
		return nil, false, nil
	}

	length := len(unit)
	if length > 0 && g.isEnd(unit[length-1]) {
		length--
	}
	if length < g.cfg.MinLength || length > g.cfg.MaxLength {
		return nil, false, nil
	}
	return unit, true, nil
}

// format renders a unit for the output.
func (g *unitGenerator) format(unit []string, last bool) string {
	if g.cfg.Mode == modeText {
		text := markov.Render(g.tokenizer, unit)
		if g.cfg.PrintAsList || last {
			return text + markov.LineFeed
		}
		return text + markov.Space
	}

	sep := markov.LineFeed
	letters := unit
	if n := len(unit); n > 0 && isSeparator(unit[n-1]) {
		letters = unit[:n-1]
		if !g.cfg.PrintAsList {
			sep = unit[n-1]
		}
	}
	if last {
		sep = markov.LineFeed
	}

	word := strings.Join(letters, "")
	if g.cfg.PrintAsNames {
		word = capitalize(word)
	}
	return word + sep
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
