package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/CTAG07/markovgen/pkg/markov"
	"github.com/natefinch/atomic"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fs := flag.NewFlagSet("markovgen", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "markovgen: %v\n", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))
	if err = run(ctx, cfg, logger, os.Stdout); err != nil {
		logger.Error("Generation failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// run builds a model from the configured corpus and writes the generated
// units. stdout receives the output when the output path is "-".
func run(ctx context.Context, cfg *Config, logger *slog.Logger, stdout io.Writer) error {
	logger.Info("Starting markovgen",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
		"mode", cfg.Mode,
		"degree", cfg.Degree,
	)

	corpus, err := openCorpus(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer corpus.Close()

	var tokenizer markov.Tokenizer
	if cfg.Mode == modeWords {
		tokenizer = markov.NewCharTokenizer(
			markov.WithLowerCase(cfg.LowerCase),
			markov.WithCommentRune(cfg.CommentRune()),
		)
	} else {
		tokenizer = markov.NewWordTokenizer(markov.WithWordLowerCase(cfg.LowerCase))
	}
	tokens, err := markov.Tokenize(tokenizer, corpus)
	if err != nil {
		return fmt.Errorf("failed to tokenize corpus: %w", err)
	}

	model, err := markov.Build(markov.Texts(tokens), cfg.Degree, markov.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to build model: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		if seed, err = markov.NewSeed(); err != nil {
			return fmt.Errorf("failed to draw a random seed: %w", err)
		}
	}
	logger.Info("Random source ready", "seed", seed)
	gen, err := markov.NewGenerator(model, markov.NewSource(seed), markov.WithGeneratorLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	if cfg.DumpPath != "" {
		if err = writeDump(model, cfg.DumpPath); err != nil {
			return err
		}
		logger.Info("Wrote transition table", "path", cfg.DumpPath)
	}

	isEnd := isSeparator
	if cfg.Mode == modeText {
		isEnd = endSet(tokens)
	}
	result, err := newUnitGenerator(cfg, gen, tokenizer, isEnd, logger).Generate(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate: %w", err)
	}

	if err = writeOutput(cfg.OutputPath, result.Text, stdout); err != nil {
		return err
	}

	stats := model.Stats()
	logger.Info("Generation finished",
		"generated", result.Generated,
		"failed", result.Failed,
		"contexts", stats.Contexts,
		"links", stats.Links,
		"transitions", stats.Transitions,
		"vocabulary", stats.Vocabulary,
		"stop_contexts", stats.StopContexts,
	)
	return nil
}

func writeDump(model *markov.Model[string], path string) error {
	var buf bytes.Buffer
	if err := model.Dump(&buf, nil); err != nil {
		return fmt.Errorf("failed to dump model: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write dump file: %w", err)
	}
	return nil
}

func writeOutput(path, text string, stdout io.Writer) error {
	if path == "-" {
		if _, err := io.WriteString(stdout, text); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := atomic.WriteFile(path, strings.NewReader(text)); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
