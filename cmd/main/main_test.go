package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testCorpus = `# fruit names
banana bandana cabana
anna nana savanna
banana cabana
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTestFile writes content to name inside a fresh temp dir and returns the path.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// testConfig returns a valid word-mode config reading testCorpus.
func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.InputPath = writeTestFile(t, "corpus.txt", testCorpus)
	cfg.Degree = 2
	cfg.Count = 10
	cfg.MinLength = 3
	cfg.MaxLength = 9
	cfg.Seed = 1
	return cfg
}

func TestRunToStdout(t *testing.T) {
	cfg := testConfig(t)

	var stdout bytes.Buffer
	if err := run(context.Background(), cfg, discardLogger(), &stdout); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	if len(lines) != cfg.Count {
		t.Fatalf("expected %d words, got %d: %q", cfg.Count, len(lines), stdout.String())
	}
	for _, word := range lines {
		if n := len(word); n < cfg.MinLength || n > cfg.MaxLength {
			t.Errorf("word %q has length %d outside [%d, %d]", word, n, cfg.MinLength, cfg.MaxLength)
		}
		if strings.ContainsAny(word, "# ") || strings.Contains(word, "fruit") {
			t.Errorf("word %q contains comment or separator text", word)
		}
	}
}

func TestRunFiles(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	cfg.OutputPath = filepath.Join(dir, "words.txt")
	cfg.DumpPath = filepath.Join(dir, "table.txt")

	var stdout bytes.Buffer
	if err := run(context.Background(), cfg, discardLogger(), &stdout); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("expected nothing on stdout, got %q", stdout.String())
	}

	out, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if len(out) == 0 {
		t.Error("output file is empty")
	}

	dump, err := os.ReadFile(cfg.DumpPath)
	if err != nil {
		t.Fatalf("failed to read dump: %v", err)
	}
	if !strings.Contains(string(dump), "<STOP>") || !strings.Contains(string(dump), `\n`) {
		t.Errorf("dump is missing the stop sentinel or escaped line feeds:\n%s", dump)
	}
}

func TestRunReproducible(t *testing.T) {
	cfg := testConfig(t)
	cfg.Seed = 1234

	var first, second bytes.Buffer
	if err := run(context.Background(), cfg, discardLogger(), &first); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if err := run(context.Background(), cfg, discardLogger(), &second); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if first.String() != second.String() {
		t.Errorf("runs with the same seed differ:\n%q\n%q", first.String(), second.String())
	}
}

func TestRunErrors(t *testing.T) {
	t.Run("Missing corpus", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.InputPath = filepath.Join(t.TempDir(), "missing.txt")
		if err := run(context.Background(), cfg, discardLogger(), io.Discard); err == nil {
			t.Error("expected an error for a missing corpus file")
		}
	})

	t.Run("Degree too large", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.InputPath = writeTestFile(t, "tiny.txt", "ab")
		cfg.Degree = 10
		if err := run(context.Background(), cfg, discardLogger(), io.Discard); err == nil {
			t.Error("expected an error for a degree larger than the corpus")
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		cfg := testConfig(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := run(ctx, cfg, discardLogger(), io.Discard); err == nil {
			t.Error("expected an error for a cancelled context")
		}
	})
}
