package markov

import (
	"go/build"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// chars splits s into one string token per byte, which is enough for the
// ASCII fixtures used in these tests.
func chars(s string) []string {
	return strings.Split(s, "")
}

// buildTestModel builds a model and fails the test on error.
func buildTestModel[T comparable](t *testing.T, seq []T, degree int) *Model[T] {
	t.Helper()
	m, err := Build(seq, degree)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return m
}

// newTestGenerator creates a Generator with a fixed seed so that walks are
// reproducible across runs.
func newTestGenerator[T comparable](t *testing.T, m *Model[T], seed uint64) *Generator[T] {
	t.Helper()
	g, err := NewGenerator(m, NewSource(seed))
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	return g
}

// setupBanana is a convenience helper for the reference "banana" model of degree 2.
func setupBanana(t *testing.T) (*Model[string], *Generator[string]) {
	t.Helper()
	m := buildTestModel(t, chars("banana"), 2)
	return m, newTestGenerator(t, m, 1)
}

// followerTexts renders a follower list with the stop sentinel as StopTokenText.
func followerTexts(followers []Follower[string]) []string {
	out := make([]string, len(followers))
	for i, f := range followers {
		if f.Stop {
			out[i] = StopTokenText
		} else {
			out[i] = f.Token
		}
	}
	return out
}

var (
	benchmarkCorpus string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus reads Go source files to create a corpus for benchmarking.
func createBenchmarkCorpus() string {
	corpusOnce.Do(func() {
		var sb strings.Builder
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				benchmarkCorpus = "this is a fallback corpus for benchmarking. it is not very long but will prevent a crash. "
				return
			}
			sb.Write(content)
			sb.WriteString("\n")
		}
		benchmarkCorpus = sb.String()
	})
	return benchmarkCorpus
}

// benchmarkTokens tokenizes the benchmark corpus into words.
func benchmarkTokens(b *testing.B) []string {
	b.Helper()
	tokens, err := Tokenize(NewWordTokenizer(), strings.NewReader(createBenchmarkCorpus()))
	if err != nil {
		b.Fatalf("Tokenize() error = %v", err)
	}
	return Texts(tokens)
}
