package main

import (
	"context"
	"strings"
	"testing"
	"unicode"

	"github.com/CTAG07/markovgen/pkg/markov"
)

// newTestUnits builds a unit generator over corpus the way run does.
func newTestUnits(t *testing.T, cfg *Config, corpus string) *unitGenerator {
	t.Helper()
	var tokenizer markov.Tokenizer = markov.NewCharTokenizer(markov.WithCommentRune(cfg.CommentRune()))
	isEnd := isSeparator
	if cfg.Mode == modeText {
		tokenizer = markov.NewWordTokenizer(markov.WithWordLowerCase(cfg.LowerCase))
	}
	tokens, err := markov.Tokenize(tokenizer, strings.NewReader(corpus))
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if cfg.Mode == modeText {
		isEnd = endSet(tokens)
	}
	model, err := markov.Build(markov.Texts(tokens), cfg.Degree)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	gen, err := markov.NewGenerator(model, markov.NewSource(cfg.Seed))
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	return newUnitGenerator(cfg, gen, tokenizer, isEnd, discardLogger())
}

func generateUnits(t *testing.T, g *unitGenerator) *unitResult {
	t.Helper()
	result, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return result
}

func TestGenerateWordList(t *testing.T) {
	cfg := testConfig(t)
	result := generateUnits(t, newTestUnits(t, cfg, testCorpus))

	if result.Generated != cfg.Count || result.Failed != 0 {
		t.Fatalf("got %d generated and %d failed, want %d and 0", result.Generated, result.Failed, cfg.Count)
	}
	if !strings.HasSuffix(result.Text, "\n") {
		t.Errorf("output %q does not end with a line feed", result.Text)
	}
	words := strings.Split(strings.TrimSuffix(result.Text, "\n"), "\n")
	if len(words) != cfg.Count {
		t.Fatalf("expected %d lines, got %d", cfg.Count, len(words))
	}
	for _, word := range words {
		if len(word) < cfg.MinLength || len(word) > cfg.MaxLength {
			t.Errorf("word %q is out of bounds", word)
		}
		for _, r := range word {
			if !strings.ContainsRune("abcdnsv", r) {
				t.Errorf("word %q contains %q, which is not in the corpus", word, r)
			}
		}
	}
}

func TestGenerateNames(t *testing.T) {
	cfg := testConfig(t)
	cfg.PrintAsNames = true
	result := generateUnits(t, newTestUnits(t, cfg, testCorpus))

	for _, word := range strings.Fields(result.Text) {
		if r := []rune(word)[0]; !unicode.IsUpper(r) {
			t.Errorf("name %q is not capitalized", word)
		}
	}
}

func TestGenerateProse(t *testing.T) {
	cfg := testConfig(t)
	cfg.PrintAsList = false
	result := generateUnits(t, newTestUnits(t, cfg, testCorpus))

	if got := len(strings.Fields(result.Text)); got != result.Generated {
		t.Errorf("expected %d words in the prose, got %d: %q", result.Generated, got, result.Text)
	}
	if !strings.HasSuffix(result.Text, "\n") {
		t.Errorf("prose %q does not end with a line feed", result.Text)
	}
}

func TestGenerateLineFeedStyle(t *testing.T) {
	cfg := testConfig(t)
	cfg.LineFeed = "windows"
	result := generateUnits(t, newTestUnits(t, cfg, testCorpus))

	if got := strings.Count(result.Text, "\r\n"); got != result.Generated {
		t.Errorf("expected %d CRLF line breaks, got %d", result.Generated, got)
	}
	if strings.Count(result.Text, "\n") != strings.Count(result.Text, "\r\n") {
		t.Errorf("output %q has bare line feeds", result.Text)
	}
}

func TestGenerateGivesUp(t *testing.T) {
	cfg := testConfig(t)
	cfg.MinLength, cfg.MaxLength = 40, 50
	cfg.MaxTries = 5
	cfg.Count = 3
	result := generateUnits(t, newTestUnits(t, cfg, testCorpus))

	if result.Generated != 0 || result.Failed != 3 || result.Text != "" {
		t.Errorf("got = %+v, want every unit to fail", result)
	}
}

func TestGenerateSentences(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mode = modeText
	cfg.Degree = 1
	cfg.MinLength, cfg.MaxLength = 1, 20
	corpus := "The cat sat. The dog ran! A cat ran away. Did the dog sit?"
	result := generateUnits(t, newTestUnits(t, cfg, corpus))

	lines := strings.Split(strings.TrimSuffix(result.Text, "\n"), "\n")
	if len(lines) != cfg.Count {
		t.Fatalf("expected %d sentences, got %d: %q", cfg.Count, len(lines), result.Text)
	}
	for _, line := range lines {
		if !strings.ContainsAny(line[len(line)-1:], ".!?") {
			t.Errorf("sentence %q does not end with punctuation", line)
		}
		if line != strings.ToLower(line) {
			t.Errorf("sentence %q was not lower-cased", line)
		}
	}
}

func TestGenerateSentencesWithoutPunctuation(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mode = modeText
	cfg.Degree = 1
	cfg.MinLength, cfg.MaxLength = 1, 20
	corpus := "the cat sat on the mat and the dog sat on the log\n"
	g := newTestUnits(t, cfg, corpus)
	if len(g.starts) != 0 {
		t.Fatalf("expected no boundary contexts, got %v", g.starts)
	}
	result := generateUnits(t, g)

	if result.Generated != cfg.Count {
		t.Fatalf("got %d generated and %d failed, want %d", result.Generated, result.Failed, cfg.Count)
	}
	// Without sentence punctuation a unit only ends where the corpus does.
	for _, line := range strings.Split(strings.TrimSuffix(result.Text, "\n"), "\n") {
		if !strings.HasSuffix(line, "log.") {
			t.Errorf("sentence %q does not end at the end of the corpus", line)
		}
	}
}

func TestCapitalize(t *testing.T) {
	for input, want := range map[string]string{
		"anna": "Anna",
		"élan": "Élan",
		"":     "",
		"Bob":  "Bob",
	} {
		if got := capitalize(input); got != want {
			t.Errorf("capitalize(%q) got = %q, want %q", input, got, want)
		}
	}
}
