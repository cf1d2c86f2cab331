package markov

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Token represents a single tokenized unit of text. It contains the text itself
// and a boolean flag indicating if it marks the end of a chain (e.g., a sentence
// for words, or a word for characters).
type Token struct {
	Text string
	EOC  bool
}

// Tokenizer is an interface that defines the contract for splitting input text
// into tokens. This allows the model and generator to stay independent of the
// specific tokenization strategy.
type Tokenizer interface {
	// NewStream returns a stateful StreamTokenizer for processing an io.Reader.
	NewStream(io.Reader) StreamTokenizer
	// Separator returns the string that should be used to join tokens
	// when building a final generated string, using the previous and current
	// tokens.
	Separator(prev, current string) string
	// EOC returns the string appended after the last token of a rendered
	// sequence, using that last token.
	EOC(last string) string
}

// StreamTokenizer is an interface for a stateful tokenizer that processes a
// stream of data, returning one token at a time.
type StreamTokenizer interface {
	// Next returns the next token from the stream. It returns io.EOF as the
	// error when the stream is fully consumed.
	Next() (*Token, error)
}

// Tokenize reads r to the end with t and returns every token in order.
func Tokenize(t Tokenizer, r io.Reader) ([]Token, error) {
	stream := t.NewStream(r)
	var tokens []Token
	for {
		token, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return tokens, nil
			}
			return nil, fmt.Errorf("tokenizer error: %w", err)
		}
		tokens = append(tokens, *token)
	}
}

// Texts returns the text of each token, ready to be passed to Build.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, token := range tokens {
		out[i] = token.Text
	}
	return out
}

// Render joins generated token texts into a single string using the
// tokenizer's separator and end-of-chain rules.
func Render(t Tokenizer, texts []string) string {
	if len(texts) == 0 {
		return ""
	}
	var builder strings.Builder
	lastWord := texts[0]
	builder.WriteString(lastWord)
	for _, text := range texts[1:] {
		builder.WriteString(t.Separator(lastWord, text))
		builder.WriteString(text)
		lastWord = text
	}
	// Ensure that all rendered sequences end with an EOC for standardization purposes.
	builder.WriteString(t.EOC(lastWord))
	return builder.String()
}
