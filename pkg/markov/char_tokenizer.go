package markov

import (
	"bufio"
	"errors"
	"io"
	"unicode"
)

const (
	// LineFeed is the separator token emitted for line breaks.
	LineFeed = "\n"
	// Space is the separator token emitted for blanks.
	Space = " "
)

// CharTokenizer splits text into one token per character, for generating
// words letter by letter. Runs of blanks and line breaks collapse into a
// single separator token (Space or LineFeed) flagged as EOC, so a word is
// the run of tokens between two separators. The stream always starts and
// ends with a LineFeed. Other control characters are dropped.
type CharTokenizer struct {
	lowerCase   bool
	commentRune rune
}

// CharOption Is a function that configures a CharTokenizer.
type CharOption func(*CharTokenizer)

// WithLowerCase sets whether letters are lower-cased.
// Default: true
func WithLowerCase(lower bool) CharOption {
	return func(t *CharTokenizer) {
		t.lowerCase = lower
	}
}

// WithCommentRune sets a character that starts a comment running to the end
// of the line. A zero rune disables comments.
// Default: 0
func WithCommentRune(r rune) CharOption {
	return func(t *CharTokenizer) {
		t.commentRune = r
	}
}

// NewCharTokenizer creates a new character tokenizer.
func NewCharTokenizer(opts ...CharOption) *CharTokenizer {
	t := &CharTokenizer{
		lowerCase: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Separator returns "", characters are rendered back to back.
func (t *CharTokenizer) Separator(_, _ string) string {
	return ""
}

// EOC returns "", a generated word carries its own separator if any.
func (t *CharTokenizer) EOC(_ string) string {
	return ""
}

// NewStream Returns the stream processor.
func (t *CharTokenizer) NewStream(r io.Reader) StreamTokenizer {
	return &charStream{
		reader:      bufio.NewReader(r),
		lowerCase:   t.lowerCase,
		commentRune: t.commentRune,
	}
}

// charStream is the StreamTokenizer of a CharTokenizer.
type charStream struct {
	reader      *bufio.Reader
	lowerCase   bool
	commentRune rune

	started    bool
	finished   bool
	whitespace bool
	comment    bool
	last       string
}

func (s *charStream) emit(text string, eoc bool) (*Token, error) {
	s.last = text
	return &Token{Text: text, EOC: eoc}, nil
}

// Next returns the next character token, or io.EOF once the input and the
// closing LineFeed have been consumed.
func (s *charStream) Next() (*Token, error) {
	if !s.started {
		// Every word, including the first one, follows a separator.
		s.started = true
		s.whitespace = true
		return s.emit(LineFeed, true)
	}
	if s.finished {
		return nil, io.EOF
	}

	for {
		r, _, err := s.reader.ReadRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, err
			}
			s.finished = true
			if s.last != LineFeed {
				return s.emit(LineFeed, true)
			}
			return nil, io.EOF
		}

		switch {
		case r == '\n' || r == '\r':
			s.comment = false
			if !s.whitespace {
				s.whitespace = true
				return s.emit(LineFeed, true)
			}
		case s.comment:
		case r == ' ':
			if !s.whitespace {
				s.whitespace = true
				return s.emit(Space, true)
			}
		case s.commentRune != 0 && r == s.commentRune:
			s.comment = true
		case r > ' ' && !unicode.IsControl(r):
			s.whitespace = false
			if s.lowerCase {
				r = unicode.ToLower(r)
			}
			return s.emit(string(r), false)
		}
	}
}
