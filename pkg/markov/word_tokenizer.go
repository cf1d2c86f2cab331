package markov

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

// maxLineSize bounds a single input line read by a WordTokenizer.
const maxLineSize = 1 << 20

var (
	// defaultWordPattern matches runs of word characters and apostrophes, or
	// a single punctuation mark.
	defaultWordPattern = regexp.MustCompile(`[\w']+|[.,!?;]`)
	// defaultEndPattern matches the punctuation that ends a sentence.
	defaultEndPattern = regexp.MustCompile(`^[.!?]$`)
	// defaultPunctPattern matches tokens rendered without a space before them
	// and without a terminator after them.
	defaultPunctPattern = regexp.MustCompile(`^[.,!?;]`)
)

// WordTokenizer splits text into words and punctuation marks. Tokens that end
// a sentence are flagged as EOC, so a sentence is the run of tokens up to and
// including one of them. Line breaks carry no meaning.
type WordTokenizer struct {
	joiner     string
	terminator string
	lowerCase  bool

	word          *regexp.Regexp
	end           *regexp.Regexp
	noSpaceBefore *regexp.Regexp
	noTermAfter   *regexp.Regexp
}

// WordOption is a function that configures a WordTokenizer.
type WordOption func(*WordTokenizer)

// WithJoiner sets the string placed between two rendered tokens.
// Default: " "
func WithJoiner(joiner string) WordOption {
	return func(t *WordTokenizer) {
		t.joiner = joiner
	}
}

// WithTerminator sets the string appended to a rendered sequence whose last
// token is not punctuation.
// Default: "."
func WithTerminator(terminator string) WordOption {
	return func(t *WordTokenizer) {
		t.terminator = terminator
	}
}

// WithWordLowerCase lower-cases every token read from the input.
// Default: false
func WithWordLowerCase(lower bool) WordOption {
	return func(t *WordTokenizer) {
		t.lowerCase = lower
	}
}

// WithWordPattern sets the pattern whose matches are the tokens of a line.
// It panics if pattern does not compile.
func WithWordPattern(pattern string) WordOption {
	return func(t *WordTokenizer) {
		t.word = regexp.MustCompile(pattern)
	}
}

// WithEndPattern sets the pattern of tokens that end a sentence.
// It panics if pattern does not compile.
func WithEndPattern(pattern string) WordOption {
	return func(t *WordTokenizer) {
		t.end = regexp.MustCompile(pattern)
	}
}

// WithNoSpacePattern sets the pattern of tokens rendered without a joiner
// before them, and without a terminator when they come last.
// It panics if pattern does not compile.
func WithNoSpacePattern(pattern string) WordOption {
	return func(t *WordTokenizer) {
		re := regexp.MustCompile(pattern)
		t.noSpaceBefore = re
		t.noTermAfter = re
	}
}

// NewWordTokenizer creates a word tokenizer with default settings, which can
// be overridden by providing one or more WordOption functions.
func NewWordTokenizer(opts ...WordOption) *WordTokenizer {
	t := &WordTokenizer{
		joiner:        " ",
		terminator:    ".",
		word:          defaultWordPattern,
		end:           defaultEndPattern,
		noSpaceBefore: defaultPunctPattern,
		noTermAfter:   defaultPunctPattern,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Separator returns the joiner, or "" when next is punctuation.
func (t *WordTokenizer) Separator(_, next string) string {
	if t.noSpaceBefore.MatchString(next) {
		return ""
	}
	return t.joiner
}

// EOC returns the terminator, or "" when last is punctuation already.
func (t *WordTokenizer) EOC(last string) string {
	if t.noTermAfter.MatchString(last) {
		return ""
	}
	return t.terminator
}

// NewStream returns a stream reading r line by line.
func (t *WordTokenizer) NewStream(r io.Reader) StreamTokenizer {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &wordStream{
		scanner:   scanner,
		tokenizer: t,
	}
}

// wordStream is the StreamTokenizer of a WordTokenizer. It holds the
// unconsumed tokens of the current line.
type wordStream struct {
	scanner   *bufio.Scanner
	tokenizer *WordTokenizer
	pending   []string
}

// Next returns the next token, reading further lines as needed. It returns
// io.EOF once the input is exhausted, or the scanner's error if reading
// failed.
func (s *wordStream) Next() (*Token, error) {
	for len(s.pending) == 0 {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		s.pending = s.tokenizer.word.FindAllString(s.scanner.Text(), -1)
	}

	text := s.pending[0]
	s.pending = s.pending[1:]
	if s.tokenizer.lowerCase {
		text = strings.ToLower(text)
	}
	return &Token{Text: text, EOC: s.tokenizer.end.MatchString(text)}, nil
}
