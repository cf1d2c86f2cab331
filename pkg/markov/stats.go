package markov

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// ModelStats holds aggregated statistics for a single Markov model.
type ModelStats struct {
	Degree       int // The context length of the model.
	Contexts     int // The number of keys in the table, boundary entries included.
	Links        int // The number of unique context->follower pairs.
	Transitions  int // The sum of all follower list lengths; the number of recorded transitions.
	Vocabulary   int // The number of unique real tokens in the input.
	StopContexts int // The number of contexts that may draw the stop sentinel.
}

// Stats returns a snapshot of statistics for the model.
func (m *Model[T]) Stats() ModelStats {
	stats := ModelStats{
		Degree:     m.degree,
		Contexts:   len(m.keys),
		Vocabulary: len(m.tokens) - 1,
	}
	seen := make(map[int]struct{})
	for _, key := range m.keys {
		e := m.table[key]
		stats.Transitions += len(e.followers)
		clear(seen)
		for _, id := range e.followers {
			seen[id] = struct{}{}
		}
		stats.Links += len(seen)
		if _, ok := seen[StopTokenID]; ok {
			stats.StopContexts++
		}
	}
	return stats
}

// Dump writes the table to w, one context per line, sorted by the rendered
// context: the context's tokens, a colon, then its followers separated by
// commas, e.g. "an:a,a". Context tokens are concatenated when every token
// formats to a single rune, and separated by spaces otherwise, so "a b" and
// "ab" stay distinct. The stop sentinel is written as StopTokenText and line
// feeds are escaped as `\n`. A nil format uses fmt.Sprint.
func (m *Model[T]) Dump(w io.Writer, format func(T) string) error {
	if format == nil {
		format = func(token T) string { return fmt.Sprint(token) }
	}
	joiner := ""
	for _, token := range m.tokens[1:] {
		if utf8.RuneCountInString(format(token)) != 1 {
			joiner = " "
			break
		}
	}
	render := func(id int) string {
		if id == StopTokenID {
			return StopTokenText
		}
		return strings.ReplaceAll(format(m.tokens[id]), "\n", `\n`)
	}

	type line struct {
		key       string
		followers []int
	}
	lines := make([]line, 0, len(m.keys))
	for _, key := range m.keys {
		e := m.table[key]
		var sb strings.Builder
		for j, id := range e.context {
			if j > 0 {
				sb.WriteString(joiner)
			}
			sb.WriteString(render(id))
		}
		lines = append(lines, line{key: sb.String(), followers: e.followers})
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].key < lines[j].key
	})

	bw := bufio.NewWriter(w)
	for _, l := range lines {
		bw.WriteString(l.key)
		bw.WriteByte(':')
		for i, id := range l.followers {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(render(id))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
