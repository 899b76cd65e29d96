// Package textmatch finds whole-word, case-insensitive occurrences of
// literal phrases in text and decorates them.
package textmatch

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is a half-open byte range [Start, End) of a match.
type Span struct {
	Start int
	End   int
}

// Text returns the matched substring of text.
func (s Span) Text(text string) string {
	return text[s.Start:s.End]
}

// Matcher holds a compiled phrase set. Phrases are tried in the order given,
// the first one that forms a whole word at a position wins.
type Matcher struct {
	res []*regexp.Regexp
}

// New compiles phrases into a Matcher. Empty phrases are skipped.
func New(phrases []string) *Matcher {
	m := &Matcher{res: make([]*regexp.Regexp, 0, len(phrases))}
	for _, p := range phrases {
		if p == "" {
			continue
		}
		m.res = append(m.res, regexp.MustCompile(`(?i)\A`+regexp.QuoteMeta(p)))
	}
	return m
}

// Empty reports whether the matcher has nothing to look for.
func (m *Matcher) Empty() bool {
	return m == nil || len(m.res) == 0
}

// Find returns the non-overlapping whole-word matches in text, left to right.
//
// Word boundaries follow the Unicode letter/digit/underscore classes, so
// Cyrillic and other non-ASCII words are matched the same way as ASCII ones.
func (m *Matcher) Find(text string) []Span {
	if m.Empty() || text == "" {
		return nil
	}
	var spans []Span
	for pos := 0; pos < len(text); {
		if end, ok := m.matchAt(text, pos); ok {
			spans = append(spans, Span{Start: pos, End: end})
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[pos:])
		pos += size
	}
	return spans
}

func (m *Matcher) matchAt(text string, pos int) (int, bool) {
	if !boundary(text, pos) {
		return 0, false
	}
	for _, re := range m.res {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil || loc[1] == 0 {
			continue
		}
		if end := pos + loc[1]; boundary(text, end) {
			return end, true
		}
	}
	return 0, false
}

// FindMatches is a shortcut for New(phrases).Find(text).
func FindMatches(phrases []string, text string) []Span {
	if len(phrases) == 0 || text == "" {
		return nil
	}
	return New(phrases).Find(text)
}

// Contains reports whether any phrase occurs in text as a whole word.
func Contains(phrases []string, text string) bool {
	return len(FindMatches(phrases, text)) > 0
}

func boundary(text string, i int) bool {
	var before, after bool
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWord(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWord(r)
	}
	return before != after
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

type options struct {
	tag       string
	transform func(string) string
}

// Option customizes Highlight.
type Option func(*options)

// WithTag sets the tag every match is wrapped in. An empty tag disables wrapping.
func WithTag(tag string) Option {
	return func(o *options) {
		o.tag = tag
	}
}

// WithTransform sets the function applied to each wrapped match. Nil keeps it unchanged.
func WithTransform(fn func(string) string) Option {
	return func(o *options) {
		o.transform = fn
	}
}

// Highlight rewrites every span of text, by default as an upper-cased <b> element.
// Spans must come from the same text, ordered and non-overlapping as Find returns them.
func Highlight(text string, spans []Span, opts ...Option) string {
	o := options{tag: "b", transform: strings.ToUpper}
	for _, opt := range opts {
		opt(&o)
	}
	if len(spans) == 0 {
		return text
	}

	out := text
	offset := 0
	for _, sp := range spans {
		if sp.Start < 0 || sp.End > len(text) || sp.Start > sp.End {
			continue
		}
		word := text[sp.Start:sp.End]
		if o.tag != "" {
			word = "<" + o.tag + ">" + word + "</" + o.tag + ">"
		}
		if o.transform != nil {
			word = o.transform(word)
		}
		start, end := sp.Start+offset, sp.End+offset
		out = out[:start] + word + out[end:]
		offset += len(word) - (sp.End - sp.Start)
	}
	return out
}

// Piece is a run of text, either a match or the text between matches.
type Piece struct {
	Text  string
	Match bool
}

// Split cuts text at the span boundaries. Spans must be ordered and
// non-overlapping as Find returns them; invalid spans are skipped.
func Split(text string, spans []Span) []Piece {
	pieces := make([]Piece, 0, 2*len(spans)+1)
	pos := 0
	for _, sp := range spans {
		if sp.Start < pos || sp.End > len(text) || sp.Start >= sp.End {
			continue
		}
		if sp.Start > pos {
			pieces = append(pieces, Piece{Text: text[pos:sp.Start]})
		}
		pieces = append(pieces, Piece{Text: text[sp.Start:sp.End], Match: true})
		pos = sp.End
	}
	if pos < len(text) {
		pieces = append(pieces, Piece{Text: text[pos:]})
	}
	return pieces
}
