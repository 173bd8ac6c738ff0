package mathnorm

import (
	"regexp"
	"strings"
)

// SpanKind identifies how a math region is delimited.
type SpanKind int

const (
	InlineParen SpanKind = iota
	DisplayBracket
	DollarDouble
	DollarSingle
	Environment
)

// String returns the kind name
func (k SpanKind) String() string {
	switch k {
	case InlineParen:
		return "inline"
	case DisplayBracket:
		return "display"
	case DollarDouble:
		return "dollar-double"
	case DollarSingle:
		return "dollar-single"
	case Environment:
		return "environment"
	default:
		return "unknown"
	}
}

// Span is a byte range [Start, End) of the text already occupied by math.
// Env is set only for Environment spans.
type Span struct {
	Start int
	End   int
	Kind  SpanKind
	Env   string
}

// Contains reports whether idx lies inside the span.
func (s Span) Contains(idx int) bool {
	return s.Start <= idx && idx < s.End
}

// Inner returns the byte range of the span's contents, excluding its delimiters.
func (s Span) Inner() (start, end int) {
	switch s.Kind {
	case InlineParen, DisplayBracket, DollarDouble:
		return s.Start + 2, s.End - 2
	case DollarSingle:
		return s.Start + 1, s.End - 1
	case Environment:
		return s.Start + len(`\begin{`) + len(s.Env) + 1, s.End - len(`\end{`) - len(s.Env) - 1
	}
	return s.Start, s.End
}

// mathEnvironments is the whitelist of environments treated as math.
var mathEnvironments = []string{
	"align*", "align", "equation*", "equation", "gather*", "gather", "multline*", "multline",
	"aligned", "split", "cases",
	"pmatrix", "bmatrix", "matrix", "vmatrix", "Vmatrix", "smallmatrix", "array",
}

// delimiterRe matches the four delimiter kinds. Submatch order is the tie-break
// order; Go's leftmost-first alternation picks the first alternative at equal starts.
var delimiterRe = regexp.MustCompile(`(?s)(\\\(.*?\\\))|(\\\[.*?\\\])|(\$\$.*?\$\$)|(\$.*?\$)`)

// envBeginRe finds a \begin{ENV} for a whitelisted environment. RE2 has no
// back-references, so the matching \end{ENV} is located separately.
var envBeginRe = func() *regexp.Regexp {
	names := make([]string, len(mathEnvironments))
	for i, env := range mathEnvironments {
		names[i] = regexp.QuoteMeta(env)
	}
	return regexp.MustCompile(`\\begin\{(` + strings.Join(names, "|") + `)\}`)
}()

var delimiterKinds = [...]SpanKind{InlineParen, DisplayBracket, DollarDouble, DollarSingle}

// Locate scans text once and returns the non-overlapping math spans in
// left-to-right order. The earliest-starting candidate wins; at equal starts
// delimiters beat environments.
func Locate(text string) []Span {
	var spans []Span
	pos := 0
	for pos < len(text) {
		delim, okDelim := nextDelimiterSpan(text, pos)
		env, okEnv := nextEnvironmentSpan(text, pos)

		var next Span
		switch {
		case okDelim && okEnv:
			next = delim
			if env.Start < delim.Start {
				next = env
			}
		case okDelim:
			next = delim
		case okEnv:
			next = env
		default:
			return spans
		}

		spans = append(spans, next)
		pos = next.End
	}
	return spans
}

func nextDelimiterSpan(text string, from int) (Span, bool) {
	for from < len(text) {
		m := delimiterRe.FindStringSubmatchIndex(text[from:])
		if m == nil {
			return Span{}, false
		}
		for g, kind := range delimiterKinds {
			if m[2*(g+1)] < 0 {
				continue
			}
			start := from + m[0]
			// \$ is an escaped dollar sign
			if (kind == DollarDouble || kind == DollarSingle) && byteBefore(text, start) == '\\' {
				break
			}
			return Span{Start: start, End: from + m[1], Kind: kind}, true
		}
		from += m[0] + 1
	}
	return Span{}, false
}

func nextEnvironmentSpan(text string, from int) (Span, bool) {
	for from < len(text) {
		m := envBeginRe.FindStringSubmatchIndex(text[from:])
		if m == nil {
			return Span{}, false
		}
		start := from + m[0]
		bodyStart := from + m[1]
		name := text[from+m[2] : from+m[3]]

		closing := `\end{` + name + `}`
		if rel := strings.Index(text[bodyStart:], closing); rel >= 0 {
			return Span{Start: start, End: bodyStart + rel + len(closing), Kind: Environment, Env: name}, true
		}
		// unmatched \begin: keep looking after it
		from = bodyStart
	}
	return Span{}, false
}

// insideAny reports whether idx falls inside any span.
func insideAny(spans []Span, idx int) bool {
	for _, s := range spans {
		if s.Contains(idx) {
			return true
		}
		if s.Start > idx {
			break
		}
	}
	return false
}

// intersectsAny reports whether [start, end) overlaps any span.
func intersectsAny(spans []Span, start, end int) bool {
	for _, s := range spans {
		if start < s.End && end > s.Start {
			return true
		}
	}
	return false
}

// environmentSpans returns only the Environment spans of text.
func environmentSpans(text string) []Span {
	var spans []Span
	pos := 0
	for {
		env, ok := nextEnvironmentSpan(text, pos)
		if !ok {
			return spans
		}
		spans = append(spans, env)
		pos = env.End
	}
}
