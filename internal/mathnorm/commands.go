package mathnorm

import (
	"regexp"
	"strings"
)

var (
	// a command name followed by any directly attached braced groups
	bareCommandRe = regexp.MustCompile(`\\([A-Za-z]+)((?:\s*\{[^{}]*\})*)`)

	// a command name with at most one braced argument
	fullCommandRe = regexp.MustCompile(`\\([A-Za-z]+)(?:\s*\{[^{}]*\})?`)

	proseIndexRe = regexp.MustCompile(`\b([A-Za-z])\s*([_^])\s*(\{[^{}]+\}|[A-Za-z0-9])`)
)

// structural commands that must stay outside math mode
var neverWrap = map[string]bool{
	"begin": true,
	"end":   true,
}

// inlineWhitelist lists the relation, set and vector commands worth wrapping
// even when blanket wrapping is off.
var inlineWhitelist = map[string]bool{
	"times": true, "cdot": true, "leq": true, "geq": true, "neq": true, "approx": true, "sim": true,
	"in": true, "notin": true, "subset": true, "subseteq": true, "supset": true, "supseteq": true,
	"cup": true, "cap": true, "to": true, "leftarrow": true, "Rightarrow": true, "Leftrightarrow": true,
	"det": true,
	"vec": true, "mathbf": true, "boldsymbol": true,
}

func isDelimiterToken(tok string) bool {
	return tok == `\(` || tok == `\)` || tok == `\[` || tok == `\]`
}

// WrapBareCommands wraps every LaTeX command token found outside math spans
// in inline delimiters, so \alpha typed in prose becomes \(\alpha\).
func WrapBareCommands(text string) string {
	spans := Locate(text)
	return replaceEach(bareCommandRe, text, func(m []int) (string, bool) {
		tok := text[m[0]:m[1]]
		if insideAny(spans, m[0]) || isDelimiterToken(tok) || neverWrap[group(text, m, 1)] {
			return "", false
		}
		return `\(` + tok + `\)`, true
	})
}

// WrapWhitelistedCommands is the narrow variant of WrapBareCommands: only
// commands from the inline whitelist are wrapped.
func WrapWhitelistedCommands(text string) string {
	spans := Locate(text)
	return replaceEach(fullCommandRe, text, func(m []int) (string, bool) {
		if insideAny(spans, m[0]) || !inlineWhitelist[group(text, m, 1)] {
			return "", false
		}
		return `\(` + text[m[0]:m[1]] + `\)`, true
	})
}

// WrapProseIndices wraps single-letter sub/superscript tokens such as x_1 or
// a^{n} that appear outside math as inline math, dropping inner spaces.
func WrapProseIndices(text string) string {
	spans := Locate(text)
	return replaceEach(proseIndexRe, text, func(m []int) (string, bool) {
		if insideAny(spans, m[0]) || byteBefore(text, m[0]) == '\\' {
			return "", false
		}
		script := group(text, m, 3)
		// x_name is an identifier, not an index
		if !strings.HasPrefix(script, "{") && isWordByte(byteAt(text, m[1])) {
			return "", false
		}
		return `\(` + group(text, m, 1) + group(text, m, 2) + script + `\)`, true
	})
}
