package mathnorm

import (
	"regexp"
	"strings"
)

// replaceEach rewrites every match of re in text with the result of repl,
// which receives the submatch index slice. Returning ok=false keeps the match
// verbatim. It stands in for look-around, which RE2 does not support.
func replaceEach(re *regexp.Regexp, text string, repl func(m []int) (string, bool)) string {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	last := 0
	changed := false
	for _, m := range matches {
		out, ok := repl(m)
		if !ok {
			continue
		}
		sb.WriteString(text[last:m[0]])
		sb.WriteString(out)
		last = m[1]
		changed = true
	}
	if !changed {
		return text
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// group returns submatch g of m in text, or "" when it did not participate.
func group(text string, m []int, g int) string {
	if m[2*g] < 0 {
		return ""
	}
	return text[m[2*g]:m[2*g+1]]
}

func byteBefore(text string, i int) byte {
	if i <= 0 {
		return 0
	}
	return text[i-1]
}

func byteAt(text string, i int) byte {
	if i >= len(text) {
		return 0
	}
	return text[i]
}

func isASCIILetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isWordByte(b byte) bool {
	return isASCIILetter(b) || ('0' <= b && b <= '9') || b == '_'
}

// replaceFixedPoint applies f until the text stops changing.
func replaceFixedPoint(text string, f func(string) string) string {
	for {
		next := f(text)
		if next == text {
			return text
		}
		text = next
	}
}
