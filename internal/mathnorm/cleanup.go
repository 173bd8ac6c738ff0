package mathnorm

import (
	"regexp"
	"strings"
)

var (
	emptyDisplayRe  = regexp.MustCompile(`\\\[\s*\\\]`)
	nestedDisplayRe = regexp.MustCompile(`(?s)\\\[\s*(\\\[.*?\\\])\s*\\\]`)
	blankRunRe      = regexp.MustCompile(`\n{3,}`)
)

// Cleanup removes the debris the wrapping passes leave behind: empty and
// directly nested display pairs, display markers stranded on their own line,
// markers inside environment bodies and runs of blank lines.
func Cleanup(text string) string {
	text = replaceFixedPoint(text, func(s string) string {
		s = removeEmptyDisplays(s)
		return nestedDisplayRe.ReplaceAllString(s, `${1}`)
	})
	text = removeLoneMarkerLines(text)
	text = cleanEnvironmentBodies(text)
	return blankRunRe.ReplaceAllString(text, "\n\n")
}

func removeEmptyDisplays(text string) string {
	return replaceEach(emptyDisplayRe, text, func(m []int) (string, bool) {
		// \\[ is a row break, not a display
		if byteBefore(text, m[0]) == '\\' {
			return "", false
		}
		return "", true
	})
}

// removeLoneMarkerLines drops lines holding nothing but \[ or \], unless the
// marker opens or closes a display span that is still intact.
func removeLoneMarkerLines(text string) string {
	if !strings.Contains(text, `\[`) && !strings.Contains(text, `\]`) {
		return text
	}
	spans := Locate(text)

	var sb strings.Builder
	sb.Grow(len(text))
	offset := 0
	for _, raw := range strings.SplitAfter(text, "\n") {
		start := offset
		offset += len(raw)

		trimmed := strings.TrimSpace(raw)
		if trimmed != `\[` && trimmed != `\]` {
			sb.WriteString(raw)
			continue
		}
		pos := start + strings.Index(raw, trimmed)
		if anchorsDisplay(spans, pos, trimmed == `\[`) {
			sb.WriteString(raw)
		}
	}
	return sb.String()
}

func anchorsDisplay(spans []Span, pos int, opening bool) bool {
	for _, s := range spans {
		if s.Kind != DisplayBracket {
			continue
		}
		if opening && s.Start == pos {
			return true
		}
		if !opening && s.End == pos+2 {
			return true
		}
	}
	return false
}

// cleanEnvironmentBodies strips display markers and blank-line runs from the
// body of every math environment.
func cleanEnvironmentBodies(text string) string {
	envs := environmentSpans(text)
	if len(envs) == 0 {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	last := 0
	for _, s := range envs {
		start, end := s.Inner()
		body := stripDisplayMarkers(text[start:end])
		body = blankRunRe.ReplaceAllString(body, "\n\n")
		sb.WriteString(text[last:start])
		sb.WriteString(body)
		last = end
	}
	sb.WriteString(text[last:])
	return sb.String()
}
