package mathnorm

import (
	"regexp"
	"strings"
)

var (
	doubleDollarRe = regexp.MustCompile(`(?s)\$\$(.*?)\$\$`)

	// two or more backslashes before a letter
	multiBackslashLetterRe = regexp.MustCompile(`\\{2,}([A-Za-z])`)
	// two or more backslashes before a bracket or paren
	multiBackslashBracketRe = regexp.MustCompile(`\\{2,}([()\[\]])`)

	bracedBoldRe = regexp.MustCompile(`\\(?:boldsymbol|mathbf)\s*\{\s*([A-Za-z])\s*\}`)
	spacedBoldRe = regexp.MustCompile(`\\(?:boldsymbol|mathbf|vec)\s+([A-Za-z])`)
)

// NormalizeDelimiters rewrites dollar-delimited math into \[ \] and \( \),
// repairs doubled backslashes and canonicalizes bold vectors to \vec{x}.
func NormalizeDelimiters(text string) string {
	text = doubleDollarRe.ReplaceAllString(text, `\[${1}\]`)
	text = convertSingleDollars(text)
	text = collapseBackslashes(text)
	text = canonicalizeVectors(text)
	return text
}

// convertSingleDollars pairs isolated '$' characters left to right and turns
// each pair into \( ... \). A '$' next to another '$' or escaped as \$ never
// takes part.
func convertSingleDollars(text string) string {
	var marks []int
	for i := 0; i < len(text); i++ {
		if text[i] != '$' {
			continue
		}
		if i > 0 && (text[i-1] == '$' || text[i-1] == '\\') {
			continue
		}
		if i+1 < len(text) && text[i+1] == '$' {
			continue
		}
		marks = append(marks, i)
	}
	if len(marks) < 2 {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text) + len(marks)*2)
	last := 0
	for p := 0; p+1 < len(marks); p += 2 {
		open, close := marks[p], marks[p+1]
		sb.WriteString(text[last:open])
		sb.WriteString(`\(`)
		sb.WriteString(text[open+1 : close])
		sb.WriteString(`\)`)
		last = close + 1
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// collapseBackslashes turns \\alpha into \alpha and \\[ into \[ outside math
// environments. Inside them \\ is a row break, so \\[2pt] and \\\hline stay.
func collapseBackslashes(text string) string {
	text = collapseOutsideEnvironments(text, multiBackslashLetterRe)
	return collapseOutsideEnvironments(text, multiBackslashBracketRe)
}

// collapseOutsideEnvironments replaces each match of re with a single
// backslash and the captured character, skipping matches inside environments.
func collapseOutsideEnvironments(text string, re *regexp.Regexp) string {
	envs := environmentSpans(text)
	if len(envs) == 0 {
		return re.ReplaceAllString(text, `\${1}`)
	}

	var sb strings.Builder
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		if insideAny(envs, m[0]) {
			continue
		}
		sb.WriteString(text[last:m[0]])
		sb.WriteByte('\\')
		sb.WriteString(text[m[2]:m[3]])
		last = m[1]
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// canonicalizeVectors rewrites single-letter \boldsymbol, \mathbf and spaced
// \vec forms to \vec{x}. Multi-letter arguments are left alone.
func canonicalizeVectors(text string) string {
	text = bracedBoldRe.ReplaceAllString(text, `\vec{${1}}`)
	return replaceEach(spacedBoldRe, text, func(m []int) (string, bool) {
		if isASCIILetter(byteAt(text, m[1])) {
			return "", false
		}
		return `\vec{` + group(text, m, 1) + `}`, true
	})
}
