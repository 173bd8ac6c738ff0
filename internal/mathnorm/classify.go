package mathnorm

import (
	"regexp"
	"strings"
)

// LineClass is the verdict of the line classifier.
type LineClass int

const (
	Skip LineClass = iota
	Prose
	Formula
)

// String returns the class name
func (c LineClass) String() string {
	switch c {
	case Skip:
		return "skip"
	case Prose:
		return "prose"
	case Formula:
		return "formula"
	default:
		return "unknown"
	}
}

var (
	commandTokenRe = regexp.MustCompile(`\\[A-Za-z]+(\s*\{[^{}]*\})?`)
	proseWordRe    = regexp.MustCompile(`[A-Za-z]{2,}`)
	commandNameRe  = regexp.MustCompile(`\\([A-Za-z]+)`)
	unicodeMathRe  = regexp.MustCompile(`[∑∏∫√≤≥≠×·→↦⇔ℝℤℕℚℂ]`)
	operatorRe     = regexp.MustCompile(`[+\-*/=^_]`)
	scriptGroupRe  = regexp.MustCompile(`_\{.*?\}|\^\{.*?\}`)
	leadingDetRe   = regexp.MustCompile(`^\s*\\?det\b`)
)

// formulaCommands are the command names that count as math evidence.
var formulaCommands = map[string]bool{
	"sum": true, "prod": true, "int": true, "frac": true, "sqrt": true, "binom": true,
	"det": true, "cdot": true, "times": true, "leq": true, "geq": true, "neq": true,
	"infty": true, "alpha": true, "beta": true, "gamma": true, "delta": true,
	"pi": true, "lambda": true, "sigma": true,
}

var structuralCommands = []string{`\sum`, `\prod`, `\int`, `\frac`, `\sqrt`}

// ClassifyLine decides whether a single line of text should be promoted to
// display math. intersects reports whether the line overlaps an existing
// math span.
func ClassifyLine(line string, intersects bool, opts Options) LineClass {
	if intersects || strings.TrimSpace(line) == "" {
		return Skip
	}
	words := proseWords(line)
	if isProseHeavy(words, opts) {
		return Prose
	}
	if isFormulaLike(line, len(words), opts) {
		return Formula
	}
	return Prose
}

// proseWords returns the alphabetic words of line once command tokens are
// blanked out.
func proseWords(line string) []string {
	scratch := commandTokenRe.ReplaceAllString(line, " ")
	return proseWordRe.FindAllString(scratch, -1)
}

func isProseHeavy(words []string, opts Options) bool {
	if len(words) >= opts.ProseMaxWords {
		return true
	}
	chars := 0
	for _, w := range words {
		chars += len(w)
	}
	return chars >= opts.ProseMaxWordChars
}

func isFormulaLike(line string, wordCount int, opts Options) bool {
	distinct := make(map[string]bool)
	for _, m := range commandNameRe.FindAllStringSubmatch(line, -1) {
		if formulaCommands[m[1]] {
			distinct[m[1]] = true
		}
	}
	cmdCount := len(distinct)
	uniCount := len(unicodeMathRe.FindAllStringIndex(line, -1))
	symCount := len(operatorRe.FindAllStringIndex(line, -1))
	hasEq := strings.Contains(line, "=")

	switch {
	case cmdCount >= opts.FormulaMinCommands:
		return true
	case containsAny(line, structuralCommands):
		return true
	case uniCount >= 1 && hasEq:
		return true
	case leadingDetRe.MatchString(line) && (hasEq || symCount >= 2 || uniCount >= 1):
		return true
	case symCount >= opts.FormulaMinSymbolsWithCommand && cmdCount >= 1:
		return true
	case len(scriptGroupRe.FindAllStringIndex(line, -1)) >= opts.FormulaMinScriptGroups:
		return true
	}

	// dense operator line with next to no words: x^2 + y^2 = z^2
	return hasEq && symCount >= opts.DenseMinSymbols && wordCount <= opts.DenseMaxWords
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// WrapFormulaLines wraps every line classified as Formula in \[ \]. Lines
// touching an existing math span and prose lines pass through untouched.
func WrapFormulaLines(text string, opts Options) string {
	spans := Locate(text)
	lines := strings.SplitAfter(text, "\n")

	var sb strings.Builder
	sb.Grow(len(text) + 16)
	offset := 0
	for _, raw := range lines {
		start, end := offset, offset+len(raw)
		offset = end

		line := strings.TrimSuffix(raw, "\n")
		line = strings.TrimSuffix(line, "\r")
		if ClassifyLine(line, intersectsAny(spans, start, end), opts) != Formula {
			sb.WriteString(raw)
			continue
		}
		sb.WriteString(`\[`)
		sb.WriteString(strings.TrimSpace(line))
		sb.WriteString(`\]`)
		sb.WriteString(raw[len(line):])
	}
	return sb.String()
}
