package mathnorm

import (
	"regexp"
	"strings"
)

// englishToTeX maps plain words an LLM writes inside math to LaTeX macros.
var englishToTeX = map[string]string{
	"in":   `\in`,
	"ne":   `\ne`,
	"prod": `\prod`,
	"sum":  `\sum`,
	"sgn":  `\operatorname{sgn}`,

	"alpha": `\alpha`, "beta": `\beta`, "gamma": `\gamma`, "Gamma": `\Gamma`,
	"delta": `\delta`, "Delta": `\Delta`, "epsilon": `\epsilon`, "varepsilon": `\varepsilon`,
	"theta": `\theta`, "Theta": `\Theta`, "lambda": `\lambda`, "Lambda": `\Lambda`,
	"pi": `\pi`, "Pi": `\Pi`, "rho": `\rho`, "sigma": `\sigma`, "Sigma": `\Sigma`,
	"phi": `\phi`, "varphi": `\varphi`, "omega": `\omega`, "Omega": `\Omega`,
}

var (
	wordRe = regexp.MustCompile(`\b[A-Za-z]+\b`)

	sigmaInSumRe   = regexp.MustCompile(`(\\sum_\{)\s*o\s*\\?in\b`)
	setAfterInRe   = regexp.MustCompile(`(\\in\s)S\s*([A-Za-z])\b`)
	parenDivRe     = regexp.MustCompile(`\(\s*([^()]+?)\s*\)\s*/\s*\(\s*([^()]+?)\s*\)`)
	bracketDivRe   = regexp.MustCompile(`\[\s*([^\[\]]+?)\s*\]\s*/\s*\[\s*([^\[\]]+?)\s*\]`)
	asteriskRe     = regexp.MustCompile(`\s*\\?\*\s*`)
	cofactorSignRe = regexp.MustCompile(`\(-?1\)\s*\^\s*\{?(?:k\s*\+\s*i|i\s*\+\s*k)\}?`)

	cofactorRules = []rewrite{
		{regexp.MustCompile(`([aA])_\{\s*k\s*1\s*\}`), `${1}_{ki}`},
		{regexp.MustCompile(`([aA])_\{\s*1\s*k\s*\}`), `${1}_{ik}`},
		{regexp.MustCompile(`([aA])\s*_\s*k1\b`), `${1}_{ki}`},
		{regexp.MustCompile(`([aA])\s*_\s*1k\b`), `${1}_{ik}`},
	}

	// bound term before the operator: N \sum i = 1
	boundBeforeRe = regexp.MustCompile(`(\b\w+)\s*\\(sum|prod)\s*([A-Za-z])\s*=\s*([-\w]+)`)
	// bound term after the operator: \sum i = 1 ^ N
	boundAfterRe = regexp.MustCompile(`\\(sum|prod)\s*([A-Za-z])\s*=\s*([-\w]+)\s*\^\s*([-\w]+)`)

	minusOneRules = []rewrite{
		{regexp.MustCompile(`\(-1\)\s*([A-Za-z])\s*\+\s*([0-9]+)`), `(-1)^{${1}+${2}}`},
		{regexp.MustCompile(`\(-1\)\s*\^\s*([A-Za-z])\s*\+\s*([0-9]+)`), `(-1)^{${1}+${2}}`},
		{regexp.MustCompile(`\(-1\)\s*([A-Za-z])`), `(-1)^{${1}}`},
	}

	minorRe = regexp.MustCompile(`\b([Aa])\s*([a-z]{1,2})\s*(\d+)\b`)
	lnRe    = regexp.MustCompile(`\bL\s*n\s*\(`)
	detRe   = regexp.MustCompile(`\bdet\b`)

	supRe = regexp.MustCompile(`\^([A-Za-z0-9])`)
	subRe = regexp.MustCompile(`_([A-Za-z0-9])`)
)

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

func applyRewrites(block string, rules []rewrite) string {
	for _, r := range rules {
		block = r.re.ReplaceAllString(block, r.repl)
	}
	return block
}

// Repair applies the structural repair battery to the contents of one math
// block. Each rule is a total rewrite; a block with nothing to fix comes back
// unchanged.
func Repair(block string) string {
	block = englishWordsToTeX(block)
	block = fixTargetedSymbols(block)
	block = slashToFrac(block)
	block = asciiTimesToCdot(block)
	block = fixCofactorIndices(block)
	block = fixSumProdBounds(block)
	block = applyRewrites(block, minusOneRules)
	block = fixMatrixMinors(block)
	block = braceSimpleScripts(block)
	block = fixEllipsis(block)
	return block
}

// englishWordsToTeX maps whole words through englishToTeX. Words that are
// already a command name (preceded by a backslash) are skipped, as is sgn
// already wrapped in \operatorname.
func englishWordsToTeX(block string) string {
	return replaceEach(wordRe, block, func(m []int) (string, bool) {
		if byteBefore(block, m[0]) == '\\' {
			return "", false
		}
		word := block[m[0]:m[1]]
		tex, ok := englishToTeX[word]
		if !ok {
			return "", false
		}
		if word == "sgn" && strings.HasSuffix(block[:m[0]], `\operatorname{`) {
			return "", false
		}
		return tex, true
	})
}

// fixTargetedSymbols repairs \sum_{o \in S} (a dropped sigma) and \in S n
// (a dropped subscript).
func fixTargetedSymbols(block string) string {
	block = sigmaInSumRe.ReplaceAllString(block, `${1}\sigma \in`)
	return setAfterInRe.ReplaceAllString(block, `${1}S_{${2}}`)
}

// slashToFrac rewrites (A)/(B) and [A]/[B] to \frac{A}{B} until no
// unnested pair is left.
func slashToFrac(block string) string {
	return replaceFixedPoint(block, func(s string) string {
		s = parenDivRe.ReplaceAllString(s, `\frac{${1}}{${2}}`)
		return bracketDivRe.ReplaceAllString(s, `\frac{${1}}{${2}}`)
	})
}

// asciiTimesToCdot turns a '*' between two non-space tokens into \cdot.
// Starred names (align*, \operatorname*) and conjugates after ^ or _ stay.
func asciiTimesToCdot(block string) string {
	return replaceEach(asteriskRe, block, func(m []int) (string, bool) {
		if m[0] == 0 || m[1] >= len(block) {
			return "", false
		}
		if prev := block[m[0]-1]; prev == '^' || prev == '_' {
			return "", false
		}
		if block[m[1]] == '}' || endsCommandName(block[:m[0]]) {
			return "", false
		}
		return ` \cdot `, true
	})
}

// endsCommandName reports whether s ends with \letters.
func endsCommandName(s string) bool {
	i := len(s)
	for i > 0 && isASCIILetter(s[i-1]) {
		i--
	}
	return i < len(s) && i > 0 && s[i-1] == '\\'
}

// fixCofactorIndices rewrites a_{k1}/a_{1k} to a_{ki}/a_{ik}, but only in a
// block that already shows the (-1)^{k+i} cofactor sign.
func fixCofactorIndices(block string) string {
	if !cofactorSignRe.MatchString(block) {
		return block
	}
	return applyRewrites(block, cofactorRules)
}

// fixSumProdBounds reassembles N \sum i = 1 and \sum i = 1 ^ N into
// \sum_{i=1}^{N}, likewise for \prod.
func fixSumProdBounds(block string) string {
	block = replaceEach(boundBeforeRe, block, func(m []int) (string, bool) {
		if byteBefore(block, m[0]) == '\\' {
			return "", false
		}
		return `\` + group(block, m, 2) + `_{` + group(block, m, 3) + `=` + group(block, m, 4) + `}^{` + group(block, m, 1) + `}`, true
	})
	return boundAfterRe.ReplaceAllString(block, `\${1}_{${2}=${3}}^{${4}}`)
}

// fixMatrixMinors handles Aij3-style minors, a bare det and Ln( shorthand.
func fixMatrixMinors(block string) string {
	block = replaceEach(minorRe, block, func(m []int) (string, bool) {
		if byteBefore(block, m[0]) == '\\' {
			return "", false
		}
		return group(block, m, 1) + `_{` + group(block, m, 2) + group(block, m, 3) + `}`, true
	})
	block = lnRe.ReplaceAllString(block, `L_n(`)
	return replaceEach(detRe, block, func(m []int) (string, bool) {
		if byteBefore(block, m[0]) == '\\' {
			return "", false
		}
		return `\det`, true
	})
}

// braceSimpleScripts wraps a single bare character after ^ or _ in braces.
func braceSimpleScripts(block string) string {
	block = supRe.ReplaceAllString(block, `^{${1}}`)
	return replaceEach(subRe, block, func(m []int) (string, bool) {
		// \_ is a literal underscore
		if byteBefore(block, m[0]) == '\\' {
			return "", false
		}
		return `_{` + group(block, m, 1) + `}`, true
	})
}

// fixEllipsis turns an isolated "..." into \cdots; longer dot runs stay.
// A space keeps a following letter out of the command name.
func fixEllipsis(block string) string {
	if !strings.Contains(block, "...") {
		return block
	}
	var sb strings.Builder
	sb.Grow(len(block))
	for i := 0; i < len(block); {
		if block[i] != '.' {
			sb.WriteByte(block[i])
			i++
			continue
		}
		j := i
		for j < len(block) && block[j] == '.' {
			j++
		}
		if j-i == 3 {
			sb.WriteString(`\cdots`)
			if isASCIILetter(byteAt(block, j)) {
				sb.WriteByte(' ')
			}
		} else {
			sb.WriteString(block[i:j])
		}
		i = j
	}
	return sb.String()
}

// stripDisplayMarkers removes \[ and \] that leaked into an environment body.
// A marker preceded by another backslash is part of a \\[..] row break.
func stripDisplayMarkers(body string) string {
	if !strings.Contains(body, `\[`) && !strings.Contains(body, `\]`) {
		return body
	}
	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) && (body[i+1] == '[' || body[i+1] == ']') && byteBefore(body, i) != '\\' {
			i++
			continue
		}
		sb.WriteByte(body[i])
	}
	return sb.String()
}

// RepairSpans runs Repair over the contents of every math span in text.
// Environment bodies are first cleared of stray display markers.
func RepairSpans(text string) string {
	spans := Locate(text)
	if len(spans) == 0 {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	last := 0
	for _, s := range spans {
		start, end := s.Inner()
		if start > end {
			continue
		}
		body := text[start:end]
		if s.Kind == Environment {
			body = stripDisplayMarkers(body)
		}
		sb.WriteString(text[last:start])
		sb.WriteString(Repair(body))
		last = end
	}
	sb.WriteString(text[last:])
	return sb.String()
}
