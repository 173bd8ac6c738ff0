package pdf

import "strings"

// psOperators only show up in extracted text when a content stream leaked.
var psOperators = []string{
	"currentpoint", "gsave", "grestore", "newpath", "closepath",
	"setrgbcolor", "setgray", "setlinewidth", "showpage",
	"moveto", "lineto", "curveto",
}

// cleanPageText drops lines that are PostScript residue or mostly control
// characters, trims trailing space and squeezes blank-line runs.
func cleanPageText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var kept []string
	blank := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRightFunc(line, isSpaceRune)
		if line == "" {
			blank++
			if blank == 1 && len(kept) > 0 {
				kept = append(kept, "")
			}
			continue
		}
		if isPostScriptCode(line) || hasExcessiveNonPrintable(line) {
			continue
		}
		blank = 0
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func isSpaceRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '\f' || r == '\v'
}

// isPostScriptCode 检测 PostScript 代码残留
func isPostScriptCode(text string) bool {
	lower := strings.ToLower(text)

	// "/name def" is the most reliable marker
	if (strings.Contains(text, " def ") || strings.HasSuffix(text, " def")) && strings.Contains(text, "/") {
		return true
	}
	if strings.Contains(lower, "null def") || strings.Contains(text, "@stx") || strings.Contains(text, "@etx") {
		return true
	}
	if strings.Contains(lower, "/burl") || strings.Contains(lower, "burl@") {
		return true
	}
	for _, op := range psOperators {
		if strings.Contains(lower, op) {
			return true
		}
	}

	// three or more /Name tokens outside a URL
	if strings.Contains(text, "://") {
		return false
	}
	names := 0
	for _, word := range strings.Fields(text) {
		if len(word) > 1 && word[0] == '/' && isPSName(word[1:]) {
			names++
		}
	}
	return names >= 3
}

func isPSName(s string) bool {
	for _, c := range s {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '@') {
			return false
		}
	}
	return true
}

// hasExcessiveNonPrintable reports lines where more than 10% of the runes are
// control characters.
func hasExcessiveNonPrintable(text string) bool {
	total, bad := 0, 0
	for _, r := range text {
		total++
		if (r < 32 && r != '\t') || (r >= 0x7F && r <= 0x9F) {
			bad++
		}
	}
	return total > 0 && float64(bad)/float64(total) > 0.1
}
