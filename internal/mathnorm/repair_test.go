package mathnorm

import "testing"

func TestRepair(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// english words
		{"word to command", "sum", `\sum`},
		{"in keeps existing command", `x \in S`, `x \in S`},
		{"plain in", "x in S", `x \in S`},
		{"sgn", "sgn(x)", `\operatorname{sgn}(x)`},
		{"sgn already wrapped", `\operatorname{sgn}(x)`, `\operatorname{sgn}(x)`},

		// targeted symbols
		{"dropped sigma", `\sum_{o \in S}`, `\sum_{\sigma \in S}`},
		{"dropped subscript", `x \in S n`, `x \in S_{n}`},

		// division
		{"paren division", "(A+B)/(C-D)", `\frac{A+B}{C-D}`},
		{"bracket division", "[a]/[b]", `\frac{a}{b}`},

		// asterisk
		{"tight asterisk", "a*b", `a \cdot b`},
		{"spaced asterisk", "a * b", `a \cdot b`},
		{"conjugate", "z^* w", "z^* w"},
		{"starred command", `\operatorname*{arg}`, `\operatorname*{arg}`},

		// cofactor
		{"cofactor indices", "(-1)^{k+i} a_{k1}", "(-1)^{k+i} a_{ki}"},
		{"cofactor needs sign", "a_{k1}", "a_{k1}"},

		// bounds
		{"bound before", `N \sum i = 1`, `\sum_{i=1}^{N}`},
		{"bound after", `\prod k = 1 ^ n`, `\prod_{k=1}^{n}`},
		{"bound from plain word", "N sum i = 1", `\sum_{i=1}^{N}`},

		// (-1) exponents
		{"minus one letter plus digits", "(-1)k+1", "(-1)^{k+1}"},
		{"minus one caret", "(-1)^k+1", "(-1)^{k+1}"},
		{"minus one letter", "(-1)n", "(-1)^{n}"},

		// minors
		{"minor", "Aij3", "A_{ij3}"},
		{"arg is not a minor", `\arg 2`, `\arg 2`},
		{"bare det", "det A", `\det A`},
		{"det kept", `\det A`, `\det A`},
		{"Ln", "L n (x)", "L_{n}(x)"},

		// scripts
		{"brace scripts", "x^2 + y_i", "x^{2} + y_{i}"},
		{"escaped underscore", `a\_b`, `a\_b`},

		// ellipsis
		{"ellipsis", "1, 2, ..., n", `1, 2, \cdots, n`},
		{"long dot run", "a....b", "a....b"},
		{"ellipsis before letter", "a...b", `a\cdots b`},
		{"ellipsis before digit", "1...9", `1\cdots9`},

		{"nothing to fix", `\alpha + \beta`, `\alpha + \beta`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Repair(tt.input); got != tt.want {
				t.Errorf("Repair(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRepair_Idempotent(t *testing.T) {
	for _, in := range []string{
		"N sum i = 1", "(A+B)/(C-D)", "a*b", "x^2", "sgn(x)", "(-1)k+1",
		`\sum_{o \in S}`, "Aij3", "1, 2, ..., n", "L n (x)",
	} {
		once := Repair(in)
		if twice := Repair(once); twice != once {
			t.Errorf("Repair not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestRepairSpans(t *testing.T) {
	input := `text \(x^2\) and \begin{align}a \[ b\end{align} then y^2`
	want := `text \(x^{2}\) and \begin{align}a  b\end{align} then y^2`
	if got := RepairSpans(input); got != want {
		t.Errorf("RepairSpans() = %q, want %q", got, want)
	}
}

func TestStripDisplayMarkers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`a \[ b \] c`, "a  b  c"},
		{`a \\[2pt] b`, `a \\[2pt] b`},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := stripDisplayMarkers(tt.input); got != tt.want {
			t.Errorf("stripDisplayMarkers(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
