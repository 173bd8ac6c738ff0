package mathnorm

import "testing"

func TestWrapBareCommands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"stray command in prose", `Let \alpha be small`, `Let \(\alpha\) be small`},
		{"command with arguments", `\frac{a}{b} here`, `\(\frac{a}{b}\) here`},
		{"already inside math", `\(\alpha\) and \beta`, `\(\alpha\) and \(\beta\)`},
		{"begin and end untouched", `\begin{itemize}`, `\begin{itemize}`},
		{"delimiters untouched", `\[ x \]`, `\[ x \]`},
		{"environment body untouched", `\begin{cases}\alpha\end{cases}`, `\begin{cases}\alpha\end{cases}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WrapBareCommands(tt.input); got != tt.want {
				t.Errorf("WrapBareCommands(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWrapWhitelistedCommands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"relation wrapped", `a \times b and \alpha`, `a \(\times\) b and \alpha`},
		{"vector wrapped with argument", `the \vec{v} field`, `the \(\vec{v}\) field`},
		{"inside math untouched", `\(a \leq b\)`, `\(a \leq b\)`},
		{"det wrapped", `\det A`, `\(\det\) A`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WrapWhitelistedCommands(tt.input); got != tt.want {
				t.Errorf("WrapWhitelistedCommands(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWrapProseIndices(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"subscript", "let x_1 be", `let \(x_1\) be`},
		{"spaced braced superscript", "a ^ {n}", `\(a^{n}\)`},
		{"two tokens", "x_{i} and y^2", `\(x_{i}\) and \(y^2\)`},
		{"identifier", "my_var", "my_var"},
		{"long subscript name", "x_abc", "x_abc"},
		{"inside math", `\(x_1\)`, `\(x_1\)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WrapProseIndices(tt.input); got != tt.want {
				t.Errorf("WrapProseIndices(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
