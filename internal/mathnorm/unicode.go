package mathnorm

import "strings"

// unicodeToTeX maps Unicode math symbols and Greek letters to LaTeX commands.
var unicodeToTeX = map[string]string{
	// operators
	"∑": `\sum`, "∏": `\prod`, "∫": `\int`, "√": `\sqrt{}`,
	"∞": `\infty`, "∂": `\partial`, "·": `\cdot`, "×": `\times`, "÷": `\div`,
	"−": "-",

	// relations and arrows
	"≤": `\leq`, "≥": `\geq`, "≠": `\ne`, "≈": `\approx`, "≃": `\simeq`, "≅": `\cong`,
	"→": `\to`, "⇒": `\Rightarrow`, "↦": `\mapsto`, "←": `\leftarrow`, "⇔": `\Leftrightarrow`,

	// sets
	"∈": `\in`, "∉": `\notin`, "∅": `\varnothing`,
	"∩": `\cap`, "∪": `\cup`, "⊂": `\subset`, "⊆": `\subseteq`, "⊃": `\supset`, "⊇": `\supseteq`,

	// logic
	"∧": `\land`, "∨": `\lor`, "¬": `\lnot`, "∀": `\forall`, "∃": `\exists`, "∄": `\nexists`,

	// blackboard
	"ℝ": `\mathbb{R}`, "ℤ": `\mathbb{Z}`, "ℕ": `\mathbb{N}`, "ℚ": `\mathbb{Q}`, "ℂ": `\mathbb{C}`,

	// Greek
	"α": `\alpha`, "β": `\beta`, "γ": `\gamma`, "Γ": `\Gamma`,
	"δ": `\delta`, "Δ": `\Delta`, "ε": `\varepsilon`, "ϵ": `\epsilon`,
	"ζ": `\zeta`, "η": `\eta`, "θ": `\theta`, "Θ": `\Theta`,
	"ι": `\iota`, "κ": `\kappa`, "λ": `\lambda`, "Λ": `\Lambda`,
	"μ": `\mu`, "ν": `\nu`, "ξ": `\xi`, "Ξ": `\Xi`,
	"π": `\pi`, "Π": `\Pi`, "ρ": `\rho`, "σ": `\sigma`, "Σ": `\Sigma`,
	"τ": `\tau`, "φ": `\varphi`, "ϕ": `\phi`, "Φ": `\Phi`,
	"χ": `\chi`, "ψ": `\psi`, "Ψ": `\Psi`, "ω": `\omega`, "Ω": `\Omega`,
}

var unicodeReplacer = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(unicodeToTeX))
	for sym, tex := range unicodeToTeX {
		pairs = append(pairs, sym, tex)
	}
	return strings.NewReplacer(pairs...)
}()

// Transliterate replaces every mapped Unicode math symbol with its LaTeX
// command in a single pass. Unmapped characters pass through unchanged.
func Transliterate(text string) string {
	return unicodeReplacer.Replace(text)
}
