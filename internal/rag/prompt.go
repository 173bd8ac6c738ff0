package rag

import (
	"fmt"
	"strings"
)

const promptInstructions = "You are a helpful assistant that ONLY uses the provided context.\n" +
	"If the answer cannot be found in the context, say you don't know.\n" +
	"Write mathematics in LaTeX using \\( \\) for inline and \\[ \\] for display math.\n\n"

// BuildPrompt numbers each context as [i] so the model can cite it.
func BuildPrompt(question string, contexts []string) string {
	blocks := make([]string, len(contexts))
	for i, c := range contexts {
		blocks[i] = fmt.Sprintf("[%d] %s", i+1, c)
	}

	var sb strings.Builder
	sb.WriteString(promptInstructions)
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\n\nContext:\n")
	sb.WriteString(strings.Join(blocks, "\n\n"))
	sb.WriteString("\n\nAnswer concisely and include citations like [1], [2].")
	return sb.String()
}
