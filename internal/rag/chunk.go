package rag

// ChunkText splits text into windows of size code points. Consecutive
// windows share overlap code points; the step is never below one.
func ChunkText(text string, size, overlap int) []string {
	if text == "" || size <= 0 {
		return nil
	}
	step := size - overlap
	if step < 1 {
		step = 1
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
