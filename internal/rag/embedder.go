package rag

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/cloudwego/eino/components/embedding"

	"ragtex/internal/types"
)

// HashEmbedder maps text to a fixed-size vector by feature hashing its
// lowercased word unigrams and bigrams. It needs no model files or network,
// which makes it the default embedder for offline use and tests.
type HashEmbedder struct {
	dim int
}

var _ embedding.Embedder = (*HashEmbedder)(nil)

// NewHashEmbedder creates a HashEmbedder producing vectors of length dim.
func NewHashEmbedder(dim int) (*HashEmbedder, error) {
	if dim <= 0 {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig, "invalid embedding dimension", "embed_dim must be positive", nil)
	}
	return &HashEmbedder{dim: dim}, nil
}

// Dim returns the vector length.
func (e *HashEmbedder) Dim() int {
	return e.dim
}

// EmbedStrings implements embedding.Embedder. Vectors are L2-normalized;
// text without any word yields the zero vector.
func (e *HashEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *HashEmbedder) embed(text string) []float64 {
	vec := make([]float64, e.dim)
	words := tokenize(text)
	for i, w := range words {
		e.add(vec, w, 1)
		if i > 0 {
			e.add(vec, words[i-1]+" "+w, 0.5)
		}
	}
	normalize(vec)
	return vec
}

func (e *HashEmbedder) add(vec []float64, feature string, weight float64) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dim))
	// the top bit picks the sign so collisions tend to cancel
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(vec []float64) {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
}

// cosine returns the cosine similarity of a and b, or 0 when either is zero
// or their lengths differ.
func cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
