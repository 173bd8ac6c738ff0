package rag

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragtex/internal/types"
)

func vectorNorm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func TestNewHashEmbedder(t *testing.T) {
	_, err := NewHashEmbedder(0)
	require.Error(t, err)
	assert.Equal(t, types.ErrConfig, types.CodeOf(err))

	e, err := NewHashEmbedder(64)
	require.NoError(t, err)
	assert.Equal(t, 64, e.Dim())
}

func TestHashEmbedder_EmbedStrings(t *testing.T) {
	e, err := NewHashEmbedder(384)
	require.NoError(t, err)
	ctx := context.Background()

	vecs, err := e.EmbedStrings(ctx, []string{"The determinant of a matrix", "", "the DETERMINANT of a Matrix"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	for _, v := range vecs {
		assert.Len(t, v, 384)
	}
	assert.InDelta(t, 1.0, vectorNorm(vecs[0]), 1e-9)
	assert.Zero(t, vectorNorm(vecs[1]), "text without words embeds to zero")
	assert.Equal(t, vecs[0], vecs[2], "embedding ignores case")
}

func TestHashEmbedder_Similarity(t *testing.T) {
	e, err := NewHashEmbedder(384)
	require.NoError(t, err)

	vecs, err := e.EmbedStrings(context.Background(), []string{
		"matrix determinant expansion",
		"expansion of the matrix determinant",
		"banana smoothie recipe",
	})
	require.NoError(t, err)

	related := cosine(vecs[0], vecs[1])
	unrelated := cosine(vecs[0], vecs[2])
	assert.Greater(t, related, 0.5)
	assert.Greater(t, related, unrelated)
}

func TestHashEmbedder_CanceledContext(t *testing.T) {
	e, err := NewHashEmbedder(8)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.EmbedStrings(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float64{1, 2}, []float64{2, 4}), 1e-12)
	assert.InDelta(t, 0.0, cosine([]float64{1, 0}, []float64{0, 1}), 1e-12)
	assert.Zero(t, cosine([]float64{0, 0}, []float64{1, 1}))
	assert.Zero(t, cosine([]float64{1}, []float64{1, 1}))
}
