package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	vecs [][]float32
	err  error
	dim  int
}

func (s *stubProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vecs, nil
}

func (s *stubProvider) Dimension() int { return s.dim }

func TestResilient_NoProviderProducesFallbackVectors(t *testing.T) {
	r := NewResilient(nil, 8)
	texts := []string{"alpha", "beta", "gamma"}

	vecs, quality := r.EmbedBatch(context.Background(), texts)

	assert.Equal(t, QualityFallback, quality)
	require.Len(t, vecs, len(texts))
	for _, v := range vecs {
		require.Len(t, v, 8)
		for _, f := range v {
			assert.GreaterOrEqual(t, f, float32(-1))
			assert.LessOrEqual(t, f, float32(1))
		}
	}
}

func TestResilient_FallbackIsDeterministicPerText(t *testing.T) {
	r := NewResilient(nil, 16)

	first, _ := r.EmbedBatch(context.Background(), []string{"same text", "other text"})
	second, _ := r.EmbedBatch(context.Background(), []string{"same text", "other text"})

	assert.Equal(t, first[0], second[0])
	assert.Equal(t, first[1], second[1])
	assert.NotEqual(t, first[0], first[1])
}

func TestResilient_ProviderErrorDegradesWholeBatch(t *testing.T) {
	stub := &stubProvider{err: errors.New("upstream 500"), dim: 4}
	r := NewResilient(stub, 4)

	vecs, quality := r.EmbedBatch(context.Background(), []string{"a", "b"})

	assert.Equal(t, QualityFallback, quality)
	require.Len(t, vecs, 2)
	assert.Len(t, vecs[0], 4)
}

func TestResilient_CountMismatchDegrades(t *testing.T) {
	stub := &stubProvider{vecs: [][]float32{{1, 2, 3, 4}}, dim: 4}
	r := NewResilient(stub, 4)

	vecs, quality := r.EmbedBatch(context.Background(), []string{"a", "b"})

	assert.Equal(t, QualityFallback, quality)
	assert.Len(t, vecs, 2)
}

func TestResilient_HealthyProviderPassesThrough(t *testing.T) {
	want := [][]float32{{0.1, 0.2}, {0.3, 0.4}}
	stub := &stubProvider{vecs: want, dim: 2}
	r := NewResilient(stub, 1024)

	vecs, quality := r.EmbedBatch(context.Background(), []string{"a", "b"})

	assert.Equal(t, QualityReal, quality)
	assert.Equal(t, want, vecs)
	// The provider's dimension wins over the configured one.
	assert.Equal(t, 2, r.Dimension())
}

func TestResilient_EmptyBatch(t *testing.T) {
	r := NewResilient(nil, 8)

	vecs, quality := r.EmbedBatch(context.Background(), nil)

	assert.Empty(t, vecs)
	assert.Equal(t, QualityReal, quality)
}

func TestResilient_EmbedOne(t *testing.T) {
	r := NewResilient(nil, 6)

	vec, quality := r.EmbedOne(context.Background(), "question text")

	assert.Equal(t, QualityFallback, quality)
	assert.Len(t, vec, 6)

	again, _ := r.EmbedOne(context.Background(), "question text")
	assert.Equal(t, vec, again)
}
