package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docubase/internal/model"
)

func chunkWithVec(docID uint, index int, vec []float32) model.Chunk {
	c := model.Chunk{DocumentID: docID, ChunkIndex: index, Content: "chunk"}
	c.SetEmbedding(vec)
	return c
}

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	v := []float32{0.3, -1.2, 4.5, 0.01}

	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{2, 1}, []float32{-2, -1}), 1e-9)
}

func TestCosineSimilarity_DegenerateInputs(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}

func TestCosineSimilarity_Bounded(t *testing.T) {
	vectors := [][]float32{
		{1, 2, 3},
		{-4, 0.5, 2},
		{0.001, -9, 7},
	}
	for _, a := range vectors {
		for _, b := range vectors {
			score := CosineSimilarity(a, b)
			assert.GreaterOrEqual(t, score, -1.0-1e-9)
			assert.LessOrEqual(t, score, 1.0+1e-9)
		}
	}
}

func TestTopK_RanksByScoreDescending(t *testing.T) {
	query := []float32{1, 0}
	candidates := []model.Chunk{
		chunkWithVec(1, 0, []float32{0, 1}),   // orthogonal
		chunkWithVec(1, 1, []float32{1, 0}),   // identical
		chunkWithVec(1, 2, []float32{1, 1}),   // in between
		chunkWithVec(1, 3, []float32{-1, 0}),  // opposite
	}

	ranked := TopK(query, candidates, 10)

	require.Len(t, ranked, 4)
	assert.Equal(t, 1, ranked[0].Chunk.ChunkIndex)
	assert.Equal(t, 2, ranked[1].Chunk.ChunkIndex)
	assert.Equal(t, 0, ranked[2].Chunk.ChunkIndex)
	assert.Equal(t, 3, ranked[3].Chunk.ChunkIndex)
	for i := 1; i < len(ranked); i++ {
		assert.LessOrEqual(t, ranked[i].Score, ranked[i-1].Score)
	}
}

func TestTopK_TruncatesToK(t *testing.T) {
	query := []float32{1, 0}
	var candidates []model.Chunk
	for i := 0; i < 8; i++ {
		candidates = append(candidates, chunkWithVec(1, i, []float32{1, float32(i)}))
	}

	assert.Len(t, TopK(query, candidates, 3), 3)
	assert.Len(t, TopK(query, candidates, 8), 8)
	// Fewer qualifying candidates than k is not an error.
	assert.Len(t, TopK(query, candidates, 50), 8)
}

func TestTopK_ExcludesMissingEmbeddings(t *testing.T) {
	query := []float32{1, 0}
	empty := model.Chunk{DocumentID: 1, ChunkIndex: 0}
	emptyJSON := model.Chunk{DocumentID: 1, ChunkIndex: 1}
	emptyJSON.SetEmbedding(nil) // stored as "[]"
	candidates := []model.Chunk{
		empty,
		emptyJSON,
		chunkWithVec(1, 2, []float32{1, 0}),
	}

	ranked := TopK(query, candidates, 10)

	require.Len(t, ranked, 1)
	assert.Equal(t, 2, ranked[0].Chunk.ChunkIndex)
}

func TestTopK_TieBreaksOnChunkIndex(t *testing.T) {
	query := []float32{1, 0}
	same := []float32{2, 0}
	candidates := []model.Chunk{
		chunkWithVec(2, 1, same),
		chunkWithVec(1, 3, same),
		chunkWithVec(1, 0, same),
	}

	ranked := TopK(query, candidates, 3)

	require.Len(t, ranked, 3)
	assert.Equal(t, uint(1), ranked[0].Chunk.DocumentID)
	assert.Equal(t, 0, ranked[0].Chunk.ChunkIndex)
	assert.Equal(t, 3, ranked[1].Chunk.ChunkIndex)
	assert.Equal(t, uint(2), ranked[2].Chunk.DocumentID)
}

func TestTopK_NonPositiveK(t *testing.T) {
	candidates := []model.Chunk{chunkWithVec(1, 0, []float32{1})}

	assert.Nil(t, TopK([]float32{1}, candidates, 0))
	assert.Nil(t, TopK([]float32{1}, candidates, -2))
}
