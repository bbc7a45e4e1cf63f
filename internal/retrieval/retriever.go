// Package retrieval ranks chunks against a query vector and assembles
// the grounded prompt handed to answer generation. It performs no
// storage I/O; candidates are supplied by the caller.
package retrieval

import (
	"math"
	"sort"

	"docubase/internal/model"
)

// Scored pairs a chunk with its cosine similarity to the query.
type Scored struct {
	Chunk model.Chunk
	Score float64
}

// CosineSimilarity returns dot(a,b) / (||a||*||b||) in [-1, 1].
// Zero-length or mismatched vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TopK scores every candidate against the query vector and returns the
// k best, descending by score. Candidates without a stored embedding
// are filtered out before scoring, since cosine similarity is undefined
// for a zero-length vector. Ties rank the lower document id and chunk
// index first so results are deterministic. Fewer than k qualifying
// candidates is not an error; all of them are returned.
func TopK(query []float32, candidates []model.Chunk, k int) []Scored {
	if k <= 0 {
		return nil
	}
	scored := make([]Scored, 0, len(candidates))
	for i := range candidates {
		vec := candidates[i].EmbeddingVector()
		if len(vec) == 0 {
			continue
		}
		scored = append(scored, Scored{
			Chunk: candidates[i],
			Score: CosineSimilarity(query, vec),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Chunk.DocumentID != scored[j].Chunk.DocumentID {
			return scored[i].Chunk.DocumentID < scored[j].Chunk.DocumentID
		}
		return scored[i].Chunk.ChunkIndex < scored[j].Chunk.ChunkIndex
	})
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}
