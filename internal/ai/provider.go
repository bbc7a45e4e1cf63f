package ai

import (
	"context"
	"hash/fnv"
	"log"
	"math/rand"
)

// Provider converts batches of texts into fixed-dimension vectors,
// order preserving, one vector per input.
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Quality reports whether vectors came from the real provider or from
// the degraded-mode fallback.
type Quality string

const (
	QualityReal     Quality = "real"
	QualityFallback Quality = "fallback"
)

// Resilient wraps a Provider so that embedding can never fail: with no
// provider configured, or on any provider error, it substitutes a
// pseudo-random vector per text instead of aborting. Ingestion then
// completes and can be re-indexed later for real embeddings; ranking
// quality over fallback vectors is meaningless until then, which is why
// the quality mark travels with every batch.
type Resilient struct {
	provider Provider // nil when no credential is configured
	dim      int
}

// NewResilient builds the wrapper. provider may be nil, forcing
// fallback mode; dim is the system-wide vector dimension.
func NewResilient(provider Provider, dim int) *Resilient {
	if provider != nil && provider.Dimension() > 0 {
		dim = provider.Dimension()
	}
	return &Resilient{provider: provider, dim: dim}
}

func (r *Resilient) Dimension() int {
	return r.dim
}

// EmbedBatch returns exactly one vector of the system dimension per
// input, in input order. A provider failure degrades the whole batch to
// fallback vectors rather than surfacing an error.
func (r *Resilient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, Quality) {
	if len(texts) == 0 {
		return nil, QualityReal
	}
	if r.provider != nil {
		vecs, err := r.provider.EmbedBatch(ctx, texts)
		if err == nil && len(vecs) == len(texts) {
			return vecs, QualityReal
		}
		log.Printf("embedding provider failed, falling back to placeholder vectors: %v", err)
	}
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = fallbackVector(t, r.dim)
	}
	return vecs, QualityFallback
}

// EmbedOne is the batch-of-one convenience used at query time.
func (r *Resilient) EmbedOne(ctx context.Context, text string) ([]float32, Quality) {
	vecs, quality := r.EmbedBatch(ctx, []string{text})
	if len(vecs) == 0 {
		return fallbackVector(text, r.dim), QualityFallback
	}
	return vecs[0], quality
}

// fallbackVector derives a deterministic pseudo-random vector from the
// text, so re-embedding the same text in fallback mode is stable.
func fallbackVector(text string, dim int) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = rng.Float32()*2 - 1
	}
	return vec
}
