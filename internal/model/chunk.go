package model

import (
	"encoding/json"
	"time"
)

// EmbeddingQuality marks whether a chunk's vector came from the real
// provider or from the degraded-mode fallback. Fallback vectors keep a
// document searchable but rank meaninglessly until it is re-indexed.
type EmbeddingQuality string

const (
	EmbeddingReal     EmbeddingQuality = "real"
	EmbeddingFallback EmbeddingQuality = "fallback"
)

// Chunk is the atomic unit of retrieval: one bounded segment of a
// document's normalized text. Chunks are immutable after insertion;
// re-indexing replaces the whole set.
// Embedding is stored as a JSON array of float32 for portability.
type Chunk struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	DocumentID  uint             `gorm:"not null;index" json:"document_id"`
	ChunkIndex  int              `gorm:"not null" json:"chunk_index"`
	Content     string           `gorm:"type:text;not null" json:"content"`
	Page        int              `gorm:"not null;default:1" json:"page"`
	StartOffset int              `gorm:"not null;default:0" json:"start_offset"`
	EndOffset   int              `gorm:"not null;default:0" json:"end_offset"`
	Embedding   string           `gorm:"type:text" json:"-"`
	Quality     EmbeddingQuality `gorm:"size:16;not null;default:fallback" json:"quality"`
	CreatedAt   time.Time        `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *Chunk) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *Chunk) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}
