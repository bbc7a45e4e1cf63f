package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docubase/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// ReplaceForDocument swaps the full chunk set of a document in one
// transaction: prior chunks are deleted and the new set inserted
// together, so a reader never observes a partial set. This is also the
// re-index path; chunks are never patched in place.
func (r *ChunkRepository) ReplaceForDocument(documentID uint, chunks []model.Chunk) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", documentID).Delete(&model.Chunk{}).Error; err != nil {
			return fmt.Errorf("delete prior chunks failed: %w", err)
		}
		if len(chunks) == 0 {
			return nil
		}
		if err := tx.Create(&chunks).Error; err != nil {
			return fmt.Errorf("insert chunks failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace chunks for document %d failed: %w", documentID, err)
	}
	return nil
}

// ListByDocumentIDs returns all chunks of the given documents, ordered
// by document and chunk index so retrieval tie-breaks stay stable.
func (r *ChunkRepository) ListByDocumentIDs(documentIDs []uint) ([]model.Chunk, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}
	var chunks []model.Chunk
	if err := r.db.Where("document_id IN ?", documentIDs).
		Order("document_id, chunk_index").
		Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list chunks by document ids failed: %w", err)
	}
	return chunks, nil
}

func (r *ChunkRepository) CountByDocumentID(documentID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Chunk{}).Where("document_id = ?", documentID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count chunks failed: %w", err)
	}
	return count, nil
}
