package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"docubase/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Get(id uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

// UpdateStats closes out an indexing run: totals are set and the
// document becomes visible to retrieval in the same update.
func (r *DocumentRepository) UpdateStats(id uint, totalChunks, totalPages int, active bool) error {
	updates := map[string]interface{}{
		"total_chunks": totalChunks,
		"total_pages":  totalPages,
		"active":       active,
	}
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("update document stats failed: %w", err)
	}
	return nil
}

// ListByCollectionID returns documents in a collection, newest first.
// activeOnly restricts to documents whose indexing has completed.
func (r *DocumentRepository) ListByCollectionID(collectionID uint, activeOnly bool) ([]model.Document, error) {
	q := r.db.Where("collection_id = ?", collectionID)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var docs []model.Document
	if err := q.Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

// DeleteCascade removes a document together with its chunks and stored
// blob in one transaction. Deleting an unknown id is a no-op.
func (r *DocumentRepository) DeleteCascade(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&model.Chunk{}).Error; err != nil {
			return fmt.Errorf("delete chunks failed: %w", err)
		}
		if err := tx.Where("document_id = ?", id).Delete(&model.DocumentBlob{}).Error; err != nil {
			return fmt.Errorf("delete blob failed: %w", err)
		}
		if err := tx.Delete(&model.Document{}, id).Error; err != nil {
			return fmt.Errorf("delete document failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cascade delete document %d failed: %w", id, err)
	}
	return nil
}

func (r *DocumentRepository) SaveBlob(documentID uint, data []byte) error {
	blob := model.DocumentBlob{DocumentID: documentID, Data: data}
	if err := r.db.Create(&blob).Error; err != nil {
		return fmt.Errorf("save document blob failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetBlob(documentID uint) ([]byte, error) {
	var blob model.DocumentBlob
	if err := r.db.Where("document_id = ?", documentID).First(&blob).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document blob failed: %w", err)
	}
	return blob.Data, nil
}
