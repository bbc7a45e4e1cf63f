package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"docubase/internal/model"
)

type CollectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// GetOrCreate returns the collection with the given name, creating it
// on first ingest into that name.
func (r *CollectionRepository) GetOrCreate(name string) (*model.Collection, error) {
	var col model.Collection
	if err := r.db.Where(model.Collection{Name: name}).FirstOrCreate(&col).Error; err != nil {
		return nil, fmt.Errorf("get or create collection failed: %w", err)
	}
	return &col, nil
}

// GetByName returns nil without error when the collection is unknown.
func (r *CollectionRepository) GetByName(name string) (*model.Collection, error) {
	var col model.Collection
	if err := r.db.Where("name = ?", name).First(&col).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get collection failed: %w", err)
	}
	return &col, nil
}
