package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fundlens/internal/model"
)

type DocumentPayloadRepository struct {
	db *gorm.DB
}

func NewDocumentPayloadRepository(db *gorm.DB) *DocumentPayloadRepository {
	return &DocumentPayloadRepository{db: db}
}

// Upsert replaces a document's stored intake payload.
func (r *DocumentPayloadRepository) Upsert(payload *model.DocumentPayload) error {
	var existing model.DocumentPayload
	err := r.db.Where("document_id = ?", payload.DocumentID).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("get document payload failed: %w", err)
		}
		if err := r.db.Create(payload).Error; err != nil {
			return fmt.Errorf("create document payload failed: %w", err)
		}
		return nil
	}
	existing.Payload = payload.Payload
	if err := r.db.Save(&existing).Error; err != nil {
		return fmt.Errorf("update document payload failed: %w", err)
	}
	return nil
}

func (r *DocumentPayloadRepository) GetByDocumentID(documentID uint) (*model.DocumentPayload, error) {
	var payload model.DocumentPayload
	if err := r.db.Where("document_id = ?", documentID).First(&payload).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document payload failed: %w", err)
	}
	return &payload, nil
}
