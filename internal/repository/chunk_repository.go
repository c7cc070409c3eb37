package repository

import (
	"fmt"

	"gorm.io/gorm"

	"fundlens/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func (r *ChunkRepository) CreateBatch(tx *gorm.DB, chunks []model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if tx == nil {
		tx = r.db
	}
	if err := tx.Create(&chunks).Error; err != nil {
		return fmt.Errorf("create chunks batch failed: %w", err)
	}
	return nil
}

// ListFiltered returns chunks, optionally scoped to a fund and/or document,
// ordered by document then ordinal so scoring has a deterministic input order.
func (r *ChunkRepository) ListFiltered(fundID, documentID *uint) ([]model.DocumentChunk, error) {
	q := r.db.Model(&model.DocumentChunk{})
	if fundID != nil {
		q = q.Where("fund_id = ?", *fundID)
	}
	if documentID != nil {
		q = q.Where("document_id = ?", *documentID)
	}
	var chunks []model.DocumentChunk
	if err := q.Order("document_id ASC, chunk_index ASC").Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list chunks failed: %w", err)
	}
	return chunks, nil
}

func (r *ChunkRepository) DeleteByDocumentID(tx *gorm.DB, documentID uint) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.Where("document_id = ?", documentID).Delete(&model.DocumentChunk{}).Error; err != nil {
		return fmt.Errorf("delete chunks by document failed: %w", err)
	}
	return nil
}
