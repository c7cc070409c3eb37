package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"fundlens/internal/model"
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

func (r *DocumentRepository) GetByID(id uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) List() ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) ListByFundID(fundID uint) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Where("fund_id = ?", fundID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents by fund failed: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) SetStatus(id uint, status, errorMessage string) error {
	updates := map[string]interface{}{
		"parsing_status": status,
		"error_message":  errorMessage,
	}
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("set document status failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) SetFund(id, fundID uint) error {
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).Update("fund_id", fundID).Error; err != nil {
		return fmt.Errorf("set document fund failed: %w", err)
	}
	return nil
}

// ResetStaleProcessing returns documents stuck in processing longer than the
// threshold to pending so the worker can retry them after a crash.
func (r *DocumentRepository) ResetStaleProcessing(olderThan time.Duration) ([]uint, error) {
	cutoff := time.Now().Add(-olderThan)
	var ids []uint
	err := r.db.Model(&model.Document{}).
		Where("parsing_status = ? AND updated_at < ?", model.ParsingStatusProcessing, cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list stale processing documents failed: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	err = r.db.Model(&model.Document{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"parsing_status": model.ParsingStatusPending,
			"error_message":  "",
		}).Error
	if err != nil {
		return nil, fmt.Errorf("reset stale processing documents failed: %w", err)
	}
	return ids, nil
}
