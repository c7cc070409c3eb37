package repository

import (
	"fmt"

	"gorm.io/gorm"

	"fundlens/internal/model"
)

type UnclassifiedTableRepository struct {
	db *gorm.DB
}

func NewUnclassifiedTableRepository(db *gorm.DB) *UnclassifiedTableRepository {
	return &UnclassifiedTableRepository{db: db}
}

func (r *UnclassifiedTableRepository) CreateBatch(tx *gorm.DB, tables []model.UnclassifiedTable) error {
	if len(tables) == 0 {
		return nil
	}
	if tx == nil {
		tx = r.db
	}
	if err := tx.Create(&tables).Error; err != nil {
		return fmt.Errorf("create unclassified tables failed: %w", err)
	}
	return nil
}

func (r *UnclassifiedTableRepository) ListByDocumentID(documentID uint) ([]model.UnclassifiedTable, error) {
	var tables []model.UnclassifiedTable
	if err := r.db.Where("document_id = ?", documentID).Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("list unclassified tables failed: %w", err)
	}
	return tables, nil
}

func (r *UnclassifiedTableRepository) DeleteByDocumentID(tx *gorm.DB, documentID uint) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.Where("document_id = ?", documentID).Delete(&model.UnclassifiedTable{}).Error; err != nil {
		return fmt.Errorf("delete unclassified tables by document failed: %w", err)
	}
	return nil
}
