package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"fundlens/internal/model"
)

// TransactionRepository persists the three transaction kinds. Transactions are
// append-only: there are no update methods, and the only delete is the
// by-document wipe used when a document is reprocessed.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create methods take the enclosing transaction handle (nil means the bare
// connection) so the ingest writer can replace a document's rows atomically.

func (r *TransactionRepository) CreateCapitalCalls(tx *gorm.DB, calls []model.CapitalCall) error {
	if len(calls) == 0 {
		return nil
	}
	if tx == nil {
		tx = r.db
	}
	if err := tx.Create(&calls).Error; err != nil {
		return fmt.Errorf("create capital calls failed: %w", err)
	}
	return nil
}

func (r *TransactionRepository) CreateDistributions(tx *gorm.DB, dists []model.Distribution) error {
	if len(dists) == 0 {
		return nil
	}
	if tx == nil {
		tx = r.db
	}
	if err := tx.Create(&dists).Error; err != nil {
		return fmt.Errorf("create distributions failed: %w", err)
	}
	return nil
}

func (r *TransactionRepository) CreateAdjustments(tx *gorm.DB, adjs []model.Adjustment) error {
	if len(adjs) == 0 {
		return nil
	}
	if tx == nil {
		tx = r.db
	}
	if err := tx.Create(&adjs).Error; err != nil {
		return fmt.Errorf("create adjustments failed: %w", err)
	}
	return nil
}

// ListCapitalCalls returns a fund's calls dated on or before asOf (zero time
// means no cut-off), ordered by date.
func (r *TransactionRepository) ListCapitalCalls(fundID uint, asOf time.Time) ([]model.CapitalCall, error) {
	q := r.db.Where("fund_id = ?", fundID)
	if !asOf.IsZero() {
		q = q.Where("call_date <= ?", asOf)
	}
	var calls []model.CapitalCall
	if err := q.Order("call_date ASC").Find(&calls).Error; err != nil {
		return nil, fmt.Errorf("list capital calls failed: %w", err)
	}
	return calls, nil
}

func (r *TransactionRepository) ListDistributions(fundID uint, asOf time.Time) ([]model.Distribution, error) {
	q := r.db.Where("fund_id = ?", fundID)
	if !asOf.IsZero() {
		q = q.Where("distribution_date <= ?", asOf)
	}
	var dists []model.Distribution
	if err := q.Order("distribution_date ASC").Find(&dists).Error; err != nil {
		return nil, fmt.Errorf("list distributions failed: %w", err)
	}
	return dists, nil
}

func (r *TransactionRepository) ListAdjustments(fundID uint, asOf time.Time) ([]model.Adjustment, error) {
	q := r.db.Where("fund_id = ?", fundID)
	if !asOf.IsZero() {
		q = q.Where("effective_date <= ?", asOf)
	}
	var adjs []model.Adjustment
	if err := q.Order("effective_date ASC").Find(&adjs).Error; err != nil {
		return nil, fmt.Errorf("list adjustments failed: %w", err)
	}
	return adjs, nil
}

// DeleteByDocumentID removes every transaction a document produced. Runs
// inside the reprocessing transaction so a replace is all-or-nothing.
func (r *TransactionRepository) DeleteByDocumentID(tx *gorm.DB, documentID uint) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.Where("document_id = ?", documentID).Delete(&model.CapitalCall{}).Error; err != nil {
		return fmt.Errorf("delete capital calls by document failed: %w", err)
	}
	if err := tx.Where("document_id = ?", documentID).Delete(&model.Distribution{}).Error; err != nil {
		return fmt.Errorf("delete distributions by document failed: %w", err)
	}
	if err := tx.Where("document_id = ?", documentID).Delete(&model.Adjustment{}).Error; err != nil {
		return fmt.Errorf("delete adjustments by document failed: %w", err)
	}
	return nil
}
