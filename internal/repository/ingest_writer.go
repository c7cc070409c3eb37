package repository

import (
	"fmt"

	"gorm.io/gorm"

	"fundlens/internal/model"
)

// IngestWriter commits one document's extracted data atomically: everything
// the document previously produced is removed and the new rows inserted in a
// single database transaction. Reprocessing therefore replaces, never
// appends, and a failed pass leaves no partial writes behind.
type IngestWriter struct {
	db               *gorm.DB
	txRepo           *TransactionRepository
	unclassifiedRepo *UnclassifiedTableRepository
	chunkRepo        *ChunkRepository
}

func NewIngestWriter(
	db *gorm.DB,
	txRepo *TransactionRepository,
	unclassifiedRepo *UnclassifiedTableRepository,
	chunkRepo *ChunkRepository,
) *IngestWriter {
	return &IngestWriter{
		db:               db,
		txRepo:           txRepo,
		unclassifiedRepo: unclassifiedRepo,
		chunkRepo:        chunkRepo,
	}
}

func (w *IngestWriter) ReplaceDocumentData(
	documentID uint,
	calls []model.CapitalCall,
	dists []model.Distribution,
	adjs []model.Adjustment,
	unclassified []model.UnclassifiedTable,
	chunks []model.DocumentChunk,
) error {
	err := w.db.Transaction(func(tx *gorm.DB) error {
		if err := w.txRepo.DeleteByDocumentID(tx, documentID); err != nil {
			return err
		}
		if err := w.unclassifiedRepo.DeleteByDocumentID(tx, documentID); err != nil {
			return err
		}
		if err := w.chunkRepo.DeleteByDocumentID(tx, documentID); err != nil {
			return err
		}

		if err := w.txRepo.CreateCapitalCalls(tx, calls); err != nil {
			return err
		}
		if err := w.txRepo.CreateDistributions(tx, dists); err != nil {
			return err
		}
		if err := w.txRepo.CreateAdjustments(tx, adjs); err != nil {
			return err
		}
		if err := w.unclassifiedRepo.CreateBatch(tx, unclassified); err != nil {
			return err
		}
		return w.chunkRepo.CreateBatch(tx, chunks)
	})
	if err != nil {
		return fmt.Errorf("replace document data failed: %w", err)
	}
	return nil
}
