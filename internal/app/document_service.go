package app

import (
	"fundlens/internal/model"
	"fundlens/internal/repository"
)

// DocumentService reads document records. Writes go through the ingestion
// pipeline.
type DocumentService struct {
	docRepo          *repository.DocumentRepository
	unclassifiedRepo *repository.UnclassifiedTableRepository
}

func NewDocumentService(docRepo *repository.DocumentRepository, unclassifiedRepo *repository.UnclassifiedTableRepository) *DocumentService {
	return &DocumentService{docRepo: docRepo, unclassifiedRepo: unclassifiedRepo}
}

func (s *DocumentService) List(fundID *uint) ([]model.Document, error) {
	if fundID != nil {
		return s.docRepo.ListByFundID(*fundID)
	}
	return s.docRepo.List()
}

// Get returns a document together with any tables the classifier could not
// type, so callers can inspect what was dropped from the metrics engine.
func (s *DocumentService) Get(id uint) (*model.Document, []model.UnclassifiedTable, error) {
	doc, err := s.docRepo.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if doc == nil {
		return nil, nil, ErrDocumentNotFound
	}
	tables, err := s.unclassifiedRepo.ListByDocumentID(id)
	if err != nil {
		return nil, nil, err
	}
	return doc, tables, nil
}
