package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"fundlens/internal/ai"
	"fundlens/internal/cache"
	"fundlens/internal/ingest/fundmeta"
	"fundlens/internal/ingest/tabular"
	"fundlens/internal/model"
	"fundlens/internal/repository"
	"fundlens/internal/search"
)

const embeddingBatchSize = 10 // embedding APIs often limit batch size

// DocumentJobPublisher enqueues a document for the background worker.
type DocumentJobPublisher interface {
	PublishDocument(ctx context.Context, documentID uint) error
}

// IntakeInput is one document's extracted content: raw tables plus page text.
// Extraction itself happens before intake; this service starts at cell
// matrices and strings.
type IntakeInput struct {
	FileName string
	FundName string // optional explicit override for front-matter inference
	Tables   []tabular.RawTable
	Pages    []search.PageText
}

// intakePayload is the persisted form of IntakeInput, so reprocessing works
// from the document id alone.
type intakePayload struct {
	FundName string             `json:"fund_name,omitempty"`
	Tables   []tabular.RawTable `json:"tables"`
	Pages    []search.PageText  `json:"pages"`
}

type IngestService struct {
	docRepo     *repository.DocumentRepository
	payloadRepo *repository.DocumentPayloadRepository
	fundRepo    *repository.FundRepository
	writer      *repository.IngestWriter
	llmClient   *ai.OpenAICompatibleClient
	embConfig   ai.EmbeddingConfig
	publisher   DocumentJobPublisher
	answerCache *cache.AnswerCache

	chunkSize    int
	chunkOverlap int
}

func NewIngestService(
	docRepo *repository.DocumentRepository,
	payloadRepo *repository.DocumentPayloadRepository,
	fundRepo *repository.FundRepository,
	writer *repository.IngestWriter,
	llmClient *ai.OpenAICompatibleClient,
	embConfig ai.EmbeddingConfig,
	publisher DocumentJobPublisher,
	answerCache *cache.AnswerCache,
	chunkSize, chunkOverlap int,
) *IngestService {
	if chunkSize <= 0 {
		chunkSize = 512
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 8
	}
	return &IngestService{
		docRepo:      docRepo,
		payloadRepo:  payloadRepo,
		fundRepo:     fundRepo,
		writer:       writer,
		llmClient:    llmClient,
		embConfig:    embConfig,
		publisher:    publisher,
		answerCache:  answerCache,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Intake registers a document and enqueues it for processing. The document is
// returned in pending state; processing happens on the single ingest worker.
func (s *IngestService) Intake(ctx context.Context, input IntakeInput) (*model.Document, error) {
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, ErrInvalidInput
	}

	doc := &model.Document{
		FileName:      fileName,
		ParsingStatus: model.ParsingStatusPending,
	}
	if err := s.docRepo.Create(doc); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(intakePayload{
		FundName: strings.TrimSpace(input.FundName),
		Tables:   input.Tables,
		Pages:    input.Pages,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal intake payload failed: %w", err)
	}
	if err := s.payloadRepo.Upsert(&model.DocumentPayload{
		DocumentID: doc.ID,
		Payload:    string(raw),
	}); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishDocument(ctx, doc.ID); err != nil {
		return nil, err
	}
	return doc, nil
}

// Process runs the full pipeline for one document. It is idempotent and
// re-entrant keyed by document id: every run replaces the document's prior
// transactions and chunks, so a redelivered or retried job is safe.
func (s *IngestService) Process(ctx context.Context, documentID uint) error {
	doc, err := s.docRepo.GetByID(documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}

	if err := s.docRepo.SetStatus(doc.ID, model.ParsingStatusProcessing, ""); err != nil {
		return err
	}

	if err := s.process(ctx, doc); err != nil {
		if statusErr := s.docRepo.SetStatus(doc.ID, model.ParsingStatusFailed, err.Error()); statusErr != nil {
			log.Printf("mark document %d failed: %v", doc.ID, statusErr)
		}
		return err
	}
	return s.docRepo.SetStatus(doc.ID, model.ParsingStatusCompleted, "")
}

func (s *IngestService) process(ctx context.Context, doc *model.Document) error {
	stored, err := s.payloadRepo.GetByDocumentID(doc.ID)
	if err != nil {
		return err
	}
	if stored == nil {
		return ErrNoExtractableContent
	}
	var payload intakePayload
	if err := json.Unmarshal([]byte(stored.Payload), &payload); err != nil {
		return fmt.Errorf("decode intake payload failed: %w", err)
	}

	// Only a total extraction failure fails the document; unclassifiable
	// tables and empty pages are tolerated below.
	if len(payload.Tables) == 0 && !hasText(payload.Pages) {
		return ErrNoExtractableContent
	}

	fundID, err := s.resolveFund(doc, payload)
	if err != nil {
		return err
	}

	calls, dists, adjs, unclassified := s.classifyTables(doc, fundID, payload.Tables)

	chunks, err := s.buildChunks(ctx, doc, fundID, payload.Pages)
	if err != nil {
		return err
	}

	if err := s.writer.ReplaceDocumentData(doc.ID, calls, dists, adjs, unclassified, chunks); err != nil {
		return err
	}

	if fundID != nil && s.answerCache != nil {
		if err := s.answerCache.InvalidateFund(ctx, *fundID); err != nil {
			log.Printf("invalidate answer cache for fund %d: %v", *fundID, err)
		}
	}
	return nil
}

// resolveFund find-or-creates the fund referenced by the document. The single
// ingest worker serializes this read-then-write, so concurrent documents for
// a brand-new fund name cannot create duplicates.
func (s *IngestService) resolveFund(doc *model.Document, payload intakePayload) (*uint, error) {
	info := fundmeta.Info{FundName: payload.FundName}
	if info.FundName == "" {
		var combined strings.Builder
		for _, page := range payload.Pages {
			combined.WriteString(page.Text)
			combined.WriteString("\n")
		}
		info = fundmeta.Extract(combined.String())
	}
	if info.FundName == "" {
		return doc.FundID, nil // fund stays unresolved; document still processes
	}

	fund, err := s.fundRepo.FindOrCreate(&model.Fund{
		Name:        info.FundName,
		GPName:      info.GPName,
		VintageYear: info.VintageYear,
		FundType:    info.FundType,
	})
	if err != nil {
		return nil, err
	}
	if err := s.docRepo.SetFund(doc.ID, fund.ID); err != nil {
		return nil, err
	}
	return &fund.ID, nil
}

func (s *IngestService) classifyTables(doc *model.Document, fundID *uint, tables []tabular.RawTable) (
	[]model.CapitalCall, []model.Distribution, []model.Adjustment, []model.UnclassifiedTable,
) {
	var calls []model.CapitalCall
	var dists []model.Distribution
	var adjs []model.Adjustment
	var unclassified []model.UnclassifiedTable

	fund := uint(0)
	if fundID != nil {
		fund = *fundID
	}

	for _, table := range tables {
		result := tabular.Classify(table)
		for _, warning := range result.Warnings {
			log.Printf("document %d data quality: %s", doc.ID, warning)
		}

		if result.Type == tabular.TableUnclassified || fundID == nil {
			// Without a fund the rows have no owner; keep the raw table for
			// review either way.
			raw := model.UnclassifiedTable{DocumentID: doc.ID, PageNumber: table.PageNumber}
			raw.SetTable(table.Header, table.Rows)
			unclassified = append(unclassified, raw)
			continue
		}

		switch result.Type {
		case tabular.TableCapitalCalls:
			for _, row := range result.CapitalCalls {
				calls = append(calls, model.CapitalCall{
					FundID:      fund,
					DocumentID:  doc.ID,
					CallDate:    row.CallDate,
					CallType:    row.CallType,
					Amount:      row.Amount,
					Description: row.Description,
					PageNumber:  table.PageNumber,
				})
			}
		case tabular.TableDistributions:
			for _, row := range result.Distributions {
				dists = append(dists, model.Distribution{
					FundID:           fund,
					DocumentID:       doc.ID,
					DistributionDate: row.DistributionDate,
					DistributionType: row.DistributionType,
					Amount:           row.Amount,
					IsRecallable:     row.IsRecallable,
					Description:      row.Description,
					PageNumber:       table.PageNumber,
				})
			}
		case tabular.TableAdjustments:
			for _, row := range result.Adjustments {
				adjs = append(adjs, model.Adjustment{
					FundID:         fund,
					DocumentID:     doc.ID,
					EffectiveDate:  row.EffectiveDate,
					AdjustmentType: row.AdjustmentType,
					Category:       row.Category,
					Amount:         row.Amount,
					IsContribution: row.IsContribution,
					Description:    row.Description,
					PageNumber:     table.PageNumber,
				})
			}
		}
	}
	return calls, dists, adjs, unclassified
}

func (s *IngestService) buildChunks(ctx context.Context, doc *model.Document, fundID *uint, pages []search.PageText) ([]model.DocumentChunk, error) {
	passages := search.SplitPages(pages, s.chunkSize, s.chunkOverlap)
	if len(passages) == 0 {
		return nil, nil
	}

	texts := make([]string, len(passages))
	for i := range passages {
		texts[i] = passages[i].Content
	}

	var embeddings [][]float32
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := s.llmClient.EmbedBatch(ctx, s.embConfig, texts[i:end])
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batch...)
	}
	if len(embeddings) != len(passages) {
		return nil, fmt.Errorf("embedding count mismatch: %d passages, %d vectors", len(passages), len(embeddings))
	}

	chunks := make([]model.DocumentChunk, len(passages))
	for i, p := range passages {
		chunks[i] = model.DocumentChunk{
			DocumentID: doc.ID,
			FundID:     fundID,
			ChunkIndex: p.Index,
			Content:    p.Content,
			PageNumber: p.PageNumber,
		}
		chunks[i].SetEmbedding(embeddings[i])
	}
	return chunks, nil
}

// Reconcile returns documents stuck in processing past the threshold to
// pending and re-enqueues them. Run once at startup, before the worker
// starts consuming.
func (s *IngestService) Reconcile(ctx context.Context, staleAfter time.Duration) error {
	ids, err := s.docRepo.ResetStaleProcessing(staleAfter)
	if err != nil {
		return err
	}
	for _, id := range ids {
		log.Printf("re-enqueueing stale document %d", id)
		if err := s.publisher.PublishDocument(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func hasText(pages []search.PageText) bool {
	for _, page := range pages {
		if strings.TrimSpace(page.Text) != "" {
			return true
		}
	}
	return false
}
