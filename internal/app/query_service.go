package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"fundlens/internal/ai"
	"fundlens/internal/cache"
	"fundlens/internal/metrics"
	"fundlens/internal/model"
	"fundlens/internal/search"
)

const (
	conversationTitleLimit = 100
	sourcePreviewLimit     = 500
)

type queryIntent string

const (
	intentDefinition  queryIntent = "definition"
	intentCalculation queryIntent = "calculation"
	intentRetrieval   queryIntent = "retrieval"
)

// ChunkSearcher is the retrieval capability the query service depends on.
type ChunkSearcher interface {
	Search(ctx context.Context, query string, k int, filters search.Filters, backend search.Backend) ([]search.Hit, error)
}

// AnswerComposer produces the final natural-language answer.
type AnswerComposer interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
}

// FundStore is the fund lookup surface the router needs.
type FundStore interface {
	GetByID(id uint) (*model.Fund, error)
	List() ([]model.Fund, error)
}

// ConversationStore persists conversations and their message turns.
type ConversationStore interface {
	Create(conv *model.Conversation) error
	GetByConversationID(conversationID string) (*model.Conversation, error)
	CountMessages(conversationID string) (int64, error)
	ListRecentMessages(conversationID string, limit int) ([]model.Message, error)
	CreateMessage(msg *model.Message) error
	SetTitle(conversationID, title string) error
	SetFund(conversationID string, fundID *uint) error
}

// MetricsSource computes a fund's metrics snapshot.
type MetricsSource interface {
	Snapshot(fundID uint, asOf time.Time) (*metrics.Snapshot, error)
}

type QueryInput struct {
	Text           string `json:"query"`
	FundID         *uint  `json:"fund_id"`
	ConversationID string `json:"conversation_id"`
}

type Source struct {
	DocumentID uint    `json:"document_id"`
	FundID     *uint   `json:"fund_id"`
	ChunkIndex int     `json:"chunk_index"`
	PageNumber int     `json:"page_number"`
	Content    string  `json:"content"`
	Score      float32 `json:"score"`
}

type QueryResult struct {
	Answer           string            `json:"answer"`
	Intent           string            `json:"intent"`
	FundID           *uint             `json:"fund_id,omitempty"`
	Metrics          *metrics.Snapshot `json:"metrics,omitempty"`
	Sources          []Source          `json:"sources"`
	NoDocumentsFound bool              `json:"no_documents_found"`
	ConversationID   string            `json:"conversation_id"`
	Cached           bool              `json:"cached"`
}

// QueryService routes a natural-language question to the right engine:
// definitions answer from the static glossary, metric questions from the
// metrics engine, everything else from chunk retrieval. When the primary
// route comes up empty it degrades through fund-scoped search, unscoped
// search, and the glossary before reporting that no documents were found.
type QueryService struct {
	fundRepo      FundStore
	convRepo      ConversationStore
	metricsSvc    MetricsSource
	searcher      ChunkSearcher
	composer      AnswerComposer
	chatCfg       ai.ChatConfig
	answerCache   *cache.AnswerCache
	topK          int
	historyWindow int
}

func NewQueryService(
	fundRepo FundStore,
	convRepo ConversationStore,
	metricsSvc MetricsSource,
	searcher ChunkSearcher,
	composer AnswerComposer,
	chatCfg ai.ChatConfig,
	answerCache *cache.AnswerCache,
	topK int,
	historyWindow int,
) *QueryService {
	if topK <= 0 {
		topK = 5
	}
	if historyWindow <= 0 {
		historyWindow = 10
	}
	return &QueryService{
		fundRepo:      fundRepo,
		convRepo:      convRepo,
		metricsSvc:    metricsSvc,
		searcher:      searcher,
		composer:      composer,
		chatCfg:       chatCfg,
		answerCache:   answerCache,
		topK:          topK,
		historyWindow: historyWindow,
	}
}

func (s *QueryService) Query(ctx context.Context, input QueryInput) (*QueryResult, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: query text is empty", ErrInvalidInput)
	}

	conv, firstTurn, err := s.loadOrCreateConversation(input.ConversationID, text)
	if err != nil {
		return nil, err
	}

	history, err := s.convRepo.ListRecentMessages(conv.ConversationID, s.historyWindow)
	if err != nil {
		return nil, err
	}

	fund, err := s.resolveFund(input, conv)
	if err != nil {
		return nil, err
	}
	var fundID *uint
	if fund != nil {
		fundID = &fund.ID
	}

	// Follow-ups depend on history, so only context-free turns are cacheable.
	if len(history) == 0 && s.answerCache != nil {
		var cached QueryResult
		if s.answerCache.Get(ctx, text, fundID, "", &cached) {
			cached.Cached = true
			cached.ConversationID = conv.ConversationID
			if err := s.persistTurn(conv, firstTurn, text, fund, &cached); err != nil {
				return nil, err
			}
			return &cached, nil
		}
	}

	intent := classifyIntent(text)
	result := &QueryResult{
		Intent:         string(intent),
		FundID:         fundID,
		Sources:        []Source{},
		ConversationID: conv.ConversationID,
	}

	answered := false
	switch intent {
	case intentDefinition:
		if entry, ok := lookupGlossary(text); ok {
			result.Answer = entry.Definition
			answered = true
		}
	case intentCalculation:
		if fund != nil {
			snap, err := s.metricsSvc.Snapshot(fund.ID, time.Time{})
			if err != nil {
				return nil, err
			}
			if snapshotHasData(snap) {
				result.Metrics = snap
				answer, err := s.compose(ctx, text, history, snap, nil)
				if err != nil {
					return nil, err
				}
				result.Answer = answer
				answered = true
			}
		}
	}

	if !answered {
		if err := s.answerFromDocuments(ctx, text, intent, fund, history, result); err != nil {
			return nil, err
		}
	}

	if err := s.persistTurn(conv, firstTurn, text, fund, result); err != nil {
		return nil, err
	}

	if len(history) == 0 && s.answerCache != nil {
		if err := s.answerCache.Set(ctx, text, fundID, "", result); err != nil {
			log.Printf("WARN: cache answer failed: %v", err)
		}
	}
	return result, nil
}

// answerFromDocuments runs the retrieval ladder: fund-scoped search, then
// unscoped vector search, then a glossary match, and finally an explicit
// no-documents answer. It never invents a number for a metric question.
func (s *QueryService) answerFromDocuments(ctx context.Context, text string, intent queryIntent, fund *model.Fund, history []model.Message, result *QueryResult) error {
	filters := search.Filters{}
	if fund != nil {
		filters.FundID = &fund.ID
	}

	hits, err := s.searcher.Search(ctx, text, s.topK, filters, search.BackendAuto)
	if err != nil {
		return err
	}
	if len(hits) == 0 && fund != nil {
		hits, err = s.searcher.Search(ctx, text, s.topK, search.Filters{}, search.BackendVector)
		if err != nil {
			return err
		}
	}

	if len(hits) > 0 {
		result.Sources = toSources(hits)
		answer, err := s.compose(ctx, text, history, result.Metrics, result.Sources)
		if err != nil {
			return err
		}
		if intent == intentCalculation && fund == nil {
			answer = noFundContextNote + " " + answer
		}
		result.Answer = answer
		return nil
	}

	// A metric question without a fund must end in disambiguation, never in a
	// glossary definition standing in for a number.
	if intent != intentCalculation {
		if entry, ok := lookupGlossary(text); ok {
			result.Answer = entry.Definition
			return nil
		}
	}

	result.NoDocumentsFound = true
	if intent == intentCalculation && fund == nil {
		result.Answer = "I could not tell which fund you are asking about. Please name the fund or pass its id, and make sure its quarterly reports have been uploaded."
	} else {
		result.Answer = "No relevant documents were found for this question. Upload the fund's quarterly reports and try again."
	}
	return nil
}

// noFundContextNote prefixes composed answers to metric questions that had to
// fall back to unscoped retrieval.
const noFundContextNote = "No fund context was resolved for this question, so the excerpts below are not scoped to a single fund."

func (s *QueryService) loadOrCreateConversation(conversationID, firstQuery string) (*model.Conversation, bool, error) {
	if conversationID != "" {
		conv, err := s.convRepo.GetByConversationID(conversationID)
		if err != nil {
			return nil, false, err
		}
		if conv == nil {
			return nil, false, ErrConversationNotFound
		}
		count, err := s.convRepo.CountMessages(conv.ConversationID)
		if err != nil {
			return nil, false, err
		}
		return conv, count == 0, nil
	}

	conv := &model.Conversation{
		ConversationID: uuid.NewString(),
		Title:          truncateRunes(firstQuery, conversationTitleLimit),
	}
	if err := s.convRepo.Create(conv); err != nil {
		return nil, false, err
	}
	return conv, true, nil
}

// resolveFund picks the fund context for a turn: an explicit id wins, then a
// fund name mentioned in the query, then the fund remembered on the
// conversation. No match leaves the turn fund-free.
func (s *QueryService) resolveFund(input QueryInput, conv *model.Conversation) (*model.Fund, error) {
	if input.FundID != nil {
		fund, err := s.fundRepo.GetByID(*input.FundID)
		if err != nil {
			return nil, err
		}
		if fund == nil {
			return nil, ErrFundNotFound
		}
		return fund, nil
	}

	funds, err := s.fundRepo.List()
	if err != nil {
		return nil, err
	}
	normalized := model.NormalizeFundName(input.Text)
	var best *model.Fund
	for i := range funds {
		name := funds[i].NameNormalized
		if name == "" || !strings.Contains(normalized, name) {
			continue
		}
		if best == nil || len(name) > len(best.NameNormalized) {
			best = &funds[i]
		}
	}
	if best != nil {
		return best, nil
	}

	if conv.FundID != nil {
		fund, err := s.fundRepo.GetByID(*conv.FundID)
		if err != nil {
			return nil, err
		}
		return fund, nil
	}
	return nil, nil
}

func (s *QueryService) compose(ctx context.Context, text string, history []model.Message, snap *metrics.Snapshot, sources []Source) (string, error) {
	var sb strings.Builder
	sb.WriteString("You are an analyst assistant for private fund performance reports. ")
	sb.WriteString("Answer using only the context below. Quote figures exactly as given; if the context does not contain the answer, say so instead of guessing.")

	if snap != nil {
		sb.WriteString("\n\nComputed metrics (as of ")
		if snap.AsOf.IsZero() {
			sb.WriteString("latest data")
		} else {
			sb.WriteString(snap.AsOf.Format("2006-01-02"))
		}
		sb.WriteString("):\n")
		sb.WriteString(formatSnapshot(snap))
	}

	if len(sources) > 0 {
		sb.WriteString("\n\nDocument excerpts:\n")
		for i, src := range sources {
			if src.FundID != nil {
				fmt.Fprintf(&sb, "[%d] (document %d, fund %d, page %d) %s\n", i+1, src.DocumentID, *src.FundID, src.PageNumber, src.Content)
			} else {
				fmt.Fprintf(&sb, "[%d] (document %d, page %d) %s\n", i+1, src.DocumentID, src.PageNumber, src.Content)
			}
		}
	}

	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{Role: "system", Content: sb.String()})
	for _, msg := range history {
		messages = append(messages, ai.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, ai.ChatMessage{Role: "user", Content: text})

	answer, err := s.composer.Complete(ctx, s.chatCfg, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// persistTurn appends the user and assistant messages and refreshes the
// conversation's fund pointer. Turns are only written after the answer is
// composed, so a failed turn leaves the history untouched.
func (s *QueryService) persistTurn(conv *model.Conversation, firstTurn bool, text string, fund *model.Fund, result *QueryResult) error {
	if err := s.convRepo.CreateMessage(&model.Message{
		ConversationID: conv.ConversationID,
		Role:           "user",
		Content:        text,
	}); err != nil {
		return err
	}

	sourcesJSON := ""
	if len(result.Sources) > 0 {
		if raw, err := json.Marshal(result.Sources); err == nil {
			sourcesJSON = string(raw)
		}
	}
	if err := s.convRepo.CreateMessage(&model.Message{
		ConversationID: conv.ConversationID,
		Role:           "assistant",
		Content:        result.Answer,
		Sources:        sourcesJSON,
	}); err != nil {
		return err
	}

	if firstTurn && conv.Title == "" {
		if err := s.convRepo.SetTitle(conv.ConversationID, truncateRunes(text, conversationTitleLimit)); err != nil {
			return err
		}
	}
	if fund != nil && (conv.FundID == nil || *conv.FundID != fund.ID) {
		if err := s.convRepo.SetFund(conv.ConversationID, &fund.ID); err != nil {
			return err
		}
	}
	return nil
}

var calculationCues = []string{
	"calculate",
	"compute",
	"what is the current",
	"what's the current",
	"what was the",
	"how much",
}

var definitionCues = []string{
	"what does",
	"define ",
	"definition",
	"explain",
	"meaning of",
	" mean",
}

// classifyIntent picks the engine for a question. Metric terms phrased
// against a fund ("the DPI for Fund IV") ask for a number; definitional
// phrasings ("what does DPI mean") ask for the glossary.
func classifyIntent(query string) queryIntent {
	q := " " + strings.ToLower(strings.TrimSpace(query)) + " "
	for _, cue := range calculationCues {
		if strings.Contains(q, cue) {
			return intentCalculation
		}
	}
	for _, cue := range definitionCues {
		if strings.Contains(q, cue) {
			return intentDefinition
		}
	}
	if hasMetricTerm(q) {
		if strings.Contains(q, " for ") || strings.Contains(q, " fund") {
			return intentCalculation
		}
		if strings.Contains(q, "what is") || strings.Contains(q, "what are") {
			return intentDefinition
		}
	}
	return intentRetrieval
}

var metricTerms = []string{
	"dpi", "rvpi", "tvpi", "moic", "irr", "nav", "pic",
	"paid-in capital", "paid in capital",
	"net asset value", "internal rate of return", "distributions",
}

func hasMetricTerm(padded string) bool {
	for _, term := range metricTerms {
		if containsWord(padded, term) {
			return true
		}
	}
	return false
}

// snapshotHasData reports whether the fund has any transactions or a reported
// NAV. A blank snapshot routes the question to document retrieval instead.
func snapshotHasData(snap *metrics.Snapshot) bool {
	return snap.PIC.Sign() > 0 || snap.DistributedCapital.Sign() > 0 || snap.NAV.Sign() != 0
}

func formatSnapshot(snap *metrics.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Paid-in capital: %s\n", snap.PIC.StringFixed(2))
	fmt.Fprintf(&sb, "Distributed capital: %s\n", snap.DistributedCapital.StringFixed(2))
	fmt.Fprintf(&sb, "NAV: %s\n", snap.NAV.StringFixed(2))
	if snap.DPI != nil {
		fmt.Fprintf(&sb, "DPI: %s\n", snap.DPI.String())
	}
	if snap.RVPI != nil {
		fmt.Fprintf(&sb, "RVPI: %s\n", snap.RVPI.String())
	}
	if snap.TVPI != nil {
		fmt.Fprintf(&sb, "TVPI: %s\n", snap.TVPI.String())
	}
	if snap.MOIC != nil {
		fmt.Fprintf(&sb, "MOIC: %s\n", snap.MOIC.String())
	}
	if snap.IRR != nil {
		fmt.Fprintf(&sb, "IRR: %.4f\n", *snap.IRR)
	}
	return sb.String()
}

func toSources(hits []search.Hit) []Source {
	sources := make([]Source, 0, len(hits))
	for _, hit := range hits {
		sources = append(sources, Source{
			DocumentID: hit.Chunk.DocumentID,
			FundID:     hit.Chunk.FundID,
			ChunkIndex: hit.Chunk.ChunkIndex,
			PageNumber: hit.Chunk.PageNumber,
			Content:    truncateRunes(hit.Chunk.Content, sourcePreviewLimit),
			Score:      hit.Score,
		})
	}
	return sources
}

func truncateRunes(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit])
}
