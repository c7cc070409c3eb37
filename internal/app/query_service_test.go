package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundlens/internal/ai"
	"fundlens/internal/metrics"
	"fundlens/internal/model"
	"fundlens/internal/search"
)

func TestClassifyIntent(t *testing.T) {
	cases := []struct {
		query string
		want  queryIntent
	}{
		{"What is DPI?", intentDefinition},
		{"what does TVPI mean", intentDefinition},
		{"Explain recallable distributions", intentDefinition},
		{"define IRR", intentDefinition},

		{"What is the DPI for Velocity Ventures Fund III?", intentCalculation},
		{"What is the current NAV?", intentCalculation},
		{"Calculate the TVPI", intentCalculation},
		{"How much capital has been called?", intentCalculation},
		{"what was the IRR last quarter", intentCalculation},

		{"When did the fund make its first investment in Acme?", intentRetrieval},
		{"Summarize the portfolio highlights", intentRetrieval},
		{"Which companies were added this quarter?", intentRetrieval},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyIntent(tc.query))
		})
	}
}

func TestLookupGlossary(t *testing.T) {
	entry, ok := lookupGlossary("what is dpi")
	require.True(t, ok)
	assert.Equal(t, "DPI", entry.Term)
	assert.Contains(t, entry.Definition, "Paid-In")

	entry, ok = lookupGlossary("explain the internal rate of return please")
	require.True(t, ok)
	assert.Equal(t, "IRR", entry.Term)

	// Word boundaries: "irr" must not fire inside other words.
	_, ok = lookupGlossary("that seems irrelevant to the portfolio")
	assert.False(t, ok)

	_, ok = lookupGlossary("tell me about the weather")
	assert.False(t, ok)
}

func TestGlossaryCoversAllMetricTerms(t *testing.T) {
	for _, term := range []string{"DPI", "RVPI", "TVPI", "MOIC", "IRR", "NAV", "PIC"} {
		_, ok := lookupGlossary("what is " + strings.ToLower(term))
		assert.True(t, ok, term)
	}
}

func TestSnapshotHasData(t *testing.T) {
	assert.False(t, snapshotHasData(&metrics.Snapshot{}))

	pic := metrics.Snapshot{PIC: decimal.NewFromInt(100)}
	assert.True(t, snapshotHasData(&pic))

	dist := metrics.Snapshot{DistributedCapital: decimal.NewFromInt(5)}
	assert.True(t, snapshotHasData(&dist))

	nav := metrics.Snapshot{NAV: decimal.NewFromInt(1)}
	assert.True(t, snapshotHasData(&nav))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("  short  ", 100))
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))

	// Truncation counts runes, not bytes.
	assert.Equal(t, "ééé", truncateRunes("ééééé", 3))
}

type fakeFundStore struct {
	funds []model.Fund
}

func (f *fakeFundStore) GetByID(id uint) (*model.Fund, error) {
	for i := range f.funds {
		if f.funds[i].ID == id {
			return &f.funds[i], nil
		}
	}
	return nil, nil
}

func (f *fakeFundStore) List() ([]model.Fund, error) {
	return f.funds, nil
}

type fakeConversationStore struct {
	convs    map[string]*model.Conversation
	messages map[string][]model.Message
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{
		convs:    map[string]*model.Conversation{},
		messages: map[string][]model.Message{},
	}
}

func (f *fakeConversationStore) Create(conv *model.Conversation) error {
	f.convs[conv.ConversationID] = conv
	return nil
}

func (f *fakeConversationStore) GetByConversationID(id string) (*model.Conversation, error) {
	return f.convs[id], nil
}

func (f *fakeConversationStore) CountMessages(id string) (int64, error) {
	return int64(len(f.messages[id])), nil
}

func (f *fakeConversationStore) ListRecentMessages(id string, limit int) ([]model.Message, error) {
	msgs := f.messages[id]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (f *fakeConversationStore) CreateMessage(msg *model.Message) error {
	f.messages[msg.ConversationID] = append(f.messages[msg.ConversationID], *msg)
	return nil
}

func (f *fakeConversationStore) SetTitle(id, title string) error {
	if conv, ok := f.convs[id]; ok {
		conv.Title = title
	}
	return nil
}

func (f *fakeConversationStore) SetFund(id string, fundID *uint) error {
	if conv, ok := f.convs[id]; ok {
		conv.FundID = fundID
	}
	return nil
}

type searchCall struct {
	filters search.Filters
	backend search.Backend
}

// fakeSearcher replays one scripted result set per call and records how it
// was invoked.
type fakeSearcher struct {
	calls   []searchCall
	results [][]search.Hit
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int, filters search.Filters, backend search.Backend) ([]search.Hit, error) {
	f.calls = append(f.calls, searchCall{filters: filters, backend: backend})
	if len(f.results) == 0 {
		return nil, nil
	}
	hits := f.results[0]
	f.results = f.results[1:]
	return hits, nil
}

type fakeComposer struct {
	answer string
}

func (f *fakeComposer) Complete(context.Context, ai.ChatConfig, []ai.ChatMessage) (string, error) {
	return f.answer, nil
}

type fakeMetricsSource struct {
	snap *metrics.Snapshot
}

func (f *fakeMetricsSource) Snapshot(uint, time.Time) (*metrics.Snapshot, error) {
	return f.snap, nil
}

func newTestQueryService(funds *fakeFundStore, convs *fakeConversationStore, metricsSrc *fakeMetricsSource, searcher *fakeSearcher, composer *fakeComposer) *QueryService {
	if metricsSrc == nil {
		metricsSrc = &fakeMetricsSource{snap: &metrics.Snapshot{}}
	}
	return NewQueryService(funds, convs, metricsSrc, searcher, composer, ai.ChatConfig{}, nil, 5, 10)
}

func TestQueryCalculationWithoutFundDisambiguates(t *testing.T) {
	searcher := &fakeSearcher{}
	svc := newTestQueryService(&fakeFundStore{}, newFakeConversationStore(), nil, searcher, &fakeComposer{answer: "unused"})

	result, err := svc.Query(context.Background(), QueryInput{Text: "What is the current DPI?"})
	require.NoError(t, err)

	assert.True(t, result.NoDocumentsFound)
	assert.Contains(t, result.Answer, "which fund")
	assert.Equal(t, "calculation", result.Intent)
	assert.Nil(t, result.Metrics)
	assert.Empty(t, result.Sources)

	// The glossary must not stand in for the missing number.
	assert.NotContains(t, result.Answer, "Paid-In")

	require.Len(t, searcher.calls, 1)
	assert.Nil(t, searcher.calls[0].filters.FundID)
	assert.Equal(t, search.BackendAuto, searcher.calls[0].backend)
}

func TestQueryCalculationWithoutFundCarriesContextNote(t *testing.T) {
	seven := uint(7)
	hit := search.Hit{Chunk: model.DocumentChunk{DocumentID: 3, FundID: &seven, ChunkIndex: 1, PageNumber: 2, Content: "DPI stood at 0.4 this quarter"}, Score: 0.9}
	searcher := &fakeSearcher{results: [][]search.Hit{{hit}}}
	svc := newTestQueryService(&fakeFundStore{}, newFakeConversationStore(), nil, searcher, &fakeComposer{answer: "DPI is 0.4 per the excerpt."})

	result, err := svc.Query(context.Background(), QueryInput{Text: "What is the current DPI?"})
	require.NoError(t, err)

	assert.False(t, result.NoDocumentsFound)
	assert.True(t, strings.HasPrefix(result.Answer, noFundContextNote), result.Answer)
	assert.Contains(t, result.Answer, "DPI is 0.4")
	require.Len(t, result.Sources, 1)
	require.NotNil(t, result.Sources[0].FundID)
	assert.Equal(t, seven, *result.Sources[0].FundID)
}

func TestQueryFallsBackToUnscopedSearch(t *testing.T) {
	seven := uint(7)
	funds := &fakeFundStore{funds: []model.Fund{{
		ID:             seven,
		Name:           "Velocity Ventures Fund III",
		NameNormalized: "velocity ventures fund iii",
	}}}
	hit := search.Hit{Chunk: model.DocumentChunk{DocumentID: 11, FundID: &seven, ChunkIndex: 0, PageNumber: 4, Content: "Acme was acquired in Q2"}, Score: 0.8}
	searcher := &fakeSearcher{results: [][]search.Hit{nil, {hit}}}
	convs := newFakeConversationStore()
	svc := newTestQueryService(funds, convs, nil, searcher, &fakeComposer{answer: "Acme joined the portfolio in Q2."})

	result, err := svc.Query(context.Background(), QueryInput{Text: "Summarize what the reports say about Acme for Velocity Ventures Fund III"})
	require.NoError(t, err)

	// Fund-scoped auto search first, then the unscoped vector pass.
	require.Len(t, searcher.calls, 2)
	require.NotNil(t, searcher.calls[0].filters.FundID)
	assert.Equal(t, seven, *searcher.calls[0].filters.FundID)
	assert.Equal(t, search.BackendAuto, searcher.calls[0].backend)
	assert.Nil(t, searcher.calls[1].filters.FundID)
	assert.Equal(t, search.BackendVector, searcher.calls[1].backend)

	assert.Equal(t, "Acme joined the portfolio in Q2.", result.Answer)
	assert.False(t, result.NoDocumentsFound)
	require.Len(t, result.Sources, 1)
	require.NotNil(t, result.FundID)
	assert.Equal(t, seven, *result.FundID)

	// The resolved fund is remembered on the conversation for follow-ups.
	conv := convs.convs[result.ConversationID]
	require.NotNil(t, conv)
	require.NotNil(t, conv.FundID)
	assert.Equal(t, seven, *conv.FundID)
}

func TestQueryCalculationWithFundUsesMetrics(t *testing.T) {
	one := uint(1)
	funds := &fakeFundStore{funds: []model.Fund{{ID: one, Name: "Alpha Fund", NameNormalized: "alpha fund"}}}
	pic := decimal.NewFromInt(100)
	metricsSrc := &fakeMetricsSource{snap: &metrics.Snapshot{PIC: pic}}
	searcher := &fakeSearcher{}
	svc := newTestQueryService(funds, newFakeConversationStore(), metricsSrc, searcher, &fakeComposer{answer: "PIC is 100."})

	result, err := svc.Query(context.Background(), QueryInput{Text: "What is the current PIC for Alpha Fund?"})
	require.NoError(t, err)

	assert.Equal(t, "calculation", result.Intent)
	require.NotNil(t, result.Metrics)
	assert.Equal(t, "PIC is 100.", result.Answer)
	assert.Empty(t, searcher.calls)
}

func TestQueryDefinitionSkipsSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	svc := newTestQueryService(&fakeFundStore{}, newFakeConversationStore(), nil, searcher, &fakeComposer{answer: "unused"})

	result, err := svc.Query(context.Background(), QueryInput{Text: "What does DPI mean?"})
	require.NoError(t, err)

	assert.Equal(t, "definition", result.Intent)
	assert.Contains(t, result.Answer, "Paid-In")
	assert.Empty(t, searcher.calls)
}

func TestResolveFundPrecedence(t *testing.T) {
	one, two, three := uint(1), uint(2), uint(3)
	funds := &fakeFundStore{funds: []model.Fund{
		{ID: one, Name: "Velocity Ventures Fund", NameNormalized: "velocity ventures fund"},
		{ID: two, Name: "Velocity Ventures Fund III", NameNormalized: "velocity ventures fund iii"},
		{ID: three, Name: "Orion Growth Fund", NameNormalized: "orion growth fund"},
	}}
	svc := newTestQueryService(funds, newFakeConversationStore(), nil, &fakeSearcher{}, &fakeComposer{})
	conv := &model.Conversation{ConversationID: "c1", FundID: &three}

	// Explicit id beats the name in the query text.
	fund, err := svc.resolveFund(QueryInput{Text: "DPI for Velocity Ventures Fund III", FundID: &three}, conv)
	require.NoError(t, err)
	require.NotNil(t, fund)
	assert.Equal(t, three, fund.ID)

	// Longest matching fund name wins over its prefix.
	fund, err = svc.resolveFund(QueryInput{Text: "DPI for Velocity Ventures Fund III"}, conv)
	require.NoError(t, err)
	require.NotNil(t, fund)
	assert.Equal(t, two, fund.ID)

	// No id and no name falls back to the conversation's fund.
	fund, err = svc.resolveFund(QueryInput{Text: "and what about the IRR"}, conv)
	require.NoError(t, err)
	require.NotNil(t, fund)
	assert.Equal(t, three, fund.ID)

	// Nothing resolvable leaves the turn fund-free.
	fund, err = svc.resolveFund(QueryInput{Text: "and what about the IRR"}, &model.Conversation{ConversationID: "c2"})
	require.NoError(t, err)
	assert.Nil(t, fund)
}

func TestFormatSnapshotOmitsNullMetrics(t *testing.T) {
	snap := &metrics.Snapshot{
		PIC:                decimal.NewFromInt(100),
		DistributedCapital: decimal.NewFromInt(40),
		NAV:                decimal.NewFromInt(120),
	}
	text := formatSnapshot(snap)

	assert.Contains(t, text, "Paid-in capital: 100.00")
	assert.NotContains(t, text, "DPI")
	assert.NotContains(t, text, "IRR")

	dpi := decimal.NewFromFloat(0.4)
	snap.DPI = &dpi
	assert.Contains(t, formatSnapshot(snap), "DPI: 0.4")
}
