package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundlens/internal/model"
)

type fakeChunkSource struct {
	chunks []model.DocumentChunk
}

func (f *fakeChunkSource) ListFiltered(fundID, documentID *uint) ([]model.DocumentChunk, error) {
	var out []model.DocumentChunk
	for _, c := range f.chunks {
		if fundID != nil && (c.FundID == nil || *c.FundID != *fundID) {
			continue
		}
		if documentID != nil && c.DocumentID != *documentID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type fakeEmbedder struct {
	vec []float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vec, nil
}

func chunk(docID uint, fundID *uint, index int, content string, vec []float32) model.DocumentChunk {
	c := model.DocumentChunk{
		DocumentID: docID,
		FundID:     fundID,
		ChunkIndex: index,
		Content:    content,
	}
	c.SetEmbedding(vec)
	return c
}

func uintPtr(v uint) *uint { return &v }

func TestVectorSearchRanksBySimilarity(t *testing.T) {
	source := &fakeChunkSource{chunks: []model.DocumentChunk{
		chunk(1, nil, 0, "orthogonal", []float32{0, 1}),
		chunk(1, nil, 1, "aligned", []float32{1, 0}),
		chunk(2, nil, 0, "partial", []float32{1, 1}),
	}}
	index := NewIndex(source, &fakeEmbedder{vec: []float32{1, 0}})

	hits, err := index.Search(context.Background(), "anything", 2, Filters{}, BackendVector)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "aligned", hits[0].Chunk.Content)
	assert.Equal(t, "partial", hits[1].Chunk.Content)
}

func TestHybridSearchRespectsFundFilter(t *testing.T) {
	source := &fakeChunkSource{chunks: []model.DocumentChunk{
		chunk(1, uintPtr(7), 0, "fund seven", []float32{1, 0}),
		chunk(2, uintPtr(8), 0, "fund eight", []float32{1, 0}),
	}}
	index := NewIndex(source, &fakeEmbedder{vec: []float32{1, 0}})

	hits, err := index.Search(context.Background(), "report", 5, Filters{FundID: uintPtr(7)}, BackendHybrid)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "fund seven", hits[0].Chunk.Content)
}

func TestAutoBackendSelection(t *testing.T) {
	source := &fakeChunkSource{chunks: []model.DocumentChunk{
		chunk(1, uintPtr(7), 0, "fund seven", []float32{1, 0}),
		chunk(2, uintPtr(8), 0, "fund eight", []float32{1, 0}),
	}}
	index := NewIndex(source, &fakeEmbedder{vec: []float32{1, 0}})

	// With a fund filter, auto behaves as hybrid.
	hits, err := index.Search(context.Background(), "report", 5, Filters{FundID: uintPtr(8)}, BackendAuto)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "fund eight", hits[0].Chunk.Content)

	// Without one, auto is pure vector over everything.
	hits, err = index.Search(context.Background(), "report", 5, Filters{}, BackendAuto)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestKeywordSearchScoresTermFraction(t *testing.T) {
	source := &fakeChunkSource{chunks: []model.DocumentChunk{
		chunk(1, nil, 0, "capital call notice for the fund", nil),
		chunk(1, nil, 1, "capital account statement", nil),
		chunk(1, nil, 2, "portfolio company update", nil),
	}}
	index := NewIndex(source, &fakeEmbedder{})

	hits, err := index.Search(context.Background(), "capital call", 5, Filters{}, BackendKeyword)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].Chunk.ChunkIndex)
	assert.InDelta(t, 1.0, float64(hits[0].Score), 1e-6)
	assert.InDelta(t, 0.5, float64(hits[1].Score), 1e-6)
}

func TestSearchTieBreakIsDeterministic(t *testing.T) {
	// Identical scores order by document id, then chunk ordinal.
	source := &fakeChunkSource{chunks: []model.DocumentChunk{
		chunk(2, nil, 1, "b", []float32{1, 0}),
		chunk(1, nil, 1, "a2", []float32{1, 0}),
		chunk(2, nil, 0, "c", []float32{1, 0}),
		chunk(1, nil, 0, "a1", []float32{1, 0}),
	}}
	index := NewIndex(source, &fakeEmbedder{vec: []float32{1, 0}})

	for i := 0; i < 3; i++ {
		hits, err := index.Search(context.Background(), "same", 4, Filters{}, BackendVector)
		require.NoError(t, err)
		require.Len(t, hits, 4)
		assert.Equal(t, "a1", hits[0].Chunk.Content)
		assert.Equal(t, "a2", hits[1].Chunk.Content)
		assert.Equal(t, "c", hits[2].Chunk.Content)
		assert.Equal(t, "b", hits[3].Chunk.Content)
	}
}

func TestSearchRejectsEmptyQueryAndUnknownBackend(t *testing.T) {
	index := NewIndex(&fakeChunkSource{}, &fakeEmbedder{})

	_, err := index.Search(context.Background(), "   ", 5, Filters{}, BackendVector)
	assert.Error(t, err)

	_, err = index.Search(context.Background(), "q", 5, Filters{}, Backend("graph"))
	assert.Error(t, err)
}
