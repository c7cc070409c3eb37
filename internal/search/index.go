// Package search provides chunk retrieval over stored document passages.
// Three composable backends: pure vector similarity, pure keyword matching
// over stored text, and hybrid (vector similarity over a metadata-filtered
// candidate set). Results are ordered by descending score with a
// deterministic tie-break on chunk ordinal.
package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"fundlens/internal/model"
)

type Backend string

const (
	BackendAuto    Backend = "auto"
	BackendVector  Backend = "vector"
	BackendKeyword Backend = "keyword"
	BackendHybrid  Backend = "hybrid"
)

// Filters restricts the candidate set by metadata.
type Filters struct {
	FundID     *uint
	DocumentID *uint
}

type Hit struct {
	Chunk model.DocumentChunk
	Score float32
}

// Embedder is the external embedding capability.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChunkSource lists stored chunks, optionally metadata-filtered.
type ChunkSource interface {
	ListFiltered(fundID, documentID *uint) ([]model.DocumentChunk, error)
}

type Index struct {
	source   ChunkSource
	embedder Embedder
}

func NewIndex(source ChunkSource, embedder Embedder) *Index {
	return &Index{source: source, embedder: embedder}
}

// Search retrieves the top k chunks for the query. BackendAuto picks hybrid
// when a fund filter is present and pure vector otherwise.
func (ix *Index) Search(ctx context.Context, query string, k int, filters Filters, backend Backend) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if k <= 0 {
		k = 5
	}

	if backend == "" || backend == BackendAuto {
		if filters.FundID != nil {
			backend = BackendHybrid
		} else {
			backend = BackendVector
		}
	}

	switch backend {
	case BackendVector:
		return ix.vectorSearch(ctx, query, k, Filters{})
	case BackendKeyword:
		return ix.keywordSearch(query, k, filters)
	case BackendHybrid:
		return ix.vectorSearch(ctx, query, k, filters)
	default:
		return nil, fmt.Errorf("unknown search backend %q", backend)
	}
}

func (ix *Index) vectorSearch(ctx context.Context, query string, k int, filters Filters) ([]Hit, error) {
	chunks, err := ix.source.ListFiltered(filters.FundID, filters.DocumentID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	queryVec, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(chunks))
	for i := range chunks {
		hits = append(hits, Hit{
			Chunk: chunks[i],
			Score: cosineSimilarity(queryVec, chunks[i].EmbeddingVector()),
		})
	}
	return topK(hits, k), nil
}

// keywordSearch scores chunks by the fraction of query terms present in the
// stored text. Chunks matching no terms are dropped.
func (ix *Index) keywordSearch(query string, k int, filters Filters) ([]Hit, error) {
	chunks, err := ix.source.ListFiltered(filters.FundID, filters.DocumentID)
	if err != nil {
		return nil, err
	}

	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	var hits []Hit
	for i := range chunks {
		content := strings.ToLower(chunks[i].Content)
		matched := 0
		for _, term := range terms {
			if strings.Contains(content, term) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		hits = append(hits, Hit{
			Chunk: chunks[i],
			Score: float32(matched) / float32(len(terms)),
		})
	}
	return topK(hits, k), nil
}

func topK(hits []Hit, k int) []Hit {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Chunk.DocumentID != hits[j].Chunk.DocumentID {
			return hits[i].Chunk.DocumentID < hits[j].Chunk.DocumentID
		}
		return hits[i].Chunk.ChunkIndex < hits[j].Chunk.ChunkIndex
	})
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k]
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
