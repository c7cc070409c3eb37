package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fundlens/internal/ai"
	"fundlens/internal/search"
	"fundlens/internal/transport/http/response"
)

type SearchHandler struct {
	index *search.Index
	topK  int
}

type SearchRequest struct {
	Query      string `json:"query" binding:"required"`
	FundID     *uint  `json:"fund_id"`
	DocumentID *uint  `json:"document_id"`
	TopK       int    `json:"top_k"`
	Backend    string `json:"backend"` // auto | vector | keyword | hybrid
}

type SearchHit struct {
	DocumentID uint    `json:"document_id"`
	FundID     *uint   `json:"fund_id"`
	ChunkIndex int     `json:"chunk_index"`
	PageNumber int     `json:"page_number"`
	Content    string  `json:"content"`
	Score      float32 `json:"score"`
}

func NewSearchHandler(index *search.Index, topK int) *SearchHandler {
	if topK <= 0 {
		topK = 5
	}
	return &SearchHandler{index: index, topK: topK}
}

func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	k := req.TopK
	if k <= 0 {
		k = h.topK
	}

	hits, err := h.index.Search(
		c.Request.Context(),
		req.Query,
		k,
		search.Filters{FundID: req.FundID, DocumentID: req.DocumentID},
		search.Backend(req.Backend),
	)
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrProviderUnavailable):
			response.Error(c, http.StatusServiceUnavailable, response.CodeProviderUnavailable, "embedding provider unavailable")
		default:
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		}
		return
	}

	results := make([]SearchHit, 0, len(hits))
	for _, hit := range hits {
		results = append(results, SearchHit{
			DocumentID: hit.Chunk.DocumentID,
			FundID:     hit.Chunk.FundID,
			ChunkIndex: hit.Chunk.ChunkIndex,
			PageNumber: hit.Chunk.PageNumber,
			Content:    hit.Chunk.Content,
			Score:      hit.Score,
		})
	}
	response.OK(c, gin.H{"hits": results})
}
