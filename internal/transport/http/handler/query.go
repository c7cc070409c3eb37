package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fundlens/internal/ai"
	"fundlens/internal/app"
	"fundlens/internal/transport/http/response"
)

type QueryHandler struct {
	queryService *app.QueryService
}

type QueryRequest struct {
	Query          string `json:"query" binding:"required"`
	FundID         *uint  `json:"fund_id"`
	ConversationID string `json:"conversation_id"`
}

func NewQueryHandler(queryService *app.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

func (h *QueryHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.queryService.Query(c.Request.Context(), app.QueryInput{
		Text:           req.Query,
		FundID:         req.FundID,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrFundNotFound):
			response.Error(c, http.StatusNotFound, response.CodeFundNotFound, err.Error())
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		case errors.Is(err, ai.ErrProviderUnavailable):
			response.Error(c, http.StatusServiceUnavailable, response.CodeProviderUnavailable, "llm provider unavailable")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "query failed")
		}
		return
	}
	response.OK(c, result)
}
