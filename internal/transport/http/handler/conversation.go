package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fundlens/internal/app"
	"fundlens/internal/transport/http/response"
)

type ConversationHandler struct {
	conversationService *app.ConversationService
}

type CreateConversationRequest struct {
	FundID *uint  `json:"fund_id"`
	Title  string `json:"title" binding:"max=256"`
}

func NewConversationHandler(conversationService *app.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

func (h *ConversationHandler) Create(c *gin.Context) {
	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	conv, err := h.conversationService.Create(req.FundID, req.Title)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrFundNotFound):
			response.Error(c, http.StatusNotFound, response.CodeFundNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create conversation failed")
		}
		return
	}
	response.OK(c, conv)
}

type UpdateConversationRequest struct {
	FundID *uint `json:"fund_id"`
}

// Update repins the conversation's fund context. A null fund_id clears the
// pin, so following turns resolve the fund from the query text alone.
func (h *ConversationHandler) Update(c *gin.Context) {
	conversationID := c.Param("id")
	if conversationID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid conversation id")
		return
	}

	var req UpdateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if err := h.conversationService.SetFund(conversationID, req.FundID); err != nil {
		switch {
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		case errors.Is(err, app.ErrFundNotFound):
			response.Error(c, http.StatusNotFound, response.CodeFundNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update conversation failed")
		}
		return
	}
	response.OK(c, gin.H{"conversation_id": conversationID, "fund_id": req.FundID})
}

func (h *ConversationHandler) List(c *gin.Context) {
	convs, err := h.conversationService.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list conversations failed")
		return
	}
	response.OK(c, convs)
}

func (h *ConversationHandler) Get(c *gin.Context) {
	conversationID := c.Param("id")
	if conversationID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid conversation id")
		return
	}

	conv, messages, err := h.conversationService.Get(conversationID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get conversation failed")
		}
		return
	}
	response.OK(c, gin.H{
		"conversation": conv,
		"messages":     messages,
	})
}

func (h *ConversationHandler) Delete(c *gin.Context) {
	conversationID := c.Param("id")
	if conversationID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid conversation id")
		return
	}

	if err := h.conversationService.Delete(conversationID); err != nil {
		switch {
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete conversation failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_conversation_id": conversationID})
}
