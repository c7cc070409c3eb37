package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"fundlens/internal/app"
	"fundlens/internal/ingest/tabular"
	"fundlens/internal/pkg/pdfextract"
	"fundlens/internal/search"
	"fundlens/internal/transport/http/response"
)

const maxPDFSize = 25 << 20 // 25 MB

type DocumentHandler struct {
	ingestService   *app.IngestService
	documentService *app.DocumentService
}

type IntakeDocumentRequest struct {
	FileName string             `json:"file_name" binding:"required"`
	FundName string             `json:"fund_name"`
	Tables   []tabular.RawTable `json:"tables"`
	Pages    []search.PageText  `json:"pages"`
}

func NewDocumentHandler(ingestService *app.IngestService, documentService *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{ingestService: ingestService, documentService: documentService}
}

// Intake accepts pre-extracted document content (tables plus page text) and
// enqueues it for processing.
func (h *DocumentHandler) Intake(c *gin.Context) {
	var req IntakeDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	doc, err := h.ingestService.Intake(c.Request.Context(), app.IntakeInput{
		FileName: req.FileName,
		FundName: req.FundName,
		Tables:   req.Tables,
		Pages:    req.Pages,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "document intake failed")
		}
		return
	}

	c.JSON(http.StatusAccepted, response.APIResponse{
		Code:    response.CodeOK,
		Message: "accepted",
		Data:    doc,
	})
}

// Upload accepts a multipart form with "file" (PDF) and optional "fund_name",
// extracts page text and enqueues the document.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxPDFSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 25MB)")
		return
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "only PDF files are allowed")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	pages, err := pdfextract.ExtractPages(f)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to extract text from PDF: "+err.Error())
		return
	}

	doc, err := h.ingestService.Intake(c.Request.Context(), app.IntakeInput{
		FileName: file.Filename,
		FundName: strings.TrimSpace(c.PostForm("fund_name")),
		Pages:    pages,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "document intake failed")
		}
		return
	}

	c.JSON(http.StatusAccepted, response.APIResponse{
		Code:    response.CodeOK,
		Message: "accepted",
		Data:    doc,
	})
}

func (h *DocumentHandler) List(c *gin.Context) {
	var fundID *uint
	if raw := c.Query("fund_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid fund_id")
			return
		}
		id := uint(parsed)
		fundID = &id
	}

	docs, err := h.documentService.List(fundID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

// Get returns the document's processing state plus any tables the classifier
// left untyped.
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	doc, unclassified, err := h.documentService.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get document failed")
		}
		return
	}

	response.OK(c, gin.H{
		"document":            doc,
		"unclassified_tables": unclassified,
	})
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	u, err := strconv.ParseUint(c.Param(key), 10, 64)
	return uint(u), err
}
