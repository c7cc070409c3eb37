package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fundlens/internal/app"
	"fundlens/internal/transport/http/response"
)

type FundHandler struct {
	fundService    *app.FundService
	metricsService *app.MetricsService
}

type UpdateFundRequest struct {
	GPName      *string          `json:"gp_name"`
	VintageYear *int             `json:"vintage_year"`
	FundType    *string          `json:"fund_type"`
	NAV         *decimal.Decimal `json:"nav"`
}

func NewFundHandler(fundService *app.FundService, metricsService *app.MetricsService) *FundHandler {
	return &FundHandler{fundService: fundService, metricsService: metricsService}
}

func (h *FundHandler) List(c *gin.Context) {
	funds, err := h.fundService.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list funds failed")
		return
	}
	response.OK(c, funds)
}

func (h *FundHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid fund id")
		return
	}

	fund, err := h.fundService.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrFundNotFound):
			response.Error(c, http.StatusNotFound, response.CodeFundNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get fund failed")
		}
		return
	}
	response.OK(c, fund)
}

func (h *FundHandler) Update(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid fund id")
		return
	}

	var req UpdateFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	fund, err := h.fundService.UpdateMetadata(id, app.FundMetadataUpdate{
		GPName:      req.GPName,
		VintageYear: req.VintageYear,
		FundType:    req.FundType,
		NAV:         req.NAV,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrFundNotFound):
			response.Error(c, http.StatusNotFound, response.CodeFundNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update fund failed")
		}
		return
	}
	response.OK(c, fund)
}

// Metrics computes the fund's performance snapshot. An optional as_of query
// parameter (YYYY-MM-DD) restricts the snapshot to transactions on or before
// that date.
func (h *FundHandler) Metrics(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid fund id")
		return
	}

	var asOf time.Time
	if raw := c.Query("as_of"); raw != "" {
		asOf, err = time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid as_of date, want YYYY-MM-DD")
			return
		}
	}

	snapshot, err := h.metricsService.Snapshot(id, asOf)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrFundNotFound):
			response.Error(c, http.StatusNotFound, response.CodeFundNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "compute metrics failed")
		}
		return
	}
	response.OK(c, snapshot)
}

// Historical returns the fund's dated cash-flow timeline with cumulative
// paid-in/distributed positions and the ratio series, for charting.
func (h *FundHandler) Historical(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid fund id")
		return
	}

	history, err := h.metricsService.Historical(id)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrFundNotFound):
			response.Error(c, http.StatusNotFound, response.CodeFundNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "load historical data failed")
		}
		return
	}
	response.OK(c, history)
}

// Compare ranks 2 to 10 funds side-by-side. fund_ids is a comma-separated
// list of ids.
func (h *FundHandler) Compare(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("fund_ids"))
	if raw == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "fund_ids query parameter is required")
		return
	}

	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || id == 0 {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid fund_ids, want comma-separated ids")
			return
		}
		ids = append(ids, uint(id))
	}

	comparison, err := h.metricsService.Compare(ids)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrFundNotFound):
			response.Error(c, http.StatusNotFound, response.CodeFundNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "compare funds failed")
		}
		return
	}
	response.OK(c, comparison)
}

func (h *FundHandler) Transactions(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid fund id")
		return
	}

	txs, err := h.fundService.Transactions(id, c.Query("type"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrFundNotFound):
			response.Error(c, http.StatusNotFound, response.CodeFundNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list transactions failed")
		}
		return
	}
	response.OK(c, txs)
}
