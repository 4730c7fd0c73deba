package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/closeday-api/internal/application/service"
	"github.com/sangkips/closeday-api/internal/presentation/http/dto/request"
	"github.com/sangkips/closeday-api/internal/presentation/http/dto/response"
)

// SalesHandler handles sales preview and calculation HTTP requests
type SalesHandler struct {
	reconService *service.ReconciliationService
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(reconService *service.ReconciliationService) *SalesHandler {
	return &SalesHandler{reconService: reconService}
}

// GetDailySales handles fetching a date's live sales summary from the vendor
// feed without persisting anything
func (h *SalesHandler) GetDailySales(c *gin.Context) {
	summary, err := h.reconService.FetchSalesSummaryByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales summary retrieved successfully", summary)
}

// CalculatePeriod handles the ad-hoc period calculation over submitted
// per-day figures
func (h *SalesHandler) CalculatePeriod(c *gin.Context) {
	var req request.PeriodCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	summary, err := service.CalculatePeriodBusinessSummary(req.Days)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Period totals calculated successfully", summary)
}

// SummarizeLedger handles totalling the legacy per-transaction ledger form
func (h *SalesHandler) SummarizeLedger(c *gin.Context) {
	var req request.LedgerCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	totals, err := service.SummarizeLedgerEntries(req.Entries)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ledger totals calculated successfully", totals)
}
