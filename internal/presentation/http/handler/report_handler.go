package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/closeday-api/internal/application/service"
	"github.com/sangkips/closeday-api/internal/domain/repository"
	"github.com/sangkips/closeday-api/internal/presentation/http/dto/request"
	"github.com/sangkips/closeday-api/internal/presentation/http/dto/response"
	"github.com/sangkips/closeday-api/pkg/pagination"
)

// ReportHandler handles daily report HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Get handles retrieving the report for a date
func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.reportService.GetReport(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Report retrieved successfully", report)
}

// Save handles merging manual closing entries into a date's report
func (h *ReportHandler) Save(c *gin.Context) {
	var req request.SaveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	report, err := h.reportService.SaveReport(c.Request.Context(), c.Param("date"), req.ToInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Report saved successfully", report)
}

// Sync handles running vendor reconciliation for a date and persisting the
// refreshed figures
func (h *ReportHandler) Sync(c *gin.Context) {
	report, err := h.reportService.SyncDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Report synced successfully", report)
}

// List handles listing reports with optional date bounds
func (h *ReportHandler) List(c *gin.Context) {
	var query request.ListReportsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.ReportFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    query.Page,
			PerPage: query.PerPage,
		},
		StartDate: query.StartDate,
		EndDate:   query.EndDate,
		SortOrder: query.SortOrder,
	}

	result, err := h.reportService.ListReports(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Reports retrieved successfully", result)
}

// PeriodSummary handles aggregating stored reports over a date range
func (h *ReportHandler) PeriodSummary(c *gin.Context) {
	var query request.PeriodSummaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "start_date and end_date query parameters are required")
		return
	}

	summary, err := h.reportService.PeriodSummary(c.Request.Context(), query.StartDate, query.EndDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Period summary calculated successfully", summary)
}
