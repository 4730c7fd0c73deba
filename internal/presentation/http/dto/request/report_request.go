package request

import (
	"github.com/shopspring/decimal"

	"github.com/sangkips/closeday-api/internal/application/service"
)

// SaveReportRequest carries the merchant's manual closing entries for one
// date. Every field is optional; absent fields leave stored values alone.
// The 1k_qty alias is kept for older clients that still submit the safe-box
// count under its original name.
type SaveReportRequest struct {
	NetSale           *decimal.Decimal `json:"net_sale"`
	Expense           *decimal.Decimal `json:"expense"`
	Tip               *decimal.Decimal `json:"tip"`
	SafeBoxCount      *float64         `json:"safe_box_count"`
	SafeBoxCountAlias *float64         `json:"1k_qty"`
	OpeningCash       *decimal.Decimal `json:"opening_cash"`
	ActualCashCounted *decimal.Decimal `json:"actual_cash_counted"`
}

// ToInput converts the request into a service input.
func (r *SaveReportRequest) ToInput() *service.SaveReportInput {
	count := r.SafeBoxCount
	if count == nil {
		count = r.SafeBoxCountAlias
	}
	return &service.SaveReportInput{
		NetSale:           r.NetSale,
		Expense:           r.Expense,
		Tip:               r.Tip,
		SafeBoxCount:      count,
		OpeningCash:       r.OpeningCash,
		ActualCashCounted: r.ActualCashCounted,
	}
}

// ListReportsQuery are the query parameters of the report list endpoint.
type ListReportsQuery struct {
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	SortOrder string `form:"sort"`
}

// PeriodSummaryQuery are the query parameters of the stored-report period
// summary endpoint.
type PeriodSummaryQuery struct {
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
}

// PeriodCalculationRequest carries submitted per-day figures for an ad-hoc
// period calculation that does not touch stored reports.
type PeriodCalculationRequest struct {
	Days []service.DayBusinessRow `json:"days" binding:"required"`
}

// LedgerCalculationRequest carries typed ledger entries for the legacy
// per-transaction totals form.
type LedgerCalculationRequest struct {
	Entries []service.LedgerEntry `json:"entries" binding:"required"`
}
