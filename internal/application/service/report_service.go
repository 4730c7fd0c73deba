package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sangkips/closeday-api/internal/domain/entity"
	"github.com/sangkips/closeday-api/internal/domain/repository"
	"github.com/sangkips/closeday-api/pkg/apperror"
	"github.com/sangkips/closeday-api/pkg/money"
	"github.com/sangkips/closeday-api/pkg/pagination"
)

// ReportService handles the daily report lifecycle: syncing sales figures
// from the vendor feed, merging the merchant's manual closing entries and
// keeping the derived settlement fields consistent on every write.
type ReportService struct {
	reportRepo repository.DailyReportRepository
	recon      *ReconciliationService
	noteValue  int64
}

// NewReportService creates a new report service. noteValue is the safe-box
// note denomination; values below 1 fall back to the default.
func NewReportService(reportRepo repository.DailyReportRepository, recon *ReconciliationService, noteValue int64) *ReportService {
	if noteValue < 1 {
		noteValue = DefaultSafeBoxNoteValue
	}
	return &ReportService{
		reportRepo: reportRepo,
		recon:      recon,
		noteValue:  noteValue,
	}
}

// GetReport retrieves the daily report for a date.
func (s *ReportService) GetReport(ctx context.Context, date string) (*entity.DailyReport, error) {
	if err := ValidateReportDate(date); err != nil {
		return nil, err
	}

	report, err := s.reportRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, apperror.NewNotFoundError("Report for " + date)
	}
	return report, nil
}

// SyncDate runs vendor reconciliation for a date and upserts the result into
// that date's report row. Synced fields are overwritten wholesale; manual
// fields already on the row survive untouched. Opening cash is carried
// forward from the most recent prior report on first contact with a date.
func (s *ReportService) SyncDate(ctx context.Context, date string) (*entity.DailyReport, error) {
	summary, err := s.recon.FetchSalesSummaryByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	report, err := s.reportRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if report == nil {
		report = &entity.DailyReport{Date: date}
	}

	report.NetSale = summary.NetSale
	report.CashTotal = summary.CashTotal
	report.CardTotal = summary.CardTotal
	report.TotalOrders = summary.TotalOrders

	if report.OpeningCash == nil {
		opening, err := s.carryForwardOpeningCash(ctx, date)
		if err != nil {
			return nil, err
		}
		report.OpeningCash = &opening
	}

	s.recompute(report)

	if err := s.reportRepo.UpsertByDate(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// SaveReportInput carries the merchant's manual closing entries. Every field
// is optional; absent fields leave the stored value untouched.
type SaveReportInput struct {
	NetSale           *decimal.Decimal
	Expense           *decimal.Decimal
	Tip               *decimal.Decimal
	SafeBoxCount      *float64
	OpeningCash       *decimal.Decimal
	ActualCashCounted *decimal.Decimal
}

func (in *SaveReportInput) validate() error {
	checks := []struct {
		field string
		value *decimal.Decimal
	}{
		{"net_sale", in.NetSale},
		{"expense", in.Expense},
		{"tip", in.Tip},
		{"opening_cash", in.OpeningCash},
		{"actual_cash_counted", in.ActualCashCounted},
	}
	for _, c := range checks {
		if c.value != nil && c.value.IsNegative() {
			return apperror.NewFieldValidationError(c.field, "must be non-negative")
		}
	}
	return nil
}

// SaveReport merges the merchant's manual entries into a date's report and
// recomputes the derived settlement fields. Negative amounts are rejected
// outright; a fractional safe-box count is floored and clamped at zero
// because a note count cannot be partial.
func (s *ReportService) SaveReport(ctx context.Context, date string, input *SaveReportInput) (*entity.DailyReport, error) {
	if err := ValidateReportDate(date); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	report, err := s.reportRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if report == nil {
		report = &entity.DailyReport{Date: date}
	}

	if input.NetSale != nil {
		report.NetSale = money.Round2(*input.NetSale)
	}
	if input.Expense != nil {
		report.Expense = money.Round2(*input.Expense)
	}
	if input.Tip != nil {
		report.Tip = money.Round2(*input.Tip)
	}
	if input.SafeBoxCount != nil {
		qty := NormalizeSafeBoxCount(*input.SafeBoxCount)
		report.SafeBoxQty = qty
		report.SafeBoxTotal = SafeBoxAmount(qty, s.noteValue)
		report.SafeBoxAmount = report.SafeBoxTotal
		report.SafeBoxLabel = SafeBoxLabel(qty, s.noteValue)
	}
	if input.OpeningCash != nil {
		v := money.Round2(*input.OpeningCash)
		report.OpeningCash = &v
	}
	if input.ActualCashCounted != nil {
		v := money.Round2(*input.ActualCashCounted)
		report.ActualCashCounted = &v
	}

	if report.OpeningCash == nil {
		opening, err := s.carryForwardOpeningCash(ctx, date)
		if err != nil {
			return nil, err
		}
		report.OpeningCash = &opening
	}

	s.recompute(report)

	if err := s.reportRepo.UpsertByDate(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports lists daily reports, optionally bounded by an inclusive date
// range, newest first by default.
func (s *ReportService) ListReports(ctx context.Context, params *repository.ReportFilterParams) (*pagination.PaginatedResult[entity.DailyReport], error) {
	if params.StartDate != "" {
		if err := ValidateReportDate(params.StartDate); err != nil {
			return nil, apperror.NewFieldValidationError("start_date", "must be a valid calendar date in YYYY-MM-DD format")
		}
	}
	if params.EndDate != "" {
		if err := ValidateReportDate(params.EndDate); err != nil {
			return nil, apperror.NewFieldValidationError("end_date", "must be a valid calendar date in YYYY-MM-DD format")
		}
	}
	if params.StartDate != "" && params.EndDate != "" && params.EndDate < params.StartDate {
		return nil, apperror.NewFieldValidationError("end_date", "must not be before start_date")
	}

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	reports, total, err := s.reportRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(reports, pag), nil
}

// PeriodReportSummary aggregates the stored reports of an inclusive date
// range. Days counts only dates that have a report row; missing dates
// contribute nothing rather than zero-filled phantom days.
type PeriodReportSummary struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	PeriodBusinessSummary
	TotalOrders     int             `json:"total_orders"`
	DifferenceTotal decimal.Decimal `json:"difference_total"`
}

// PeriodSummary sums the stored reports between start and end (inclusive).
func (s *ReportService) PeriodSummary(ctx context.Context, start, end string) (*PeriodReportSummary, error) {
	if err := ValidateReportDate(start); err != nil {
		return nil, apperror.NewFieldValidationError("start_date", "must be a valid calendar date in YYYY-MM-DD format")
	}
	if err := ValidateReportDate(end); err != nil {
		return nil, apperror.NewFieldValidationError("end_date", "must be a valid calendar date in YYYY-MM-DD format")
	}
	if end < start {
		return nil, apperror.NewFieldValidationError("end_date", "must not be before start_date")
	}

	reports, err := s.reportRepo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	rows := make([]DayBusinessRow, 0, len(reports))
	orders := 0
	var difference decimal.Decimal
	for _, r := range reports {
		rows = append(rows, DayBusinessRow{
			CashSales:     r.CashTotal,
			CardSales:     r.CardTotal,
			Expenses:      r.Expense,
			Tips:          r.Tip,
			SafeBoxAmount: r.SafeBoxAmount,
		})
		orders += r.TotalOrders
		difference = difference.Add(r.Difference)
	}

	totals, err := CalculatePeriodBusinessSummary(rows)
	if err != nil {
		return nil, err
	}

	return &PeriodReportSummary{
		StartDate:             start,
		EndDate:               end,
		PeriodBusinessSummary: *totals,
		TotalOrders:           orders,
		DifferenceTotal:       money.Round2(difference),
	}, nil
}

// carryForwardOpeningCash resolves a new report's opening cash from the most
// recent prior report: its counted closing cash when the count happened,
// otherwise its expected cash, otherwise zero for the very first report.
func (s *ReportService) carryForwardOpeningCash(ctx context.Context, date string) (decimal.Decimal, error) {
	prior, err := s.reportRepo.FindLatestBefore(ctx, date)
	if err != nil {
		return decimal.Zero, err
	}
	if prior == nil {
		return decimal.Zero, nil
	}
	if prior.ActualCashCounted != nil {
		return money.Round2(*prior.ActualCashCounted), nil
	}
	return money.Round2(prior.ExpectedCash), nil
}

// recompute refreshes the derived settlement fields from the report's
// stored figures.
func (s *ReportService) recompute(report *entity.DailyReport) {
	var netSale *decimal.Decimal
	if !report.NetSale.IsZero() {
		netSale = &report.NetSale
	}

	opening := decimal.Zero
	if report.OpeningCash != nil {
		opening = *report.OpeningCash
	}
	counted := decimal.Zero
	if report.ActualCashCounted != nil {
		counted = *report.ActualCashCounted
	}

	derived := CalculateReportValues(ReportFigures{
		OpeningCash:       opening,
		NetSale:           netSale,
		CashTotal:         report.CashTotal,
		CardTotal:         report.CardTotal,
		Expense:           report.Expense,
		ActualCashCounted: counted,
		SafeBoxAmount:     report.SafeBoxAmount,
	})

	report.NetSale = derived.NetSale
	report.ExpectedCash = derived.ExpectedCash
	report.Difference = derived.Difference
}
