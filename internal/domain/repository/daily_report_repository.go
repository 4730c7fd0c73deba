package repository

import (
	"context"

	"github.com/sangkips/closeday-api/internal/domain/entity"
	"github.com/sangkips/closeday-api/pkg/pagination"
)

// ReportFilterParams represents filter parameters for listing daily reports.
// StartDate and EndDate are inclusive YYYY-MM-DD bounds.
type ReportFilterParams struct {
	Pagination *pagination.PaginationParams
	StartDate  string
	EndDate    string
	SortOrder  string
}

// DailyReportRepository defines the interface for daily report data access.
// Reports are keyed by calendar date; UpsertByDate delegates conflict
// resolution on the unique date key to the storage layer (last writer wins).
type DailyReportRepository interface {
	GetByDate(ctx context.Context, date string) (*entity.DailyReport, error)
	// FindLatestBefore returns the report with the greatest date strictly
	// before the given date, or nil when none exists. Used for the
	// opening-cash carry-forward.
	FindLatestBefore(ctx context.Context, date string) (*entity.DailyReport, error)
	UpsertByDate(ctx context.Context, report *entity.DailyReport) error
	List(ctx context.Context, params *ReportFilterParams) ([]entity.DailyReport, int64, error)
	// ListBetween returns all reports with start <= date <= end in
	// ascending date order.
	ListBetween(ctx context.Context, start, end string) ([]entity.DailyReport, error)
}
