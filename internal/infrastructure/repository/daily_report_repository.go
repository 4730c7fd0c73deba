package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sangkips/closeday-api/internal/domain/entity"
	domainRepo "github.com/sangkips/closeday-api/internal/domain/repository"
)

type dailyReportRepository struct {
	db *gorm.DB
}

// NewDailyReportRepository creates a new daily report repository
func NewDailyReportRepository(db *gorm.DB) domainRepo.DailyReportRepository {
	return &dailyReportRepository{db: db}
}

func (r *dailyReportRepository) GetByDate(ctx context.Context, date string) (*entity.DailyReport, error) {
	var report entity.DailyReport
	err := r.db.WithContext(ctx).First(&report, "date = ?", date).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &report, err
}

func (r *dailyReportRepository) FindLatestBefore(ctx context.Context, date string) (*entity.DailyReport, error) {
	var report entity.DailyReport
	err := r.db.WithContext(ctx).
		Where("date < ?", date).
		Order("date DESC").
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &report, err
}

// UpsertByDate inserts or updates the report row for its date. The unique
// index on date resolves concurrent writers; the last writer wins.
func (r *dailyReportRepository) UpsertByDate(ctx context.Context, report *entity.DailyReport) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"net_sale", "cash_total", "card_total", "total_orders",
			"expense", "tip", "safe_box_qty", "safe_box_total",
			"safe_box_label", "safe_box_amount", "opening_cash",
			"actual_cash_counted", "expected_cash", "difference",
			"updated_at",
		}),
	}).Create(report).Error
}

func (r *dailyReportRepository) List(ctx context.Context, params *domainRepo.ReportFilterParams) ([]entity.DailyReport, int64, error) {
	var reports []entity.DailyReport
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.DailyReport{})
	if params.StartDate != "" {
		query = query.Where("date >= ?", params.StartDate)
	}
	if params.EndDate != "" {
		query = query.Where("date <= ?", params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "date DESC"
	if params.SortOrder == "asc" {
		order = "date ASC"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order(order).
		Find(&reports).Error

	return reports, total, err
}

func (r *dailyReportRepository) ListBetween(ctx context.Context, start, end string) ([]entity.DailyReport, error) {
	var reports []entity.DailyReport
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", start, end).
		Order("date ASC").
		Find(&reports).Error
	return reports, err
}
