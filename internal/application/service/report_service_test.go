package service

import (
	"context"
	"net/http"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/closeday-api/internal/domain/entity"
	"github.com/sangkips/closeday-api/internal/domain/repository"
	"github.com/sangkips/closeday-api/pkg/apperror"
	"github.com/sangkips/closeday-api/pkg/posvendor"
)

// fakeReportRepo is an in-memory DailyReportRepository keyed by date.
type fakeReportRepo struct {
	reports map[string]entity.DailyReport
	upserts int
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[string]entity.DailyReport)}
}

func (f *fakeReportRepo) GetByDate(ctx context.Context, date string) (*entity.DailyReport, error) {
	if r, ok := f.reports[date]; ok {
		copied := r
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeReportRepo) FindLatestBefore(ctx context.Context, date string) (*entity.DailyReport, error) {
	var best *entity.DailyReport
	for d, r := range f.reports {
		if d >= date {
			continue
		}
		if best == nil || d > best.Date {
			copied := r
			best = &copied
		}
	}
	return best, nil
}

func (f *fakeReportRepo) UpsertByDate(ctx context.Context, report *entity.DailyReport) error {
	f.upserts++
	f.reports[report.Date] = *report
	return nil
}

func (f *fakeReportRepo) List(ctx context.Context, params *repository.ReportFilterParams) ([]entity.DailyReport, int64, error) {
	var out []entity.DailyReport
	for _, r := range f.reports {
		if params.StartDate != "" && r.Date < params.StartDate {
			continue
		}
		if params.EndDate != "" && r.Date > params.EndDate {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if params.SortOrder == "asc" {
			return out[i].Date < out[j].Date
		}
		return out[i].Date > out[j].Date
	})
	return out, int64(len(out)), nil
}

func (f *fakeReportRepo) ListBetween(ctx context.Context, start, end string) ([]entity.DailyReport, error) {
	var out []entity.DailyReport
	for _, r := range f.reports {
		if r.Date >= start && r.Date <= end {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func newTestReportService(repo *fakeReportRepo, src *fakeSource) *ReportService {
	return NewReportService(repo, newTestRecon(src), 1000)
}

func syncSource() *fakeSource {
	return &fakeSource{
		paymentTypes: map[string]posvendor.PaymentType{
			"pt-cash": {ID: "pt-cash", Name: "Cash"},
			"pt-visa": {ID: "pt-visa", Name: "Visa Card"},
		},
		pages: map[string]*posvendor.ReceiptPage{
			"": {
				Receipts: []map[string]interface{}{
					{
						"status": "closed",
						"payments": []interface{}{
							map[string]interface{}{"payment_type_id": "pt-cash", "money_amount": 300.0},
							map[string]interface{}{"payment_type_id": "pt-visa", "money_amount": 200.0},
						},
					},
				},
			},
		},
	}
}

func TestSyncDate(t *testing.T) {
	t.Run("creates a report and carries forward counted cash", func(t *testing.T) {
		repo := newFakeReportRepo()
		counted := dec("1250")
		repo.reports["2026-01-14"] = entity.DailyReport{
			Date:              "2026-01-14",
			ActualCashCounted: &counted,
			ExpectedCash:      dec("1300"),
		}

		svc := newTestReportService(repo, syncSource())
		report, err := svc.SyncDate(context.Background(), "2026-01-15")
		require.NoError(t, err)

		assert.Equal(t, "2026-01-15", report.Date)
		assert.Equal(t, "300.00", report.CashTotal.StringFixed(2))
		assert.Equal(t, "200.00", report.CardTotal.StringFixed(2))
		assert.Equal(t, "500.00", report.NetSale.StringFixed(2))
		assert.Equal(t, 1, report.TotalOrders)

		require.NotNil(t, report.OpeningCash)
		assert.Equal(t, "1250.00", report.OpeningCash.StringFixed(2), "counted cash wins over expected")
		assert.Equal(t, "1750.00", report.ExpectedCash.StringFixed(2))
		assert.Equal(t, 1, repo.upserts)
	})

	t.Run("falls back to prior expected cash", func(t *testing.T) {
		repo := newFakeReportRepo()
		repo.reports["2026-01-14"] = entity.DailyReport{
			Date:         "2026-01-14",
			ExpectedCash: dec("800"),
		}

		svc := newTestReportService(repo, syncSource())
		report, err := svc.SyncDate(context.Background(), "2026-01-15")
		require.NoError(t, err)

		require.NotNil(t, report.OpeningCash)
		assert.Equal(t, "800.00", report.OpeningCash.StringFixed(2))
	})

	t.Run("first report ever opens at zero", func(t *testing.T) {
		repo := newFakeReportRepo()

		svc := newTestReportService(repo, syncSource())
		report, err := svc.SyncDate(context.Background(), "2026-01-15")
		require.NoError(t, err)

		require.NotNil(t, report.OpeningCash)
		assert.True(t, report.OpeningCash.IsZero())
	})

	t.Run("preserves manual fields on resync", func(t *testing.T) {
		repo := newFakeReportRepo()
		opening := dec("999")
		repo.reports["2026-01-15"] = entity.DailyReport{
			Date:        "2026-01-15",
			Expense:     dec("100"),
			Tip:         dec("10"),
			OpeningCash: &opening,
			CashTotal:   dec("1"),
		}

		svc := newTestReportService(repo, syncSource())
		report, err := svc.SyncDate(context.Background(), "2026-01-15")
		require.NoError(t, err)

		assert.Equal(t, "100.00", report.Expense.StringFixed(2))
		assert.Equal(t, "10.00", report.Tip.StringFixed(2))
		require.NotNil(t, report.OpeningCash)
		assert.Equal(t, "999.00", report.OpeningCash.StringFixed(2), "existing opening cash is never recomputed")
		assert.Equal(t, "300.00", report.CashTotal.StringFixed(2), "synced fields are overwritten")
	})
}

func TestSaveReport(t *testing.T) {
	t.Run("merges manual entries and derives settlement", func(t *testing.T) {
		repo := newFakeReportRepo()
		repo.reports["2026-01-15"] = entity.DailyReport{
			Date:      "2026-01-15",
			CashTotal: dec("3500"),
			CardTotal: dec("1500"),
			NetSale:   dec("5000"),
		}

		svc := newTestReportService(repo, &fakeSource{})
		expense := dec("200")
		tip := dec("50")
		opening := dec("1000")
		counted := dec("1250")
		count := 2.0

		report, err := svc.SaveReport(context.Background(), "2026-01-15", &SaveReportInput{
			Expense:           &expense,
			Tip:               &tip,
			SafeBoxCount:      &count,
			OpeningCash:       &opening,
			ActualCashCounted: &counted,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(2), report.SafeBoxQty)
		assert.Equal(t, "2000.00", report.SafeBoxAmount.StringFixed(2))
		assert.Equal(t, "1000 x 2", report.SafeBoxLabel)
		assert.Equal(t, "6000.00", report.ExpectedCash.StringFixed(2))
		assert.Equal(t, "1050.00", report.Difference.StringFixed(2))
	})

	t.Run("fractional safe box count is floored", func(t *testing.T) {
		repo := newFakeReportRepo()
		svc := newTestReportService(repo, &fakeSource{})
		count := 5.9

		report, err := svc.SaveReport(context.Background(), "2026-01-15", &SaveReportInput{
			SafeBoxCount: &count,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(5), report.SafeBoxQty)
		assert.Equal(t, "5000.00", report.SafeBoxAmount.StringFixed(2))
	})

	t.Run("negative amount is rejected with the field name", func(t *testing.T) {
		repo := newFakeReportRepo()
		svc := newTestReportService(repo, &fakeSource{})
		expense := dec("-1")

		_, err := svc.SaveReport(context.Background(), "2026-01-15", &SaveReportInput{
			Expense: &expense,
		})
		require.Error(t, err)
		assert.True(t, apperror.IsValidationError(err))

		appErr := apperror.GetAppError(err)
		require.Len(t, appErr.Errors, 1)
		assert.Equal(t, "expense", appErr.Errors[0].Field)
		assert.Equal(t, 0, repo.upserts, "nothing may be written on validation failure")
	})

	t.Run("invalid date is rejected", func(t *testing.T) {
		svc := newTestReportService(newFakeReportRepo(), &fakeSource{})

		_, err := svc.SaveReport(context.Background(), "2026-13-01", &SaveReportInput{})
		require.Error(t, err)
		assert.True(t, apperror.IsValidationError(err))
	})
}

func TestGetReport(t *testing.T) {
	repo := newFakeReportRepo()
	repo.reports["2026-01-15"] = entity.DailyReport{Date: "2026-01-15", NetSale: dec("500")}
	svc := newTestReportService(repo, &fakeSource{})

	report, err := svc.GetReport(context.Background(), "2026-01-15")
	require.NoError(t, err)
	assert.Equal(t, "500.00", report.NetSale.StringFixed(2))

	_, err = svc.GetReport(context.Background(), "2026-01-16")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func TestPeriodSummary(t *testing.T) {
	repo := newFakeReportRepo()
	repo.reports["2026-01-14"] = entity.DailyReport{
		Date: "2026-01-14", CashTotal: dec("1000"), CardTotal: dec("500"),
		Expense: dec("100"), Tip: dec("50"), SafeBoxAmount: dec("2000"),
		TotalOrders: 40, Difference: dec("-20"),
	}
	repo.reports["2026-01-15"] = entity.DailyReport{
		Date: "2026-01-15", CashTotal: dec("800"), CardTotal: dec("300"),
		Expense: dec("20"), Tip: dec("10"), SafeBoxAmount: dec("1000"),
		TotalOrders: 30, Difference: dec("50"),
	}
	// Outside the range, must be ignored.
	repo.reports["2026-01-20"] = entity.DailyReport{
		Date: "2026-01-20", CashTotal: dec("9999"),
	}
	svc := newTestReportService(repo, &fakeSource{})

	t.Run("aggregates stored reports in range", func(t *testing.T) {
		got, err := svc.PeriodSummary(context.Background(), "2026-01-14", "2026-01-15")
		require.NoError(t, err)

		assert.Equal(t, 2, got.Days)
		assert.Equal(t, "1800.00", got.CashTotal.StringFixed(2))
		assert.Equal(t, "800.00", got.CardTotal.StringFixed(2))
		assert.Equal(t, "120.00", got.ExpenseTotal.StringFixed(2))
		assert.Equal(t, "60.00", got.TipTotal.StringFixed(2))
		assert.Equal(t, "3000.00", got.SafeBoxTotal.StringFixed(2))
		assert.Equal(t, "2600.00", got.RevenueTotal.StringFixed(2))
		assert.Equal(t, 70, got.TotalOrders)
		assert.Equal(t, "30.00", got.DifferenceTotal.StringFixed(2))
	})

	t.Run("empty range yields zero days", func(t *testing.T) {
		got, err := svc.PeriodSummary(context.Background(), "2026-02-01", "2026-02-28")
		require.NoError(t, err)
		assert.Equal(t, 0, got.Days)
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		_, err := svc.PeriodSummary(context.Background(), "2026-01-15", "2026-01-14")
		require.Error(t, err)
		assert.True(t, apperror.IsValidationError(err))
	})
}

func TestListReports(t *testing.T) {
	repo := newFakeReportRepo()
	repo.reports["2026-01-14"] = entity.DailyReport{Date: "2026-01-14"}
	repo.reports["2026-01-15"] = entity.DailyReport{Date: "2026-01-15"}
	svc := newTestReportService(repo, &fakeSource{})

	t.Run("defaults applied when params absent", func(t *testing.T) {
		result, err := svc.ListReports(context.Background(), &repository.ReportFilterParams{})
		require.NoError(t, err)

		assert.Len(t, result.Items, 2)
		assert.Equal(t, "2026-01-15", result.Items[0].Date, "newest first by default")
		assert.Equal(t, int64(2), result.Pagination.Total)
	})

	t.Run("invalid bound is rejected", func(t *testing.T) {
		_, err := svc.ListReports(context.Background(), &repository.ReportFilterParams{StartDate: "nope"})
		require.Error(t, err)
		assert.True(t, apperror.IsValidationError(err))
	})
}
