package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sangkips/closeday-api/internal/domain/entity"
	"github.com/sangkips/closeday-api/pkg/apperror"
	"github.com/sangkips/closeday-api/pkg/money"
	"github.com/sangkips/closeday-api/pkg/posvendor"
)

// maxReceiptPages bounds cursor pagination so a misbehaving vendor API can
// never spin the sync into an infinite loop.
const maxReceiptPages = 100

// dateLayout is the strict calendar date format accepted everywhere.
const dateLayout = "2006-01-02"

// ReceiptSource abstracts the vendor POS API so tests can substitute a
// double without environment mutation. posvendor.Client implements it.
type ReceiptSource interface {
	ListReceipts(ctx context.Context, since, until time.Time, cursor string) (*posvendor.ReceiptPage, error)
	ListPaymentTypes(ctx context.Context) (map[string]posvendor.PaymentType, error)
}

// ReconciliationService turns a vendor's heterogeneous receipt feed for one
// calendar date into a normalized DailySalesSummary.
type ReconciliationService struct {
	source     ReceiptSource
	location   *time.Location
	normalizer money.Normalizer
}

// NewReconciliationService creates a new reconciliation service. location is
// the business timezone used to resolve a date's start/end instants; nil
// falls back to a fixed UTC+7 zone. moneyDivisor handles vendors that report
// minor-unit integers (1 = no conversion).
func NewReconciliationService(source ReceiptSource, location *time.Location, moneyDivisor int64) *ReconciliationService {
	if location == nil {
		location = time.FixedZone("UTC+7", 7*60*60)
	}
	if moneyDivisor < 1 {
		moneyDivisor = 1
	}
	return &ReconciliationService{
		source:     source,
		location:   location,
		normalizer: money.Normalizer{Divisor: moneyDivisor},
	}
}

// ValidateReportDate rejects anything that is not a strict, round-trip-valid
// YYYY-MM-DD calendar date.
func ValidateReportDate(date string) error {
	t, err := time.Parse(dateLayout, date)
	if err != nil || t.Format(dateLayout) != date {
		return apperror.NewFieldValidationError("date", "must be a valid calendar date in YYYY-MM-DD format")
	}
	return nil
}

// FetchSalesSummaryByDate fetches the vendor's closed receipts for the date,
// classifies every payment line, extracts discounts and aggregates the
// result. The summary either completes fully or the call fails; a partial
// batch is never returned. Per-receipt anomalies degrade to zero or
// unclassified contributions instead of aborting the batch.
func (s *ReconciliationService) FetchSalesSummaryByDate(ctx context.Context, date string) (*entity.DailySalesSummary, error) {
	if err := ValidateReportDate(date); err != nil {
		return nil, err
	}

	day, err := time.ParseInLocation(dateLayout, date, s.location)
	if err != nil {
		return nil, apperror.NewFieldValidationError("date", "must be a valid calendar date in YYYY-MM-DD format")
	}
	since := day
	until := day.AddDate(0, 0, 1)

	paymentTypes := s.paymentTypes(ctx)

	summary := &entity.DailySalesSummary{
		Date:            date,
		CashEntries:     []entity.PaymentEntry{},
		CardEntries:     []entity.PaymentEntry{},
		DiscountEntries: []entity.DiscountEntry{},
	}

	cursor := ""
	for page := 0; ; page++ {
		if page >= maxReceiptPages {
			return nil, apperror.NewUpstreamError("vendor receipt feed exceeded the pagination limit")
		}

		pageData, err := s.source.ListReceipts(ctx, since, until, cursor)
		if err != nil {
			if errors.Is(err, posvendor.ErrNotConfigured) {
				return nil, apperror.NewConfigurationError("vendor API access token is not configured")
			}
			return nil, apperror.NewUpstreamError("fetching vendor receipts: " + err.Error())
		}

		for _, receipt := range pageData.Receipts {
			if !isCompletedReceipt(receipt) {
				continue
			}
			s.accumulateReceipt(summary, receipt, paymentTypes)
		}

		// An empty or repeated cursor signals end of stream.
		if pageData.Cursor == "" || pageData.Cursor == cursor {
			break
		}
		cursor = pageData.Cursor
	}

	s.finalize(summary)
	return summary, nil
}

// paymentTypes loads the vendor's payment type registry. This endpoint has a
// distinct failure policy: on error the sync proceeds with an empty map and
// classification falls back to the raw tender labels.
func (s *ReconciliationService) paymentTypes(ctx context.Context) map[string]posvendor.PaymentType {
	types, err := s.source.ListPaymentTypes(ctx)
	if err != nil {
		log.Printf("Warning: failed to load vendor payment types, labels will not be enriched: %v", err)
		return map[string]posvendor.PaymentType{}
	}
	return types
}

// accumulateReceipt adds one completed receipt's payments and discounts to
// the running summary. Each entry amount is rounded before accumulation so
// no float drift can build up across hundreds of receipts.
func (s *ReconciliationService) accumulateReceipt(summary *entity.DailySalesSummary, receipt map[string]interface{}, types map[string]posvendor.PaymentType) {
	summary.TotalOrders++

	for _, entry := range s.extractPayments(receipt, types) {
		entry.Amount = money.Round2(entry.Amount)
		switch ClassifyPaymentType(entry.Label) {
		case PaymentClassCash:
			summary.CashEntries = append(summary.CashEntries, entry)
			summary.CashTotal = summary.CashTotal.Add(entry.Amount)
		case PaymentClassCard:
			summary.CardEntries = append(summary.CardEntries, entry)
			summary.CardTotal = summary.CardTotal.Add(entry.Amount)
		default:
			// Unclassified tenders stay out of both headline totals;
			// the consumer is shown the leak instead of absorbing it.
			summary.UnclassifiedAmount = summary.UnclassifiedAmount.Add(entry.Amount)
		}
	}

	for _, d := range s.extractDiscounts(receipt) {
		d.Amount = money.Round2(d.Amount)
		summary.DiscountEntries = append(summary.DiscountEntries, d)
		summary.TotalDiscount = summary.TotalDiscount.Add(d.Amount)
	}
}

// finalize re-rounds every summary value independently and derives net sale.
func (s *ReconciliationService) finalize(summary *entity.DailySalesSummary) {
	summary.CashTotal = money.Round2(summary.CashTotal)
	summary.CardTotal = money.Round2(summary.CardTotal)
	summary.UnclassifiedAmount = money.Round2(summary.UnclassifiedAmount)
	summary.TotalDiscount = money.Round2(summary.TotalDiscount)
	summary.NetSale = money.Round2(summary.CashTotal.Add(summary.CardTotal))
}

// Receipt status/marker aliases observed across vendor API generations.
var (
	receiptStatusKeys = []string{"status", "state", "receipt_status"}

	completedStatuses = map[string]bool{
		"":          true,
		"closed":    true,
		"completed": true,
		"complete":  true,
		"paid":      true,
		"done":      true,
	}

	voidedStatuses = map[string]bool{
		"void":      true,
		"voided":    true,
		"cancel":    true,
		"cancelled": true,
		"canceled":  true,
		"deleted":   true,
	}

	voidTimestampKeys = []string{"cancelled_at", "canceled_at", "voided_at", "deleted_at", "void_at"}
	voidFlagKeys      = []string{"voided", "is_voided", "void", "cancelled", "is_cancelled"}

	refundTimestampKeys  = []string{"refunded_at", "refund_at", "returned_at"}
	refundFlagKeys       = []string{"refunded", "is_refund", "is_refunded", "has_refund"}
	refundCollectionKeys = []string{"refunds", "refunded_line_items", "refund_items", "returns"}
)

// isCompletedReceipt reports whether a receipt counts toward sales. Any void
// or refund marker excludes the whole receipt: partial refunds are not
// prorated. That is a deliberate simplification, covered by tests as policy.
func isCompletedReceipt(receipt map[string]interface{}) bool {
	status := normalizeStatus(posvendor.StringField(receipt, receiptStatusKeys...))

	if voidedStatuses[status] {
		return false
	}
	if posvendor.StringField(receipt, voidTimestampKeys...) != "" {
		return false
	}
	if posvendor.BoolField(receipt, voidFlagKeys...) {
		return false
	}

	if posvendor.BoolField(receipt, refundFlagKeys...) {
		return false
	}
	if posvendor.StringField(receipt, refundTimestampKeys...) != "" {
		return false
	}
	if posvendor.HasNonEmptyList(receipt, refundCollectionKeys...) {
		return false
	}

	return completedStatuses[status]
}

func normalizeStatus(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if r == ' ' || r == '\t' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
