package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/closeday-api/pkg/apperror"
	"github.com/sangkips/closeday-api/pkg/posvendor"
)

// fakeSource is an in-memory ReceiptSource keyed by cursor.
type fakeSource struct {
	pages        map[string]*posvendor.ReceiptPage
	paymentTypes map[string]posvendor.PaymentType
	receiptsErr  error
	typesErr     error
	endless      bool
	calls        int
}

func (f *fakeSource) ListReceipts(ctx context.Context, since, until time.Time, cursor string) (*posvendor.ReceiptPage, error) {
	f.calls++
	if f.receiptsErr != nil {
		return nil, f.receiptsErr
	}
	if f.endless {
		// Never-ending feed: a fresh cursor on every page.
		return &posvendor.ReceiptPage{Cursor: fmt.Sprintf("c%d", f.calls)}, nil
	}
	page, ok := f.pages[cursor]
	if !ok {
		return &posvendor.ReceiptPage{}, nil
	}
	return page, nil
}

func (f *fakeSource) ListPaymentTypes(ctx context.Context) (map[string]posvendor.PaymentType, error) {
	if f.typesErr != nil {
		return nil, f.typesErr
	}
	return f.paymentTypes, nil
}

func newTestRecon(src *fakeSource) *ReconciliationService {
	return NewReconciliationService(src, nil, 1)
}

func TestClassifyPaymentType(t *testing.T) {
	tests := []struct {
		label string
		want  PaymentClass
	}{
		{"Cash", PaymentClassCash},
		{"CASH", PaymentClassCash},
		{"Cash THB", PaymentClassCash},
		{"petty cash", PaymentClassCash},
		{"Visa Card", PaymentClassCard},
		{"Mastercard", PaymentClassCard},
		{"CREDIT", PaymentClassCard},
		{"Debit card", PaymentClassCard},
		{"Gift Card", PaymentClassCard},
		{"Loyalty Points", PaymentClassOther},
		{"Voucher", PaymentClassOther},
		{"PromptPay", PaymentClassOther},
		{"", PaymentClassOther},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPaymentType(tt.label))
		})
	}
}

func TestValidateReportDate(t *testing.T) {
	assert.NoError(t, ValidateReportDate("2026-01-15"))
	assert.NoError(t, ValidateReportDate("2024-02-29"))

	for _, bad := range []string{"", "2026-1-15", "15-01-2026", "2026-02-30", "2026-01-15T00:00:00Z", "summary"} {
		assert.Error(t, ValidateReportDate(bad), bad)
	}
}

func TestFetchSalesSummaryByDate(t *testing.T) {
	paymentTypes := map[string]posvendor.PaymentType{
		"pt-cash": {ID: "pt-cash", Name: "Cash", Type: "CASH"},
		"pt-visa": {ID: "pt-visa", Name: "Visa Card", Type: "CARD"},
	}

	closedReceipt := map[string]interface{}{
		"status": "closed",
		"payments": []interface{}{
			map[string]interface{}{"payment_type_id": "pt-cash", "money_amount": 300.0},
			map[string]interface{}{"payment_type_id": "pt-visa", "money_amount": 200.0},
		},
	}
	voidedReceipt := map[string]interface{}{
		"status": "VOIDED",
		"payments": []interface{}{
			map[string]interface{}{"payment_type_id": "pt-cash", "money_amount": 999.0},
		},
	}
	refundedReceipt := map[string]interface{}{
		"status": "closed",
		"refunds": []interface{}{
			map[string]interface{}{"amount": 100.0},
		},
		"payments": []interface{}{
			map[string]interface{}{"payment_type_id": "pt-cash", "money_amount": 100.0},
		},
	}
	loyaltyReceipt := map[string]interface{}{
		"status": "completed",
		"payments": []interface{}{
			map[string]interface{}{"name": "Loyalty Points", "amount": 50.0},
		},
	}

	t.Run("aggregates completed receipts across pages", func(t *testing.T) {
		src := &fakeSource{
			paymentTypes: paymentTypes,
			pages: map[string]*posvendor.ReceiptPage{
				"": {
					Receipts: []map[string]interface{}{closedReceipt, voidedReceipt},
					Cursor:   "c1",
				},
				"c1": {
					Receipts: []map[string]interface{}{refundedReceipt, loyaltyReceipt},
					Cursor:   "",
				},
			},
		}

		summary, err := newTestRecon(src).FetchSalesSummaryByDate(context.Background(), "2026-01-15")
		require.NoError(t, err)

		assert.Equal(t, "2026-01-15", summary.Date)
		assert.Equal(t, 2, summary.TotalOrders, "voided and refunded receipts must not count")
		assert.Equal(t, "300.00", summary.CashTotal.StringFixed(2))
		assert.Equal(t, "200.00", summary.CardTotal.StringFixed(2))
		assert.Equal(t, "500.00", summary.NetSale.StringFixed(2))
		assert.Equal(t, "50.00", summary.UnclassifiedAmount.StringFixed(2))
		require.Len(t, summary.CashEntries, 1)
		assert.Equal(t, "Cash", summary.CashEntries[0].Label)
		require.Len(t, summary.CardEntries, 1)
		assert.Equal(t, "Visa Card", summary.CardEntries[0].Label)
	})

	t.Run("synthesizes a tender from the receipt total", func(t *testing.T) {
		src := &fakeSource{
			paymentTypes: paymentTypes,
			pages: map[string]*posvendor.ReceiptPage{
				"": {
					Receipts: []map[string]interface{}{
						{
							"status":       "closed",
							"total_money":  450.0,
							"payment_type": "cash",
						},
					},
				},
			},
		}

		summary, err := newTestRecon(src).FetchSalesSummaryByDate(context.Background(), "2026-01-15")
		require.NoError(t, err)

		assert.Equal(t, "450.00", summary.CashTotal.StringFixed(2))
		assert.Equal(t, 1, summary.TotalOrders)
	})

	t.Run("repeated cursor terminates the loop", func(t *testing.T) {
		src := &fakeSource{
			paymentTypes: paymentTypes,
			pages: map[string]*posvendor.ReceiptPage{
				"": {
					Receipts: []map[string]interface{}{closedReceipt},
					Cursor:   "stuck",
				},
				"stuck": {
					Receipts: []map[string]interface{}{loyaltyReceipt},
					Cursor:   "stuck",
				},
			},
		}

		summary, err := newTestRecon(src).FetchSalesSummaryByDate(context.Background(), "2026-01-15")
		require.NoError(t, err)

		assert.Equal(t, 2, summary.TotalOrders)
		assert.Equal(t, 2, src.calls)
	})

	t.Run("page cap fails instead of looping forever", func(t *testing.T) {
		src := &fakeSource{paymentTypes: paymentTypes, endless: true}

		_, err := newTestRecon(src).FetchSalesSummaryByDate(context.Background(), "2026-01-15")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadGateway, apperror.GetAppError(err).Code)
	})

	t.Run("payment types failure degrades to raw labels", func(t *testing.T) {
		src := &fakeSource{
			typesErr: errors.New("registry down"),
			pages: map[string]*posvendor.ReceiptPage{
				"": {
					Receipts: []map[string]interface{}{
						{
							"status": "closed",
							"payments": []interface{}{
								map[string]interface{}{"name": "Cash", "amount": 120.0},
							},
						},
					},
				},
			},
		}

		summary, err := newTestRecon(src).FetchSalesSummaryByDate(context.Background(), "2026-01-15")
		require.NoError(t, err)
		assert.Equal(t, "120.00", summary.CashTotal.StringFixed(2))
	})

	t.Run("missing token is a configuration error", func(t *testing.T) {
		src := &fakeSource{receiptsErr: posvendor.ErrNotConfigured}

		_, err := newTestRecon(src).FetchSalesSummaryByDate(context.Background(), "2026-01-15")
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, apperror.GetAppError(err).Code)
	})

	t.Run("upstream failure is a bad gateway", func(t *testing.T) {
		src := &fakeSource{receiptsErr: errors.New("boom")}

		_, err := newTestRecon(src).FetchSalesSummaryByDate(context.Background(), "2026-01-15")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadGateway, apperror.GetAppError(err).Code)
	})

	t.Run("invalid date is rejected before any fetch", func(t *testing.T) {
		src := &fakeSource{}

		_, err := newTestRecon(src).FetchSalesSummaryByDate(context.Background(), "not-a-date")
		require.Error(t, err)
		assert.True(t, apperror.IsValidationError(err))
		assert.Equal(t, 0, src.calls)
	})
}

func TestIsCompletedReceipt(t *testing.T) {
	tests := []struct {
		name    string
		receipt map[string]interface{}
		want    bool
	}{
		{"no status", map[string]interface{}{}, true},
		{"closed", map[string]interface{}{"status": "closed"}, true},
		{"paid with spaces and caps", map[string]interface{}{"status": " PAID "}, true},
		{"voided status", map[string]interface{}{"status": "voided"}, false},
		{"cancelled status", map[string]interface{}{"status": "Cancelled"}, false},
		{"void timestamp", map[string]interface{}{"cancelled_at": "2026-01-15T10:00:00Z"}, false},
		{"void flag", map[string]interface{}{"is_voided": true}, false},
		{"false void flag", map[string]interface{}{"is_voided": false}, true},
		{"refund flag", map[string]interface{}{"refunded": true}, false},
		{"refund timestamp", map[string]interface{}{"refunded_at": "2026-01-15T10:00:00Z"}, false},
		{"refund collection", map[string]interface{}{"refunds": []interface{}{map[string]interface{}{}}}, false},
		{"empty refund collection", map[string]interface{}{"refunds": []interface{}{}}, true},
		{"unknown status", map[string]interface{}{"status": "pending"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isCompletedReceipt(tt.receipt))
		})
	}
}
