package service

import (
	"strings"

	"github.com/sangkips/closeday-api/internal/domain/entity"
	"github.com/sangkips/closeday-api/pkg/posvendor"
)

// PaymentClass is the settlement bucket a payment line lands in.
type PaymentClass int

const (
	PaymentClassOther PaymentClass = iota
	PaymentClassCash
	PaymentClassCard
)

var cardLabelHints = []string{"CARD", "CREDIT", "DEBIT", "VISA", "MASTER"}

// ClassifyPaymentType classifies a free-text payment label. The test is a
// case-insensitive substring match: anything mentioning cash is cash,
// anything mentioning a card network or card-like tender is card, and
// everything else (loyalty points, vouchers, online wallets) is other. Gift
// cards still say CARD and land in the card bucket.
func ClassifyPaymentType(label string) PaymentClass {
	upper := strings.ToUpper(label)

	if strings.Contains(upper, "CASH") {
		return PaymentClassCash
	}
	for _, hint := range cardLabelHints {
		if strings.Contains(upper, hint) {
			return PaymentClassCard
		}
	}
	return PaymentClassOther
}

// Field-name aliases for the multi-tender payment list and its entries.
var (
	paymentListKeys     = []string{"payments", "payment_list", "tenders", "payment_details"}
	paymentTypeIDKeys   = []string{"payment_type_id", "payment_id", "type_id", "payment_type", "type", "method"}
	paymentLabelKeys    = []string{"name", "payment_type_name", "label", "title"}
	paymentAmountKeys   = []string{"money_amount", "amount", "paid_amount", "payment_amount", "total", "value", "sum"}
	receiptTotalKeys    = []string{"total_money", "total_amount", "total", "amount", "grand_total"}
	receiptTenderedKeys = []string{"payment_type", "payment_type_name", "payment_method", "tender"}
)

// extractPayments yields a receipt's payment entries: every element of an
// explicit multi-tender list, or a single synthesized entry from the
// receipt-level total when no list exists. The payment-type registry, when
// available, replaces raw type IDs with display names so classification sees
// a meaningful label.
func (s *ReconciliationService) extractPayments(receipt map[string]interface{}, types map[string]posvendor.PaymentType) []entity.PaymentEntry {
	tenders := posvendor.ListField(receipt, paymentListKeys...)

	if len(tenders) == 0 {
		// No tender breakdown: synthesize one entry from the receipt total.
		amountVal, ok := posvendor.Field(receipt, receiptTotalKeys...)
		if !ok {
			return nil
		}
		amount := s.normalizer.Normalize(amountVal)
		if amount.IsZero() {
			return nil
		}
		label := posvendor.StringField(receipt, receiptTenderedKeys...)
		label = enrichLabel(label, label, types)
		return []entity.PaymentEntry{{Label: label, Amount: amount}}
	}

	entries := make([]entity.PaymentEntry, 0, len(tenders))
	for _, tender := range tenders {
		amountVal, ok := posvendor.Field(tender, paymentAmountKeys...)
		if !ok {
			continue
		}
		amount := s.normalizer.Normalize(amountVal)
		if amount.IsZero() {
			continue
		}

		label := posvendor.StringField(tender, paymentLabelKeys...)
		typeID := posvendor.StringField(tender, paymentTypeIDKeys...)
		label = enrichLabel(label, typeID, types)

		entries = append(entries, entity.PaymentEntry{Label: label, Amount: amount})
	}
	return entries
}

// enrichLabel resolves a tender's label through the payment-type registry,
// preferring the registry's display name, then its type, then whatever the
// receipt itself carried.
func enrichLabel(label, typeID string, types map[string]posvendor.PaymentType) string {
	if pt, exists := types[typeID]; exists {
		if pt.Name != "" {
			return pt.Name
		}
		if pt.Type != "" {
			return pt.Type
		}
	}
	if label != "" {
		return label
	}
	return typeID
}
