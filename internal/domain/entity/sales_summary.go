package entity

import "github.com/shopspring/decimal"

// PaymentEntry is a single classified payment line extracted from a vendor
// receipt. Label is the free-text classification hint (payment type name).
type PaymentEntry struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// DiscountEntry is a discount extracted from a receipt or one of its line
// items. Amount is always a positive magnitude; Percentage is nil when no
// explicit or inferable percentage exists.
type DiscountEntry struct {
	Amount     decimal.Decimal  `json:"amount"`
	Percentage *decimal.Decimal `json:"percentage"`
}

// DailySalesSummary is the reconciliation engine's output for one calendar
// date. It is a value object, never persisted directly: the report service
// copies its synced fields into the DailyReport row.
//
// Invariants: CashTotal = Σ CashEntries, CardTotal = Σ CardEntries,
// NetSale = CashTotal + CardTotal, all values rounded to 2 places.
// UnclassifiedAmount holds payments that matched neither cash nor card and
// is deliberately excluded from both headline totals so the leak stays
// visible to the consumer.
type DailySalesSummary struct {
	Date               string          `json:"date"`
	CashTotal          decimal.Decimal `json:"cash_total"`
	CardTotal          decimal.Decimal `json:"card_total"`
	NetSale            decimal.Decimal `json:"net_sale"`
	TotalOrders        int             `json:"total_orders"`
	UnclassifiedAmount decimal.Decimal `json:"unclassified_amount"`
	CashEntries        []PaymentEntry  `json:"cash_entries"`
	CardEntries        []PaymentEntry  `json:"card_entries"`
	TotalDiscount      decimal.Decimal `json:"total_discount"`
	DiscountEntries    []DiscountEntry `json:"discount_entries"`
}
