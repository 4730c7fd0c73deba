package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sangkips/closeday-api/pkg/apperror"
	"github.com/sangkips/closeday-api/pkg/money"
)

// The settlement calculator is pure and deterministic: it derives a report's
// computed fields from its stored/submitted fields and never touches
// persistence or the vendor API. Unlike the reconciliation engine's tolerant
// vendor-feed parsing, every validated entry point here rejects negative
// amounts outright: user-submitted settlement math must be strict.

// DefaultSafeBoxNoteValue is the fixed denomination of safe-box notes.
const DefaultSafeBoxNoteValue int64 = 1000

// ReportFigures are the stored/submitted inputs of a daily report.
// NetSale is a pointer because a submitted value, when present, overrides
// the cash+card derivation.
type ReportFigures struct {
	OpeningCash       decimal.Decimal
	NetSale           *decimal.Decimal
	CashTotal         decimal.Decimal
	CardTotal         decimal.Decimal
	Expense           decimal.Decimal
	ActualCashCounted decimal.Decimal
	SafeBoxAmount     decimal.Decimal
}

// DerivedFigures are the settlement calculator's outputs. Difference keeps
// its sign: positive means counted cash exceeds what reconciliation implies
// was retained (surplus), negative means shortage. The closing UI color-codes
// on that sign.
type DerivedFigures struct {
	NetSale      decimal.Decimal
	ExpectedCash decimal.Decimal
	OutflowTotal decimal.Decimal
	Difference   decimal.Decimal
}

// CalculateReportValues derives expected cash, outflow total and variance
// from a report's figures. Every output is rounded to 2 places at the point
// of computation; no unrounded intermediate is carried into a later formula.
//
// The outflow total counts actual_cash_counted alongside safe-box, card and
// expense. That is the shipped behavior and is preserved exactly.
func CalculateReportValues(f ReportFigures) DerivedFigures {
	var netSale decimal.Decimal
	if f.NetSale != nil {
		netSale = money.Round2(*f.NetSale)
	} else {
		netSale = money.Round2(f.CashTotal.Add(f.CardTotal))
	}

	expectedCash := money.Round2(f.OpeningCash.Add(netSale))
	outflowTotal := money.Round2(f.SafeBoxAmount.Add(f.CardTotal).Add(f.Expense).Add(f.ActualCashCounted))
	difference := money.Round2(expectedCash.Sub(outflowTotal))

	return DerivedFigures{
		NetSale:      netSale,
		ExpectedCash: expectedCash,
		OutflowTotal: outflowTotal,
		Difference:   difference,
	}
}

// NormalizeSafeBoxCount floors a submitted denomination count to an integer
// and clamps it at zero.
func NormalizeSafeBoxCount(count float64) int64 {
	qty := int64(count)
	if count < 0 || qty < 0 {
		return 0
	}
	return qty
}

// SafeBoxAmount returns count × note value as a 2-place decimal.
func SafeBoxAmount(count, noteValue int64) decimal.Decimal {
	if count < 0 {
		count = 0
	}
	return money.Round2(decimal.NewFromInt(count).Mul(decimal.NewFromInt(noteValue)))
}

// SafeBoxLabel returns the display label for a safe-box count,
// e.g. "1000 x 5".
func SafeBoxLabel(count, noteValue int64) string {
	if count < 0 {
		count = 0
	}
	return fmt.Sprintf("%d x %d", noteValue, count)
}

// DayBusinessRow is one day's figures submitted to the period aggregator.
// All fields are required and must be non-negative.
type DayBusinessRow struct {
	CashSales     decimal.Decimal `json:"cashSales"`
	CardSales     decimal.Decimal `json:"cardSales"`
	Expenses      decimal.Decimal `json:"expenses"`
	Tips          decimal.Decimal `json:"tips"`
	SafeBoxAmount decimal.Decimal `json:"safeBoxAmount"`
}

// PeriodBusinessSummary aggregates a contiguous run of business days.
type PeriodBusinessSummary struct {
	Days                   int             `json:"days"`
	CashTotal              decimal.Decimal `json:"cash_total"`
	CardTotal              decimal.Decimal `json:"card_total"`
	ExpenseTotal           decimal.Decimal `json:"expense_total"`
	TipTotal               decimal.Decimal `json:"tip_total"`
	SafeBoxTotal           decimal.Decimal `json:"safe_box_total"`
	RevenueTotal           decimal.Decimal `json:"revenue_total"`
	NetRevenueAfterExpense decimal.Decimal `json:"net_revenue_after_expense"`
}

// CalculatePeriodBusinessSummary sums per-day figures into period totals.
// A negative value anywhere fails with a validation error naming the
// offending row index; nothing is silently clamped. Summary values are
// rounded once after full summation so no day-level rounding drift persists.
func CalculatePeriodBusinessSummary(rows []DayBusinessRow) (*PeriodBusinessSummary, error) {
	var cash, card, expense, tip, safeBox decimal.Decimal

	for i, row := range rows {
		if err := requireNonNegative("days", i, "cashSales", row.CashSales); err != nil {
			return nil, err
		}
		if err := requireNonNegative("days", i, "cardSales", row.CardSales); err != nil {
			return nil, err
		}
		if err := requireNonNegative("days", i, "expenses", row.Expenses); err != nil {
			return nil, err
		}
		if err := requireNonNegative("days", i, "tips", row.Tips); err != nil {
			return nil, err
		}
		if err := requireNonNegative("days", i, "safeBoxAmount", row.SafeBoxAmount); err != nil {
			return nil, err
		}

		cash = cash.Add(row.CashSales)
		card = card.Add(row.CardSales)
		expense = expense.Add(row.Expenses)
		tip = tip.Add(row.Tips)
		safeBox = safeBox.Add(row.SafeBoxAmount)
	}

	revenue := cash.Add(card)

	return &PeriodBusinessSummary{
		Days:                   len(rows),
		CashTotal:              money.Round2(cash),
		CardTotal:              money.Round2(card),
		ExpenseTotal:           money.Round2(expense),
		TipTotal:               money.Round2(tip),
		SafeBoxTotal:           money.Round2(safeBox),
		RevenueTotal:           money.Round2(revenue),
		NetRevenueAfterExpense: money.Round2(revenue.Sub(expense)),
	}, nil
}

// Ledger entry types accepted by the legacy per-transaction form.
const (
	LedgerTypeCash    = "cash"
	LedgerTypeCard    = "card"
	LedgerTypeExpense = "expense"
	LedgerTypeTip     = "tip"
)

// LedgerEntry is one typed amount in the legacy per-transaction form.
type LedgerEntry struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

// LedgerTotals are the per-type sums of a ledger submission.
type LedgerTotals struct {
	Cash    decimal.Decimal `json:"cash"`
	Card    decimal.Decimal `json:"card"`
	Expense decimal.Decimal `json:"expense"`
	Tip     decimal.Decimal `json:"tip"`
}

// SummarizeLedgerEntries totals the legacy per-transaction form. An unknown
// type or negative amount fails with a validation error naming the offending
// index.
func SummarizeLedgerEntries(entries []LedgerEntry) (*LedgerTotals, error) {
	totals := &LedgerTotals{}

	for i, entry := range entries {
		if entry.Amount.IsNegative() {
			return nil, apperror.NewIndexValidationError("entries", i, "amount", "must be non-negative")
		}
		switch entry.Type {
		case LedgerTypeCash:
			totals.Cash = totals.Cash.Add(entry.Amount)
		case LedgerTypeCard:
			totals.Card = totals.Card.Add(entry.Amount)
		case LedgerTypeExpense:
			totals.Expense = totals.Expense.Add(entry.Amount)
		case LedgerTypeTip:
			totals.Tip = totals.Tip.Add(entry.Amount)
		default:
			return nil, apperror.NewIndexValidationError("entries", i, "type", "unknown transaction type "+entry.Type)
		}
	}

	totals.Cash = money.Round2(totals.Cash)
	totals.Card = money.Round2(totals.Card)
	totals.Expense = money.Round2(totals.Expense)
	totals.Tip = money.Round2(totals.Tip)
	return totals, nil
}

func requireNonNegative(collection string, index int, field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return apperror.NewIndexValidationError(collection, index, field, "must be non-negative")
	}
	return nil
}
