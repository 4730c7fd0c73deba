package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DailyReport is the persisted end-of-day closing record, one row per
// calendar date (unique key = date). Synced fields are refreshed from the
// vendor reconciliation run, manual fields are entered by the merchant at
// closing time, and derived fields are produced by the settlement
// calculator. The JSON field names are the wire contract the closing UI
// consumes and must not change.
type DailyReport struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key" json:"-"`
	Date string    `gorm:"size:10;uniqueIndex;not null" json:"date"`

	// Synced from the vendor receipt feed
	NetSale     decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"net_sale"`
	CashTotal   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"cash_total"`
	CardTotal   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"card_total"`
	TotalOrders int             `gorm:"default:0" json:"total_orders"`

	// Entered manually at closing time
	Expense           decimal.Decimal  `gorm:"type:decimal(12,2);default:0" json:"expense"`
	Tip               decimal.Decimal  `gorm:"type:decimal(12,2);default:0" json:"tip"`
	SafeBoxQty        int64            `gorm:"column:safe_box_qty;default:0" json:"1k_qty"`
	SafeBoxTotal      decimal.Decimal  `gorm:"column:safe_box_total;type:decimal(12,2);default:0" json:"1k_total"`
	SafeBoxLabel      string           `gorm:"size:100" json:"safe_box_label"`
	SafeBoxAmount     decimal.Decimal  `gorm:"type:decimal(12,2);default:0" json:"safe_box_amount"`
	OpeningCash       *decimal.Decimal `gorm:"type:decimal(12,2)" json:"opening_cash"`
	ActualCashCounted *decimal.Decimal `gorm:"type:decimal(12,2)" json:"actual_cash_counted"`

	// Derived by the settlement calculator
	ExpectedCash decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"expected_cash"`
	Difference   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"difference"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new report
func (r *DailyReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the DailyReport model
func (DailyReport) TableName() string {
	return "daily_reports"
}
