package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Sale types and statuses.
const (
	SaleTypeCash        = "cash"
	SaleTypeInstallment = "installment"

	SaleStatusOngoing   = "ongoing"
	SaleStatusCompleted = "completed"
)

// PaymentEntry is one event in a sale's payment ledger. Entries are stored in
// insertion order, which is NOT necessarily date order; readers that bucket by
// date must group explicitly.
type PaymentEntry struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// Sale is a single transaction, cash or installment. It exclusively owns its
// items and its payment ledger; nothing else mutates them. The ledger is an
// ordered list of {date, amount} records serialized as JSON on the row, so the
// whole financial state of a sale updates atomically with one guarded write.
type Sale struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Number string `gorm:"size:40;not null;uniqueIndex" json:"number"`
	Type   string `gorm:"size:12;not null;index" json:"type"` // cash, installment

	ClientID *uint   `gorm:"index" json:"client_id,omitempty"` // nullable for cash sales
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items"`

	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"` // subtotal
	Discount   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
	FinalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"final_price"`

	// Financing plan. Zero for cash sales except MonthsCount, which is 1.
	DownPayment        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"down_payment"`
	InterestRate       decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"interest_rate"` // percent
	InterestAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"interest_amount"`
	MonthsCount        int             `gorm:"not null;default:1" json:"months_count"`
	MonthlyInstallment decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"monthly_installment"`

	Payments datatypes.JSONSlice[PaymentEntry] `json:"payments"`

	PaidAmount      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"paid_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"remaining_amount"`
	Status          string          `gorm:"size:12;not null;index" json:"status"` // ongoing, completed

	// StockDeducted guards against double deduction: cash sales deduct at
	// creation, installment sales at explicit finalization.
	StockDeducted bool `gorm:"not null;default:false" json:"stock_deducted"`

	Version uint `gorm:"not null;default:1" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalDue is the full amount owed over the sale's lifetime: final price plus
// financing interest.
func (s *Sale) TotalDue() decimal.Decimal {
	return s.FinalPrice.Add(s.InterestAmount)
}

// PurchaseCost sums the cost snapshots of all line items (cost of goods sold).
func (s *Sale) PurchaseCost() decimal.Decimal {
	cost := decimal.Zero
	for i := range s.Items {
		it := &s.Items[i]
		cost = cost.Add(it.PurchaseCost.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return cost
}

// SaleItem is one line within a sale. UnitPrice and PurchaseCost are snapshots
// taken at sale time; later product price changes never touch them.
type SaleItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	SaleID    uint    `gorm:"not null;index" json:"sale_id"`
	ProductID uint    `gorm:"not null;index" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	PurchaseCost decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"purchase_cost"`
	LineTotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
}
