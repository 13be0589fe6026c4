package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a dated operating cost; the financial summary subtracts expenses
// from apportioned profit to derive net profit.
type Expense struct {
	ID     uint            `gorm:"primaryKey" json:"id"`
	Label  string          `gorm:"size:200;not null" json:"label"`
	Amount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Date   time.Time       `gorm:"not null;index" json:"date"`

	CreatedAt time.Time `json:"created_at"`
}
