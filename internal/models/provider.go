package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Provider is a supplier the shop owes money to.
type Provider struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:180;not null;index" json:"name"`
	Phone string `gorm:"size:40" json:"phone"`

	Bills    []ProviderBill    `gorm:"foreignKey:ProviderID" json:"bills,omitempty"`
	Payments []ProviderPayment `gorm:"foreignKey:ProviderID" json:"payments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProviderBill is an invoice received from a supplier. AmountPaid is what was
// settled directly against this bill at reception time.
type ProviderBill struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ProviderID uint   `gorm:"not null;index" json:"provider_id"`
	Reference  string `gorm:"size:64" json:"reference"`

	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	AmountPaid  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"amount_paid"`

	BillDate  time.Time `gorm:"not null" json:"bill_date"`
	CreatedAt time.Time `json:"created_at"`
}

// ProviderPayment is a later payment against a provider's running balance,
// not tied to one bill. Append-only, same ledger pattern as sale payments.
type ProviderPayment struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ProviderID uint `gorm:"not null;index" json:"provider_id"`

	Amount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Date   time.Time       `gorm:"not null" json:"date"`
	Note   string          `gorm:"size:255" json:"note"`

	CreatedAt time.Time `json:"created_at"`
}
