package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item. Live stock is deliberately NOT a field here:
// it lives on the 1:1 Inventory row and is mutated only through the inventory
// ledger, so no code path can change stock without an audit record.
type Product struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:200;not null;index" json:"name"`
	Code string `gorm:"size:40;not null;uniqueIndex" json:"code"`

	PurchasePrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"purchase_price"` // cost
	CashPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cash_price"`     // sale price

	// Active mirrors stock availability: the inventory ledger toggles it when
	// stock crosses the zero boundary.
	Active bool `gorm:"not null;default:true" json:"active"`

	Inventory *Inventory `gorm:"foreignKey:ProductID" json:"inventory,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Margin is the per-unit gross margin at the cash price.
func (p *Product) Margin() decimal.Decimal {
	return p.CashPrice.Sub(p.PurchasePrice)
}
