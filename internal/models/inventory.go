package models

import "time"

// Stock ledger operations.
const (
	InventoryOpAdd      = "add"
	InventoryOpSubtract = "subtract"
	InventoryOpSet      = "set"
)

// Inventory holds the live stock count for one product. Version gates every
// update so that two concurrent adjustments for the same product cannot both
// commit (lost-update protection).
type Inventory struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ProductID uint    `gorm:"not null;uniqueIndex" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	Stock    int `gorm:"not null;default:0" json:"stock"`
	MinStock int `gorm:"not null;default:0" json:"min_stock"`

	Version uint `gorm:"not null;default:1" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Low reports whether stock has reached the minimum threshold.
func (i *Inventory) Low() bool { return i.Stock <= i.MinStock }

// InventoryHistory is the append-only audit trail of stock mutations.
// Rows are written in the same transaction as the stock update and are never
// modified or deleted afterwards.
type InventoryHistory struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	InventoryID uint `gorm:"not null;index" json:"inventory_id"`
	ProductID   uint `gorm:"not null;index" json:"product_id"`

	Operation     string `gorm:"size:10;not null" json:"operation"` // add, subtract, set
	Quantity      int    `gorm:"not null" json:"quantity"`
	PreviousStock int    `gorm:"not null" json:"previous_stock"`
	NewStock      int    `gorm:"not null" json:"new_stock"`
	Notes         string `gorm:"size:255" json:"notes"`
	Reference     string `gorm:"size:36;index" json:"reference"` // correlation id

	CreatedAt time.Time `json:"created_at"`
}

// Delta is the signed stock change this record captured.
func (h *InventoryHistory) Delta() int { return h.NewStock - h.PreviousStock }
