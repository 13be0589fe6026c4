package models

import "time"

// Client is a customer able to buy on installments. Cash sales may reference
// no client at all.
type Client struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:180;not null;index" json:"name"`
	Phone   string `gorm:"size:40" json:"phone"`
	Address string `gorm:"size:255" json:"address"`
	Notes   string `gorm:"size:255" json:"notes"`

	Guarantors []Guarantor `gorm:"foreignKey:ClientID" json:"guarantors,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Guarantor backs a client's installment purchases.
type Guarantor struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ClientID uint   `gorm:"not null;index" json:"client_id"`
	Name     string `gorm:"size:180;not null" json:"name"`
	Phone    string `gorm:"size:40" json:"phone"`
	Address  string `gorm:"size:255" json:"address"`

	CreatedAt time.Time `json:"created_at"`
}
