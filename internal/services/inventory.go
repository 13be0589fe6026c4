package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mourad-dev/boutique/internal/models"
)

// InventoryService is the single entry point for stock mutations. Every change
// goes through adjust, which writes the history record in the same transaction
// as the stock update: a stock value without its audit trail cannot exist.
type InventoryService struct {
	DB *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService { return &InventoryService{DB: db} }

// Adjust applies one stock operation (add, subtract, set) in its own
// transaction. Subtracting more than the available stock is rejected with
// InsufficientStockError, never clamped.
func (s *InventoryService) Adjust(productID uint, quantity int, operation, notes string) (*models.Inventory, error) {
	var inv *models.Inventory
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		inv, err = s.adjust(tx, productID, quantity, operation, notes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// adjust performs one guarded stock mutation plus its history record inside
// the caller's transaction.
func (s *InventoryService) adjust(tx *gorm.DB, productID uint, quantity int, operation, notes string) (*models.Inventory, error) {
	if quantity < 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must_not_be_negative"}
	}
	var inv models.Inventory
	if err := tx.Where("product_id = ?", productID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "load inventory", Err: err}
	}

	prev := inv.Stock
	var next int
	switch operation {
	case models.InventoryOpAdd:
		next = prev + quantity
	case models.InventoryOpSubtract:
		if quantity > prev {
			return nil, &InsufficientStockError{ProductID: productID, Requested: quantity, Available: prev}
		}
		next = prev - quantity
	case models.InventoryOpSet:
		next = quantity
	default:
		return nil, &ValidationError{Field: "operation", Reason: "unknown"}
	}

	res := tx.Model(&models.Inventory{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version).
		Updates(map[string]any{"stock": next, "version": inv.Version + 1})
	if res.Error != nil {
		return nil, &PersistenceError{Op: "update stock", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return nil, &ConcurrencyConflictError{Entity: "inventory", ID: inv.ID}
	}

	hist := models.InventoryHistory{
		InventoryID:   inv.ID,
		ProductID:     productID,
		Operation:     operation,
		Quantity:      quantity,
		PreviousStock: prev,
		NewStock:      next,
		Notes:         notes,
		Reference:     uuid.NewString(),
	}
	if err := tx.Create(&hist).Error; err != nil {
		return nil, &PersistenceError{Op: "append stock history", Err: err}
	}

	// Mirror product availability when stock crosses the zero boundary.
	if (prev == 0) != (next == 0) {
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).
			Update("active", next > 0).Error; err != nil {
			return nil, &PersistenceError{Op: "toggle product active", Err: err}
		}
	}

	inv.Stock = next
	inv.Version++
	return &inv, nil
}

// DeductForSale subtracts stock for every line item inside the caller's
// transaction. Any failure aborts the whole transaction: a sale never deducts
// partially.
func (s *InventoryService) DeductForSale(tx *gorm.DB, sale *models.Sale) error {
	for i := range sale.Items {
		it := &sale.Items[i]
		note := fmt.Sprintf("sold in sale %s", sale.Number)
		if _, err := s.adjust(tx, it.ProductID, it.Quantity, models.InventoryOpSubtract, note); err != nil {
			return err
		}
	}
	return nil
}

// RestockForSale returns every line item's quantity to stock, with an audit
// entry per item. Used when a sale is deleted after its stock was deducted.
func (s *InventoryService) RestockForSale(tx *gorm.DB, sale *models.Sale) error {
	for i := range sale.Items {
		it := &sale.Items[i]
		note := fmt.Sprintf("restocked from deleted sale %s", sale.Number)
		if _, err := s.adjust(tx, it.ProductID, it.Quantity, models.InventoryOpAdd, note); err != nil {
			return err
		}
	}
	return nil
}

// EnsureForProduct creates the product's inventory row if it does not exist
// yet. Called once when a product is registered.
func (s *InventoryService) EnsureForProduct(tx *gorm.DB, productID uint, initialStock, minStock int) (*models.Inventory, error) {
	if initialStock < 0 || minStock < 0 {
		return nil, &ValidationError{Field: "stock", Reason: "must_not_be_negative"}
	}
	inv := models.Inventory{ProductID: productID, MinStock: minStock}
	if err := tx.Where("product_id = ?", productID).FirstOrCreate(&inv).Error; err != nil {
		return nil, &PersistenceError{Op: "create inventory", Err: err}
	}
	if initialStock > 0 {
		return s.adjust(tx, productID, initialStock, models.InventoryOpAdd, "initial stock")
	}
	return &inv, nil
}

// History returns the audit trail for a product, newest first.
func (s *InventoryService) History(productID uint) ([]models.InventoryHistory, error) {
	var hist []models.InventoryHistory
	if err := s.DB.Where("product_id = ?", productID).Order("id desc").Find(&hist).Error; err != nil {
		return nil, &PersistenceError{Op: "list stock history", Err: err}
	}
	return hist, nil
}

// LowStock lists inventories at or below their minimum threshold.
func (s *InventoryService) LowStock() ([]models.Inventory, error) {
	var invs []models.Inventory
	if err := s.DB.Preload("Product").Where("stock <= min_stock").Order("stock asc").Find(&invs).Error; err != nil {
		return nil, &PersistenceError{Op: "list low stock", Err: err}
	}
	return invs, nil
}
