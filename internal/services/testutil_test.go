package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mourad-dev/boutique/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{}, &models.Inventory{}, &models.InventoryHistory{},
		&models.Client{}, &models.Guarantor{},
		&models.Sale{}, &models.SaleItem{},
		&models.Provider{}, &models.ProviderBill{}, &models.ProviderPayment{},
		&models.Expense{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createProduct(t *testing.T, db *gorm.DB, code string, purchase, cash int64, stock int) *models.Product {
	t.Helper()
	p := models.Product{
		Name:          "Product " + code,
		Code:          code,
		PurchasePrice: decimal.NewFromInt(purchase),
		CashPrice:     decimal.NewFromInt(cash),
		Active:        true,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	inv, err := NewInventoryService(db).EnsureForProduct(db, p.ID, stock, 0)
	if err != nil {
		t.Fatalf("ensure inventory: %v", err)
	}
	p.Inventory = inv
	return &p
}

func createClient(t *testing.T, db *gorm.DB, name string) *models.Client {
	t.Helper()
	c := models.Client{Name: name}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}
	return &c
}

func currentStock(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var inv models.Inventory
	if err := db.Where("product_id = ?", productID).First(&inv).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	return inv.Stock
}
