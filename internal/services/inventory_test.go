package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mourad-dev/boutique/internal/models"
)

func TestAdjustAddSubtractSet(t *testing.T) {
	db := newTestDB(t)
	svc := NewInventoryService(db)
	p := createProduct(t, db, "P1", 100, 150, 10)

	inv, err := svc.Adjust(p.ID, 5, models.InventoryOpAdd, "restock")
	require.NoError(t, err)
	assert.Equal(t, 15, inv.Stock)

	inv, err = svc.Adjust(p.ID, 7, models.InventoryOpSubtract, "damaged")
	require.NoError(t, err)
	assert.Equal(t, 8, inv.Stock)

	inv, err = svc.Adjust(p.ID, 20, models.InventoryOpSet, "recount")
	require.NoError(t, err)
	assert.Equal(t, 20, inv.Stock)
}

func TestAdjustRejectsOverSubtraction(t *testing.T) {
	db := newTestDB(t)
	svc := NewInventoryService(db)
	p := createProduct(t, db, "P1", 100, 150, 3)

	_, err := svc.Adjust(p.ID, 4, models.InventoryOpSubtract, "")
	var ise *InsufficientStockError
	require.True(t, errors.As(err, &ise), "got %v", err)
	assert.Equal(t, p.ID, ise.ProductID)
	assert.Equal(t, 4, ise.Requested)
	assert.Equal(t, 3, ise.Available)

	// Stock is untouched, never clamped to zero, and no history row appears.
	assert.Equal(t, 3, currentStock(t, db, p.ID))
	hist, err := svc.History(p.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 1) // only the initial stock entry
}

func TestStockEqualsSumOfHistoryDeltas(t *testing.T) {
	db := newTestDB(t)
	svc := NewInventoryService(db)
	p := createProduct(t, db, "P1", 100, 150, 12)

	_, err := svc.Adjust(p.ID, 3, models.InventoryOpSubtract, "")
	require.NoError(t, err)
	_, err = svc.Adjust(p.ID, 7, models.InventoryOpAdd, "")
	require.NoError(t, err)
	_, err = svc.Adjust(p.ID, 5, models.InventoryOpSet, "")
	require.NoError(t, err)

	hist, err := svc.History(p.ID)
	require.NoError(t, err)
	total := 0
	for _, h := range hist {
		total += h.Delta()
	}
	assert.Equal(t, currentStock(t, db, p.ID), total)
}

func TestAdjustValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewInventoryService(db)
	p := createProduct(t, db, "P1", 100, 150, 3)

	_, err := svc.Adjust(p.ID, -1, models.InventoryOpAdd, "")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "quantity", ve.Field)

	_, err = svc.Adjust(p.ID, 1, "multiply", "")
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "operation", ve.Field)

	_, err = svc.Adjust(9999, 1, models.InventoryOpAdd, "")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestEveryAdjustmentLeavesHistory(t *testing.T) {
	db := newTestDB(t)
	svc := NewInventoryService(db)
	p := createProduct(t, db, "P1", 100, 150, 10)

	_, err := svc.Adjust(p.ID, 4, models.InventoryOpSubtract, "sold over the counter")
	require.NoError(t, err)
	_, err = svc.Adjust(p.ID, 2, models.InventoryOpAdd, "returned")
	require.NoError(t, err)

	hist, err := svc.History(p.ID)
	require.NoError(t, err)
	require.Len(t, hist, 3) // initial stock + two adjustments, newest first

	assert.Equal(t, models.InventoryOpAdd, hist[0].Operation)
	assert.Equal(t, 6, hist[0].PreviousStock)
	assert.Equal(t, 8, hist[0].NewStock)
	assert.Equal(t, 2, hist[0].Delta())

	assert.Equal(t, models.InventoryOpSubtract, hist[1].Operation)
	assert.Equal(t, 10, hist[1].PreviousStock)
	assert.Equal(t, 6, hist[1].NewStock)
	assert.Equal(t, "sold over the counter", hist[1].Notes)
	assert.NotEmpty(t, hist[1].Reference)

	assert.Equal(t, "initial stock", hist[2].Notes)
	assert.Equal(t, 0, hist[2].PreviousStock)
	assert.Equal(t, 10, hist[2].NewStock)
}

func TestActiveFollowsZeroBoundary(t *testing.T) {
	db := newTestDB(t)
	svc := NewInventoryService(db)
	p := createProduct(t, db, "P1", 100, 150, 2)

	_, err := svc.Adjust(p.ID, 2, models.InventoryOpSubtract, "")
	require.NoError(t, err)
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	assert.False(t, reloaded.Active)

	_, err = svc.Adjust(p.ID, 5, models.InventoryOpAdd, "")
	require.NoError(t, err)
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	assert.True(t, reloaded.Active)
}

func TestAdjustConcurrencyConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewInventoryService(db)
	p := createProduct(t, db, "P1", 100, 150, 10)

	raced := false
	err := db.Callback().Update().Before("gorm:update").Register("stale_inventory_version", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "inventories" {
			return
		}
		raced = true
		tx.Session(&gorm.Session{NewDB: true}).Exec("UPDATE inventories SET version = version + 1 WHERE product_id = ?", p.ID)
	})
	require.NoError(t, err)
	defer db.Callback().Update().Remove("stale_inventory_version")

	_, err = svc.Adjust(p.ID, 1, models.InventoryOpSubtract, "")
	var cce *ConcurrencyConflictError
	require.True(t, errors.As(err, &cce), "got %v", err)
	assert.Equal(t, "inventory", cce.Entity)

	// Rolled back: stock untouched, no history row beyond the initial one.
	assert.Equal(t, 10, currentStock(t, db, p.ID))
	hist, err := svc.History(p.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestVersionIncrementsPerAdjustment(t *testing.T) {
	db := newTestDB(t)
	svc := NewInventoryService(db)
	p := createProduct(t, db, "P1", 100, 150, 1)

	var before models.Inventory
	require.NoError(t, db.Where("product_id = ?", p.ID).First(&before).Error)

	_, err := svc.Adjust(p.ID, 1, models.InventoryOpAdd, "")
	require.NoError(t, err)

	var after models.Inventory
	require.NoError(t, db.Where("product_id = ?", p.ID).First(&after).Error)
	assert.Equal(t, before.Version+1, after.Version)
}

func TestLowStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewInventoryService(db)

	low := createProduct(t, db, "LOW", 100, 150, 2)
	require.NoError(t, db.Model(&models.Inventory{}).Where("product_id = ?", low.ID).Update("min_stock", 5).Error)
	createProduct(t, db, "OK", 100, 150, 50)

	invs, err := svc.LowStock()
	require.NoError(t, err)
	require.Len(t, invs, 1)
	assert.Equal(t, low.ID, invs[0].ProductID)
	assert.Equal(t, "LOW", invs[0].Product.Code)
	assert.True(t, invs[0].Low())
}

func TestEnsureForProductIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewInventoryService(db)
	p := createProduct(t, db, "P1", 100, 150, 5)

	// A second call must not reset stock or spawn a duplicate row.
	_, err := svc.EnsureForProduct(db, p.ID, 0, 0)
	require.NoError(t, err)

	var count int64
	db.Model(&models.Inventory{}).Where("product_id = ?", p.ID).Count(&count)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 5, currentStock(t, db, p.ID))
}
