package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mourad-dev/boutique/internal/models"
	"github.com/mourad-dev/boutique/internal/services"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
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

func TestProductCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db, services.NewInventoryService(db))

	body := `{"name":"Samsung Galaxy A15","code":"SGA15","purchase_price":65000,"cash_price":85000,"initial_stock":10,"min_stock":2}`
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created models.Product
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Inventory == nil || created.Inventory.Stock != 10 {
		t.Fatalf("expected inventory with stock 10, got %+v", created.Inventory)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/products?q=galaxy", nil)
	w2 := httptest.NewRecorder()
	h.List(w2, req2)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w2.Code)
	}
	var payload struct {
		Items []models.Product `json:"items"`
		Total int64            `json:"total"`
	}
	if err := json.Unmarshal(w2.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].Code != "SGA15" {
		t.Fatalf("unexpected list payload: %+v", payload)
	}
}

func TestProductCreateDuplicateCode(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db, services.NewInventoryService(db))

	body := `{"name":"A","code":"DUP","purchase_price":10,"cash_price":20}`
	w := httptest.NewRecorder()
	h.Create(w, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", w.Code)
	}

	w2 := httptest.NewRecorder()
	h.Create(w2, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body)))
	if w2.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w2.Code, w2.Body.String())
	}
}

func TestProductCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db, services.NewInventoryService(db))

	body := `{"name":"","code":"","purchase_price":-1,"cash_price":-1}`
	w := httptest.NewRecorder()
	h.Create(w, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "validation_failed") {
		t.Fatalf("expected validation_failed, got %s", w.Body.String())
	}
}

func TestProductUpdatePricesOnly(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db, services.NewInventoryService(db))

	create := `{"name":"A","code":"P1","purchase_price":10,"cash_price":20,"initial_stock":5}`
	w := httptest.NewRecorder()
	h.Create(w, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(create)))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", w.Code)
	}
	var created models.Product
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	update := `{"cash_price":25}`
	req := httptest.NewRequest(http.MethodPost, "/products/update?id=1", strings.NewReader(update))
	w2 := httptest.NewRecorder()
	h.Update(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w2.Code, w2.Body.String())
	}

	var reloaded models.Product
	if err := db.First(&reloaded, created.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.CashPrice.String() != "25" {
		t.Fatalf("expected cash price 25, got %s", reloaded.CashPrice)
	}
	// Stock is untouched: only the inventory ledger may change it.
	var inv models.Inventory
	if err := db.Where("product_id = ?", created.ID).First(&inv).Error; err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if inv.Stock != 5 {
		t.Fatalf("expected stock 5, got %d", inv.Stock)
	}
}

func TestProductUpdateNotFound(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db, services.NewInventoryService(db))

	req := httptest.NewRequest(http.MethodPost, "/products/update?id=42", strings.NewReader(`{"cash_price":1}`))
	w := httptest.NewRecorder()
	h.Update(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
