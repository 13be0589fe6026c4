package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mourad-dev/boutique/internal/models"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
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
	return New(db)
}

func TestHealthEndpoints(t *testing.T) {
	h := setupRouter(t)

	for _, path := range []string{"/health", "/healthz"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, w.Code)
		}
		if !strings.Contains(w.Body.String(), "ok") {
			t.Fatalf("%s: unexpected body %s", path, w.Body.String())
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := setupRouter(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/sales", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", w.Code)
	}
	if allow := w.Header().Get("Allow"); allow != "GET,POST" {
		t.Fatalf("expected Allow header, got %q", allow)
	}

	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/inventory/adjust", nil))
	if w2.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", w2.Code)
	}
}

func TestEmptyCollections(t *testing.T) {
	h := setupRouter(t)

	for _, path := range []string{"/products", "/sales", "/clients", "/providers", "/expenses", "/inventory/low-stock", "/reports/financial-summary"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d body=%s", path, w.Code, w.Body.String())
		}
	}
}
