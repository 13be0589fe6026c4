package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/mourad-dev/boutique/internal/services"
)

func TestWriteServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"validation", &services.ValidationError{Field: "amount", Reason: "must_be_positive"}, http.StatusBadRequest, "validation_failed"},
		{"insufficient stock", &services.InsufficientStockError{ProductID: 1, Requested: 5, Available: 2}, http.StatusConflict, "insufficient_stock"},
		{"concurrency conflict", &services.ConcurrencyConflictError{Entity: "sale", ID: 7}, http.StatusConflict, "concurrent_update"},
		{"not found", gorm.ErrRecordNotFound, http.StatusNotFound, "not_found"},
		{"wrapped not found", &services.PersistenceError{Op: "load sale", Err: gorm.ErrRecordNotFound}, http.StatusNotFound, "not_found"},
		{"unknown", &services.PersistenceError{Op: "update", Err: gorm.ErrInvalidDB}, http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeServiceError(w, tc.err)
			if w.Code != tc.code {
				t.Fatalf("expected %d got %d", tc.code, w.Code)
			}
			if !strings.Contains(w.Body.String(), tc.body) {
				t.Fatalf("expected %q in body, got %s", tc.body, w.Body.String())
			}
		})
	}
}
