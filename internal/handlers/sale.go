package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mourad-dev/boutique/internal/httpx"
	"github.com/mourad-dev/boutique/internal/models"
	"github.com/mourad-dev/boutique/internal/services"
)

// SaleHandler exposes the sale lifecycle and its payment ledger over JSON.
type SaleHandler struct {
	DB       *gorm.DB
	Sales    *services.SaleService
	Payments *services.PaymentService
}

func NewSaleHandler(db *gorm.DB, sales *services.SaleService, payments *services.PaymentService) *SaleHandler {
	return &SaleHandler{DB: db, Sales: sales, Payments: payments}
}

// List: GET /sales
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	dbq := h.DB.Model(&models.Sale{})
	if t := strings.TrimSpace(r.URL.Query().Get("type")); t != "" {
		dbq = dbq.Where("type = ?", t)
	}
	if st := strings.TrimSpace(r.URL.Query().Get("status")); st != "" {
		dbq = dbq.Where("status = ?", st)
	}
	var total int64
	dbq.Count(&total)
	var sales []models.Sale
	if err := dbq.Preload("Items").Preload("Client").
		Order("id desc").Limit(limit).Offset(offset).Find(&sales).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_sales", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": sales, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /sales
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateSaleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	sale, err := h.Sales.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

// Finalize: POST /sales/finalize?id=...
func (h *SaleHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Sales.Finalize(id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "finalized"})
}

// Delete: POST /sales/delete?id=...
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Sales.Delete(id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Status: GET /sales/status?id=...
func (h *SaleHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	st, err := h.Sales.PaymentStatus(id, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

// RecordPayment: POST /sales/payments
func (h *SaleHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SaleID uint            `json:"sale_id"`
		Amount decimal.Decimal `json:"amount"`
		Date   string          `json:"date"` // YYYY-MM-DD, defaults to today
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.SaleID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"sale_id": "required"})
		return
	}
	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"date": "must_be_yyyy_mm_dd"})
			return
		}
		date = parsed
	}
	sale, err := h.Payments.Record(req.SaleID, req.Amount, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}
