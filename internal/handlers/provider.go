package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mourad-dev/boutique/internal/httpx"
	"github.com/mourad-dev/boutique/internal/models"
	"github.com/mourad-dev/boutique/internal/services"
)

// ProviderHandler exposes supplier debt tracking: bills, payments and the
// derived outstanding balance.
type ProviderHandler struct {
	DB        *gorm.DB
	Providers *services.ProviderService
}

func NewProviderHandler(db *gorm.DB, providers *services.ProviderService) *ProviderHandler {
	return &ProviderHandler{DB: db, Providers: providers}
}

// List: GET /providers
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	var providers []models.Provider
	if err := h.DB.Order("name asc").Find(&providers).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_providers", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": providers, "total": len(providers)})
}

// Create: POST /providers
func (h *ProviderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"name": "required"})
		return
	}
	provider := models.Provider{Name: strings.TrimSpace(input.Name), Phone: input.Phone}
	if err := h.DB.Create(&provider).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_provider", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, provider)
}

// AddBill: POST /providers/bills
func (h *ProviderHandler) AddBill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProviderID  uint            `json:"provider_id"`
		Reference   string          `json:"reference"`
		TotalAmount decimal.Decimal `json:"total_amount"`
		AmountPaid  decimal.Decimal `json:"amount_paid"`
		BillDate    string          `json:"bill_date"` // YYYY-MM-DD, defaults to today
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	date := time.Now()
	if req.BillDate != "" {
		parsed, err := time.Parse("2006-01-02", req.BillDate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"bill_date": "must_be_yyyy_mm_dd"})
			return
		}
		date = parsed
	}
	bill, err := h.Providers.AddBill(req.ProviderID, req.Reference, req.TotalAmount, req.AmountPaid, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bill)
}

// RecordPayment: POST /providers/payments
func (h *ProviderHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProviderID uint            `json:"provider_id"`
		Amount     decimal.Decimal `json:"amount"`
		Date       string          `json:"date"`
		Note       string          `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
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
	payment, err := h.Providers.RecordPayment(req.ProviderID, req.Amount, date, req.Note)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

// Balance: GET /providers/balance?id=...
func (h *ProviderHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	outstanding, err := h.Providers.Outstanding(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"provider_id": id, "outstanding": outstanding})
}
