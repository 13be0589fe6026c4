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
)

type ExpenseHandler struct {
	DB *gorm.DB
}

func NewExpenseHandler(db *gorm.DB) *ExpenseHandler { return &ExpenseHandler{DB: db} }

// List: GET /expenses?month=YYYY-MM
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.Model(&models.Expense{})
	if month := strings.TrimSpace(r.URL.Query().Get("month")); month != "" {
		from, err := time.Parse("2006-01", month)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"month": "must_be_yyyy_mm"})
			return
		}
		dbq = dbq.Where("date >= ? AND date < ?", from, from.AddDate(0, 1, 0))
	}
	var expenses []models.Expense
	if err := dbq.Order("date desc").Find(&expenses).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_expenses", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": expenses, "total": len(expenses)})
}

// Create: POST /expenses
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Label  string          `json:"label"`
		Amount decimal.Decimal `json:"amount"`
		Date   string          `json:"date"` // YYYY-MM-DD, defaults to today
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	violations := map[string]string{}
	if strings.TrimSpace(input.Label) == "" {
		violations["label"] = "required"
	}
	if !input.Amount.IsPositive() {
		violations["amount"] = "must_be_positive"
	}
	if len(violations) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations)
		return
	}
	date := time.Now()
	if input.Date != "" {
		parsed, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"date": "must_be_yyyy_mm_dd"})
			return
		}
		date = parsed
	}
	expense := models.Expense{Label: strings.TrimSpace(input.Label), Amount: input.Amount, Date: date}
	if err := h.DB.Create(&expense).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_expense", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, expense)
}
