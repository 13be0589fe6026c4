package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mourad-dev/boutique/internal/httpx"
	"github.com/mourad-dev/boutique/internal/models"
	"github.com/mourad-dev/boutique/internal/services"
)

var productSearchSafe = regexp.MustCompile(`[^a-zA-Z0-9 \-_]`)

type ProductHandler struct {
	DB        *gorm.DB
	Inventory *services.InventoryService
}

func NewProductHandler(db *gorm.DB, inv *services.InventoryService) *ProductHandler {
	return &ProductHandler{DB: db, Inventory: inv}
}

// List: GET /products – paginated, searchable by name or code.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	pageSize := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			pageSize = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * pageSize
		}
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	dbq := h.DB.Model(&models.Product{})
	if query != "" {
		like := "%" + strings.ToLower(productSearchSafe.ReplaceAllString(query, "")) + "%"
		dbq = dbq.Where("lower(name) LIKE ? OR lower(code) LIKE ?", like, like)
	}
	var total int64
	dbq.Count(&total)
	var products []models.Product
	if err := dbq.Preload("Inventory").Order("id desc").Limit(pageSize).Offset(offset).Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": total, "limit": pageSize, "offset": offset})
}

// Create: POST /products – registers the product and its inventory row (with
// optional initial stock) in one transaction.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name          string          `json:"name"`
		Code          string          `json:"code"`
		PurchasePrice decimal.Decimal `json:"purchase_price"`
		CashPrice     decimal.Decimal `json:"cash_price"`
		InitialStock  int             `json:"initial_stock"`
		MinStock      int             `json:"min_stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	violations := map[string]string{}
	if strings.TrimSpace(input.Name) == "" {
		violations["name"] = "required"
	}
	if strings.TrimSpace(input.Code) == "" {
		violations["code"] = "required"
	}
	if input.PurchasePrice.IsNegative() {
		violations["purchase_price"] = "must_not_be_negative"
	}
	if input.CashPrice.IsNegative() {
		violations["cash_price"] = "must_not_be_negative"
	}
	if len(violations) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations)
		return
	}

	code := strings.TrimSpace(input.Code)
	var existing int64
	h.DB.Model(&models.Product{}).Where("code = ?", code).Count(&existing)
	if existing > 0 {
		httpx.JSONError(w, http.StatusConflict, "code_already_exists", nil)
		return
	}

	product := models.Product{
		Name:          strings.TrimSpace(input.Name),
		Code:          code,
		PurchasePrice: input.PurchasePrice,
		CashPrice:     input.CashPrice,
		Active:        true,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		inv, err := h.Inventory.EnsureForProduct(tx, product.ID, input.InitialStock, input.MinStock)
		if err != nil {
			return err
		}
		product.Inventory = inv
		return nil
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

// Update: POST /products/update?id=... – prices and descriptive fields only.
// Stock cannot be changed here; that is the inventory ledger's job.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	var input struct {
		Name          *string          `json:"name"`
		PurchasePrice *decimal.Decimal `json:"purchase_price"`
		CashPrice     *decimal.Decimal `json:"cash_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	updates := map[string]any{}
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.PurchasePrice != nil && !input.PurchasePrice.IsNegative() {
		updates["purchase_price"] = *input.PurchasePrice
	}
	if input.CashPrice != nil && !input.CashPrice.IsNegative() {
		updates["cash_price"] = *input.CashPrice
	}
	if len(updates) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "nothing_to_update", nil)
		return
	}
	if err := h.DB.Model(&product).Updates(updates).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_product", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}
