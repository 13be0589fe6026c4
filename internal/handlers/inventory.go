package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mourad-dev/boutique/internal/httpx"
	"github.com/mourad-dev/boutique/internal/services"
)

// InventoryHandler exposes the stock ledger: manual adjustments, the audit
// trail, and low-stock alerts.
type InventoryHandler struct {
	Inventory *services.InventoryService
}

func NewInventoryHandler(inv *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{Inventory: inv}
}

// Adjust: POST /inventory/adjust
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID uint   `json:"product_id"`
		Quantity  int    `json:"quantity"`
		Operation string `json:"operation"` // add, subtract, set
		Notes     string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ProductID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"product_id": "required"})
		return
	}
	inv, err := h.Inventory.Adjust(req.ProductID, req.Quantity, req.Operation, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// History: GET /inventory/history?product_id=...
func (h *InventoryHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "product_id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_product_id", nil)
		return
	}
	hist, err := h.Inventory.History(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": hist, "total": len(hist)})
}

// LowStock: GET /inventory/low-stock
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	invs, err := h.Inventory.LowStock()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invs, "total": len(invs)})
}
