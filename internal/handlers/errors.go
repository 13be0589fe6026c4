package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/mourad-dev/boutique/internal/httpx"
	"github.com/mourad-dev/boutique/internal/services"
)

// writeServiceError maps the service error taxonomy onto HTTP responses.
// Financial operations either fully succeeded or were visibly rejected; there
// is no log-and-continue path here.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	var ise *services.InsufficientStockError
	var cce *services.ConcurrencyConflictError
	switch {
	case errors.As(err, &ve):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{ve.Field: ve.Reason})
	case errors.As(err, &ise):
		httpx.JSONError(w, http.StatusConflict, "insufficient_stock", map[string]any{
			"product_id": ise.ProductID,
			"requested":  ise.Requested,
			"available":  ise.Available,
		})
	case errors.As(err, &cce):
		httpx.JSONError(w, http.StatusConflict, "concurrent_update", nil)
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func idParam(r *http.Request, name string) (uint, bool) {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n <= 0 {
		return 0, false
	}
	return uint(n), true
}
