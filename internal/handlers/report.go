package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/mourad-dev/boutique/internal/httpx"
	"github.com/mourad-dev/boutique/internal/services"
)

type ReportHandler struct {
	Reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{Reports: reports}
}

// FinancialSummary: GET /reports/financial-summary
// Period selection: ?month=YYYY-MM, ?period=all_time|this_year, or
// ?from=YYYY-MM-DD&to=YYYY-MM-DD (to exclusive). Default is all time.
func (h *ReportHandler) FinancialSummary(w http.ResponseWriter, r *http.Request) {
	filter := services.PeriodFilter{
		Preset:   strings.TrimSpace(r.URL.Query().Get("period")),
		MonthKey: strings.TrimSpace(r.URL.Query().Get("month")),
	}
	if filter.MonthKey != "" {
		if _, err := time.Parse("2006-01", filter.MonthKey); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"month": "must_be_yyyy_mm"})
			return
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"from": "must_be_yyyy_mm_dd"})
			return
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"to": "must_be_yyyy_mm_dd"})
			return
		}
		filter.To = &t
	}
	summary, err := h.Reports.FinancialSummary(filter, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
