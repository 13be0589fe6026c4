package server

import (
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/mourad-dev/boutique/internal/handlers"
	"github.com/mourad-dev/boutique/internal/httpx"
	"github.com/mourad-dev/boutique/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares
// applied. Authentication lives outside this core and wraps the returned
// handler at deployment time.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	inventorySvc := services.NewInventoryService(db)
	saleSvc := services.NewSaleService(db)
	paymentSvc := services.NewPaymentService(db)
	providerSvc := services.NewProviderService(db)
	reportSvc := services.NewReportService(db)

	// Product endpoints
	ph := handlers.NewProductHandler(db, inventorySvc)
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ph.List(w, r)
		case http.MethodPost:
			ph.Create(w, r)
		default:
			methodNotAllowed(w, "GET,POST")
		}
	})
	mux.HandleFunc("/products/update", requirePost(ph.Update))

	// Inventory ledger endpoints
	ih := handlers.NewInventoryHandler(inventorySvc)
	mux.HandleFunc("/inventory/adjust", requirePost(ih.Adjust))
	mux.HandleFunc("/inventory/history", ih.History)
	mux.HandleFunc("/inventory/low-stock", ih.LowStock)

	// Sale endpoints
	sh := handlers.NewSaleHandler(db, saleSvc, paymentSvc)
	mux.HandleFunc("/sales", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			sh.List(w, r)
		case http.MethodPost:
			sh.Create(w, r)
		default:
			methodNotAllowed(w, "GET,POST")
		}
	})
	mux.HandleFunc("/sales/finalize", requirePost(sh.Finalize))
	mux.HandleFunc("/sales/delete", requirePost(sh.Delete))
	mux.HandleFunc("/sales/status", sh.Status)
	mux.HandleFunc("/sales/payments", requirePost(sh.RecordPayment))

	// Client endpoints
	ch := handlers.NewClientHandler(db)
	mux.HandleFunc("/clients", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ch.List(w, r)
		case http.MethodPost:
			ch.Create(w, r)
		default:
			methodNotAllowed(w, "GET,POST")
		}
	})

	// Provider debt endpoints
	prh := handlers.NewProviderHandler(db, providerSvc)
	mux.HandleFunc("/providers", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			prh.List(w, r)
		case http.MethodPost:
			prh.Create(w, r)
		default:
			methodNotAllowed(w, "GET,POST")
		}
	})
	mux.HandleFunc("/providers/bills", requirePost(prh.AddBill))
	mux.HandleFunc("/providers/payments", requirePost(prh.RecordPayment))
	mux.HandleFunc("/providers/balance", prh.Balance)

	// Expenses
	eh := handlers.NewExpenseHandler(db)
	mux.HandleFunc("/expenses", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			eh.List(w, r)
		case http.MethodPost:
			eh.Create(w, r)
		default:
			methodNotAllowed(w, "GET,POST")
		}
	})

	// Reports
	rh := handlers.NewReportHandler(reportSvc)
	mux.HandleFunc("/reports/financial-summary", rh.FinancialSummary)

	return withRecover(withLogging(mux))
}

func requirePost(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}
		next(w, r)
	}
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
