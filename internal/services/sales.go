package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mourad-dev/boutique/internal/models"
)

// SaleItemInput selects a product and quantity for a new sale.
type SaleItemInput struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// FinancingInput is the installment plan requested at sale creation.
type FinancingInput struct {
	DownPayment  decimal.Decimal `json:"down_payment"`
	InterestRate decimal.Decimal `json:"interest_rate"` // percent
	MonthsCount  int             `json:"months_count"`
}

// CreateSaleInput is everything needed to open a sale.
type CreateSaleInput struct {
	Type          string          `json:"type"`
	ClientID      *uint           `json:"client_id,omitempty"`
	Items         []SaleItemInput `json:"items"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Financing     *FinancingInput `json:"financing,omitempty"`
}

// PaymentStatus is the derived repayment state of one sale.
type PaymentStatus struct {
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	ProgressPercent decimal.Decimal `json:"progress_percent"`
	IsCompleted     bool            `json:"is_completed"`
	NextPaymentDate *time.Time      `json:"next_payment_date,omitempty"`
}

// SaleService orchestrates the sale lifecycle: creation with pricing and
// financing, stock deduction on finalization, restock on deletion. All stock
// movement goes through the inventory ledger, always inside the same
// transaction as the sale change itself.
type SaleService struct {
	DB        *gorm.DB
	Pricing   *PricingService
	Schedule  *ScheduleService
	Inventory *InventoryService
	Progress  *ProgressService
}

func NewSaleService(db *gorm.DB) *SaleService {
	return &SaleService{
		DB:        db,
		Pricing:   NewPricingService(),
		Schedule:  NewScheduleService(),
		Inventory: NewInventoryService(db),
		Progress:  NewProgressService(),
	}
}

func newSaleNumber() string {
	return "S-" + strings.ToUpper(uuid.NewString()[:8])
}

// Create validates stock availability per item, snapshots prices, computes the
// pricing (and the installment plan when financed) and persists the sale with
// its items in one transaction.
//
// Cash sales are completed immediately: one payment entry equal to the final
// price, stock deducted in the same transaction. Installment sales record the
// down payment (when positive) as the first ledger entry and leave stock
// deduction to Finalize.
func (s *SaleService) Create(in CreateSaleInput) (*models.Sale, error) {
	if in.Type != models.SaleTypeCash && in.Type != models.SaleTypeInstallment {
		return nil, &ValidationError{Field: "type", Reason: "unknown"}
	}
	if len(in.Items) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "required"}
	}
	if in.Type == models.SaleTypeInstallment {
		if in.Financing == nil {
			return nil, &ValidationError{Field: "financing", Reason: "required"}
		}
		if in.ClientID == nil {
			return nil, &ValidationError{Field: "client_id", Reason: "required_for_installment"}
		}
	}

	var sale models.Sale
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(in.Items))
		for _, it := range in.Items {
			if it.Quantity < 1 {
				return &ValidationError{Field: "quantity", Reason: "must_be_positive"}
			}
			ids = append(ids, it.ProductID)
		}
		var products []models.Product
		if err := tx.Preload("Inventory").Where("id IN ?", ids).Find(&products).Error; err != nil {
			return &PersistenceError{Op: "load products", Err: err}
		}
		byID := make(map[uint]*models.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		items := make([]models.SaleItem, 0, len(in.Items))
		lines := make([]LineItem, 0, len(in.Items))
		for _, it := range in.Items {
			p, ok := byID[it.ProductID]
			if !ok {
				return &ValidationError{Field: "items", Reason: "unknown_product"}
			}
			available := 0
			if p.Inventory != nil {
				available = p.Inventory.Stock
			}
			if it.Quantity > available {
				return &InsufficientStockError{ProductID: p.ID, Requested: it.Quantity, Available: available}
			}
			qty := decimal.NewFromInt(int64(it.Quantity))
			items = append(items, models.SaleItem{
				ProductID:    p.ID,
				Quantity:     it.Quantity,
				UnitPrice:    p.CashPrice,
				PurchaseCost: p.PurchasePrice,
				LineTotal:    p.CashPrice.Mul(qty),
			})
			lines = append(lines, LineItem{UnitPrice: p.CashPrice, Quantity: it.Quantity})
		}

		subtotal, final, err := s.Pricing.ComputeTotals(lines, in.DiscountType, in.DiscountValue)
		if err != nil {
			return err
		}

		now := time.Now()
		sale = models.Sale{
			Number:      newSaleNumber(),
			Type:        in.Type,
			ClientID:    in.ClientID,
			TotalPrice:  subtotal,
			Discount:    subtotal.Sub(final),
			FinalPrice:  final,
			MonthsCount: 1,
		}

		switch in.Type {
		case models.SaleTypeCash:
			sale.Payments = datatypes.NewJSONSlice([]models.PaymentEntry{{Date: now, Amount: final}})
			sale.PaidAmount = final
			sale.RemainingAmount = decimal.Zero
			sale.Status = models.SaleStatusCompleted
			sale.StockDeducted = true
		case models.SaleTypeInstallment:
			f := in.Financing
			plan, err := s.Schedule.ComputePlan(final, f.DownPayment, f.InterestRate, f.MonthsCount)
			if err != nil {
				return err
			}
			sale.DownPayment = f.DownPayment
			sale.InterestRate = f.InterestRate
			sale.InterestAmount = plan.InterestAmount
			sale.MonthsCount = f.MonthsCount
			sale.MonthlyInstallment = plan.MonthlyInstallment

			entries := []models.PaymentEntry{}
			if f.DownPayment.IsPositive() {
				entries = append(entries, models.PaymentEntry{Date: now, Amount: f.DownPayment})
			}
			sale.Payments = datatypes.NewJSONSlice(entries)
			sale.PaidAmount = f.DownPayment
			sale.RemainingAmount = sale.TotalDue().Sub(f.DownPayment)
			if sale.RemainingAmount.LessThanOrEqual(decimal.Zero) {
				sale.Status = models.SaleStatusCompleted
			} else {
				sale.Status = models.SaleStatusOngoing
			}
		}

		sale.Items = items
		if err := tx.Create(&sale).Error; err != nil {
			return &PersistenceError{Op: "create sale", Err: err}
		}
		if sale.StockDeducted {
			if err := s.Inventory.DeductForSale(tx, &sale); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// Finalize deducts stock for all line items of an installment sale. Idempotent:
// a sale whose stock was already deducted is left untouched.
func (s *SaleService) Finalize(saleID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.Preload("Items").First(&sale, saleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return &PersistenceError{Op: "load sale", Err: err}
		}
		if sale.StockDeducted {
			return nil
		}
		if len(sale.Items) == 0 {
			return &ValidationError{Field: "items", Reason: "empty_sale"}
		}
		if err := s.Inventory.DeductForSale(tx, &sale); err != nil {
			return err
		}
		res := tx.Model(&models.Sale{}).
			Where("id = ? AND version = ?", sale.ID, sale.Version).
			Updates(map[string]any{"stock_deducted": true, "version": sale.Version + 1})
		if res.Error != nil {
			return &PersistenceError{Op: "finalize sale", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return &ConcurrencyConflictError{Entity: "sale", ID: sale.ID}
		}
		return nil
	})
}

// Delete removes a sale and its items, restocking every deducted quantity
// through the inventory ledger in the same transaction. Restock is explicit
// orchestration here, never a lifecycle hook.
func (s *SaleService) Delete(saleID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.Preload("Items").First(&sale, saleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return &PersistenceError{Op: "load sale", Err: err}
		}
		if sale.StockDeducted {
			if err := s.Inventory.RestockForSale(tx, &sale); err != nil {
				return err
			}
		}
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.SaleItem{}).Error; err != nil {
			return &PersistenceError{Op: "delete sale items", Err: err}
		}
		if err := tx.Delete(&models.Sale{}, sale.ID).Error; err != nil {
			return &PersistenceError{Op: "delete sale", Err: err}
		}
		return nil
	})
}

// PaymentStatus derives the repayment state of a sale as of the given time.
func (s *SaleService) PaymentStatus(saleID uint, asOf time.Time) (*PaymentStatus, error) {
	var sale models.Sale
	if err := s.DB.Preload("Items").First(&sale, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "load sale", Err: err}
	}
	total := sale.TotalDue()
	percent := decimal.Zero
	if total.IsPositive() {
		percent = sale.PaidAmount.Mul(hundred).Div(total).Round(1)
	}
	st := &PaymentStatus{
		TotalAmount:     total,
		PaidAmount:      sale.PaidAmount,
		RemainingAmount: sale.RemainingAmount,
		ProgressPercent: percent,
		IsCompleted:     sale.Status == models.SaleStatusCompleted,
	}
	if !st.IsCompleted {
		p := s.Progress.Progress(&sale, asOf)
		st.NextPaymentDate = &p.NextPaymentDue
	}
	return st, nil
}
