package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mourad-dev/boutique/internal/models"
)

// PaymentService owns the sale payment ledger. Recording a payment is the only
// way a sale's paid/remaining/status columns change after creation.
type PaymentService struct {
	DB *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService { return &PaymentService{DB: db} }

// Record appends one (date, amount) entry to the sale's ledger and re-derives
// paid amount, remaining amount and status in a single guarded update. The
// whole write commits or none of it does; a version mismatch means another
// mutation won the race and the caller should retry.
//
// The date is taken as-is: past and future dates are allowed, and entries stay
// in insertion order. Stock is never touched here.
func (s *PaymentService) Record(saleID uint, amount decimal.Decimal, date time.Time) (*models.Sale, error) {
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must_be_positive"}
	}
	var sale models.Sale
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&sale, saleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return &PersistenceError{Op: "load sale", Err: err}
		}

		payments := make([]models.PaymentEntry, 0, len(sale.Payments)+1)
		payments = append(payments, sale.Payments...)
		payments = append(payments, models.PaymentEntry{Date: date, Amount: amount})

		paid := decimal.Zero
		for _, p := range payments {
			paid = paid.Add(p.Amount)
		}
		remaining := sale.TotalDue().Sub(paid)
		status := models.SaleStatusOngoing
		if remaining.LessThanOrEqual(decimal.Zero) {
			status = models.SaleStatusCompleted
		}

		res := tx.Model(&models.Sale{}).
			Where("id = ? AND version = ?", sale.ID, sale.Version).
			Updates(map[string]any{
				"payments":         datatypes.NewJSONSlice(payments),
				"paid_amount":      paid,
				"remaining_amount": remaining,
				"status":           status,
				"version":          sale.Version + 1,
			})
		if res.Error != nil {
			return &PersistenceError{Op: "update sale ledger", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return &ConcurrencyConflictError{Entity: "sale", ID: sale.ID}
		}

		sale.Payments = datatypes.NewJSONSlice(payments)
		sale.PaidAmount = paid
		sale.RemainingAmount = remaining
		sale.Status = status
		sale.Version++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}
