package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mourad-dev/boutique/internal/models"
)

// ProviderService tracks what the shop owes its suppliers. Structurally the
// same append-only ledger pattern as sale payments: bills accumulate debt,
// payments reduce it, the balance is always derived.
type ProviderService struct {
	DB *gorm.DB
}

func NewProviderService(db *gorm.DB) *ProviderService { return &ProviderService{DB: db} }

// AddBill registers a supplier invoice. AmountPaid is what was settled at
// reception and may not exceed the bill total.
func (s *ProviderService) AddBill(providerID uint, reference string, totalAmount, amountPaid decimal.Decimal, billDate time.Time) (*models.ProviderBill, error) {
	if !totalAmount.IsPositive() {
		return nil, &ValidationError{Field: "total_amount", Reason: "must_be_positive"}
	}
	if amountPaid.IsNegative() || amountPaid.GreaterThan(totalAmount) {
		return nil, &ValidationError{Field: "amount_paid", Reason: "out_of_range"}
	}
	if err := s.ensureProvider(providerID); err != nil {
		return nil, err
	}
	bill := models.ProviderBill{
		ProviderID:  providerID,
		Reference:   reference,
		TotalAmount: totalAmount,
		AmountPaid:  amountPaid,
		BillDate:    billDate,
	}
	if err := s.DB.Create(&bill).Error; err != nil {
		return nil, &PersistenceError{Op: "create provider bill", Err: err}
	}
	return &bill, nil
}

// RecordPayment appends a payment against the provider's running balance.
func (s *ProviderService) RecordPayment(providerID uint, amount decimal.Decimal, date time.Time, note string) (*models.ProviderPayment, error) {
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must_be_positive"}
	}
	if err := s.ensureProvider(providerID); err != nil {
		return nil, err
	}
	payment := models.ProviderPayment{ProviderID: providerID, Amount: amount, Date: date, Note: note}
	if err := s.DB.Create(&payment).Error; err != nil {
		return nil, &PersistenceError{Op: "create provider payment", Err: err}
	}
	return &payment, nil
}

// Outstanding derives the amount still owed:
// sum(bill.total - bill.amount_paid) - sum(payments).
func (s *ProviderService) Outstanding(providerID uint) (decimal.Decimal, error) {
	if err := s.ensureProvider(providerID); err != nil {
		return decimal.Zero, err
	}
	var bills []models.ProviderBill
	if err := s.DB.Where("provider_id = ?", providerID).Find(&bills).Error; err != nil {
		return decimal.Zero, &PersistenceError{Op: "load provider bills", Err: err}
	}
	var payments []models.ProviderPayment
	if err := s.DB.Where("provider_id = ?", providerID).Find(&payments).Error; err != nil {
		return decimal.Zero, &PersistenceError{Op: "load provider payments", Err: err}
	}
	owed := decimal.Zero
	for _, b := range bills {
		owed = owed.Add(b.TotalAmount.Sub(b.AmountPaid))
	}
	for _, p := range payments {
		owed = owed.Sub(p.Amount)
	}
	return owed, nil
}

func (s *ProviderService) ensureProvider(providerID uint) error {
	var provider models.Provider
	if err := s.DB.Select("id").First(&provider, providerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return &PersistenceError{Op: "load provider", Err: err}
	}
	return nil
}
