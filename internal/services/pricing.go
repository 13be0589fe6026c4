package services

import "github.com/shopspring/decimal"

// Discount types accepted by ComputeTotals.
const (
	DiscountFixed   = "fixed"
	DiscountPercent = "percent"
)

var hundred = decimal.NewFromInt(100)

// LineItem is a pricing input: a unit price snapshot and a quantity.
type LineItem struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// PricingService computes sale totals. Pure; no DB access, no side effects.
type PricingService struct{}

func NewPricingService() *PricingService { return &PricingService{} }

// ComputeTotals returns the items subtotal and the final price after
// discount. A fixed discount larger than the subtotal is rejected so a final
// price can never go negative; an empty discount type means fixed.
func (s *PricingService) ComputeTotals(items []LineItem, discountType string, discountValue decimal.Decimal) (subtotal, finalPrice decimal.Decimal, err error) {
	if len(items) == 0 {
		return decimal.Zero, decimal.Zero, &ValidationError{Field: "items", Reason: "required"}
	}
	for _, it := range items {
		if it.UnitPrice.IsNegative() {
			return decimal.Zero, decimal.Zero, &ValidationError{Field: "unit_price", Reason: "must_not_be_negative"}
		}
		if it.Quantity < 1 {
			return decimal.Zero, decimal.Zero, &ValidationError{Field: "quantity", Reason: "must_be_positive"}
		}
		subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	if discountValue.IsNegative() {
		return decimal.Zero, decimal.Zero, &ValidationError{Field: "discount_value", Reason: "must_not_be_negative"}
	}
	var discount decimal.Decimal
	switch discountType {
	case DiscountPercent:
		if discountValue.GreaterThan(hundred) {
			return decimal.Zero, decimal.Zero, &ValidationError{Field: "discount_value", Reason: "percent_out_of_range"}
		}
		discount = subtotal.Mul(discountValue).Div(hundred).Round(2)
	case DiscountFixed, "":
		if discountValue.GreaterThan(subtotal) {
			return decimal.Zero, decimal.Zero, &ValidationError{Field: "discount_value", Reason: "exceeds_subtotal"}
		}
		discount = discountValue
	default:
		return decimal.Zero, decimal.Zero, &ValidationError{Field: "discount_type", Reason: "unknown"}
	}
	finalPrice = subtotal.Sub(discount)
	return subtotal, finalPrice, nil
}
