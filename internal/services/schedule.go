package services

import "github.com/shopspring/decimal"

// SchedulePlan holds the derived financing numbers for an installment sale.
type SchedulePlan struct {
	Principal          decimal.Decimal
	InterestAmount     decimal.Decimal
	MonthlyInstallment decimal.Decimal
}

// ScheduleService computes installment plans. Pure: recomputing from the same
// inputs always yields the same plan, so it can be re-run whenever any plan
// input changes before persistence.
type ScheduleService struct{}

func NewScheduleService() *ScheduleService { return &ScheduleService{} }

// ComputePlan derives the interest amount and the fixed monthly installment.
// Interest is based on the principal remaining after the down payment:
//
//	principal = finalPrice - downPayment
//	interest  = principal * ratePercent / 100
//	monthly   = (principal + interest) / months
func (s *ScheduleService) ComputePlan(finalPrice, downPayment, ratePercent decimal.Decimal, months int) (SchedulePlan, error) {
	if downPayment.IsNegative() {
		return SchedulePlan{}, &ValidationError{Field: "down_payment", Reason: "must_not_be_negative"}
	}
	if downPayment.GreaterThan(finalPrice) {
		return SchedulePlan{}, &ValidationError{Field: "down_payment", Reason: "exceeds_final_price"}
	}
	if months < 1 {
		return SchedulePlan{}, &ValidationError{Field: "months_count", Reason: "must_be_positive"}
	}
	if ratePercent.IsNegative() || ratePercent.GreaterThan(hundred) {
		return SchedulePlan{}, &ValidationError{Field: "interest_rate", Reason: "out_of_range"}
	}
	principal := finalPrice.Sub(downPayment)
	interest := principal.Mul(ratePercent).Div(hundred).Round(2)
	monthly := principal.Add(interest).Div(decimal.NewFromInt(int64(months))).Round(2)
	return SchedulePlan{
		Principal:          principal,
		InterestAmount:     interest,
		MonthlyInstallment: monthly,
	}, nil
}
