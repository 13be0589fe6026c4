package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mourad-dev/boutique/internal/models"
)

// MonthProgress summarizes one calendar month of a sale's schedule: what the
// plan expected against what was actually paid, with the paid amount split
// into capital and profit.
type MonthProgress struct {
	Month    string          `json:"month"` // YYYY-MM
	Expected decimal.Decimal `json:"expected"`
	Paid     decimal.Decimal `json:"paid"`
	Capital  decimal.Decimal `json:"capital"`
	Profit   decimal.Decimal `json:"profit"`
}

// ScheduleProgress is the derived repayment picture of a sale at a point in
// time.
type ScheduleProgress struct {
	NextPaymentDue time.Time       `json:"next_payment_due"`
	Overdue        bool            `json:"overdue"`
	Months         []MonthProgress `json:"months"`
}

// ProgressService reconstructs schedule progress and apportions payments
// between capital and profit. Read-only over the sale's persisted ledger; it
// never mutates anything and is cheap enough to recompute on every read.
type ProgressService struct{}

func NewProgressService() *ProgressService { return &ProgressService{} }

func monthKey(t time.Time) string { return t.Format("2006-01") }

// addMonths advances t by n calendar months, clamping the day so a month-end
// date never spills into the following month (Jan 31 + 1 = Feb 28, not Mar 3,
// which plain AddDate would produce).
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := t.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

// Apportion splits a payment amount into a capital (cost recovery) part and a
// profit part, in proportion to the sale's monthly capital and profit
// components:
//
//	monthlyCapital = (purchaseCost - downPayment) / months
//	monthlyProfit  = (finalPrice + interest - purchaseCost) / months
//
// Profit takes the rounding remainder so the two parts always sum to the
// payment amount.
func (s *ProgressService) Apportion(sale *models.Sale, amount decimal.Decimal) (capital, profit decimal.Decimal) {
	if sale.MonthsCount < 1 || amount.IsZero() {
		return decimal.Zero, decimal.Zero
	}
	months := decimal.NewFromInt(int64(sale.MonthsCount))
	cost := sale.PurchaseCost()
	monthlyCapital := cost.Sub(sale.DownPayment).Div(months)
	monthlyProfit := sale.TotalDue().Sub(cost).Div(months)
	base := monthlyCapital.Add(monthlyProfit)
	if base.IsZero() {
		return decimal.Zero, decimal.Zero
	}
	portion := amount.Div(base)
	capital = monthlyCapital.Mul(portion).Round(2)
	profit = amount.Sub(capital)
	return capital, profit
}

// Progress walks the payment ledger and buckets every payment by the calendar
// month containing its date. Ledger entries are in insertion order, not date
// order, so grouping is explicit. The month list covers the whole plan plus
// any later month that still received a payment, sorted chronologically.
func (s *ProgressService) Progress(sale *models.Sale, asOf time.Time) ScheduleProgress {
	paidByMonth := map[string]decimal.Decimal{}
	var lastPayment time.Time
	for _, p := range sale.Payments {
		k := monthKey(p.Date)
		paidByMonth[k] = paidByMonth[k].Add(p.Amount)
		if p.Date.After(lastPayment) {
			lastPayment = p.Date
		}
	}

	// Iterate from the first of the creation month: adding months to the raw
	// creation date skips or duplicates months when it falls on day 29-31.
	start := time.Date(sale.CreatedAt.Year(), sale.CreatedAt.Month(), 1, 0, 0, 0, 0, sale.CreatedAt.Location())
	planMonths := map[string]bool{}
	months := make([]MonthProgress, 0, sale.MonthsCount)
	for i := 0; i < sale.MonthsCount; i++ {
		k := monthKey(start.AddDate(0, i, 0))
		planMonths[k] = true
		capital, profit := s.Apportion(sale, paidByMonth[k])
		months = append(months, MonthProgress{
			Month:    k,
			Expected: sale.MonthlyInstallment,
			Paid:     paidByMonth[k],
			Capital:  capital,
			Profit:   profit,
		})
	}
	// Payments landing outside the plan window still show up.
	var extra []string
	for k := range paidByMonth {
		if !planMonths[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		capital, profit := s.Apportion(sale, paidByMonth[k])
		months = append(months, MonthProgress{Month: k, Paid: paidByMonth[k], Capital: capital, Profit: profit})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })

	anchor := lastPayment
	if anchor.IsZero() {
		anchor = sale.CreatedAt
	}
	nextDue := addMonths(anchor, 1)
	overdue := sale.Status != models.SaleStatusCompleted && nextDue.Before(asOf)

	return ScheduleProgress{NextPaymentDue: nextDue, Overdue: overdue, Months: months}
}

// IsOverdue reports whether the next installment is late: the sale is not
// completed and a full month has passed since the last payment (or since
// creation when nothing was paid yet).
func (s *ProgressService) IsOverdue(sale *models.Sale, asOf time.Time) bool {
	return s.Progress(sale, asOf).Overdue
}
