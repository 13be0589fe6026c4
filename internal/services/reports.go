package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mourad-dev/boutique/internal/models"
)

// Period filter presets.
const (
	PeriodAllTime  = "all_time"
	PeriodThisYear = "this_year"
)

// PeriodFilter selects the reporting window. Precedence: MonthKey ("2006-01"),
// then Preset, then the explicit From/To range (To exclusive); everything
// empty means all time.
type PeriodFilter struct {
	Preset   string
	MonthKey string
	From     *time.Time
	To       *time.Time
}

func (f PeriodFilter) bounds(now time.Time) (from, to time.Time, bounded bool) {
	if f.MonthKey != "" {
		if t, err := time.Parse("2006-01", f.MonthKey); err == nil {
			return t, t.AddDate(0, 1, 0), true
		}
	}
	switch f.Preset {
	case PeriodThisYear:
		from = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return from, from.AddDate(1, 0, 0), true
	case PeriodAllTime:
		return time.Time{}, time.Time{}, false
	}
	if f.From != nil || f.To != nil {
		from = time.Time{}
		to = now.AddDate(100, 0, 0)
		if f.From != nil {
			from = *f.From
		}
		if f.To != nil {
			to = *f.To
		}
		return from, to, true
	}
	return time.Time{}, time.Time{}, false
}

// SummaryRow is one calendar month of the financial summary.
type SummaryRow struct {
	Month    string          `json:"month"` // YYYY-MM
	Revenue  decimal.Decimal `json:"revenue"`
	Capital  decimal.Decimal `json:"capital"`
	Profit   decimal.Decimal `json:"profit"`
	Expenses decimal.Decimal `json:"expenses"`
}

// FinancialSummary aggregates payment-level revenue, its capital/profit split
// and expenses over a period.
type FinancialSummary struct {
	Revenue   decimal.Decimal `json:"revenue"`
	Capital   decimal.Decimal `json:"capital"`
	Profit    decimal.Decimal `json:"profit"`
	Expenses  decimal.Decimal `json:"expenses"`
	NetProfit decimal.Decimal `json:"net_profit"`
	Rows      []SummaryRow    `json:"rows"`
}

// ReportService derives period statistics by walking every sale's payment
// ledger. Revenue is recognized when a payment lands, not when the sale is
// opened, so an installment sale contributes to each month it was paid in.
type ReportService struct {
	DB       *gorm.DB
	Progress *ProgressService
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db, Progress: NewProgressService()}
}

// FinancialSummary buckets every payment entry by the calendar month of its
// date, apportions it into capital and profit, and nets expenses off. The
// clock is an explicit parameter so presets like "this_year" stay testable.
func (s *ReportService) FinancialSummary(filter PeriodFilter, now time.Time) (*FinancialSummary, error) {
	var sales []models.Sale
	if err := s.DB.Preload("Items").Find(&sales).Error; err != nil {
		return nil, &PersistenceError{Op: "load sales", Err: err}
	}
	from, to, bounded := filter.bounds(now)

	summary := &FinancialSummary{}
	rows := map[string]*SummaryRow{}
	row := func(k string) *SummaryRow {
		if r, ok := rows[k]; ok {
			return r
		}
		r := &SummaryRow{Month: k}
		rows[k] = r
		return r
	}

	for i := range sales {
		sale := &sales[i]
		for _, p := range sale.Payments {
			if bounded && (p.Date.Before(from) || !p.Date.Before(to)) {
				continue
			}
			capital, profit := s.Progress.Apportion(sale, p.Amount)
			r := row(monthKey(p.Date))
			r.Revenue = r.Revenue.Add(p.Amount)
			r.Capital = r.Capital.Add(capital)
			r.Profit = r.Profit.Add(profit)
			summary.Revenue = summary.Revenue.Add(p.Amount)
			summary.Capital = summary.Capital.Add(capital)
			summary.Profit = summary.Profit.Add(profit)
		}
	}

	q := s.DB.Model(&models.Expense{})
	if bounded {
		q = q.Where("date >= ? AND date < ?", from, to)
	}
	var expenses []models.Expense
	if err := q.Find(&expenses).Error; err != nil {
		return nil, &PersistenceError{Op: "load expenses", Err: err}
	}
	for _, e := range expenses {
		r := row(monthKey(e.Date))
		r.Expenses = r.Expenses.Add(e.Amount)
		summary.Expenses = summary.Expenses.Add(e.Amount)
	}

	summary.NetProfit = summary.Profit.Sub(summary.Expenses)

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	summary.Rows = make([]SummaryRow, 0, len(keys))
	for _, k := range keys {
		summary.Rows = append(summary.Rows, *rows[k])
	}
	return summary, nil
}
