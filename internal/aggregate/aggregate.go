// Package aggregate reduces a transaction list into totals, category
// breakdowns, daily cashflow and internal-transfer pairings. Reducers never
// mutate their input.
package aggregate

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/rocjay1/spend-sentinel/internal/ownership"
	"github.com/shopspring/decimal"
)

// NetIncome sums real income. Internal transfers and refunds are excluded.
func NetIncome(txs []models.Transaction, own models.Ownership) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if ownership.IsRealIncome(t, own) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// GrossSpending sums the absolute value of real spending before refunds.
func GrossSpending(txs []models.Transaction, own models.Ownership) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if ownership.IsRealSpending(t, own) {
			total = total.Add(t.Amount.Abs())
		}
	}
	return total
}

// RefundTotal sums the absolute value of refunds.
func RefundTotal(txs []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if ownership.IsRefund(t) {
			total = total.Add(t.Amount.Abs())
		}
	}
	return total
}

// TotalSpending is gross real spending less refunds.
func TotalSpending(txs []models.Transaction, own models.Ownership) decimal.Decimal {
	return GrossSpending(txs, own).Sub(RefundTotal(txs))
}

// FeeTotal sums the absolute value of fee charges.
func FeeTotal(txs []models.Transaction, own models.Ownership) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if ownership.IsFee(t) && ownership.IsRealSpending(t, own) {
			total = total.Add(t.Amount.Abs())
		}
	}
	return total
}

// CategoryTotals groups real spending by category.
func CategoryTotals(txs []models.Transaction, own models.Ownership) map[models.Category]decimal.Decimal {
	totals := make(map[models.Category]decimal.Decimal)
	for _, t := range txs {
		if !ownership.IsRealSpending(t, own) {
			continue
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount.Abs())
	}
	return totals
}

// DailyBucket is one calendar day of cashflow.
type DailyBucket struct {
	Date    civil.Date      `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// DailyCashflow buckets transactions by calendar date, ascending.
// Undated transactions, internal and ignored transfers contribute nothing;
// refunds are inflow.
func DailyCashflow(txs []models.Transaction, own models.Ownership) []DailyBucket {
	byDay := make(map[civil.Date]*DailyBucket)
	for _, t := range txs {
		if !t.Dated() {
			continue
		}

		var income, expense decimal.Decimal
		switch {
		case ownership.IsRefund(t):
			income = t.Amount.Abs()
		case ownership.IsRealIncome(t, own):
			income = t.Amount
		case ownership.IsRealSpending(t, own):
			expense = t.Amount.Abs()
		default:
			continue
		}

		b, ok := byDay[t.Date]
		if !ok {
			b = &DailyBucket{Date: t.Date}
			byDay[t.Date] = b
		}
		b.Income = b.Income.Add(income)
		b.Expense = b.Expense.Add(expense)
		b.Net = b.Income.Sub(b.Expense)
	}

	out := make([]DailyBucket, 0, len(byDay))
	for _, b := range byDay {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
