package aggregate

import (
	"sort"

	"github.com/rocjay1/spend-sentinel/internal/categories"
	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/shopspring/decimal"
)

// BudgetLine compares spending in one category with its income guideline.
type BudgetLine struct {
	Category  models.Category  `json:"category"`
	Group     categories.Group `json:"group"`
	Spent     decimal.Decimal  `json:"spent"`
	Guideline decimal.Decimal  `json:"guideline"`
	Ratio     decimal.Decimal  `json:"ratio"`
	Over      bool             `json:"over"`
}

// BudgetReport returns one line per category carrying a guideline ratio,
// sorted by category name.
func BudgetReport(txs []models.Transaction, own models.Ownership) []BudgetLine {
	income := NetIncome(txs, own)
	totals := CategoryTotals(txs, own)

	spent := make(map[models.Category]decimal.Decimal)
	for c, v := range totals {
		nc := categories.NormalizeCategoryName(string(c))
		spent[nc] = spent[nc].Add(v)
	}

	var lines []BudgetLine
	for _, r := range categories.Rules() {
		if r.BudgetRatio.IsZero() {
			continue
		}
		guideline := income.Mul(r.BudgetRatio).Round(2)
		s := spent[r.Category]
		lines = append(lines, BudgetLine{
			Category:  r.Category,
			Group:     r.Group,
			Spent:     s,
			Guideline: guideline,
			Ratio:     r.BudgetRatio,
			Over:      s.GreaterThan(guideline),
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Category < lines[j].Category })
	return lines
}
