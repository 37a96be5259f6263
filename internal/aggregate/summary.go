package aggregate

import (
	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/shopspring/decimal"
)

// Summary bundles every reducer for one transaction set.
type Summary struct {
	NetIncome             decimal.Decimal                     `json:"netIncome"`
	GrossSpending         decimal.Decimal                     `json:"grossSpending"`
	RefundTotal           decimal.Decimal                     `json:"refundTotal"`
	TotalSpending         decimal.Decimal                     `json:"totalSpending"`
	FeeTotal              decimal.Decimal                     `json:"feeTotal"`
	InternalTransferTotal decimal.Decimal                     `json:"internalTransferTotal"`
	CategoryTotals        map[models.Category]decimal.Decimal `json:"categoryTotals"`
	DailyCashflow         []DailyBucket                       `json:"dailyCashflow"`
	Transfers             TransferPairing                     `json:"transfers"`
	Budget                []BudgetLine                        `json:"budget"`
}

// Summarize runs every reducer over txs.
func Summarize(txs []models.Transaction, own models.Ownership) Summary {
	transfers := PairInternalTransfers(txs, own)

	return Summary{
		NetIncome:             NetIncome(txs, own),
		GrossSpending:         GrossSpending(txs, own),
		RefundTotal:           RefundTotal(txs),
		TotalSpending:         TotalSpending(txs, own),
		FeeTotal:              FeeTotal(txs, own),
		InternalTransferTotal: transfers.Total(),
		CategoryTotals:        CategoryTotals(txs, own),
		DailyCashflow:         DailyCashflow(txs, own),
		Transfers:             transfers,
		Budget:                BudgetReport(txs, own),
	}
}
