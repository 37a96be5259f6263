package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rocjay1/spend-sentinel/internal/aggregate"
	"github.com/rocjay1/spend-sentinel/internal/categories"
	"github.com/rocjay1/spend-sentinel/internal/duplicates"
	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/rocjay1/spend-sentinel/internal/ownership"
	"github.com/rocjay1/spend-sentinel/internal/textnorm"
	"github.com/shopspring/decimal"
)

type summaryCmd struct {
	CSV      string `name:"csv" required:"" help:"Transaction export to read."`
	Accounts string `help:"YAML or JSON list of owned accounts."`
	Month    string `help:"Restrict to one month (YYYY-MM)."`
}

func (c *summaryCmd) Run(ctx *globals) error {
	txs, err := loadTransactions(c.CSV)
	if err != nil {
		return err
	}
	own, err := loadOwnership(c.Accounts)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, aggregate.Summarize(filterMonth(txs, c.Month), own), ctx.Compact)
}

type duplicatesCmd struct {
	CSV       string `name:"csv" required:"" help:"Transaction export to read."`
	Decisions string `help:"YAML or JSON map of transaction ID to confirmed or dismissed."`
	Flagged   bool   `help:"Print only the unresolved flags."`
}

func (c *duplicatesCmd) Run(ctx *globals) error {
	txs, err := loadTransactions(c.CSV)
	if err != nil {
		return err
	}
	decisions, err := loadDecisions(c.Decisions)
	if err != nil {
		return err
	}

	clusters := duplicates.DetectDefault(txs, decisions)
	if c.Flagged {
		return writeJSON(os.Stdout, duplicates.Flagged(clusters), ctx.Compact)
	}
	return writeJSON(os.Stdout, clusters, ctx.Compact)
}

type classifyCmd struct {
	Description string `arg:"" help:"Statement description."`
	Amount      string `default:"-1" help:"Signed amount, negative for outflows."`
	Category    string `help:"Category reported by the bank, if any."`
}

type classification struct {
	Merchant string          `json:"merchant"`
	Category models.Category `json:"category"`
	Kind     models.Kind     `json:"kind"`
	Movement string          `json:"movement"`
	Traits   models.Traits   `json:"traits"`
}

func (c *classifyCmd) Run(ctx *globals) error {
	amount, err := decimal.NewFromString(c.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", c.Amount, err)
	}

	tx := models.Transaction{
		Description: c.Description,
		Amount:      amount,
		Category:    categories.NormalizeCategoryName(c.Category),
	}
	if c.Category == "" {
		tx.Category, _ = categories.SuggestCategory(c.Description)
	}
	tx.Category = categories.Refine(tx.Category, c.Description)
	tx.Kind = categories.InferKind(tx.Category, c.Description, amount, false)
	tx.Traits = categories.Resolve(tx)

	return writeJSON(os.Stdout, classification{
		Merchant: textnorm.Merchant(c.Description),
		Category: tx.Category,
		Kind:     tx.Kind,
		Movement: string(ownership.Resolve(tx, nil)),
		Traits:   tx.Traits,
	}, ctx.Compact)
}

func writeJSON(w io.Writer, v any, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
