package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rocjay1/spend-sentinel/internal/csvparse"
	"github.com/rocjay1/spend-sentinel/internal/models"
	"gopkg.in/yaml.v3"
)

// loadTransactions parses a CSV export. Bad rows are logged and skipped.
func loadTransactions(path string) ([]models.Transaction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	txs, rowErrors := csvparse.ParseCSV(string(raw))
	for _, e := range rowErrors {
		slog.Warn("skipped csv row", "file", path, "error", e)
	}
	if len(txs) == 0 && len(rowErrors) > 0 {
		return nil, fmt.Errorf("no valid transactions in %s", path)
	}
	return csvparse.Resolve(txs)
}

// loadOwnership reads a list of account entries. YAML is a superset of
// JSON so both formats are accepted. An empty path means no owned accounts.
func loadOwnership(path string) (models.Ownership, error) {
	if path == "" {
		return models.Ownership{}, nil
	}
	var accounts []models.AccountOwnership
	if err := readYAML(path, &accounts); err != nil {
		return nil, err
	}
	return models.OwnershipFromAccounts(accounts), nil
}

// loadDecisions reads a transaction ID to decision map, dropping unknown values.
func loadDecisions(path string) (models.Decisions, error) {
	decisions := models.Decisions{}
	if path == "" {
		return decisions, nil
	}
	var raw map[string]string
	if err := readYAML(path, &raw); err != nil {
		return nil, err
	}
	for id, d := range raw {
		decision := models.Decision(d)
		if !decision.Valid() {
			slog.Warn("ignoring unknown decision", "transaction_id", id, "decision", d)
			continue
		}
		decisions[id] = decision
	}
	return decisions, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("could not parse %s: %w", path, err)
	}
	return nil
}

// filterMonth keeps transactions dated in month. Empty keeps everything.
func filterMonth(txs []models.Transaction, month string) []models.Transaction {
	if month == "" {
		return txs
	}
	var out []models.Transaction
	for _, t := range txs {
		if t.Month() == month {
			out = append(out, t)
		}
	}
	return out
}
