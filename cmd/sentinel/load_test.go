package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rocjay1/spend-sentinel/internal/aggregate"
	"github.com/rocjay1/spend-sentinel/internal/duplicates"
	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const streamingCSV = `Date,Description,Amount,Category,ID
2025-01-01,Streaming,-15.99,Subscriptions,a
2025-01-15,Streaming,-15.99,Subscriptions,b
2025-02-01,Streaming,-15.99,Subscriptions,c
2025-02-03,Streaming,-15.99,Subscriptions,d
2025-02-04,not a number,oops,Dining,e`

func TestLoadTransactions(t *testing.T) {
	txs, err := loadTransactions(writeFile(t, "export.csv", streamingCSV))

	require.NoError(t, err)
	require.Len(t, txs, 4)
	for _, tx := range txs {
		assert.True(t, tx.Traits.Resolved)
		assert.Equal(t, models.KindSubscription, tx.Kind)
	}
}

func TestLoadTransactions_Errors(t *testing.T) {
	_, err := loadTransactions(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = loadTransactions(writeFile(t, "bad.csv", "Date,Description\n2025-01-01,Coffee"))
	assert.Error(t, err)
}

func TestLoadOwnership(t *testing.T) {
	yamlPath := writeFile(t, "accounts.yaml", `
- key: ally-1111
  name: Ally Checking
  mode: spending
- key: chase-4821
  mode: payment
- key: ""
  mode: spending
`)
	own, err := loadOwnership(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, models.Ownership{"ally-1111": models.ModeSpending, "chase-4821": models.ModePayment}, own)

	jsonPath := writeFile(t, "accounts.json", `[{"key":"ally-2222","mode":"sometimes"}]`)
	own, err = loadOwnership(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, models.ModeNotMine, own.ModeOf("ally-2222"))

	own, err = loadOwnership("")
	require.NoError(t, err)
	assert.Empty(t, own)
}

func TestLoadOwnership_NameOnlyEntriesMatchTransfers(t *testing.T) {
	txs, err := loadTransactions(writeFile(t, "export.csv", `Date,Description,Amount,Category,Source Account,Target Account
2025-08-05,Transfer to savings,-500,Transfer,Ally Checking ending 1111,Ally Savings ending 2222`))
	require.NoError(t, err)

	own, err := loadOwnership(writeFile(t, "accounts.yaml", `
- name: Ally Checking ending 1111
  mode: spending
- key: Ally Savings ending 2222
  mode: spending
`))
	require.NoError(t, err)

	summary := aggregate.Summarize(txs, own)
	assert.True(t, summary.InternalTransferTotal.Equal(decimal.RequireFromString("500")), summary.InternalTransferTotal.String())
	assert.True(t, summary.TotalSpending.IsZero(), summary.TotalSpending.String())
}

func TestLoadDecisions(t *testing.T) {
	path := writeFile(t, "decisions.yaml", "c: dismissed\nd: confirmed\ne: maybe\n")

	decisions, err := loadDecisions(path)

	require.NoError(t, err)
	assert.Equal(t, models.Decisions{"c": models.DecisionDismissed, "d": models.DecisionConfirmed}, decisions)

	_, err = loadDecisions(writeFile(t, "broken.yaml", "c: [unterminated"))
	assert.Error(t, err)
}

func TestDuplicatesFromFiles(t *testing.T) {
	txs, err := loadTransactions(writeFile(t, "export.csv", streamingCSV))
	require.NoError(t, err)
	decisions, err := loadDecisions(writeFile(t, "decisions.yaml", "c: dismissed\n"))
	require.NoError(t, err)

	flagged := duplicates.Flagged(duplicates.DetectDefault(txs, decisions))

	require.Len(t, flagged, 1)
	assert.Equal(t, "d", flagged[0].TransactionID)
}

func TestFilterMonth(t *testing.T) {
	txs, err := loadTransactions(writeFile(t, "export.csv", streamingCSV))
	require.NoError(t, err)

	assert.Len(t, filterMonth(txs, ""), 4)
	assert.Len(t, filterMonth(txs, "2025-02"), 2)
	assert.Empty(t, filterMonth(txs, "2024-12"))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"a": 1}, true))
	assert.Equal(t, "{\"a\":1}\n", buf.String())

	buf.Reset()
	require.NoError(t, writeJSON(&buf, map[string]int{"a": 1}, false))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}
