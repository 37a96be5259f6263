package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/shopspring/decimal"
)

const (
	accountsPartition  = "ACCOUNTS"
	decisionsPartition = "DECISIONS"
)

// transactionPartition is the partition key of the month holding t.
func transactionPartition(t models.Transaction) string {
	return "tx_" + t.Month()
}

// monthPartition is the partition key for a YYYY-MM month.
func monthPartition(month string) string {
	return "tx_" + month
}

func transactionEntity(pk string, t models.Transaction, importedAt string) (map[string]any, error) {
	traits, err := json.Marshal(t.Traits)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal traits: %w", err)
	}
	entity := map[string]any{
		"PartitionKey": pk,
		"RowKey":       t.ID,
		"Date":         t.Date.String(),
		"Description":  t.Description,
		"Amount":       t.Amount.String(),
		"Category":     string(t.Category),
		"Kind":         string(t.Kind),
		"Traits":       string(traits),
	}
	if importedAt != "" {
		entity["ImportedAt"] = importedAt
	}
	if t.SourceAccountKey != "" {
		entity["SourceAccountKey"] = t.SourceAccountKey
	}
	if t.TargetAccountKey != "" {
		entity["TargetAccountKey"] = t.TargetAccountKey
	}
	return entity, nil
}

// entityFields wraps a parsed table entity with typed accessors.
type entityFields map[string]any

func (e entityFields) str(key string) string {
	if v, ok := e[key].(string); ok {
		return v
	}
	return ""
}

func (e entityFields) decimal(key string) decimal.Decimal {
	switch v := e[key].(type) {
	case string:
		d, _ := decimal.NewFromString(v)
		return d
	case float64:
		return decimal.NewFromFloat(v)
	}
	return decimal.Zero
}

func parseTransactionEntity(raw []byte) (models.Transaction, error) {
	var e entityFields
	if err := json.Unmarshal(raw, &e); err != nil {
		return models.Transaction{}, fmt.Errorf("failed to unmarshal transaction entity: %w", err)
	}

	t := models.Transaction{
		ID:               e.str("RowKey"),
		Amount:           e.decimal("Amount"),
		Description:      e.str("Description"),
		Category:         models.Category(e.str("Category")),
		Kind:             models.Kind(e.str("Kind")),
		SourceAccountKey: e.str("SourceAccountKey"),
		TargetAccountKey: e.str("TargetAccountKey"),
	}

	// Undated rows are kept; the engine skips them for date-based reducers.
	if d, err := civil.ParseDate(e.str("Date")); err == nil {
		t.Date = d
	}

	if traits := e.str("Traits"); traits != "" {
		if err := json.Unmarshal([]byte(traits), &t.Traits); err != nil {
			t.Traits = models.Traits{}
		}
	}
	return t, nil
}

func accountEntity(a models.AccountOwnership) map[string]any {
	return map[string]any{
		"PartitionKey": accountsPartition,
		"RowKey":       a.ID,
		"Key":          a.Key,
		"Name":         a.Name,
		"Mode":         string(a.Mode),
	}
}

func parseAccountEntity(raw []byte) (models.AccountOwnership, error) {
	var e entityFields
	if err := json.Unmarshal(raw, &e); err != nil {
		return models.AccountOwnership{}, fmt.Errorf("failed to unmarshal account entity: %w", err)
	}
	return models.AccountOwnership{
		ID:   e.str("RowKey"),
		Key:  e.str("Key"),
		Name: e.str("Name"),
		Mode: models.ParseOwnershipMode(e.str("Mode")),
	}, nil
}

func decisionEntity(transactionID string, d models.Decision) map[string]any {
	return map[string]any{
		"PartitionKey": decisionsPartition,
		"RowKey":       transactionID,
		"Decision":     string(d),
	}
}

// escapeFilter quotes a value for an OData string literal.
func escapeFilter(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}
