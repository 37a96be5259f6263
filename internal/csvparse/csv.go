package csvparse

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/rocjay1/spend-sentinel/internal/categories"
	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/rocjay1/spend-sentinel/internal/textnorm"
	"github.com/shopspring/decimal"
)

// ErrNilTransactions is returned by Resolve when it is handed no slice at all.
var ErrNilTransactions = errors.New("transactions must not be nil")

// headerAliases maps lower-cased header names to their canonical column.
var headerAliases = map[string]string{
	"id":             "ID",
	"date":           "Date",
	"description":    "Description",
	"name":           "Description",
	"amount":         "Amount",
	"category":       "Category",
	"kind":           "Kind",
	"source account": "Source Account",
	"target account": "Target Account",
}

// ParseCSV parses transactions from a CSV string.
// It returns the valid transactions, resolved and ready for analysis, and an
// error message for every row that was skipped.
func ParseCSV(content string) ([]models.Transaction, []string) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, []string{fmt.Sprintf("Failed to read CSV: %v", err)}
	}

	if len(records) < 2 {
		return []models.Transaction{}, nil // Empty or header-only
	}

	headers := parseHeaders(records[0])
	for _, required := range []string{"Date", "Description", "Amount"} {
		if !contains(headers, required) {
			return nil, []string{fmt.Sprintf("Missing required column: %s", required)}
		}
	}

	transactions := []models.Transaction{}
	var errs []string
	occurrences := make(map[string]int)

	for i, record := range records[1:] {
		rowNum := i + 2
		if len(record) < len(headers) {
			errs = append(errs, fmt.Sprintf("Row %d: Not enough fields", rowNum))
			continue
		}

		row := make(map[string]string, len(headers))
		for j, header := range headers {
			row[header] = strings.TrimSpace(record[j])
		}

		t, err := mapToTransaction(row)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		if t.ID == "" {
			sig := signature(*t)
			t.ID = GenerateID(*t, occurrences[sig])
			occurrences[sig]++
		}
		transactions = append(transactions, *t)
	}

	return transactions, errs
}

// Resolve computes the classification traits of every transaction once.
// It returns a copy; the input is not modified.
func Resolve(txs []models.Transaction) ([]models.Transaction, error) {
	if txs == nil {
		return nil, ErrNilTransactions
	}
	return categories.ResolveAll(txs), nil
}

func parseHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		h = strings.TrimSpace(h)
		if canonical, ok := headerAliases[strings.ToLower(h)]; ok {
			h = canonical
		}
		headers[i] = h
	}
	return headers
}

func contains(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}

func mapToTransaction(row map[string]string) (*models.Transaction, error) {
	dateStr := row["Date"]
	if dateStr == "" {
		return nil, fmt.Errorf("missing Date")
	}
	date, err := civil.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Date format: %s", dateStr)
	}

	description := row["Description"]
	if description == "" {
		return nil, fmt.Errorf("missing Description")
	}

	amountStr := row["Amount"]
	if amountStr == "" {
		return nil, fmt.Errorf("missing Amount")
	}
	amount, err := parseAmount(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Amount: %s", amountStr)
	}

	category := categories.NormalizeCategoryName(row["Category"])
	if category == "" {
		category, _ = categories.SuggestCategory(description)
	}
	category = categories.Refine(category, description)

	t := &models.Transaction{
		ID:          row["ID"],
		Date:        date,
		Amount:      amount,
		Description: description,
		Category:    category,
	}

	if src := row["Source Account"]; src != "" {
		t.SourceAccountKey = textnorm.AccountKey(src)
	}
	if dst := row["Target Account"]; dst != "" {
		t.TargetAccountKey = textnorm.AccountKey(dst)
	}

	kindStr := row["Kind"]
	switch kind := models.Kind(kindStr); {
	case kindStr == "":
		t.Kind = categories.InferKind(category, description, amount, t.HasAccountPair())
	case kind.Valid():
		t.Kind = kind
	default:
		return nil, fmt.Errorf("invalid Kind: %s", kindStr)
	}

	if !t.Kind.IsTransfer() {
		t.SourceAccountKey, t.TargetAccountKey = "", ""
	}
	t.Traits = categories.Resolve(*t)

	return t, nil
}

// parseAmount accepts bank export forms such as -$15.99, $-15.99,
// "1,200.00" and (15.99), the last meaning a negative amount.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if rest, ok := strings.CutPrefix(s, "-"); ok && !negative {
		negative = true
		s = rest
	}
	if rest, ok := strings.CutPrefix(s, "$"); ok {
		s = rest
		if rest, ok := strings.CutPrefix(s, "-"); ok && !negative {
			negative = true
			s = rest
		}
	}
	if strings.HasPrefix(s, "-") {
		return decimal.Decimal{}, fmt.Errorf("malformed amount sign")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

func signature(t models.Transaction) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", t.Date, t.Description, t.Amount.String(), t.SourceAccountKey, t.TargetAccountKey)
}

// GenerateID returns a deterministic ID for a row without one. index tells
// apart identical rows within the same upload.
func GenerateID(t models.Transaction, index int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", signature(t), index)))
	return hex.EncodeToString(hash[:])
}
