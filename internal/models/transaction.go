package models

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Traits is the classification resolved once per transaction at ingestion.
// Consumers read it instead of re-deriving subscription or bill status.
type Traits struct {
	Resolved bool `json:"resolved"`

	// RefinedCategory is the category after alias resolution and the
	// Bills & services refinement.
	RefinedCategory Category `json:"refinedCategory"`

	Subscription bool `json:"subscription"`
	BillLike     bool `json:"billLike"`
	Billish      bool `json:"billish"`
	PaymentLike  bool `json:"paymentLike"`
	PhonePlan    bool `json:"phonePlan"`
}

// Transaction represents a single financial transaction.
type Transaction struct {
	ID          string          `json:"id"`
	Date        civil.Date      `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Kind        Kind            `json:"kind"`

	// Account keys are only meaningful on transfer kinds.
	SourceAccountKey string `json:"sourceAccountKey,omitempty"`
	TargetAccountKey string `json:"targetAccountKey,omitempty"`

	Traits Traits `json:"traits"`
}

// Dated reports whether the transaction carries a usable calendar date.
func (t Transaction) Dated() bool {
	return t.Date.IsValid()
}

// HasAccountPair reports whether both transfer account keys are present.
func (t Transaction) HasAccountPair() bool {
	return t.SourceAccountKey != "" && t.TargetAccountKey != ""
}

// IsOutflow reports whether money left the account.
func (t Transaction) IsOutflow() bool {
	return t.Amount.IsNegative()
}

// Month returns the calendar month key (YYYY-MM) of the transaction date.
func (t Transaction) Month() string {
	if !t.Dated() {
		return "unknown"
	}
	return t.Date.String()[:7]
}
