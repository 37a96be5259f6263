package models

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Decision is a user override on a flagged transaction.
type Decision string

const (
	DecisionConfirmed Decision = "confirmed"
	DecisionDismissed Decision = "dismissed"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == DecisionConfirmed || d == DecisionDismissed
}

// Decisions maps transaction IDs to decisions. Absent IDs are unresolved.
type Decisions map[string]Decision

// FlagRule identifies which heuristic produced a flag.
type FlagRule string

const (
	RuleTooSoon      FlagRule = "too_soon"
	RuleAmount       FlagRule = "unusual_amount"
	RuleDoubleCharge FlagRule = "double_charge"
	RuleHigherUsual  FlagRule = "higher_than_usual"
	RuleExtraCharge  FlagRule = "extra_charge"
)

// FlaggedTransaction is a cluster member that deviates from its baseline.
type FlaggedTransaction struct {
	TransactionID string          `json:"transactionId"`
	Date          civil.Date      `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Reason        string          `json:"reason"`
	Rule          FlagRule        `json:"rule"`
}

// DuplicateCluster is one recurring merchant or bill series.
// It is derived on every call and never persisted.
type DuplicateCluster struct {
	Key                   string          `json:"key"`
	NormalizedDescription string          `json:"normalizedDescription"`
	Category              Category        `json:"category"`
	MemberTransactionIDs  []string        `json:"memberTransactionIds"`
	MedianIntervalDays    float64         `json:"medianIntervalDays"`
	MedianAmount          decimal.Decimal `json:"medianAmount"`

	// Suspicious holds unresolved flags only.
	Suspicious   []FlaggedTransaction `json:"suspicious"`
	Acknowledged []FlaggedTransaction `json:"acknowledged"`
	Dismissed    []string             `json:"dismissed"`

	UnresolvedTotal      decimal.Decimal `json:"unresolvedTotal"`
	LastNormalChargeDate civil.Date      `json:"lastNormalChargeDate"`
}

// SuspiciousIDs returns the unresolved flagged transaction IDs.
func (c DuplicateCluster) SuspiciousIDs() []string {
	ids := make([]string, 0, len(c.Suspicious))
	for _, f := range c.Suspicious {
		ids = append(ids, f.TransactionID)
	}
	return ids
}
