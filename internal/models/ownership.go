package models

import "github.com/rocjay1/spend-sentinel/internal/textnorm"

// OwnershipMode is how the user relates to an account.
type OwnershipMode string

const (
	// ModeSpending is the user's own discretionary money.
	ModeSpending OwnershipMode = "spending"
	// ModePayment is an owned conduit used to settle debt, e.g. a credit card.
	ModePayment OwnershipMode = "payment"
	// ModeNotMine is a counterparty. Unknown accounts default to it.
	ModeNotMine OwnershipMode = "notMine"
)

// ParseOwnershipMode maps a stored string to a mode, defaulting to ModeNotMine.
func ParseOwnershipMode(s string) OwnershipMode {
	switch OwnershipMode(s) {
	case ModeSpending:
		return ModeSpending
	case ModePayment:
		return ModePayment
	}
	return ModeNotMine
}

// Owned reports whether the mode belongs to the user.
func (m OwnershipMode) Owned() bool {
	return m == ModeSpending || m == ModePayment
}

// Ownership maps account keys to modes. It is read-only to the engine.
type Ownership map[string]OwnershipMode

// ModeOf returns the mode for key, or ModeNotMine when it was never claimed.
func (o Ownership) ModeOf(key string) OwnershipMode {
	if key == "" || o == nil {
		return ModeNotMine
	}
	if m, ok := o[key]; ok {
		return ParseOwnershipMode(string(m))
	}
	return ModeNotMine
}

// AccountOwnership is one stored ownership entry.
type AccountOwnership struct {
	ID   string        `json:"id"`
	Key  string        `json:"key"`
	Name string        `json:"name"`
	Mode OwnershipMode `json:"mode"`
}

// ResolvedKey is the key transactions carry for this account: the explicit
// key normalized the way ingestion derives keys, or one derived from Name.
func (a AccountOwnership) ResolvedKey() string {
	if a.Key != "" {
		return textnorm.NormalizeAccountKey(a.Key)
	}
	return textnorm.AccountKey(a.Name)
}

// OwnershipFromAccounts builds the lookup map from stored entries.
func OwnershipFromAccounts(accounts []AccountOwnership) Ownership {
	own := make(Ownership, len(accounts))
	for _, a := range accounts {
		key := a.ResolvedKey()
		if key == "" {
			continue
		}
		own[key] = ParseOwnershipMode(string(a.Mode))
	}
	return own
}
