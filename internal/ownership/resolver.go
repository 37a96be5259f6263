// Package ownership decides whether a transfer is internal shuffling,
// real income or real spending, based on the tri-state account modes.
package ownership

import (
	"github.com/rocjay1/spend-sentinel/internal/models"
)

// Movement is the money-movement semantics of one transaction.
type Movement string

const (
	// NotApplicable marks non-transfer kinds; their meaning comes from Kind.
	NotApplicable Movement = "notApplicable"
	Internal      Movement = "internal"
	RealIncome    Movement = "realIncome"
	RealSpending  Movement = "realSpending"
	// Ignored marks owned transfers touching a payment conduit that are not
	// spending-to-payment legs. They count toward nothing.
	Ignored Movement = "ignored"
)

// Resolve classifies tx. Rules are applied in order:
//  1. non-transfer kinds are not applicable;
//  2. a missing account key means real movement, direction by sign;
//  3. both owned and neither a payment conduit means internal;
//     spending to payment is real spending; other payment legs are ignored;
//  4. and 5. remaining transfers are income or spending by sign.
func Resolve(tx models.Transaction, own models.Ownership) Movement {
	if !tx.Kind.IsTransfer() {
		return NotApplicable
	}
	if !tx.HasAccountPair() {
		return bySign(tx)
	}

	src := own.ModeOf(tx.SourceAccountKey)
	dst := own.ModeOf(tx.TargetAccountKey)

	if src.Owned() && dst.Owned() {
		switch {
		case src == models.ModeSpending && dst == models.ModeSpending:
			return Internal
		case src == models.ModeSpending && dst == models.ModePayment:
			return RealSpending
		default:
			return Ignored
		}
	}
	return bySign(tx)
}

func bySign(tx models.Transaction) Movement {
	switch {
	case tx.Amount.IsPositive():
		return RealIncome
	case tx.Amount.IsNegative():
		return RealSpending
	}
	return Ignored
}

// IsInternal reports whether tx is an internal transfer.
func IsInternal(tx models.Transaction, own models.Ownership) bool {
	return Resolve(tx, own) == Internal
}

// IsRealIncome reports whether tx is income that counts toward totals.
func IsRealIncome(tx models.Transaction, own models.Ownership) bool {
	switch Resolve(tx, own) {
	case RealIncome:
		return true
	case NotApplicable:
		return tx.Kind == models.KindIncome
	}
	return false
}

// IsRealSpending reports whether tx is spending that counts toward totals.
// Refunds are excluded here and netted separately.
func IsRealSpending(tx models.Transaction, own models.Ownership) bool {
	switch Resolve(tx, own) {
	case RealSpending:
		return true
	case NotApplicable:
		switch tx.Kind {
		case models.KindExpense, models.KindSubscription, models.KindFee:
			return true
		}
	}
	return false
}

// IsRefund reports whether tx is a refund.
func IsRefund(tx models.Transaction) bool {
	return tx.Kind == models.KindRefund
}

// IsFee reports whether tx is a fee charge.
func IsFee(tx models.Transaction) bool {
	return tx.Kind == models.KindFee
}
