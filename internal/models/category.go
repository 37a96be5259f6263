package models

import "strings"

// Category represents spending categories for transactions.
// The set is closed; unknown strings survive as-is and match no predicate.
type Category string

const (
	CategoryRent          Category = "Rent"
	CategoryGroceries     Category = "Groceries"
	CategoryDining        Category = "Dining"
	CategoryTransport     Category = "Transport"
	CategorySubscriptions Category = "Subscriptions"
	CategoryUtilities     Category = "Utilities"
	CategoryBills         Category = "Bills & services"
	CategoryInsurance     Category = "Insurance"
	CategoryEducation     Category = "Education"
	CategoryFees          Category = "Fees"
	CategoryOther         Category = "Other"
	CategoryTransfer      Category = "Transfer"
	CategoryAuto          Category = "Auto"
	CategoryLoans         Category = "Loans"
	CategoryHealth        Category = "Health"
	CategoryIncome        Category = "Income"
)

// Kind is the coarse tag derived once at ingestion, independent of Category.
type Kind string

const (
	KindIncome           Kind = "income"
	KindExpense          Kind = "expense"
	KindSubscription     Kind = "subscription"
	KindFee              Kind = "fee"
	KindTransferInternal Kind = "transferInternal"
	KindTransferExternal Kind = "transferExternal"
	KindRefund           Kind = "refund"
)

// IsTransfer reports whether the kind is one of the transfer kinds.
func (k Kind) IsTransfer() bool {
	return strings.HasPrefix(string(k), "transfer")
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindSubscription, KindFee,
		KindTransferInternal, KindTransferExternal, KindRefund:
		return true
	}
	return false
}
