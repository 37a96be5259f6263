package categories

import (
	"regexp"

	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/rocjay1/spend-sentinel/internal/textnorm"
	"github.com/shopspring/decimal"
)

// refinement is tested in order; the first matching group wins.
var refinement = []struct {
	category models.Category
	pattern  *regexp.Regexp
}{
	{models.CategoryEducation, regexp.MustCompile(`(?i)tuition|school|college|universit|coursera|udemy|textbook|education`)},
	{models.CategoryLoans, regexp.MustCompile(`(?i)\bloans?\b|lending|mortgage|repayment|navient|sallie mae|\bsofi\b|financing`)},
	{models.CategoryInsurance, regexp.MustCompile(`(?i)insurance|insur|geico|state farm|allstate|progressive|lemonade|premium`)},
}

var billish = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\brent\b|mortgage|landlord`),
	regexp.MustCompile(`(?i)\bloans?\b|repayment|installment`),
	regexp.MustCompile(`(?i)insurance|geico|state farm|allstate|progressive`),
	regexp.MustCompile(`(?i)internet|broadband|comcast|xfinity|spectrum|electric|\bwater\b|utilit`),
	regexp.MustCompile(`(?i)mobile|wireless|verizon|at&t|\bphone\b`),
	regexp.MustCompile(`(?i)tuition`),
}

var (
	paymentLike = regexp.MustCompile(`(?i)\bloans?\b|mortgage|card payment|credit card|internet|\bphone\b|cable`)
	phonePlan   = regexp.MustCompile(`(?i)\bphone\b|wireless|mobile|verizon|at&t|cellular|cricket`)
	refundLike  = regexp.MustCompile(`(?i)refund|reversal|\breturn|chargeback|credit adj`)
	feeLike     = regexp.MustCompile(`(?i)\bfee\b|overdraft|late charge|interest charge`)
)

var subscriptionCategories = map[models.Category]bool{
	models.CategorySubscriptions: true,
}

var billLikeCategories = func() map[models.Category]bool {
	m := make(map[models.Category]bool)
	for _, r := range table {
		if r.BillLike {
			m[r.Category] = true
		}
	}
	return m
}()

// NormalizeCategoryName resolves aliases case-insensitively. Unknown names
// are returned unchanged.
func NormalizeCategoryName(name string) models.Category {
	if c, ok := aliases[textnorm.Basic(name)]; ok {
		return c
	}
	return models.Category(name)
}

// Classify refines a generic bill description into Education, Loans or
// Insurance, falling back to Bills & services.
func Classify(description string) models.Category {
	for _, r := range refinement {
		if r.pattern.MatchString(description) {
			return r.category
		}
	}
	return models.CategoryBills
}

// Refine normalizes category and applies Classify only to Bills & services.
func Refine(category models.Category, description string) models.Category {
	c := NormalizeCategoryName(string(category))
	if c != models.CategoryBills {
		return c
	}
	return Classify(description)
}

// IsSubscriptionCategory reports whether category is a subscription category.
func IsSubscriptionCategory(category models.Category) bool {
	return subscriptionCategories[NormalizeCategoryName(string(category))]
}

// IsBillLikeCategory reports whether category is a recurring bill category.
func IsBillLikeCategory(category models.Category) bool {
	return billLikeCategories[NormalizeCategoryName(string(category))]
}

// IsBillishDescription reports whether the text reads like a bill.
func IsBillishDescription(description string) bool {
	for _, p := range billish {
		if p.MatchString(description) {
			return true
		}
	}
	return false
}

// IsPaymentLikeDescription reports whether the text reads like a recurring
// payment: loans, mortgage, card payments, internet, phone or cable.
func IsPaymentLikeDescription(description string) bool {
	return paymentLike.MatchString(description)
}

// IsPhoneDescription reports whether the text names a phone or wireless plan.
func IsPhoneDescription(description string) bool {
	return phonePlan.MatchString(description)
}

// MatchesKnownMerchant tests description against the category's merchants.
// It is a hint, never a classifier on its own.
func MatchesKnownMerchant(description string, category models.Category) bool {
	r, ok := Lookup(category)
	if !ok {
		return false
	}
	for _, p := range r.Merchants {
		if p.MatchString(description) {
			return true
		}
	}
	return false
}

// SuggestCategory returns the first category whose merchants match.
func SuggestCategory(description string) (models.Category, bool) {
	for _, r := range table {
		for _, p := range r.Merchants {
			if p.MatchString(description) {
				return r.Category, true
			}
		}
	}
	return models.CategoryOther, false
}

// InferKind derives the coarse kind for a row that does not carry one.
func InferKind(category models.Category, description string, amount decimal.Decimal, hasAccountPair bool) models.Kind {
	c := NormalizeCategoryName(string(category))
	switch {
	case c == models.CategoryTransfer:
		if hasAccountPair {
			return models.KindTransferInternal
		}
		return models.KindTransferExternal
	case amount.IsPositive() && refundLike.MatchString(description):
		return models.KindRefund
	case amount.IsPositive() || c == models.CategoryIncome:
		return models.KindIncome
	case c == models.CategoryFees || feeLike.MatchString(description):
		return models.KindFee
	case IsSubscriptionCategory(c):
		return models.KindSubscription
	}
	return models.KindExpense
}

// Resolve computes the traits of tx from its current category and text.
func Resolve(tx models.Transaction) models.Traits {
	refined := Refine(tx.Category, tx.Description)
	return models.Traits{
		Resolved:        true,
		RefinedCategory: refined,
		Subscription:    tx.Kind == models.KindSubscription || IsSubscriptionCategory(refined),
		BillLike:        IsBillLikeCategory(refined),
		Billish:         IsBillishDescription(tx.Description),
		PaymentLike:     IsPaymentLikeDescription(tx.Description),
		PhonePlan:       IsPhoneDescription(tx.Description),
	}
}

// TraitsOf returns the carried traits, resolving them if ingestion did not.
func TraitsOf(tx models.Transaction) models.Traits {
	if tx.Traits.Resolved {
		return tx.Traits
	}
	return Resolve(tx)
}

// ResolveAll returns a copy of txs with traits resolved on every element.
func ResolveAll(txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(txs))
	for i, tx := range txs {
		tx.Traits = Resolve(tx)
		out[i] = tx
	}
	return out
}

// Recategorize returns a copy of tx moved to category with fresh traits.
func Recategorize(tx models.Transaction, category models.Category) models.Transaction {
	tx.Category = NormalizeCategoryName(string(category))
	tx.Traits = Resolve(tx)
	return tx
}
