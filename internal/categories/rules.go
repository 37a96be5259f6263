// Package categories holds the static category rule table and the
// description classifier built on it.
package categories

import (
	"regexp"

	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/rocjay1/spend-sentinel/internal/textnorm"
	"github.com/shopspring/decimal"
)

// Group is the higher-level display bucket of a category.
type Group string

const (
	GroupHousing    Group = "Housing"
	GroupEssentials Group = "Essentials"
	GroupLifestyle  Group = "Lifestyle"
	GroupFinancial  Group = "Financial"
	GroupIncome     Group = "Income"
	GroupOther      Group = "Other"
)

// Rule is one row of the category table.
type Rule struct {
	Category     models.Category
	Group        Group
	Merchants    []*regexp.Regexp
	BillLike     bool
	Subscription bool
	// BudgetRatio is the guideline share of net income; zero means none.
	BudgetRatio decimal.Decimal
}

func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

func ratio(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// table is ordered; SuggestCategory returns the first merchant match.
var table = []Rule{
	{
		Category:    models.CategoryRent,
		Group:       GroupHousing,
		Merchants:   patterns(`\brent\b`, `landlord`, `apartments?\b`, `property management`),
		BillLike:    true,
		BudgetRatio: ratio("0.30"),
	},
	{
		Category:     models.CategorySubscriptions,
		Group:        GroupLifestyle,
		Merchants:    patterns(`netflix`, `spotify`, `hulu`, `disney\+?`, `hbo`, `apple\.com/bill`, `icloud`, `youtube premium`, `amazon prime`, `patreon`, `streaming`),
		Subscription: true,
		BudgetRatio:  ratio("0.02"),
	},
	{
		Category:    models.CategoryUtilities,
		Group:       GroupHousing,
		Merchants:   patterns(`electric`, `\bwater\b`, `gas bill`, `utilit`, `pg&e`, `con ?ed`, `comcast`, `xfinity`, `spectrum`, `verizon`, `t-mobile`, `at&t`, `internet`),
		BillLike:    true,
		BudgetRatio: ratio("0.06"),
	},
	{
		Category:    models.CategoryInsurance,
		Group:       GroupFinancial,
		Merchants:   patterns(`insurance`, `geico`, `state farm`, `allstate`, `progressive`, `lemonade`),
		BillLike:    true,
		BudgetRatio: ratio("0.05"),
	},
	{
		Category:    models.CategoryEducation,
		Group:       GroupEssentials,
		Merchants:   patterns(`tuition`, `coursera`, `udemy`, `school`, `college`, `universit`),
		BillLike:    true,
		BudgetRatio: ratio("0.05"),
	},
	{
		Category:    models.CategoryLoans,
		Group:       GroupFinancial,
		Merchants:   patterns(`\bloan\b`, `mortgage`, `navient`, `sallie mae`, `\bsofi\b`),
		BillLike:    true,
		BudgetRatio: ratio("0.10"),
	},
	{
		Category:    models.CategoryBills,
		Group:       GroupHousing,
		Merchants:   patterns(`bill ?pay`, `autopay`),
		BillLike:    true,
		BudgetRatio: ratio("0.05"),
	},
	{
		Category:    models.CategoryGroceries,
		Group:       GroupEssentials,
		Merchants:   patterns(`whole foods`, `trader joe`, `kroger`, `safeway`, `\baldi\b`, `costco`, `grocer`, `instacart`, `publix`),
		BudgetRatio: ratio("0.10"),
	},
	{
		Category:    models.CategoryDining,
		Group:       GroupLifestyle,
		Merchants:   patterns(`restaurant`, `\bcafe\b`, `coffee`, `starbucks`, `mcdonald`, `chipotle`, `doordash`, `uber eats`, `grubhub`, `pizza`),
		BudgetRatio: ratio("0.05"),
	},
	{
		Category:    models.CategoryTransport,
		Group:       GroupEssentials,
		Merchants:   patterns(`\buber\b`, `\blyft\b`, `\bshell\b`, `chevron`, `exxon`, `gas station`, `transit`, `\bmetro\b`, `parking`, `\btoll`),
		BudgetRatio: ratio("0.10"),
	},
	{
		Category:    models.CategoryAuto,
		Group:       GroupEssentials,
		Merchants:   patterns(`\bdmv\b`, `auto repair`, `jiffy lube`, `car wash`, `\btires?\b`),
		BudgetRatio: ratio("0.05"),
	},
	{
		Category:    models.CategoryHealth,
		Group:       GroupEssentials,
		Merchants:   patterns(`pharmacy`, `\bcvs\b`, `walgreens`, `doctor`, `dental`, `clinic`, `hospital`, `medical`),
		BudgetRatio: ratio("0.05"),
	},
	{
		Category:  models.CategoryFees,
		Group:     GroupFinancial,
		Merchants: patterns(`\bfee\b`, `overdraft`, `interest charge`, `late charge`, `\batm\b`),
	},
	{
		Category:  models.CategoryTransfer,
		Group:     GroupFinancial,
		Merchants: patterns(`\btransfer\b`, `zelle`, `venmo`),
	},
	{
		Category:  models.CategoryIncome,
		Group:     GroupIncome,
		Merchants: patterns(`payroll`, `salary`, `direct deposit`, `paycheck`),
	},
	{
		Category: models.CategoryOther,
		Group:    GroupOther,
	},
}

var byCategory = func() map[models.Category]*Rule {
	m := make(map[models.Category]*Rule, len(table))
	for i := range table {
		m[table[i].Category] = &table[i]
	}
	return m
}()

// aliases resolves lower-cased names; every canonical name is included.
var aliases = func() map[string]models.Category {
	m := map[string]models.Category{
		"bills":               models.CategoryBills,
		"bills and services":  models.CategoryBills,
		"bills & utilities":   models.CategoryBills,
		"bill":                models.CategoryBills,
		"services":            models.CategoryBills,
		"subscription":        models.CategorySubscriptions,
		"streaming":           models.CategorySubscriptions,
		"restaurants":         models.CategoryDining,
		"dining & drinks":     models.CategoryDining,
		"food":                models.CategoryDining,
		"grocery":             models.CategoryGroceries,
		"transportation":      models.CategoryTransport,
		"travel":              models.CategoryTransport,
		"utility":             models.CategoryUtilities,
		"phone":               models.CategoryUtilities,
		"fee":                 models.CategoryFees,
		"bank fees":           models.CategoryFees,
		"loan":                models.CategoryLoans,
		"loan payment":        models.CategoryLoans,
		"mortgage":            models.CategoryLoans,
		"housing":             models.CategoryRent,
		"healthcare":          models.CategoryHealth,
		"medical":             models.CategoryHealth,
		"transfers":           models.CategoryTransfer,
		"credit card payment": models.CategoryTransfer,
		"paycheck":            models.CategoryIncome,
		"salary":              models.CategoryIncome,
		"car":                 models.CategoryAuto,
		"miscellaneous":       models.CategoryOther,
	}
	for _, r := range table {
		m[textnorm.Basic(string(r.Category))] = r.Category
	}
	return m
}()

// Rules returns a copy of the rule table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(table))
	copy(out, table)
	return out
}

// Lookup returns the rule for a category after alias resolution.
func Lookup(category models.Category) (Rule, bool) {
	r, ok := byCategory[NormalizeCategoryName(string(category))]
	if !ok {
		return Rule{}, false
	}
	return *r, true
}

// DisplayGroup returns the display group, GroupOther for unknown categories.
func DisplayGroup(category models.Category) Group {
	if r, ok := Lookup(category); ok {
		return r.Group
	}
	return GroupOther
}

// BudgetRatio returns the guideline share of income, zero when none applies.
func BudgetRatio(category models.Category) decimal.Decimal {
	if r, ok := Lookup(category); ok {
		return r.BudgetRatio
	}
	return decimal.Zero
}
