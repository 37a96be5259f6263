// Package duplicates finds charges that look like an unexpected extra or
// mis-priced instance of an otherwise regular recurring charge. Each
// merchant series learns its own median cadence and price; no expected
// price table is needed.
package duplicates

import (
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/rocjay1/spend-sentinel/internal/categories"
	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/rocjay1/spend-sentinel/internal/textnorm"
	"github.com/shopspring/decimal"
)

// Options tunes the detector thresholds.
type Options struct {
	// MinOccurrences is the history needed before a series has a baseline.
	MinOccurrences int
	// TooSoonRatio flags a gap shorter than this share of the median interval.
	TooSoonRatio float64
	// DoubleChargeRatio together with PennyTolerance is the double-charge window.
	DoubleChargeRatio float64
	// AmountTolerance flags amounts this share away from the median amount.
	AmountTolerance decimal.Decimal
	// SubscriptionIncrease and PhoneIncrease are the monthly "higher than
	// usual" tolerances for streaming and phone plans.
	SubscriptionIncrease decimal.Decimal
	PhoneIncrease        decimal.Decimal
	PennyTolerance       decimal.Decimal
}

// DefaultOptions returns the production thresholds.
func DefaultOptions() Options {
	return Options{
		MinOccurrences:       3,
		TooSoonRatio:         0.6,
		DoubleChargeRatio:    0.35,
		AmountTolerance:      decimal.RequireFromString("0.3"),
		SubscriptionIncrease: decimal.RequireFromString("0.15"),
		PhoneIncrease:        decimal.RequireFromString("0.20"),
		PennyTolerance:       decimal.RequireFromString("0.01"),
	}
}

// Reason ranks; a higher rank replaces a lower one on the same transaction.
const (
	rankTooSoon = iota + 1
	rankAmount
	rankDoubleCharge
	rankSpecialized
)

type flag struct {
	reason string
	rule   models.FlagRule
	rank   int
}

type flagSet map[string]flag

func (f flagSet) add(id string, rule models.FlagRule, rank int, reason string) {
	if cur, ok := f[id]; ok && cur.rank >= rank {
		return
	}
	f[id] = flag{reason: reason, rule: rule, rank: rank}
}

// series is one candidate cluster under construction.
type series struct {
	key         string
	normalized  string
	category    models.Category
	members     []models.Transaction
	phone       bool
	subscribing bool
}

// DetectDefault runs Detect with DefaultOptions.
func DetectDefault(txs []models.Transaction, decisions models.Decisions) []models.DuplicateCluster {
	return Detect(txs, decisions, DefaultOptions())
}

// Detect clusters recurring charges and flags members that deviate from
// their cluster baseline. The result is a pure function of txs and
// decisions, sorted by cluster key. Decisions only decide which flags are
// still unresolved; they never change the statistics.
func Detect(txs []models.Transaction, decisions models.Decisions, opts Options) []models.DuplicateCluster {
	groups := cluster(txs)

	clusters := make([]models.DuplicateCluster, 0, len(groups))
	for _, s := range groups {
		if len(s.members) < opts.MinOccurrences {
			continue
		}
		clusters = append(clusters, evaluate(s, decisions, opts))
	}

	sort.Slice(clusters, func(i, j int) bool { return clusters[i].Key < clusters[j].Key })
	return clusters
}

// cluster groups recurring-looking outflows by normalized description and
// category. Members come out sorted by date, ties in input order.
func cluster(txs []models.Transaction) []*series {
	byKey := make(map[string]*series)
	var order []*series

	for _, tx := range txs {
		if !tx.Dated() || !tx.IsOutflow() {
			continue
		}
		traits := categories.TraitsOf(tx)
		if !traits.Subscription && !traits.BillLike && !traits.PaymentLike {
			continue
		}
		normalized := textnorm.Merchant(tx.Description)
		if normalized == "" {
			continue
		}

		category := traits.RefinedCategory
		key := normalized + "|" + string(category)
		s, ok := byKey[key]
		if !ok {
			s = &series{key: key, normalized: normalized, category: category}
			byKey[key] = s
			order = append(order, s)
		}
		s.members = append(s.members, tx)
		s.phone = s.phone || traits.PhonePlan
		s.subscribing = s.subscribing || traits.Subscription
	}

	for _, s := range order {
		sort.SliceStable(s.members, func(i, j int) bool {
			return s.members[i].Date.Before(s.members[j].Date)
		})
	}
	return order
}

func evaluate(s *series, decisions models.Decisions, opts Options) models.DuplicateCluster {
	members := s.members

	gaps := make([]int, 0, len(members)-1)
	amounts := make([]decimal.Decimal, 0, len(members))
	for i, m := range members {
		amounts = append(amounts, m.Amount.Abs())
		if i > 0 {
			gaps = append(gaps, m.Date.DaysSince(members[i-1].Date))
		}
	}
	interval := medianInt(gaps)
	baseline := medianDecimal(amounts)

	flags := make(flagSet)
	genericPass(members, interval, baseline, opts, flags)
	if increase, ok := specializedIncrease(s, opts); ok {
		monthlyPass(members, interval, baseline, increase, opts.TooSoonRatio, flags)
	}

	c := models.DuplicateCluster{
		Key:                   s.key,
		NormalizedDescription: s.normalized,
		Category:              s.category,
		MemberTransactionIDs:  make([]string, 0, len(members)),
		MedianIntervalDays:    interval,
		MedianAmount:          baseline,
		Suspicious:            []models.FlaggedTransaction{},
		Acknowledged:          []models.FlaggedTransaction{},
		Dismissed:             []string{},
		UnresolvedTotal:       decimal.Zero,
	}

	var lastNormal, lastAny civil.Date
	for _, m := range members {
		c.MemberTransactionIDs = append(c.MemberTransactionIDs, m.ID)
		lastAny = m.Date

		f, flagged := flags[m.ID]
		if !flagged {
			lastNormal = m.Date
			continue
		}

		ft := models.FlaggedTransaction{
			TransactionID: m.ID,
			Date:          m.Date,
			Amount:        m.Amount,
			Description:   m.Description,
			Reason:        f.reason,
			Rule:          f.rule,
		}
		switch decisions[m.ID] {
		case models.DecisionDismissed:
			c.Dismissed = append(c.Dismissed, m.ID)
		case models.DecisionConfirmed:
			c.Acknowledged = append(c.Acknowledged, ft)
		default:
			c.Suspicious = append(c.Suspicious, ft)
			c.UnresolvedTotal = c.UnresolvedTotal.Add(m.Amount.Abs())
		}
	}

	c.LastNormalChargeDate = lastNormal
	if !lastNormal.IsValid() {
		c.LastNormalChargeDate = lastAny
	}
	return c
}

// genericPass applies the interval and amount heuristics. Timing flags mark
// both members of the consecutive pair; amount flags mark only the outlier.
// A zero median interval disables the timing heuristics.
func genericPass(members []models.Transaction, interval float64, baseline decimal.Decimal, opts Options, flags flagSet) {
	if baseline.IsPositive() {
		limit := baseline.Mul(opts.AmountTolerance)
		for _, m := range members {
			if m.Amount.Abs().Sub(baseline).Abs().GreaterThan(limit) {
				flags.add(m.ID, models.RuleAmount, rankAmount,
					fmt.Sprintf("Unusual amount — normally %s", money(baseline)))
			}
		}
	}

	if interval <= 0 {
		return
	}
	for i := 1; i < len(members); i++ {
		prev, cur := members[i-1], members[i]
		gap := cur.Date.DaysSince(prev.Date)

		sameAmount := cur.Amount.Sub(prev.Amount).Abs().LessThanOrEqual(opts.PennyTolerance)
		switch {
		case float64(gap) < opts.DoubleChargeRatio*interval && sameAmount:
			flags.add(cur.ID, models.RuleDoubleCharge, rankDoubleCharge,
				fmt.Sprintf("Double charge — also charged %s before on %s", days(gap), prev.Date))
			flags.add(prev.ID, models.RuleDoubleCharge, rankDoubleCharge,
				fmt.Sprintf("Double charge — also charged %s after on %s", days(gap), cur.Date))
		case float64(gap) < opts.TooSoonRatio*interval:
			flags.add(cur.ID, models.RuleTooSoon, rankTooSoon,
				fmt.Sprintf("Charged %s after the previous charge — usually every %s", days(gap), cadence(interval)))
			flags.add(prev.ID, models.RuleTooSoon, rankTooSoon,
				fmt.Sprintf("Charged %s before the next charge — usually every %s", days(gap), cadence(interval)))
		}
	}
}

// specializedIncrease reports whether the series gets the monthly pass and
// the tolerance it uses. Phone plans take precedence over subscriptions.
func specializedIncrease(s *series, opts Options) (decimal.Decimal, bool) {
	switch {
	case s.phone:
		return opts.PhoneIncrease, true
	case s.subscribing:
		return opts.SubscriptionIncrease, true
	}
	return decimal.Zero, false
}

type month struct {
	year  int
	month int
}

// monthlyPass inspects every calendar month holding more than one charge.
// A charge above baseline*(1+increase) is higher than usual. A charge within
// tolerance that arrived too soon after another charge in the same month is
// an extra charge, marking both.
func monthlyPass(members []models.Transaction, interval float64, baseline, increase decimal.Decimal, ratio float64, flags flagSet) {
	if !baseline.IsPositive() {
		return
	}
	ceiling := baseline.Mul(decimal.NewFromInt(1).Add(increase))
	tolerance := baseline.Mul(increase)

	byMonth := make(map[month][]models.Transaction)
	var months []month
	for _, m := range members {
		k := month{year: m.Date.Year, month: int(m.Date.Month)}
		if _, ok := byMonth[k]; !ok {
			months = append(months, k)
		}
		byMonth[k] = append(byMonth[k], m)
	}

	for _, k := range months {
		charges := byMonth[k]
		if len(charges) < 2 {
			continue
		}

		for _, m := range charges {
			if m.Amount.Abs().GreaterThan(ceiling) {
				flags.add(m.ID, models.RuleHigherUsual, rankSpecialized,
					fmt.Sprintf("Higher than usual — normally %s", money(baseline)))
			}
		}

		for i := 1; i < len(charges); i++ {
			prev, cur := charges[i-1], charges[i]
			if !tooSoon(cur.Date.DaysSince(prev.Date), interval, ratio) {
				continue
			}
			for _, m := range []models.Transaction{prev, cur} {
				if m.Amount.Abs().Sub(baseline).Abs().LessThanOrEqual(tolerance) {
					flags.add(m.ID, models.RuleExtraCharge, rankSpecialized, "Extra charge this month")
				}
			}
		}
	}
}

// tooSoon applies the early-arrival ratio. Without a usable interval
// any second charge in the month counts.
func tooSoon(gap int, interval, ratio float64) bool {
	if interval <= 0 {
		return true
	}
	return float64(gap) < ratio*interval
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func cadence(v float64) string {
	if v == float64(int(v)) {
		return days(int(v))
	}
	return fmt.Sprintf("%.1f days", v)
}

// Flagged flattens the unresolved flags of clusters, sorted by date then ID.
func Flagged(clusters []models.DuplicateCluster) []models.FlaggedTransaction {
	var out []models.FlaggedTransaction
	for _, c := range clusters {
		out = append(out, c.Suspicious...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].TransactionID < out[j].TransactionID
	})
	return out
}

// UnresolvedTotal sums the unresolved flagged amounts across clusters.
func UnresolvedTotal(clusters []models.DuplicateCluster) decimal.Decimal {
	total := decimal.Zero
	for _, c := range clusters {
		total = total.Add(c.UnresolvedTotal)
	}
	return total
}
