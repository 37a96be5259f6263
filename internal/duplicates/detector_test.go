package duplicates

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func charge(id, day, amount, desc string, cat models.Category) models.Transaction {
	kind := models.KindExpense
	if cat == models.CategorySubscriptions {
		kind = models.KindSubscription
	}
	return models.Transaction{
		ID:          id,
		Date:        date(day),
		Amount:      decimal.RequireFromString(amount),
		Description: desc,
		Category:    cat,
		Kind:        kind,
	}
}

func flaggedByID(c models.DuplicateCluster) map[string]models.FlaggedTransaction {
	m := make(map[string]models.FlaggedTransaction)
	for _, f := range c.Suspicious {
		m[f.TransactionID] = f
	}
	return m
}

func streamingScenario() []models.Transaction {
	return []models.Transaction{
		charge("a", "2025-01-01", "-15.99", "Streaming", models.CategorySubscriptions),
		charge("b", "2025-01-15", "-15.99", "Streaming", models.CategorySubscriptions),
		charge("c", "2025-02-01", "-15.99", "Streaming", models.CategorySubscriptions),
		charge("d", "2025-02-03", "-15.99", "Streaming", models.CategorySubscriptions),
	}
}

func TestDetect_ExtraChargeThisMonth(t *testing.T) {
	clusters := DetectDefault(streamingScenario(), nil)

	require.Len(t, clusters, 1)
	c := clusters[0]
	assert.Equal(t, "streaming|Subscriptions", c.Key)
	assert.Equal(t, []string{"a", "b", "c", "d"}, c.MemberTransactionIDs)
	assert.Equal(t, 14.0, c.MedianIntervalDays)
	assert.True(t, c.MedianAmount.Equal(decimal.RequireFromString("15.99")))

	flagged := flaggedByID(c)
	require.Len(t, flagged, 2)
	assert.Equal(t, "Extra charge this month", flagged["c"].Reason)
	assert.Equal(t, "Extra charge this month", flagged["d"].Reason)
	assert.Equal(t, models.RuleExtraCharge, flagged["d"].Rule)
	assert.NotContains(t, flagged, "a")
	assert.NotContains(t, flagged, "b")

	assert.True(t, c.UnresolvedTotal.Equal(decimal.RequireFromString("31.98")))
	assert.Equal(t, date("2025-01-15"), c.LastNormalChargeDate)
}

func TestDetect_MedianIsRobustToOutlier(t *testing.T) {
	txs := []models.Transaction{
		charge("1", "2025-01-01", "-9.99", "Music Plus", models.CategorySubscriptions),
		charge("2", "2025-02-01", "-9.99", "Music Plus", models.CategorySubscriptions),
		charge("3", "2025-03-01", "-49.99", "Music Plus", models.CategorySubscriptions),
		charge("4", "2025-04-01", "-9.99", "Music Plus", models.CategorySubscriptions),
		charge("5", "2025-05-01", "-9.99", "Music Plus", models.CategorySubscriptions),
	}

	clusters := DetectDefault(txs, nil)
	require.Len(t, clusters, 1)
	c := clusters[0]

	assert.True(t, c.MedianAmount.Equal(decimal.RequireFromString("9.99")))
	assert.Equal(t, 30.5, c.MedianIntervalDays)

	flagged := flaggedByID(c)
	require.Len(t, flagged, 1)
	assert.Equal(t, "Unusual amount — normally $9.99", flagged["3"].Reason)
	assert.Equal(t, models.RuleAmount, flagged["3"].Rule)
	assert.Equal(t, date("2025-05-01"), c.LastNormalChargeDate)
}

func TestDetect_MinimumOccurrences(t *testing.T) {
	txs := []models.Transaction{
		charge("1", "2025-01-01", "-9.99", "Gym Club", models.CategorySubscriptions),
		charge("2", "2025-01-02", "-99.99", "Gym Club", models.CategorySubscriptions),
	}

	assert.Empty(t, DetectDefault(txs, nil))
}

func TestDetect_DoubleChargeOnBill(t *testing.T) {
	txs := []models.Transaction{
		charge("1", "2025-01-05", "-120.00", "City Water Utility", models.CategoryUtilities),
		charge("2", "2025-02-05", "-120.00", "City Water Utility", models.CategoryUtilities),
		charge("3", "2025-03-05", "-120.00", "City Water Utility", models.CategoryUtilities),
		charge("4", "2025-03-06", "-120.00", "City Water Utility", models.CategoryUtilities),
		charge("5", "2025-04-05", "-120.00", "City Water Utility", models.CategoryUtilities),
	}

	clusters := DetectDefault(txs, nil)
	require.Len(t, clusters, 1)
	flagged := flaggedByID(clusters[0])

	require.Len(t, flagged, 2)
	assert.Equal(t, "Double charge — also charged 1 day after on 2025-03-06", flagged["3"].Reason)
	assert.Equal(t, "Double charge — also charged 1 day before on 2025-03-05", flagged["4"].Reason)
	assert.Equal(t, date("2025-04-05"), clusters[0].LastNormalChargeDate)
}

func TestDetect_TooSoonMarksPair(t *testing.T) {
	txs := []models.Transaction{
		charge("1", "2025-01-10", "-80.00", "Comcast Internet", models.CategoryUtilities),
		charge("2", "2025-02-10", "-80.00", "Comcast Internet", models.CategoryUtilities),
		charge("3", "2025-03-10", "-80.00", "Comcast Internet", models.CategoryUtilities),
		charge("4", "2025-03-25", "-85.00", "Comcast Internet", models.CategoryUtilities),
		charge("5", "2025-04-25", "-80.00", "Comcast Internet", models.CategoryUtilities),
	}

	clusters := DetectDefault(txs, nil)
	require.Len(t, clusters, 1)
	flagged := flaggedByID(clusters[0])

	require.Len(t, flagged, 2)
	assert.Equal(t, models.RuleTooSoon, flagged["3"].Rule)
	assert.Equal(t, models.RuleTooSoon, flagged["4"].Rule)
	assert.Contains(t, flagged["4"].Reason, "Charged 15 days after the previous charge")
}

func TestDetect_PhoneHigherThanUsual(t *testing.T) {
	txs := []models.Transaction{
		charge("1", "2025-01-03", "-50.00", "Verizon Wireless", models.CategoryUtilities),
		charge("2", "2025-02-03", "-50.00", "Verizon Wireless", models.CategoryUtilities),
		charge("3", "2025-03-03", "-50.00", "Verizon Wireless", models.CategoryUtilities),
		charge("4", "2025-03-28", "-62.00", "Verizon Wireless", models.CategoryUtilities),
		charge("5", "2025-04-28", "-50.00", "Verizon Wireless", models.CategoryUtilities),
	}

	clusters := DetectDefault(txs, nil)
	require.Len(t, clusters, 1)
	flagged := flaggedByID(clusters[0])

	// 62 is within the generic 30% band but above the 20% phone ceiling.
	require.Len(t, flagged, 1)
	assert.Equal(t, "Higher than usual — normally $50.00", flagged["4"].Reason)
	assert.Equal(t, models.RuleHigherUsual, flagged["4"].Rule)
}

func TestDetect_ZeroIntervalSkipsTimingOnly(t *testing.T) {
	txs := []models.Transaction{
		charge("1", "2025-01-01", "-20.00", "Mortgage Servicer", models.CategoryLoans),
		charge("2", "2025-01-01", "-20.00", "Mortgage Servicer", models.CategoryLoans),
		charge("3", "2025-01-01", "-20.00", "Mortgage Servicer", models.CategoryLoans),
		charge("4", "2025-01-01", "-90.00", "Mortgage Servicer", models.CategoryLoans),
	}

	clusters := DetectDefault(txs, nil)
	require.Len(t, clusters, 1)
	c := clusters[0]
	assert.Equal(t, 0.0, c.MedianIntervalDays)

	flagged := flaggedByID(c)
	require.Len(t, flagged, 1)
	assert.Equal(t, models.RuleAmount, flagged["4"].Rule)
}

func TestDetect_DecisionSuppression(t *testing.T) {
	before := DetectDefault(streamingScenario(), nil)
	after := DetectDefault(streamingScenario(), models.Decisions{
		"c": models.DecisionDismissed,
		"d": models.DecisionConfirmed,
	})

	require.Len(t, after, 1)
	c := after[0]
	assert.Empty(t, c.Suspicious)
	assert.Equal(t, []string{"c"}, c.Dismissed)
	require.Len(t, c.Acknowledged, 1)
	assert.Equal(t, "d", c.Acknowledged[0].TransactionID)
	assert.True(t, c.UnresolvedTotal.IsZero())

	assert.Equal(t, before[0].MedianIntervalDays, c.MedianIntervalDays)
	assert.True(t, before[0].MedianAmount.Equal(c.MedianAmount))
	assert.Equal(t, before[0].MemberTransactionIDs, c.MemberTransactionIDs)
}

func TestDetect_Idempotent(t *testing.T) {
	txs := append(streamingScenario(),
		charge("w1", "2025-01-05", "-120.00", "City Water Utility", models.CategoryUtilities),
		charge("w2", "2025-02-05", "-120.00", "City Water Utility", models.CategoryUtilities),
		charge("w3", "2025-02-06", "-120.00", "City Water Utility", models.CategoryUtilities),
	)
	decisions := models.Decisions{"c": models.DecisionDismissed}

	first := DetectDefault(txs, decisions)
	second := DetectDefault(txs, decisions)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestDetect_MembersSortedByDate(t *testing.T) {
	txs := streamingScenario()
	txs[0], txs[3] = txs[3], txs[0]

	clusters := DetectDefault(txs, nil)
	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"a", "b", "c", "d"}, clusters[0].MemberTransactionIDs)
}

func TestDetect_IgnoresNonCandidates(t *testing.T) {
	undated := charge("u", "2025-01-01", "-15.99", "Streaming", models.CategorySubscriptions)
	undated.Date = civil.Date{}

	txs := []models.Transaction{
		charge("g1", "2025-01-01", "-50", "Kroger", models.CategoryGroceries),
		charge("g2", "2025-01-02", "-50", "Kroger", models.CategoryGroceries),
		charge("g3", "2025-01-03", "-50", "Kroger", models.CategoryGroceries),
		charge("r1", "2025-01-01", "15.99", "Streaming", models.CategorySubscriptions),
		charge("r2", "2025-01-02", "15.99", "Streaming", models.CategorySubscriptions),
		undated,
		charge("s1", "2025-01-10", "-15.99", "Streaming", models.CategorySubscriptions),
	}

	assert.Empty(t, DetectDefault(txs, nil))
}

func TestDetect_NormalizesDescriptions(t *testing.T) {
	txs := []models.Transaction{
		charge("1", "2025-01-01", "-45.00", "CHASE CARD PAYMENT ending 1234", models.CategoryOther),
		charge("2", "2025-02-01", "-45.00", "Chase card payment  ending 1234", models.CategoryOther),
		charge("3", "2025-03-01", "-45.00", "chase card payment 0301", models.CategoryOther),
	}

	clusters := DetectDefault(txs, nil)
	require.Len(t, clusters, 1)
	assert.Equal(t, "chase card payment|Other", clusters[0].Key)
	assert.Empty(t, clusters[0].Suspicious)
}

func TestFlaggedAndUnresolvedTotal(t *testing.T) {
	clusters := DetectDefault(streamingScenario(), nil)

	flags := Flagged(clusters)
	require.Len(t, flags, 2)
	assert.Equal(t, "c", flags[0].TransactionID)
	assert.Equal(t, "d", flags[1].TransactionID)
	assert.True(t, UnresolvedTotal(clusters).Equal(decimal.RequireFromString("31.98")))
}
