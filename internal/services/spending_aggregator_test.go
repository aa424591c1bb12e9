package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finassist/internal/core"
)

func TestAnalyze_SameMonthTransactions(t *testing.T) {
	eachStore(t, func(t *testing.T, f *fixture) {
		f.addTx(t, 7, core.NewDate(2026, time.October, 2), "100.0", "CBE")
		f.addTx(t, 7, core.NewDate(2026, time.October, 5), "150.0", "CBE")

		insights, err := NewSpendingAggregator(f.deps, core.GroupByYearMonth).Analyze(context.Background(), 7)
		require.NoError(t, err)

		assert.Equal(t, 250.0, insights.TotalSpent)
		assert.Equal(t, core.MonthlyBreakdown{{Month: "October 2026", Amount: 250.0}}, insights.MonthlyBreakdown)
		assert.Equal(t, core.PaymentMethodCounts{{Method: "CBE", Count: 2}}, insights.TopPaymentMethods)
		assert.Equal(t, 2, insights.TransactionCount)
		f.requireReleased(t)
	})
}

func TestAnalyze_NoTransactions(t *testing.T) {
	f := newFixture(t)
	f.addTx(t, 7, core.NewDate(2026, time.July, 13), "80", "CBE") // one day before the window
	f.addTx(t, 8, core.NewDate(2026, time.October, 1), "80", "CBE")

	_, err := NewSpendingAggregator(f.deps, core.GroupByYearMonth).Analyze(context.Background(), 7)
	requireKind(t, err, core.ErrNoData, "No transactions found in the last 3 months.")
	assert.Zero(t, f.store.OpenSessions())
}

func TestAnalyze_WindowStartIsInclusive(t *testing.T) {
	f := newFixture(t)
	f.addTx(t, 7, core.NewDate(2026, time.July, 14), "40", "cash")
	f.addTx(t, 7, core.NewDate(2026, time.July, 13), "1000", "cash")

	insights, err := NewSpendingAggregator(f.deps, core.GroupByYearMonth).Analyze(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 40.0, insights.TotalSpent)
	assert.Equal(t, 1, insights.TransactionCount)
}

func TestAnalyze_PartitionInvariants(t *testing.T) {
	f := newFixture(t)
	f.addTx(t, 7, core.NewDate(2026, time.August, 1), "10.10", "cash")
	f.addTx(t, 7, core.NewDate(2026, time.August, 20), "20.20", "CBE")
	f.addTx(t, 7, core.NewDate(2026, time.September, 3), "30.30", "CBE")
	f.addTx(t, 7, core.NewDate(2026, time.September, 9), "0.1", "telebirr")
	f.addTx(t, 7, core.NewDate(2026, time.October, 11), "0.2", "CBE")
	f.addTx(t, 7, core.NewDate(2026, time.October, 12), "5", "cash")

	insights, err := NewSpendingAggregator(f.deps, core.GroupByYearMonth).Analyze(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 65.9, insights.TotalSpent)
	assert.InDelta(t, insights.TotalSpent, insights.MonthlyBreakdown.Total(), 1e-9)
	assert.Equal(t, insights.TransactionCount, insights.TopPaymentMethods.Total())

	months := make([]string, 0, len(insights.MonthlyBreakdown))
	for _, m := range insights.MonthlyBreakdown {
		months = append(months, m.Month)
	}
	assert.Equal(t, []string{"August 2026", "September 2026", "October 2026"}, months)

	assert.Equal(t, core.PaymentMethodCounts{
		{Method: "CBE", Count: 3},
		{Method: "cash", Count: 2},
		{Method: "telebirr", Count: 1},
	}, insights.TopPaymentMethods)
	for i := 1; i < len(insights.TopPaymentMethods); i++ {
		assert.GreaterOrEqual(t, insights.TopPaymentMethods[i-1].Count, insights.TopPaymentMethods[i].Count)
	}
}

func TestAnalyze_ExactDecimalTotal(t *testing.T) {
	eachStore(t, func(t *testing.T, f *fixture) {
		f.addTx(t, 7, core.NewDate(2026, time.October, 1), "0.1", "cash")
		f.addTx(t, 7, core.NewDate(2026, time.October, 2), "0.2", "cash")
		f.addTx(t, 7, core.NewDate(2026, time.October, 3), "250.3", "cash")

		insights, err := NewSpendingAggregator(f.deps, core.GroupByYearMonth).Analyze(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, 250.6, insights.TotalSpent)
	})
}

func TestAnalyze_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.addTx(t, 7, core.NewDate(2026, time.September, 1), "12", "cash")
	f.addTx(t, 7, core.NewDate(2026, time.October, 1), "13", "CBE")
	agg := NewSpendingAggregator(f.deps, core.GroupByYearMonth)

	first, err := agg.Analyze(context.Background(), 7)
	require.NoError(t, err)
	second, err := agg.Analyze(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAnalyze_Grouping(t *testing.T) {
	// The window has no upper bound, so a future-dated October lands beside this one.
	setup := func(t *testing.T) *fixture {
		f := newFixture(t)
		f.addTx(t, 7, core.NewDate(2026, time.October, 1), "100", "cash")
		f.addTx(t, 7, core.NewDate(2027, time.October, 1), "50", "cash")
		return f
	}

	t.Run("year_month keeps years apart", func(t *testing.T) {
		f := setup(t)
		insights, err := NewSpendingAggregator(f.deps, core.GroupByYearMonth).Analyze(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, core.MonthlyBreakdown{
			{Month: "October 2026", Amount: 100},
			{Month: "October 2027", Amount: 50},
		}, insights.MonthlyBreakdown)
	})

	t.Run("month_name collapses years", func(t *testing.T) {
		f := setup(t)
		insights, err := NewSpendingAggregator(f.deps, core.GroupByMonthName).Analyze(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, core.MonthlyBreakdown{{Month: "October", Amount: 150}}, insights.MonthlyBreakdown)
	})
}

func TestAnalyze_ConnectionFailure(t *testing.T) {
	f := newFixture(t)
	f.deps.Store = failingConnector{}

	_, err := NewSpendingAggregator(f.deps, core.GroupByYearMonth).Analyze(context.Background(), 7)
	requireKind(t, err, core.ErrConnection, core.MsgConnectionFailed)
	assert.NotErrorIs(t, err, core.ErrNoData)
}
