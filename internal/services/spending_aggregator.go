package services

import (
	"context"
	"fmt"

	"finassist/internal/core"
	applog "finassist/internal/log"
)

// SpendingWindowMonths is the trailing window analyzed by the aggregator and the forecaster.
const SpendingWindowMonths = 3

// SpendingAggregator summarizes a user's recent spending.
type SpendingAggregator struct {
	deps     Deps
	grouping core.Grouping
	months   int
	log      *applog.Logger
}

func NewSpendingAggregator(deps Deps, grouping core.Grouping) *SpendingAggregator {
	if !grouping.Valid() {
		grouping = core.GroupByYearMonth
	}
	return &SpendingAggregator{
		deps:     deps,
		grouping: grouping,
		months:   SpendingWindowMonths,
		log:      deps.logger(applog.ComponentReports),
	}
}

// Analyze totals the user's transactions in the trailing window. An empty window is a
// core.ErrNoData failure, not an empty summary.
func (a *SpendingAggregator) Analyze(ctx context.Context, userID int64) (core.SpendingInsights, error) {
	txs, err := windowTransactions(ctx, a.deps, a.log, applog.OpAnalyze, userID, a.months)
	if err != nil {
		return core.SpendingInsights{}, err
	}
	if len(txs) == 0 {
		return core.SpendingInsights{}, core.Fail(core.ErrNoData, fmt.Sprintf(core.MsgNoTransactions, a.months), nil)
	}
	return summarize(txs, a.grouping), nil
}

func summarize(txs []core.Transaction, g core.Grouping) core.SpendingInsights {
	total := core.ZeroMoney
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}

	months := core.GroupByMonth(txs, g)
	breakdown := make(core.MonthlyBreakdown, 0, len(months))
	for _, m := range months {
		breakdown = append(breakdown, core.MonthAmount{Month: m.Label, Amount: m.Total.Float()})
	}

	return core.SpendingInsights{
		TotalSpent:        total.Float(),
		MonthlyBreakdown:  breakdown,
		TopPaymentMethods: core.CountPaymentMethods(txs),
		TransactionCount:  len(txs),
	}
}

// windowTransactions loads the user's transactions dated on or after today minus months.
func windowTransactions(ctx context.Context, deps Deps, log *applog.Logger, op string, userID int64, months int) ([]core.Transaction, error) {
	sess, err := connect(ctx, deps.Store, log, op)
	if err != nil {
		return nil, err
	}
	defer release(ctx, sess, log)

	since := deps.today().MonthsBefore(months)
	txs, err := sess.TransactionsSince(ctx, userID, since)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load transactions",
			applog.FieldOperation, op,
			applog.FieldUserID, userID,
			applog.FieldError, err)
		return nil, queryFailure(err)
	}
	log.DebugContext(ctx, "Loaded spending window",
		applog.FieldOperation, op,
		applog.FieldUserID, userID,
		applog.FieldWindowStart, since.String(),
		applog.FieldCount, len(txs))
	return txs, nil
}
