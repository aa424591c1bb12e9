package services

import (
	"context"
	"time"

	"finassist/internal/core"
	applog "finassist/internal/log"
)

// BudgetWindowMonths is the trailing window whose spend is compared against the budget.
const BudgetWindowMonths = 1

// BudgetEvaluator joins a user's budget for a period with their recent spend.
type BudgetEvaluator struct {
	deps          Deps
	defaultPeriod string
	log           *applog.Logger
}

// NewBudgetEvaluator builds an evaluator. An empty defaultPeriod resolves to the
// English name of the current month at call time. Deployments whose budgets all sit
// under the fixed "May" label keep that behavior with BUDGET_PERIOD=May.
func NewBudgetEvaluator(deps Deps, defaultPeriod string) *BudgetEvaluator {
	return &BudgetEvaluator{
		deps:          deps,
		defaultPeriod: defaultPeriod,
		log:           deps.logger(applog.ComponentReports),
	}
}

// Period resolves the label Evaluate uses when the caller passes none.
func (e *BudgetEvaluator) Period(period string) string {
	if period != "" {
		return period
	}
	if e.defaultPeriod != "" {
		return e.defaultPeriod
	}
	return CurrentPeriod(e.deps.now())
}

// CurrentPeriod is the budget label for the month containing t, e.g. "October".
func CurrentPeriod(t time.Time) string {
	return t.Month().String()
}

// Evaluate returns the advice input for userID. A missing user or a missing budget for
// the period fails with core.ErrNoData; no spend in the window counts as zero.
func (e *BudgetEvaluator) Evaluate(ctx context.Context, userID int64, period string) (core.AdviceInput, error) {
	period = e.Period(period)

	sess, err := connect(ctx, e.deps.Store, e.log, applog.OpAdvice)
	if err != nil {
		return core.AdviceInput{}, err
	}
	defer release(ctx, sess, e.log)

	budget, err := sess.GetBudget(ctx, userID, period)
	if isNotFound(err) {
		return core.AdviceInput{}, core.Fail(core.ErrNoData, core.MsgNoBudgetOrUser, err)
	}
	if err != nil {
		return core.AdviceInput{}, queryFailure(err)
	}

	user, err := sess.GetUser(ctx, userID)
	if isNotFound(err) {
		return core.AdviceInput{}, core.Fail(core.ErrNoData, core.MsgNoBudgetOrUser, err)
	}
	if err != nil {
		return core.AdviceInput{}, queryFailure(err)
	}

	spent, err := sess.SumSince(ctx, userID, e.deps.today().MonthsBefore(BudgetWindowMonths))
	if err != nil {
		return core.AdviceInput{}, queryFailure(err)
	}

	e.log.DebugContext(ctx, "Budget evaluated",
		applog.FieldOperation, applog.OpAdvice,
		applog.FieldUserID, userID,
		applog.FieldPeriod, period)

	return core.AdviceInput{
		Name:         user.FullName(),
		Period:       period,
		Salary:       budget.Salary.Float(),
		ExpenseLimit: budget.ExpenseLimit.Float(),
		SavingsGoal:  budget.SavingsGoal.Float(),
		TotalSpent:   spent.Float(),
	}, nil
}
