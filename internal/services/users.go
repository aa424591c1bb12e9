package services

import (
	"context"
	"time"

	"finassist/internal/core"
	applog "finassist/internal/log"
)

// UserService looks up user profiles.
type UserService struct {
	deps    Deps
	periods *BudgetEvaluator
	log     *applog.Logger
}

// NewUserService resolves empty periods the way the budget evaluator does.
func NewUserService(deps Deps, defaultPeriod string) *UserService {
	return &UserService{
		deps:    deps,
		periods: NewBudgetEvaluator(deps, defaultPeriod),
		log:     deps.logger(applog.ComponentReports),
	}
}

// Profile returns the user's details with the salary of their budget for period.
// Salary is nil when the user has no budget for that period.
func (s *UserService) Profile(ctx context.Context, userID int64, period string) (core.UserProfile, error) {
	period = s.periods.Period(period)

	sess, err := connect(ctx, s.deps.Store, s.log, applog.OpProfile)
	if err != nil {
		return core.UserProfile{}, err
	}
	defer release(ctx, sess, s.log)

	user, err := sess.GetUser(ctx, userID)
	if isNotFound(err) {
		return core.UserProfile{}, core.Fail(core.ErrNotFound, core.MsgUserNotFound, err)
	}
	if err != nil {
		return core.UserProfile{}, queryFailure(err)
	}

	profile := core.UserProfile{
		UserID:     user.ID,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Age:        user.Age,
		Gender:     user.Gender,
		Occupation: user.Occupation,
		Email:      user.Email,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
	}

	budget, err := sess.GetBudget(ctx, userID, period)
	switch {
	case err == nil:
		salary := budget.Salary.Float()
		profile.Salary = &salary
	case !isNotFound(err):
		return core.UserProfile{}, queryFailure(err)
	}
	return profile, nil
}
