package services

import (
	"context"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"finassist/internal/core"
	applog "finassist/internal/log"
)

// Forecast multiplier bounds.
const (
	MinForecastFactor = 0.9
	MaxForecastFactor = 1.2
)

// RandomSource yields uniform values in [0, 1).
type RandomSource interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Forecaster predicts next-period spending from the trailing monthly average.
type Forecaster struct {
	deps     Deps
	grouping core.Grouping
	rnd      RandomSource
	log      *applog.Logger
}

// NewForecaster builds a forecaster. A nil rnd uses the process-wide generator.
func NewForecaster(deps Deps, grouping core.Grouping, rnd RandomSource) *Forecaster {
	if !grouping.Valid() {
		grouping = core.GroupByYearMonth
	}
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Forecaster{
		deps:     deps,
		grouping: grouping,
		rnd:      rnd,
		log:      deps.logger(applog.ComponentReports),
	}
}

// Predict averages the per-month sums of the trailing window and perturbs the average by
// a factor drawn uniformly from [MinForecastFactor, MaxForecastFactor].
func (f *Forecaster) Predict(ctx context.Context, userID int64) (core.Forecast, error) {
	txs, err := windowTransactions(ctx, f.deps, f.log, applog.OpPredict, userID, SpendingWindowMonths)
	if err != nil {
		return core.Forecast{}, err
	}
	if len(txs) == 0 {
		return core.Forecast{}, core.Fail(core.ErrInsufficientHistory, core.MsgNotEnoughHistory, nil)
	}

	months := core.GroupByMonth(txs, f.grouping)
	sum := core.ZeroMoney
	for _, m := range months {
		sum = sum.Add(m.Total)
	}
	average := sum.Decimal.Div(decimal.NewFromInt(int64(len(months))))
	avg, _ := average.Float64()

	return core.Forecast{
		AverageSpending:   avg,
		PredictedSpending: avg * f.factor(),
	}, nil
}

func (f *Forecaster) factor() float64 {
	u := MinForecastFactor + (MaxForecastFactor-MinForecastFactor)*f.rnd.Float64()
	return min(max(u, MinForecastFactor), MaxForecastFactor)
}
