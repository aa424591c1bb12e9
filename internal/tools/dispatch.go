package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"finassist/internal/core"
	applog "finassist/internal/log"
)

type (
	UserProfiler interface {
		Profile(ctx context.Context, userID int64, period string) (core.UserProfile, error)
	}
	SpendingAnalyzer interface {
		Analyze(ctx context.Context, userID int64) (core.SpendingInsights, error)
	}
	BudgetEvaluator interface {
		Evaluate(ctx context.Context, userID int64, period string) (core.AdviceInput, error)
	}
	SpendingPredictor interface {
		Predict(ctx context.Context, userID int64) (core.Forecast, error)
	}
	TransactionRecorder interface {
		RecordText(ctx context.Context, text string) (core.Transaction, error)
	}
	ReceiptGenerator interface {
		Generate(ctx context.Context, transactionID int64) (core.Receipt, error)
	}
)

// Services are the operations behind the tools.
type Services struct {
	Users     UserProfiler
	Spending  SpendingAnalyzer
	Budgets   BudgetEvaluator
	Forecasts SpendingPredictor
	Ledger    TransactionRecorder
	Receipts  ReceiptGenerator
}

// ErrorResult is what a tool returns when it cannot complete.
type ErrorResult struct {
	Error string `json:"error"`
}

type args struct {
	UserID        *int64 `json:"user_id"`
	Period        string `json:"period"`
	UserInput     string `json:"user_input"`
	TransactionID *int64 `json:"transaction_id"`
}

// Dispatcher routes tool calls to services.
type Dispatcher struct {
	svc Services
	log *applog.Logger
}

func NewDispatcher(svc Services, logger *applog.Logger) *Dispatcher {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &Dispatcher{svc: svc, log: logger.WithComponent(applog.ComponentTools)}
}

// Dispatch runs the named tool with JSON-encoded arguments. Domain failures, unknown
// tools and malformed arguments become an ErrorResult; Dispatch itself never fails.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, raw json.RawMessage) any {
	var a args
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &a); err != nil {
			return ErrorResult{Error: "Invalid arguments: " + err.Error()}
		}
	}

	result, err := d.call(ctx, name, a)
	if err != nil {
		d.log.InfoContext(ctx, "Tool call failed",
			applog.FieldTool, name,
			applog.FieldError, err)
		return ErrorResult{Error: core.UserMessage(err)}
	}
	d.log.DebugContext(ctx, "Tool call succeeded", applog.FieldTool, name)
	return result
}

func (d *Dispatcher) call(ctx context.Context, name string, a args) (any, error) {
	switch name {
	case RetrieveUserData:
		id, err := a.userID()
		if err != nil {
			return nil, err
		}
		return d.svc.Users.Profile(ctx, id, a.Period)
	case AnalyzeSpending:
		id, err := a.userID()
		if err != nil {
			return nil, err
		}
		return d.svc.Spending.Analyze(ctx, id)
	case GenerateFinancialAdvice:
		id, err := a.userID()
		if err != nil {
			return nil, err
		}
		return d.svc.Budgets.Evaluate(ctx, id, a.Period)
	case PredictFutureSpending:
		id, err := a.userID()
		if err != nil {
			return nil, err
		}
		return d.svc.Forecasts.Predict(ctx, id)
	case RecordTransaction:
		tx, err := d.svc.Ledger.RecordText(ctx, a.UserInput)
		if err != nil {
			return nil, err
		}
		return core.NewRecordedTransaction(tx), nil
	case GenerateTransactionReceipt:
		if a.TransactionID == nil {
			return nil, missingArgument("transaction_id")
		}
		return d.svc.Receipts.Generate(ctx, *a.TransactionID)
	default:
		return nil, core.Fail(core.ErrNotFound, fmt.Sprintf("Unknown tool %q.", name), nil)
	}
}

func (a args) userID() (int64, error) {
	if a.UserID == nil {
		return 0, missingArgument("user_id")
	}
	return *a.UserID, nil
}

func missingArgument(name string) error {
	return core.Fail(core.ErrParse, fmt.Sprintf("Missing required argument %q.", name), nil)
}
