package tools

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finassist/internal/auditlog"
	"finassist/internal/core"
	applog "finassist/internal/log"
	"finassist/internal/receipt"
	"finassist/internal/services"
	"finassist/internal/storage/memory"
)

type fixedRandom float64

func (r fixedRandom) Float64() float64 { return float64(r) }

func newDispatcher(t *testing.T) (*Dispatcher, *memory.Store, string) {
	t.Helper()
	now := func() time.Time { return time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC) }
	logger := applog.New(applog.Config{Output: io.Discard})
	store := memory.New()
	dir := t.TempDir()

	_, err := store.CreateUser(context.Background(), core.User{ID: 7, FirstName: "Abebe", LastName: "Kebede", CreatedAt: now()})
	require.NoError(t, err)
	require.NoError(t, store.SetBudget(context.Background(), core.Budget{
		UserID: 7, Period: "May",
		Salary: core.MustMoney("15000"), ExpenseLimit: core.MustMoney("9000"), SavingsGoal: core.MustMoney("3000"),
	}))

	deps := services.Deps{Store: store, Logger: logger, Now: now}
	svc := Services{
		Users:     services.NewUserService(deps, "May"),
		Spending:  services.NewSpendingAggregator(deps, core.GroupByYearMonth),
		Budgets:   services.NewBudgetEvaluator(deps, "May"),
		Forecasts: services.NewForecaster(deps, core.GroupByYearMonth, fixedRandom(0.5)),
		Ledger:    services.NewLedgerWriter(deps, auditlog.New(filepath.Join(dir, "logs.txt"), now), nil, services.LedgerOptions{}),
		Receipts:  services.NewReceiptGenerator(deps, receipt.NewPDFRenderer(filepath.Join(dir, "receipts"), receipt.DefaultLayout)),
	}
	return NewDispatcher(svc, logger), store, dir
}

func asJSON(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestDispatch_RecordThenReport(t *testing.T) {
	d, store, dir := newDispatcher(t)
	ctx := context.Background()

	recorded := asJSON(t, d.Dispatch(ctx, RecordTransaction,
		json.RawMessage(`{"user_input":"User 7 spent 250 ETB for groceries via CBE today"}`)))
	assert.Equal(t, map[string]any{
		"transaction_id": float64(1),
		"user_id":        float64(7),
		"date":           "2026-10-14",
		"amount":         250.0,
		"payment_method": "CBE",
		"description":    "groceries",
	}, recorded)
	assert.Len(t, store.Transactions(), 1)

	spending := asJSON(t, d.Dispatch(ctx, AnalyzeSpending, json.RawMessage(`{"user_id":7}`)))
	assert.Equal(t, 250.0, spending["total_spent"])
	assert.Equal(t, map[string]any{"October 2026": 250.0}, spending["monthly_breakdown"])
	assert.Equal(t, map[string]any{"CBE": float64(1)}, spending["top_payment_methods"])

	advice := asJSON(t, d.Dispatch(ctx, GenerateFinancialAdvice, json.RawMessage(`{"user_id":7}`)))
	assert.Equal(t, "Abebe Kebede", advice["name"])
	assert.Equal(t, 250.0, advice["total_spent"])

	forecast := asJSON(t, d.Dispatch(ctx, PredictFutureSpending, json.RawMessage(`{"user_id":7}`)))
	assert.Equal(t, 250.0, forecast["average_spending"])
	assert.InDelta(t, 262.5, forecast["predicted_spending"], 1e-9)

	rec := asJSON(t, d.Dispatch(ctx, GenerateTransactionReceipt, json.RawMessage(`{"transaction_id":1}`)))
	assert.Equal(t, filepath.Join(dir, "receipts", "user7-transaction1-receipt.pdf"), rec["receipt_path"])
	assert.FileExists(t, rec["receipt_path"].(string))

	profile := asJSON(t, d.Dispatch(ctx, RetrieveUserData, json.RawMessage(`{"user_id":7}`)))
	assert.Equal(t, "Abebe", profile["fname"])
	assert.Equal(t, 15000.0, profile["salary"])
}

func TestDispatch_Errors(t *testing.T) {
	d, _, _ := newDispatcher(t)
	ctx := context.Background()

	tests := []struct {
		name string
		tool string
		args string
		want string
	}{
		{"malformed text", RecordTransaction, `{"user_input":"User 7 spent abc ETB for x via Y today"}`, core.MsgInvalidFormat},
		{"no transactions", AnalyzeSpending, `{"user_id":8}`, "No transactions found in the last 3 months."},
		{"no budget", GenerateFinancialAdvice, `{"user_id":8}`, core.MsgNoBudgetOrUser},
		{"no history", PredictFutureSpending, `{"user_id":8}`, core.MsgNotEnoughHistory},
		{"unknown transaction", GenerateTransactionReceipt, `{"transaction_id":404}`, "No transaction found with ID 404."},
		{"unknown user", RetrieveUserData, `{"user_id":8}`, core.MsgUserNotFound},
		{"missing user id", AnalyzeSpending, `{}`, `Missing required argument "user_id".`},
		{"missing transaction id", GenerateTransactionReceipt, ``, `Missing required argument "transaction_id".`},
		{"unknown tool", "transfer_funds", `{}`, `Unknown tool "transfer_funds".`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Dispatch(ctx, tt.tool, json.RawMessage(tt.args))
			assert.Equal(t, ErrorResult{Error: tt.want}, got)
		})
	}
}

func TestDispatch_MalformedArguments(t *testing.T) {
	d, _, _ := newDispatcher(t)
	got := d.Dispatch(context.Background(), AnalyzeSpending, json.RawMessage(`{"user_id":"seven"}`))
	res, ok := got.(ErrorResult)
	require.True(t, ok)
	assert.Contains(t, res.Error, "Invalid arguments")
}

func TestDeclarations(t *testing.T) {
	d, _, _ := newDispatcher(t)
	decls := Declarations()
	require.Len(t, decls, 6)

	for _, decl := range decls {
		assert.Equal(t, "object", decl.Parameters.Type)
		for _, req := range decl.Parameters.Required {
			assert.Contains(t, decl.Parameters.Properties, req, decl.Name)
		}
		// Every declared tool is routable.
		got := d.Dispatch(context.Background(), decl.Name, json.RawMessage(`{}`))
		if res, ok := got.(ErrorResult); ok {
			assert.NotContains(t, res.Error, "Unknown tool", decl.Name)
		}
	}
}
