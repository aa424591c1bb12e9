package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(date Date, amount, method string) Transaction {
	return Transaction{UserID: 7, Date: date, Amount: MustMoney(amount), PaymentMethod: method, Description: "x"}
}

func TestGroupByMonth(t *testing.T) {
	txs := []Transaction{
		tx(NewDate(2025, time.October, 3), "10", "Cash"),
		tx(NewDate(2026, time.August, 1), "100", "CBE"),
		tx(NewDate(2026, time.August, 20), "150", "CBE"),
		tx(NewDate(2026, time.October, 2), "5.5", "Cash"),
	}

	t.Run("year and month", func(t *testing.T) {
		sums := GroupByMonth(txs, GroupByYearMonth)
		require.Len(t, sums, 3)
		assert.Equal(t, "October 2025", sums[0].Label)
		assert.Equal(t, "August 2026", sums[1].Label)
		assert.Equal(t, "250.00", sums[1].Total.Fixed())
		assert.Equal(t, "October 2026", sums[2].Label)
	})

	t.Run("month name collapses years", func(t *testing.T) {
		sums := GroupByMonth(txs, GroupByMonthName)
		require.Len(t, sums, 2)
		assert.Equal(t, "October", sums[0].Label)
		assert.Equal(t, "15.50", sums[0].Total.Fixed())
		assert.Equal(t, "August", sums[1].Label)
	})

	t.Run("partition sums to total", func(t *testing.T) {
		total := ZeroMoney
		for _, s := range GroupByMonth(txs, GroupByYearMonth) {
			total = total.Add(s.Total)
		}
		assert.Equal(t, "265.50", total.Fixed())
	})
}

func TestCountPaymentMethods(t *testing.T) {
	d := NewDate(2026, time.October, 1)
	txs := []Transaction{
		tx(d, "1", "Telebirr"),
		tx(d, "1", "Cash"),
		tx(d, "1", "CBE"),
		tx(d, "1", "CBE"),
		tx(d, "1", "Cash"),
		tx(d, "1", "Awash"),
	}
	counts := CountPaymentMethods(txs)

	assert.Equal(t, PaymentMethodCounts{
		{Method: "Cash", Count: 2},
		{Method: "CBE", Count: 2},
		{Method: "Telebirr", Count: 1},
		{Method: "Awash", Count: 1},
	}, counts)
	assert.Equal(t, len(txs), counts.Total())
	for i := 1; i < len(counts); i++ {
		assert.GreaterOrEqual(t, counts[i-1].Count, counts[i].Count)
	}
}

func TestOrderedJSON(t *testing.T) {
	insights := SpendingInsights{
		TotalSpent:        250,
		MonthlyBreakdown:  MonthlyBreakdown{{Month: "September", Amount: 100}, {Month: "August", Amount: 150}},
		TopPaymentMethods: PaymentMethodCounts{{Method: "CBE", Count: 2}},
		TransactionCount:  2,
	}
	b, err := json.Marshal(insights)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_spent":250,"monthly_breakdown":{"September":100,"August":150},"top_payment_methods":{"CBE":2},"transaction_count":2}`, string(b))
	assert.Contains(t, string(b), `{"September":100,"August":150}`)

	empty, err := json.Marshal(MonthlyBreakdown(nil))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(empty))
}

func TestFailure(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	f := &Failure{Kind: ErrConnection, Message: MsgConnectionFailed, Err: cause, Also: []error{ErrStorage}}
	var err error = fmt.Errorf("record: %w", f)

	assert.ErrorIs(t, err, ErrConnection)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrParse)
	assert.Equal(t, MsgConnectionFailed, UserMessage(err))
	assert.Equal(t, ErrConnection, KindOf(err))

	assert.Equal(t, genericMessage, UserMessage(errors.New("boom")))
	assert.Nil(t, KindOf(errors.New("boom")))
	assert.Empty(t, UserMessage(nil))
}
