package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Grouping selects how transactions are bucketed into months.
type Grouping string

const (
	// GroupByYearMonth buckets by calendar (year, month), labelled "March 2026".
	GroupByYearMonth Grouping = "year_month"
	// GroupByMonthName buckets by bare month name, labelled "March". Transactions from
	// different years in the same month collapse into one bucket.
	GroupByMonthName Grouping = "month_name"
)

func (g Grouping) Valid() bool {
	return g == GroupByYearMonth || g == GroupByMonthName
}

// Label returns the bucket label of d.
func (g Grouping) Label(d Date) string {
	if g == GroupByMonthName {
		return d.Month().String()
	}
	return fmt.Sprintf("%s %d", d.Month(), d.Year())
}

// MonthSum is one month bucket with an exact total.
type MonthSum struct {
	Label string
	Total Money
}

// GroupByMonth sums amounts per month bucket. Buckets appear in order of first
// appearance in txs, so ascending input yields ascending buckets.
func GroupByMonth(txs []Transaction, g Grouping) []MonthSum {
	index := make(map[string]int)
	var sums []MonthSum
	for _, tx := range txs {
		label := g.Label(tx.Date)
		i, ok := index[label]
		if !ok {
			i = len(sums)
			index[label] = i
			sums = append(sums, MonthSum{Label: label, Total: ZeroMoney})
		}
		sums[i].Total = sums[i].Total.Add(tx.Amount)
	}
	return sums
}

// CountPaymentMethods counts transactions per payment method, most used first.
// Ties keep first-seen order.
func CountPaymentMethods(txs []Transaction) PaymentMethodCounts {
	index := make(map[string]int)
	var counts PaymentMethodCounts
	for _, tx := range txs {
		i, ok := index[tx.PaymentMethod]
		if !ok {
			i = len(counts)
			index[tx.PaymentMethod] = i
			counts = append(counts, MethodCount{Method: tx.PaymentMethod})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(a, b int) bool {
		return counts[a].Count > counts[b].Count
	})
	return counts
}

type (
	MonthAmount struct {
		Month  string
		Amount float64
	}

	// MonthlyBreakdown marshals as a JSON object whose keys keep slice order.
	MonthlyBreakdown []MonthAmount

	MethodCount struct {
		Method string
		Count  int
	}

	// PaymentMethodCounts marshals as a JSON object whose keys keep slice order.
	PaymentMethodCounts []MethodCount

	SpendingInsights struct {
		TotalSpent        float64             `json:"total_spent"`
		MonthlyBreakdown  MonthlyBreakdown    `json:"monthly_breakdown"`
		TopPaymentMethods PaymentMethodCounts `json:"top_payment_methods"`
		TransactionCount  int                 `json:"transaction_count"`
	}

	// AdviceInput is what a financial advice writer needs about one user.
	AdviceInput struct {
		Name         string  `json:"name"`
		Period       string  `json:"period"`
		Salary       float64 `json:"salary"`
		ExpenseLimit float64 `json:"expense_limit"`
		SavingsGoal  float64 `json:"savings_goal"`
		TotalSpent   float64 `json:"total_spent"`
	}

	Forecast struct {
		AverageSpending   float64 `json:"average_spending"`
		PredictedSpending float64 `json:"predicted_spending"`
	}

	Receipt struct {
		UserFullName  string  `json:"user_full_name"`
		TransactionID int64   `json:"transaction_id"`
		UserID        int64   `json:"user_id"`
		Date          string  `json:"date"`
		Amount        float64 `json:"amount"`
		PaymentMethod string  `json:"payment_method"`
		Description   string  `json:"description"`
		ReceiptPath   string  `json:"receipt_path"`
	}

	UserProfile struct {
		UserID     int64    `json:"user_id"`
		FirstName  string   `json:"fname"`
		LastName   string   `json:"lname"`
		Age        int      `json:"age"`
		Gender     string   `json:"gender"`
		Occupation string   `json:"occupation"`
		Email      string   `json:"email"`
		CreatedAt  string   `json:"created_at"`
		Salary     *float64 `json:"salary"`
	}

	// RecordedTransaction is the Ledger Writer's echo of what it stored.
	RecordedTransaction struct {
		TransactionID int64   `json:"transaction_id"`
		UserID        int64   `json:"user_id"`
		Date          string  `json:"date"`
		Amount        float64 `json:"amount"`
		PaymentMethod string  `json:"payment_method"`
		Description   string  `json:"description"`
	}
)

// Total sums the breakdown.
func (b MonthlyBreakdown) Total() float64 {
	var total float64
	for _, m := range b {
		total += m.Amount
	}
	return total
}

// Get returns the amount for a month label.
func (b MonthlyBreakdown) Get(month string) (float64, bool) {
	for _, m := range b {
		if m.Month == month {
			return m.Amount, true
		}
	}
	return 0, false
}

func (b MonthlyBreakdown) MarshalJSON() ([]byte, error) {
	return orderedObject(len(b), func(i int) (string, any) { return b[i].Month, b[i].Amount })
}

// Total counts all transactions.
func (c PaymentMethodCounts) Total() int {
	total := 0
	for _, m := range c {
		total += m.Count
	}
	return total
}

func (c PaymentMethodCounts) MarshalJSON() ([]byte, error) {
	return orderedObject(len(c), func(i int) (string, any) { return c[i].Method, c[i].Count })
}

func orderedObject(n int, entry func(i int) (string, any)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, v := entry(i)
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NewReceipt builds the echo of tx for its owner.
func NewReceipt(tx Transaction, owner User, path string) Receipt {
	return Receipt{
		UserFullName:  owner.FullName(),
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Date:          tx.Date.String(),
		Amount:        tx.Amount.Float(),
		PaymentMethod: tx.PaymentMethod,
		Description:   tx.Description,
		ReceiptPath:   path,
	}
}

func NewRecordedTransaction(tx Transaction) RecordedTransaction {
	return RecordedTransaction{
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Date:          tx.Date.String(),
		Amount:        tx.Amount.Float(),
		PaymentMethod: tx.PaymentMethod,
		Description:   tx.Description,
	}
}
