package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"finassist/internal/core"
)

// seedFile is the JSON layout accepted by NewFromFile.
type seedFile struct {
	Users []struct {
		ID         int64     `json:"user_id"`
		FirstName  string    `json:"fname"`
		LastName   string    `json:"lname"`
		Age        int       `json:"age"`
		Gender     string    `json:"gender"`
		Occupation string    `json:"occupation"`
		Email      string    `json:"email"`
		CreatedAt  time.Time `json:"created_at"`
	} `json:"users"`
	Budgets []struct {
		UserID       int64  `json:"user_id"`
		Period       string `json:"month"`
		Salary       string `json:"salary"`
		ExpenseLimit string `json:"expense_limit"`
		SavingsGoal  string `json:"savings_goal"`
	} `json:"budgets"`
	Transactions []struct {
		UserID        int64  `json:"user_id"`
		Date          string `json:"date"`
		Amount        string `json:"amount"`
		PaymentMethod string `json:"payment_method"`
		Description   string `json:"description"`
	} `json:"transactions"`
}

// NewFromFile builds a store seeded from a JSON file. A missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	ctx := context.Background()
	for _, u := range seed.Users {
		if _, err := s.CreateUser(ctx, core.User{
			ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Age: u.Age,
			Gender: u.Gender, Occupation: u.Occupation, Email: u.Email, CreatedAt: u.CreatedAt,
		}); err != nil {
			return nil, fmt.Errorf("seed user %d: %w", u.ID, err)
		}
	}
	for _, b := range seed.Budgets {
		budget := core.Budget{UserID: b.UserID, Period: b.Period}
		for _, f := range []struct {
			dst *core.Money
			src string
		}{{&budget.Salary, b.Salary}, {&budget.ExpenseLimit, b.ExpenseLimit}, {&budget.SavingsGoal, b.SavingsGoal}} {
			if f.src == "" {
				continue
			}
			if *f.dst, err = core.ParseMoney(f.src); err != nil {
				return nil, fmt.Errorf("seed budget for user %d: %w", b.UserID, err)
			}
		}
		if err := s.SetBudget(ctx, budget); err != nil {
			return nil, fmt.Errorf("seed budget for user %d: %w", b.UserID, err)
		}
	}
	for _, t := range seed.Transactions {
		date, err := core.ParseDate(t.Date)
		if err != nil {
			return nil, fmt.Errorf("seed transaction date %q: %w", t.Date, err)
		}
		amount, err := core.ParseMoney(t.Amount)
		if err != nil {
			return nil, fmt.Errorf("seed transaction amount %q: %w", t.Amount, err)
		}
		s.mu.Lock()
		s.transactions = append(s.transactions, core.Transaction{
			ID: s.nextTxID, UserID: t.UserID, Date: date, Amount: amount,
			PaymentMethod: t.PaymentMethod, Description: t.Description,
		})
		s.nextTxID++
		s.mu.Unlock()
	}
	return s, nil
}
