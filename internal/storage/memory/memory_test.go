package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"finassist/internal/core"
	"finassist/internal/storage"
)

func TestStoreSessionsAreCounted(t *testing.T) {
	s := New()
	ctx := context.Background()

	a, err := s.Connect(ctx)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	b, _ := s.Connect(ctx)
	if got := s.OpenSessions(); got != 2 {
		t.Fatalf("OpenSessions = %d, want 2", got)
	}
	a.Close()
	b.Close()
	if got := s.OpenSessions(); got != 0 {
		t.Fatalf("OpenSessions after close = %d, want 0", got)
	}
	if err := a.Close(); err == nil {
		t.Fatal("second Close should fail")
	}
}

func TestStoreTransactionsOrderedAndFiltered(t *testing.T) {
	s := New()
	ctx := context.Background()
	sess, _ := s.Connect(ctx)
	defer sess.Close()

	for _, d := range []core.Date{
		core.NewDate(2026, time.September, 9),
		core.NewDate(2026, time.August, 1),
		core.NewDate(2026, time.September, 9),
		core.NewDate(2026, time.May, 1),
	} {
		if _, err := sess.InsertTransaction(ctx, core.Transaction{UserID: 1, Date: d, Amount: core.MustMoney("1"), PaymentMethod: "Cash", Description: "x"}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	txs, _ := sess.TransactionsSince(ctx, 1, core.NewDate(2026, time.July, 1))
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}
	if txs[0].ID != 2 || txs[1].ID != 1 || txs[2].ID != 3 {
		t.Fatalf("unexpected order: %d %d %d", txs[0].ID, txs[1].ID, txs[2].ID)
	}

	if _, err := sess.GetTransaction(ctx, 99); err != storage.ErrNotFound {
		t.Fatalf("GetTransaction(99) err = %v", err)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	if err != nil || s == nil {
		t.Fatalf("missing file should yield empty store: %v", err)
	}

	path := filepath.Join(dir, "seed.json")
	content := `{
		"users": [{"user_id": 7, "fname": "Abebe", "lname": "Kebede", "age": 30, "created_at": "2025-01-01T00:00:00Z"}],
		"budgets": [{"user_id": 7, "month": "May", "salary": "50000", "expense_limit": "40000", "savings_goal": "10000"}],
		"transactions": [{"user_id": 7, "date": "2026-09-01", "amount": "250", "payment_method": "CBE", "description": "groceries"}]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	ctx := context.Background()
	sess, _ := s.Connect(ctx)
	defer sess.Close()

	u, err := sess.GetUser(ctx, 7)
	if err != nil || u.FullName() != "Abebe Kebede" {
		t.Fatalf("unexpected user %+v err=%v", u, err)
	}
	b, err := sess.GetBudget(ctx, 7, "May")
	if err != nil || b.Salary.Fixed() != "50000.00" {
		t.Fatalf("unexpected budget %+v err=%v", b, err)
	}
	if txs := s.Transactions(); len(txs) != 1 || txs[0].ID != 1 {
		t.Fatalf("unexpected transactions %+v", txs)
	}

	if err := os.WriteFile(path, []byte(`{"budgets": [{"user_id": 1, "month": "May", "salary": "x"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFromFile(path); err == nil {
		t.Fatal("expected error for malformed seed")
	}
}
