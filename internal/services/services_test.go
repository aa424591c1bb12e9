package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finassist/internal/auditlog"
	"finassist/internal/core"
	applog "finassist/internal/log"
	"finassist/internal/storage"
	"finassist/internal/storage/memory"
)

var testNow = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func testLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

// seededStore is what the fixtures need from a backend.
type seededStore interface {
	storage.Connector
	storage.Seeder
}

type fixture struct {
	// store is the memory backend; nil when the fixture runs on SQLite.
	store     *memory.Store
	seeder    seededStore
	deps      Deps
	auditPath string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	return &fixture{
		store:     store,
		seeder:    store,
		deps:      Deps{Store: store, Logger: testLogger(), Now: fixedClock},
		auditPath: filepath.Join(t.TempDir(), "logs.txt"),
	}
}

func newSQLiteFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	repo, err := storage.NewSQLiteRepository(filepath.Join(dir, "finassist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return &fixture{
		seeder:    repo,
		deps:      Deps{Store: repo, Logger: testLogger(), Now: fixedClock},
		auditPath: filepath.Join(dir, "logs.txt"),
	}
}

// eachStore runs fn once on the memory backend and once on SQLite.
func eachStore(t *testing.T, fn func(t *testing.T, f *fixture)) {
	t.Run("memory", func(t *testing.T) { fn(t, newFixture(t)) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteFixture(t)) })
}

// requireReleased checks that every session went back; only the memory backend counts them.
func (f *fixture) requireReleased(t *testing.T) {
	t.Helper()
	if f.store != nil {
		require.Zero(t, f.store.OpenSessions())
	}
}

// storedTx reads a transaction back through a fresh session.
func (f *fixture) storedTx(t *testing.T, id int64) core.Transaction {
	t.Helper()
	sess, err := f.deps.Store.Connect(context.Background())
	require.NoError(t, err)
	defer sess.Close()
	tx, err := sess.GetTransaction(context.Background(), id)
	require.NoError(t, err)
	return tx
}

func (f *fixture) addUser(t *testing.T, id int64, first, last string) {
	t.Helper()
	_, err := f.seeder.CreateUser(context.Background(), core.User{
		ID: id, FirstName: first, LastName: last, Age: 34, Email: strings.ToLower(first) + "@example.com",
		CreatedAt: time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC),
	})
	require.NoError(t, err)
}

func (f *fixture) addBudget(t *testing.T, userID int64, period, salary, limit, goal string) {
	t.Helper()
	require.NoError(t, f.seeder.SetBudget(context.Background(), core.Budget{
		UserID:       userID,
		Period:       period,
		Salary:       core.MustMoney(salary),
		ExpenseLimit: core.MustMoney(limit),
		SavingsGoal:  core.MustMoney(goal),
	}))
}

// addTx inserts a transaction directly, bypassing the ledger writer and the audit log.
func (f *fixture) addTx(t *testing.T, userID int64, date core.Date, amount, method string) int64 {
	t.Helper()
	sess, err := f.deps.Store.Connect(context.Background())
	require.NoError(t, err)
	defer sess.Close()
	id, err := sess.InsertTransaction(context.Background(), core.Transaction{
		UserID: userID, Date: date, Amount: core.MustMoney(amount),
		PaymentMethod: method, Description: "test purchase",
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) writer(events EventPublisher, opts LedgerOptions) *LedgerWriter {
	return NewLedgerWriter(f.deps, auditlog.New(f.auditPath, fixedClock), events, opts)
}

func (f *fixture) auditLines(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(f.auditPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

type failingConnector struct{}

func (failingConnector) Connect(context.Context) (storage.Session, error) {
	return nil, errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")
}

func requireKind(t *testing.T, err error, kind error, message string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	if message != "" {
		require.Equal(t, message, core.UserMessage(err))
	}
}
