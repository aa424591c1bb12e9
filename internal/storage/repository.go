package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finassist/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the SQLite-backed Connector and Seeder.
type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ Connector = (*SQLiteRepository)(nil)
	_ Seeder    = (*SQLiteRepository)(nil)
)

// DSN builds the modernc.org/sqlite data source name for a database file.
func DSN(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Connect acquires a dedicated connection from the pool and verifies it is alive.
func (r *SQLiteRepository) Connect(ctx context.Context) (Session, error) {
	if r.db == nil {
		return nil, errors.New("database not initialized")
	}
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping connection: %w", err)
	}
	return &sqliteSession{conn: conn}, nil
}

// CreateUser inserts a user. A zero ID lets SQLite assign one.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (int64, error) {
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var id any
	if u.ID > 0 {
		id = u.ID
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (user_id, fname, lname, age, gender, occupation, email, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, u.FirstName, u.LastName, u.Age, u.Gender, u.Occupation, u.Email,
		createdAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read user id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", newID, "email", u.Email)
	return newID, nil
}

// SetBudget creates or replaces the budget of a user for one period.
func (r *SQLiteRepository) SetBudget(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, month, salary, expense_limit, savings_goal)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, month) DO UPDATE SET
			salary = excluded.salary,
			expense_limit = excluded.expense_limit,
			savings_goal = excluded.savings_goal`,
		b.UserID, b.Period, b.Salary.String(), b.ExpenseLimit.String(), b.SavingsGoal.String())
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved", "user_id", b.UserID, "period", b.Period)
	return nil
}

type sqliteSession struct {
	conn *sql.Conn
}

func (s *sqliteSession) Close() error {
	return s.conn.Close()
}

func (s *sqliteSession) GetUser(ctx context.Context, id int64) (core.User, error) {
	var (
		u         core.User
		createdAt string
	)
	err := s.conn.QueryRowContext(ctx, `
		SELECT user_id, fname, lname, age, gender, occupation, email, created_at
		FROM users WHERE user_id = ?`, id).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Age, &u.Gender, &u.Occupation, &u.Email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	u.CreatedAt = parseTimestamp(createdAt)
	return u, nil
}

func (s *sqliteSession) UserExists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE user_id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check user %d: %w", id, err)
	}
	return n > 0, nil
}

func (s *sqliteSession) GetBudget(ctx context.Context, userID int64, period string) (core.Budget, error) {
	b := core.Budget{UserID: userID, Period: period}
	err := s.conn.QueryRowContext(ctx, `
		SELECT salary, expense_limit, savings_goal
		FROM budgets WHERE user_id = ? AND month = ?`, userID, period).
		Scan(&b.Salary, &b.ExpenseLimit, &b.SavingsGoal)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget for user %d period %s: %w", userID, period, err)
	}
	return b, nil
}

func (s *sqliteSession) TransactionsSince(ctx context.Context, userID int64, since core.Date) ([]core.Transaction, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT transaction_id, user_id, date, amount, payment_method, description
		FROM transactions
		WHERE user_id = ? AND date >= ?
		ORDER BY date ASC, transaction_id ASC`, userID, since.String())
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// SumSince adds amounts in Go: the column holds decimal text and SQLite's SUM would
// go through floating point.
func (s *sqliteSession) SumSince(ctx context.Context, userID int64, since core.Date) (core.Money, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT amount FROM transactions WHERE user_id = ? AND date >= ?`, userID, since.String())
	if err != nil {
		return core.Money{}, fmt.Errorf("query amounts: %w", err)
	}
	defer rows.Close()

	total := core.ZeroMoney
	for rows.Next() {
		var amount core.Money
		if err := rows.Scan(&amount); err != nil {
			return core.Money{}, fmt.Errorf("scan amount: %w", err)
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return core.Money{}, fmt.Errorf("iterate amounts: %w", err)
	}
	return total, nil
}

func (s *sqliteSession) InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO transactions (user_id, date, amount, payment_method, description)
		VALUES (?, ?, ?, ?, ?)`,
		tx.UserID, tx.Date.String(), tx.Amount.String(), tx.PaymentMethod, tx.Description)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read transaction id: %w", err)
	}
	return id, nil
}

func (s *sqliteSession) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT transaction_id, user_id, date, amount, payment_method, description
		FROM transactions WHERE transaction_id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	return tx, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(sc scanner) (core.Transaction, error) {
	var (
		tx   core.Transaction
		date string
	)
	if err := sc.Scan(&tx.ID, &tx.UserID, &date, &tx.Amount, &tx.PaymentMethod, &tx.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	tx.Date = d
	return tx, nil
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05", core.DateLayout}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
