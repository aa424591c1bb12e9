// Package storage is the data-access layer for users, budgets and the transaction ledger.
//
// Every operation acquires its own Session from a Connector and closes it before
// returning. All SQL parameters are bound, never interpolated.
package storage

import (
	"context"
	"errors"

	"finassist/internal/core"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("record not found")

type (
	// Connector hands out sessions. A failed Connect means the store is unreachable.
	Connector interface {
		Connect(ctx context.Context) (Session, error)
	}

	// Session is one acquired connection. Callers must Close it on every path.
	Session interface {
		GetUser(ctx context.Context, id int64) (core.User, error)
		UserExists(ctx context.Context, id int64) (bool, error)
		GetBudget(ctx context.Context, userID int64, period string) (core.Budget, error)
		// TransactionsSince returns the user's transactions dated on or after since,
		// ordered by date then id.
		TransactionsSince(ctx context.Context, userID int64, since core.Date) ([]core.Transaction, error)
		// SumSince totals amounts dated on or after since; zero when there are none.
		SumSince(ctx context.Context, userID int64, since core.Date) (core.Money, error)
		InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
		Close() error
	}

	// Seeder is the administrative write side for reference data.
	Seeder interface {
		CreateUser(ctx context.Context, u core.User) (int64, error)
		SetBudget(ctx context.Context, b core.Budget) error
	}
)
