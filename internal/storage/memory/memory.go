// Package memory is an in-process implementation of the storage interfaces.
// It backs tests and the "memory" data backend.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"finassist/internal/core"
	"finassist/internal/storage"
)

type budgetKey struct {
	userID int64
	period string
}

// Store keeps users, budgets and transactions in maps guarded by a mutex.
type Store struct {
	mu           sync.Mutex
	users        map[int64]core.User
	budgets      map[budgetKey]core.Budget
	transactions []core.Transaction
	nextTxID     int64
	nextUserID   int64

	// ConnectErr, when set, makes every Connect fail with it.
	ConnectErr error
	// InsertErr, when set, makes every InsertTransaction fail with it.
	InsertErr error

	open int
}

var (
	_ storage.Connector = (*Store)(nil)
	_ storage.Seeder    = (*Store)(nil)
)

func New() *Store {
	return &Store{
		users:      make(map[int64]core.User),
		budgets:    make(map[budgetKey]core.Budget),
		nextTxID:   1,
		nextUserID: 1,
	}
}

func (s *Store) Connect(ctx context.Context) (storage.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ConnectErr != nil {
		return nil, s.ConnectErr
	}
	s.open++
	return &session{store: s}, nil
}

// OpenSessions reports sessions acquired and not yet closed.
func (s *Store) OpenSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Transactions returns a copy of every stored transaction in insertion order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.transactions...)
}

func (s *Store) CreateUser(ctx context.Context, u core.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID <= 0 {
		u.ID = s.nextUserID
	}
	if _, exists := s.users[u.ID]; exists {
		return 0, errors.New("user already exists")
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = u
	if u.ID >= s.nextUserID {
		s.nextUserID = u.ID + 1
	}
	return u.ID, nil
}

func (s *Store) SetBudget(ctx context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[b.UserID]; !ok {
		return errors.New("budget references unknown user")
	}
	s.budgets[budgetKey{b.UserID, b.Period}] = b
	return nil
}

type session struct {
	store  *Store
	closed bool
}

func (ss *session) Close() error {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	if ss.closed {
		return errors.New("session already closed")
	}
	ss.closed = true
	ss.store.open--
	return nil
}

func (ss *session) GetUser(ctx context.Context, id int64) (core.User, error) {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	u, ok := ss.store.users[id]
	if !ok {
		return core.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (ss *session) UserExists(ctx context.Context, id int64) (bool, error) {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	_, ok := ss.store.users[id]
	return ok, nil
}

func (ss *session) GetBudget(ctx context.Context, userID int64, period string) (core.Budget, error) {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	b, ok := ss.store.budgets[budgetKey{userID, period}]
	if !ok {
		return core.Budget{}, storage.ErrNotFound
	}
	return b, nil
}

func (ss *session) TransactionsSince(ctx context.Context, userID int64, since core.Date) ([]core.Transaction, error) {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	var out []core.Transaction
	for _, tx := range ss.store.transactions {
		if tx.UserID == userID && !tx.Date.Before(since.Time) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (ss *session) SumSince(ctx context.Context, userID int64, since core.Date) (core.Money, error) {
	txs, err := ss.TransactionsSince(ctx, userID, since)
	if err != nil {
		return core.Money{}, err
	}
	total := core.ZeroMoney
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total, nil
}

func (ss *session) InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	if ss.store.InsertErr != nil {
		return 0, ss.store.InsertErr
	}
	tx.ID = ss.store.nextTxID
	ss.store.nextTxID++
	ss.store.transactions = append(ss.store.transactions, tx)
	return tx.ID, nil
}

func (ss *session) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	for _, tx := range ss.store.transactions {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, storage.ErrNotFound
}
