package worker

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finassist/internal/amqp"
	"finassist/internal/core"
	applog "finassist/internal/log"
	mmemory "finassist/internal/sheets/memory"
	"finassist/internal/storage"
	smemory "finassist/internal/storage/memory"
)

type failingMirror struct{}

func (failingMirror) AppendTransaction(context.Context, core.Transaction) (string, error) {
	return "", errors.New("quota exceeded")
}

type unreachableStore struct{}

func (unreachableStore) Connect(context.Context) (storage.Session, error) {
	return nil, errors.New("connection refused")
}

func seededStore(t *testing.T) (*smemory.Store, int64) {
	t.Helper()
	store := smemory.New()
	sess, err := store.Connect(context.Background())
	require.NoError(t, err)
	defer sess.Close()
	id, err := sess.InsertTransaction(context.Background(), core.Transaction{
		UserID: 7, Date: core.NewDate(2026, time.October, 14), Amount: core.MustMoney("250"),
		PaymentMethod: "CBE", Description: "groceries",
	})
	require.NoError(t, err)
	return store, id
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func TestHandleTransactionRecorded(t *testing.T) {
	store, id := seededStore(t)
	mirror := mmemory.New()
	w := NewMirrorWorker(store, mirror, quietLogger())

	err := w.HandleTransactionRecorded(context.Background(), &amqp.TransactionRecordedMessage{MessageID: "m1", TransactionID: id, UserID: 7})
	require.NoError(t, err)

	assert.Equal(t, [][]any{{id, int64(7), "2026-10-14", "250.00", "CBE", "groceries"}}, mirror.Rows())
	assert.Zero(t, store.OpenSessions())
}

func TestHandleTransactionRecorded_MissingTransactionIsSkipped(t *testing.T) {
	store, _ := seededStore(t)
	mirror := mmemory.New()
	w := NewMirrorWorker(store, mirror, quietLogger())

	err := w.HandleTransactionRecorded(context.Background(), &amqp.TransactionRecordedMessage{TransactionID: 404})
	require.NoError(t, err)
	assert.Empty(t, mirror.Rows())
	assert.Zero(t, store.OpenSessions())
}

func TestHandleTransactionRecorded_Failures(t *testing.T) {
	t.Run("mirror failure is returned", func(t *testing.T) {
		store, id := seededStore(t)
		w := NewMirrorWorker(store, failingMirror{}, quietLogger())
		err := w.HandleTransactionRecorded(context.Background(), &amqp.TransactionRecordedMessage{TransactionID: id})
		assert.ErrorContains(t, err, "append to mirror")
		assert.Zero(t, store.OpenSessions())
	})

	t.Run("storage failure is returned", func(t *testing.T) {
		w := NewMirrorWorker(unreachableStore{}, mmemory.New(), quietLogger())
		err := w.HandleTransactionRecorded(context.Background(), &amqp.TransactionRecordedMessage{TransactionID: 1})
		assert.ErrorContains(t, err, "connect storage")
	})
}
