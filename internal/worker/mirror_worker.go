// Package worker consumes ledger events and mirrors recorded transactions.
package worker

import (
	"context"
	"errors"
	"fmt"

	"finassist/internal/amqp"
	applog "finassist/internal/log"
	"finassist/internal/sheets"
	"finassist/internal/storage"
)

// MirrorWorker copies each recorded transaction into a LedgerMirror.
type MirrorWorker struct {
	store  storage.Connector
	mirror sheets.LedgerMirror
	log    *applog.Logger
}

func NewMirrorWorker(store storage.Connector, mirror sheets.LedgerMirror, logger *applog.Logger) *MirrorWorker {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &MirrorWorker{
		store:  store,
		mirror: mirror,
		log:    logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleTransactionRecorded reads the announced transaction and appends it to the mirror.
// A transaction that no longer exists is skipped; any other failure is returned so the
// message is redelivered.
func (w *MirrorWorker) HandleTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	w.log.InfoContext(ctx, "Processing transaction event",
		applog.FieldOperation, applog.OpMirror,
		applog.FieldTransactionID, msg.TransactionID,
		"message_id", msg.MessageID)

	sess, err := w.store.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect storage: %w", err)
	}
	tx, err := sess.GetTransaction(ctx, msg.TransactionID)
	if closeErr := sess.Close(); closeErr != nil {
		w.log.WarnContext(ctx, "Failed to release storage session", applog.FieldError, closeErr)
	}
	if errors.Is(err, storage.ErrNotFound) {
		w.log.WarnContext(ctx, "Announced transaction not found, skipping",
			applog.FieldTransactionID, msg.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	ref, err := w.mirror.AppendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("append to mirror: %w", err)
	}

	w.log.InfoContext(ctx, "Mirrored transaction",
		applog.FieldTransactionID, tx.ID,
		applog.FieldUserID, tx.UserID,
		"row_ref", ref)
	return nil
}
