package services

import (
	"context"
	"fmt"

	"finassist/internal/core"
	"finassist/internal/intake"
	applog "finassist/internal/log"
)

type (
	// AuditLog receives one entry per inserted transaction.
	AuditLog interface {
		Append(tx core.Transaction) error
	}

	// EventPublisher announces recorded transactions to downstream consumers.
	EventPublisher interface {
		PublishTransactionRecorded(ctx context.Context, tx core.Transaction) error
	}
)

// LedgerOptions tune the Ledger Writer.
type LedgerOptions struct {
	// StrictReferentialCheck rejects transactions for users that do not exist.
	// Off by default: the ledger accepts any user id.
	StrictReferentialCheck bool
}

// LedgerWriter validates and persists transactions, then mirrors each one to the audit log.
//
// The insert and the audit append are not atomic. If the process stops between them,
// the ledger and the audit log diverge; nothing reconciles them afterwards.
type LedgerWriter struct {
	deps   Deps
	parser *intake.Parser
	audit  AuditLog
	events EventPublisher
	opts   LedgerOptions
	log    *applog.Logger
}

// NewLedgerWriter builds a writer. events may be nil to disable publishing.
func NewLedgerWriter(deps Deps, audit AuditLog, events EventPublisher, opts LedgerOptions) *LedgerWriter {
	return &LedgerWriter{
		deps:   deps,
		parser: intake.NewParser(deps.now),
		audit:  audit,
		events: events,
		opts:   opts,
		log:    deps.logger(applog.ComponentLedger),
	}
}

// RecordText parses a sentence of the intake grammar and records it.
// Text that does not match fails with core.ErrParse before storage is touched.
func (w *LedgerWriter) RecordText(ctx context.Context, text string) (core.Transaction, error) {
	tx, err := w.parser.Parse(text)
	if err != nil {
		w.log.WarnContext(ctx, "Transaction text rejected",
			applog.FieldOperation, applog.OpRecord,
			applog.FieldError, err)
		return core.Transaction{}, err
	}
	return w.Record(ctx, tx)
}

// Record inserts tx and appends its audit entry, in that order. A zero date means today.
//
// The returned transaction carries the id assigned by storage. When the insert succeeds
// but the audit append fails, Record returns the stored transaction together with a
// core.ErrStorage failure.
func (w *LedgerWriter) Record(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.Date.IsZero() {
		tx.Date = w.deps.today()
	}
	tx.ID = 0
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, core.Fail(core.ErrParse, fmt.Sprintf("Invalid transaction: %v.", err), err)
	}

	sess, err := w.deps.Store.Connect(ctx)
	if err != nil {
		w.log.ErrorContext(ctx, "Storage connection failed",
			applog.FieldOperation, applog.OpRecord,
			applog.FieldError, err)
		f := core.Fail(core.ErrConnection, core.MsgConnectionFailed, err)
		f.Also = []error{core.ErrStorage}
		return core.Transaction{}, f
	}
	defer release(ctx, sess, w.log)

	if w.opts.StrictReferentialCheck {
		exists, err := sess.UserExists(ctx, tx.UserID)
		if err != nil {
			return core.Transaction{}, core.Fail(core.ErrStorage, "Could not verify the user.", err)
		}
		if !exists {
			w.log.WarnContext(ctx, "Transaction rejected for unknown user", applog.FieldUserID, tx.UserID)
			return core.Transaction{}, core.Fail(core.ErrNotFound, fmt.Sprintf("User %d does not exist.", tx.UserID), nil)
		}
	}

	id, err := sess.InsertTransaction(ctx, tx)
	if err != nil {
		w.log.ErrorContext(ctx, "Transaction insert failed",
			applog.NewFields().WithOperation(applog.OpRecord).WithTransaction(0, tx.UserID, tx.Amount.String(), tx.PaymentMethod).WithError(err).ToSlice()...)
		return core.Transaction{}, core.Fail(core.ErrStorage, "The transaction could not be saved.", err)
	}
	tx.ID = id

	w.log.InfoContext(ctx, "Transaction recorded",
		applog.NewFields().WithOperation(applog.OpRecord).WithTransaction(tx.ID, tx.UserID, tx.Amount.String(), tx.PaymentMethod).ToSlice()...)

	if err := w.audit.Append(tx); err != nil {
		w.log.ErrorContext(ctx, "Audit log append failed after insert",
			applog.FieldTransactionID, tx.ID,
			applog.FieldError, err)
		return tx, core.Fail(core.ErrStorage, "The transaction was saved but the audit log could not be written.", err)
	}

	w.publish(ctx, tx)
	return tx, nil
}

func (w *LedgerWriter) publish(ctx context.Context, tx core.Transaction) {
	if w.events == nil {
		return
	}
	if err := w.events.PublishTransactionRecorded(ctx, tx); err != nil {
		w.log.ErrorContext(ctx, "Failed to publish transaction event",
			applog.FieldTransactionID, tx.ID,
			applog.FieldError, err)
	}
}
