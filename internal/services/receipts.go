package services

import (
	"context"
	"errors"
	"fmt"

	"finassist/internal/core"
	applog "finassist/internal/log"
)

// ReceiptRenderer persists receipt documents.
type ReceiptRenderer interface {
	// Path is the deterministic document location for a (user, transaction) pair.
	Path(userID, transactionID int64) string
	// Render writes r to r.ReceiptPath, replacing any existing document.
	Render(r core.Receipt) error
}

// ReceiptGenerator renders a document for a stored transaction.
type ReceiptGenerator struct {
	deps     Deps
	renderer ReceiptRenderer
	log      *applog.Logger
}

func NewReceiptGenerator(deps Deps, renderer ReceiptRenderer) *ReceiptGenerator {
	return &ReceiptGenerator{
		deps:     deps,
		renderer: renderer,
		log:      deps.logger(applog.ComponentReceipts),
	}
}

// Generate renders the receipt for transactionID and returns its fields and location.
// A missing transaction or a missing owner fails with core.ErrNotFound, and text the
// renderer cannot show fails with core.ErrParse, both before any file is written.
func (g *ReceiptGenerator) Generate(ctx context.Context, transactionID int64) (core.Receipt, error) {
	tx, owner, err := g.load(ctx, transactionID)
	if err != nil {
		return core.Receipt{}, err
	}

	receipt := core.NewReceipt(tx, owner, g.renderer.Path(tx.UserID, tx.ID))
	if err := g.renderer.Render(receipt); err != nil {
		if errors.Is(err, core.ErrParse) {
			g.log.WarnContext(ctx, "Receipt text cannot be rendered",
				applog.FieldTransactionID, tx.ID,
				applog.FieldError, err)
			return core.Receipt{}, err
		}
		g.log.ErrorContext(ctx, "Receipt rendering failed",
			applog.FieldTransactionID, tx.ID,
			applog.FieldError, err)
		return core.Receipt{}, core.Fail(core.ErrStorage, "The receipt could not be written.", err)
	}

	g.log.InfoContext(ctx, "Receipt generated",
		applog.FieldOperation, applog.OpReceipt,
		applog.FieldTransactionID, tx.ID,
		applog.FieldUserID, tx.UserID,
		"path", receipt.ReceiptPath)
	return receipt, nil
}

// load reads the transaction and its owner within one session.
func (g *ReceiptGenerator) load(ctx context.Context, transactionID int64) (core.Transaction, core.User, error) {
	sess, err := connect(ctx, g.deps.Store, g.log, applog.OpReceipt)
	if err != nil {
		return core.Transaction{}, core.User{}, err
	}
	defer release(ctx, sess, g.log)

	tx, err := sess.GetTransaction(ctx, transactionID)
	if isNotFound(err) {
		return core.Transaction{}, core.User{}, core.Fail(core.ErrNotFound,
			fmt.Sprintf("No transaction found with ID %d.", transactionID), err)
	}
	if err != nil {
		return core.Transaction{}, core.User{}, queryFailure(err)
	}

	owner, err := sess.GetUser(ctx, tx.UserID)
	if isNotFound(err) {
		g.log.WarnContext(ctx, "Transaction owner does not exist",
			applog.FieldTransactionID, tx.ID,
			applog.FieldUserID, tx.UserID)
		return core.Transaction{}, core.User{}, core.Fail(core.ErrNotFound, core.MsgUserNotFound, err)
	}
	if err != nil {
		return core.Transaction{}, core.User{}, queryFailure(err)
	}
	return tx, owner, nil
}
