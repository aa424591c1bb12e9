// Package sheets defines the ports for mirroring the ledger into a spreadsheet.
package sheets

import (
	"context"

	"finassist/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerMirror appends one row per recorded transaction.
	LedgerMirror interface {
		AppendTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}
)

// Header is the column layout of mirrored rows.
var Header = []string{"transaction_id", "user_id", "date", "amount", "payment_method", "description"}

// Row renders tx in Header order.
func Row(tx core.Transaction) []any {
	return []any{tx.ID, tx.UserID, tx.Date.String(), tx.Amount.Fixed(), tx.PaymentMethod, tx.Description}
}
