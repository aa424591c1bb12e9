// Package auditlog appends one human-readable line per recorded transaction to a flat file.
//
// The file is a free-text mirror of the ledger kept for backup and debugging. It has no
// rotation and no machine-readable format.
package auditlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"finassist/internal/core"
)

// TimestampLayout matches a wall-clock timestamp with microseconds, e.g. "2026-10-14 18:30:00.000000".
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Writer appends entries to the audit log file at path.
type Writer struct {
	path string
	now  func() time.Time
}

func New(path string, now func() time.Time) *Writer {
	if now == nil {
		now = time.Now
	}
	return &Writer{path: path, now: now}
}

// Path returns the file the writer appends to.
func (w *Writer) Path() string {
	return w.path
}

// Append writes the entry for tx. The file and its directory are created on first use.
func (w *Writer) Append(tx core.Transaction) error {
	if dir := filepath.Dir(w.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create audit log directory: %w", err)
		}
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}

	if _, err := f.WriteString(FormatEntry(w.now(), tx)); err != nil {
		f.Close()
		return fmt.Errorf("write audit log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close audit log: %w", err)
	}
	return nil
}

// FormatEntry renders one newline-terminated audit line.
func FormatEntry(ts time.Time, tx core.Transaction) string {
	return fmt.Sprintf("%s | User: %d | Date: %s | Amount: $%s | Payment: %s | Desc: %s\n",
		ts.Format(TimestampLayout),
		tx.UserID,
		tx.Date.String(),
		tx.Amount.Plain(),
		tx.PaymentMethod,
		tx.Description)
}
