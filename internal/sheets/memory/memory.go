// Package memory is an in-process LedgerMirror for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"finassist/internal/core"
	ports "finassist/internal/sheets"
)

type Mirror struct {
	mu   sync.Mutex
	rows [][]any
}

var _ ports.LedgerMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

// AppendTransaction stores the row and returns a synthetic row reference.
func (m *Mirror) AppendTransaction(_ context.Context, tx core.Transaction) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, ports.Row(tx))
	return fmt.Sprintf("mem:%d", len(m.rows)), nil
}

// Rows returns a copy of the mirrored rows in append order.
func (m *Mirror) Rows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]any(nil), m.rows...)
}
