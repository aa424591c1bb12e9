// Package report exports spending summaries as xlsx workbooks.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"finassist/internal/core"
)

const (
	SpendingSheet = "Spending"
	MethodsSheet  = "Payment Methods"
)

// Exporter writes one workbook per user under a root directory.
type Exporter struct {
	root string
}

func NewExporter(root string) *Exporter {
	return &Exporter{root: root}
}

// Path is the workbook location for userID.
func (e *Exporter) Path(userID int64) string {
	return filepath.Join(e.root, fmt.Sprintf("user%d-spending_report.xlsx", userID))
}

// Write saves insights to the user's workbook, replacing any previous export, and
// returns its path.
func (e *Exporter) Write(userID int64, insights core.SpendingInsights) (string, error) {
	path := e.Path(userID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SpendingSheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSpending(f, insights); err != nil {
		return "", err
	}
	if _, err := f.NewSheet(MethodsSheet); err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	if err := writeMethods(f, insights.TopPaymentMethods); err != nil {
		return "", err
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report %s: %w", path, err)
	}
	return path, nil
}

func writeSpending(f *excelize.File, insights core.SpendingInsights) error {
	if err := f.SetSheetRow(SpendingSheet, "A1", &[]any{"Month", "Amount"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := 2
	for _, m := range insights.MonthlyBreakdown {
		if err := f.SetSheetRow(SpendingSheet, fmt.Sprintf("A%d", row), &[]any{m.Month, m.Amount}); err != nil {
			return fmt.Errorf("write month %s: %w", m.Month, err)
		}
		row++
	}
	if err := f.SetSheetRow(SpendingSheet, fmt.Sprintf("A%d", row), &[]any{"Total", insights.TotalSpent}); err != nil {
		return fmt.Errorf("write total: %w", err)
	}
	f.SetColWidth(SpendingSheet, "A", "A", 18)
	f.SetColWidth(SpendingSheet, "B", "B", 14)

	if len(insights.MonthlyBreakdown) == 0 {
		return nil
	}
	last := len(insights.MonthlyBreakdown) + 1
	err := f.AddChart(SpendingSheet, "D2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", SpendingSheet),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", SpendingSheet, last),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", SpendingSheet, last),
		}},
		Title:  []excelize.RichTextRun{{Text: "Monthly Spending"}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
	if err != nil {
		return fmt.Errorf("add chart: %w", err)
	}
	return nil
}

func writeMethods(f *excelize.File, methods core.PaymentMethodCounts) error {
	if err := f.SetSheetRow(MethodsSheet, "A1", &[]any{"Payment Method", "Count"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, m := range methods {
		if err := f.SetSheetRow(MethodsSheet, fmt.Sprintf("A%d", i+2), &[]any{m.Method, m.Count}); err != nil {
			return fmt.Errorf("write method %s: %w", m.Method, err)
		}
	}
	f.SetColWidth(MethodsSheet, "A", "A", 18)
	return nil
}
