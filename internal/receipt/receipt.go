// Package receipt renders transaction receipts as single-page PDF documents.
package receipt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"finassist/internal/core"
)

// Layout is the fixed text content of a receipt.
type Layout struct {
	Currency  string
	Signatory string
}

// DefaultLayout matches the receipts issued so far.
var DefaultLayout = Layout{Currency: "ETB", Signatory: "Dr. Abebe"}

const title = "Transaction Receipt"

// Lines returns the receipt text top to bottom. The first line is the title; empty
// strings are blank lines.
func (l Layout) Lines(r core.Receipt) []string {
	return []string{
		title,
		"User: " + r.UserFullName,
		fmt.Sprintf("Transaction ID: %d", r.TransactionID),
		fmt.Sprintf("User ID: %d", r.UserID),
		"Date: " + r.Date,
		fmt.Sprintf("Amount: %s %.2f", l.Currency, r.Amount),
		"Payment Method: " + r.PaymentMethod,
		"Description: " + r.Description,
		"",
		"",
		"Sincerely,",
		l.Signatory,
		r.PaymentMethod + " Manager",
	}
}

// FileName is the document name for a (user, transaction) pair.
func FileName(userID, transactionID int64) string {
	return fmt.Sprintf("user%d-transaction%d-receipt.pdf", userID, transactionID)
}

// PDFRenderer writes receipts under a root directory.
type PDFRenderer struct {
	root   string
	layout Layout
}

func NewPDFRenderer(root string, layout Layout) *PDFRenderer {
	if layout.Currency == "" {
		layout.Currency = DefaultLayout.Currency
	}
	if layout.Signatory == "" {
		layout.Signatory = DefaultLayout.Signatory
	}
	return &PDFRenderer{root: root, layout: layout}
}

func (p *PDFRenderer) Path(userID, transactionID int64) string {
	return filepath.Join(p.root, FileName(userID, transactionID))
}

// Render writes r to r.ReceiptPath. An existing file is overwritten; concurrent renders
// of the same receipt race and the last writer wins. Text the core font cannot show
// fails with core.ErrParse before anything is written.
func (p *PDFRenderer) Render(r core.Receipt) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	lines := p.layout.Lines(r)
	if err := printable(lines, tr); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.ReceiptPath), 0755); err != nil {
		return fmt.Errorf("create receipts directory: %w", err)
	}

	pdf.SetTitle(title, true)
	pdf.SetCreator("finassist", true)
	pdf.AddPage()

	for i, line := range lines {
		switch {
		case i == 0:
			pdf.SetFont("Arial", "B", 16)
			pdf.CellFormat(0, 10, tr(line), "", 1, "C", false, 0, "")
			pdf.Ln(4)
			pdf.SetFont("Arial", "", 12)
		case line == "":
			pdf.Ln(8)
		default:
			pdf.CellFormat(0, 8, tr(line), "", 1, "L", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(r.ReceiptPath); err != nil {
		return fmt.Errorf("write receipt %s: %w", r.ReceiptPath, err)
	}
	return nil
}

// printable checks that every rune of lines has a cp1252 glyph. The translator writes
// '.' for runes it cannot map.
func printable(lines []string, tr func(string) string) error {
	var missing []string
	seen := make(map[rune]bool)
	for _, line := range lines {
		for _, ch := range line {
			if ch < 0x80 || seen[ch] {
				continue
			}
			seen[ch] = true
			if tr(string(ch)) == "." {
				missing = append(missing, string(ch))
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	chars := strings.Join(missing, "")
	return core.Fail(core.ErrParse,
		fmt.Sprintf("The receipt cannot display the characters %q.", chars),
		fmt.Errorf("no cp1252 glyph for %q", chars))
}
