package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDF renders a one-table statement. Core fonts only, so descriptions are transliterated.
func PDF(st *Statement) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Ledger Statement")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)

	sm := st.Summary
	lines := []string{
		"Period: " + periodLabel(st.Window),
		"Generated: " + st.GeneratedAt.Format(time.RFC3339),
		"Total income: " + formatCents(sm.TotalIncome),
		"Total expenses: " + formatCents(sm.TotalExpenses),
		"Net cashflow: " + formatCents(sm.NetCashflow),
		"Accounts receivable: " + formatCents(sm.AccountsReceivable),
		"Fuel expenses: " + formatCents(sm.FuelExpenses),
		"Maintenance expenses: " + formatCents(sm.MaintenanceExpenses),
	}

	for _, l := range lines {
		pdf.Cell(0, 6, l)
		pdf.Ln(5)
	}

	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(25, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Category", "1", 0, "C", false, 0, "")
	pdf.CellFormat(95, 6, "Description", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)

	for _, e := range st.Events {
		pdf.CellFormat(25, 6, e.EventDate.Format(time.DateOnly), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, string(e.Category), "1", 0, "L", false, 0, "")
		pdf.CellFormat(95, 6, tr(truncate(e.Description, 55)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, signedAmount(e), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}
