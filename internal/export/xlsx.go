package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

const (
	summarySheet = "summary"
	eventsSheet  = "events"
)

// XLSX renders the statement as a workbook with a summary sheet and an events sheet.
// Money cells hold euros as numbers.
func XLSX(st *Statement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	if _, err := f.NewSheet(eventsSheet); err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}

	sm := st.Summary
	rows := [][]any{
		{"Ledger Statement"},
		{},
		{"Period", periodLabel(st.Window)},
		{"Generated", st.GeneratedAt.Format(time.RFC3339)},
		{"Total income", euros(sm.TotalIncome)},
		{"Total expenses", euros(sm.TotalExpenses)},
		{"Net cashflow", euros(sm.NetCashflow)},
		{"Invoiced", euros(sm.Invoiced)},
		{"Payments received", euros(sm.PaymentsReceived)},
		{"Accounts receivable", euros(sm.AccountsReceivable)},
		{"Fuel expenses", euros(sm.FuelExpenses)},
		{"Maintenance expenses", euros(sm.MaintenanceExpenses)},
		{"Events", sm.EventCount},
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}

		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return nil, fmt.Errorf("writing summary row %d: %w", i+1, err)
		}
	}

	header := []any{"Date", "Direction", "Category", "Type", "Description", "Amount"}
	if err := f.SetSheetRow(eventsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for i, e := range st.Events {
		amount := euros(e.Amount)
		if e.Direction == ledger.DirectionOut {
			amount = -amount
		}

		row := []any{e.EventDate.Format(time.DateOnly), string(e.Direction), string(e.Category), string(e.Type), e.Description, amount}
		if err := f.SetSheetRow(eventsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("writing event row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func euros(cents int64) float64 {
	return float64(cents) / 100
}
