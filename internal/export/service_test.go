package export_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/fleetledger/internal/export"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

type fakeLedger struct {
	events     []ledger.Event
	summary    ledger.Summary
	err        error
	lastFilter ledger.ListFilter
}

func (f *fakeLedger) List(_ context.Context, filter ledger.ListFilter) ([]ledger.Event, error) {
	f.lastFilter = filter
	return f.events, f.err
}

func (f *fakeLedger) Summary(_ context.Context, _ uuid.UUID, _ *ledger.DateRange) (ledger.Summary, error) {
	return f.summary, f.err
}

func day(d int) time.Time {
	return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
}

func sampleStatement(t *testing.T) (*export.Statement, *fakeLedger) {
	t.Helper()

	company := uuid.New()
	fl := &fakeLedger{
		events: []ledger.Event{
			{ID: uuid.New(), CompanyID: company, EventDate: day(3), Amount: 29400, Direction: ledger.DirectionOut, Category: ledger.CategoryFuel, Type: ledger.TypeFuelPurchase, Description: "Gasóleo Porto → Lisboa"},
			{ID: uuid.New(), CompanyID: company, EventDate: day(2), Amount: 100000, Direction: ledger.DirectionIn, Category: ledger.CategoryRevenue, Type: ledger.TypeCustomerPayment, Description: "ACME payment"},
		},
		summary: ledger.Summary{
			TotalIncome:        100000,
			TotalExpenses:      29400,
			NetCashflow:        70600,
			AccountsReceivable: 50000,
			FuelExpenses:       29400,
			EventCount:         2,
		},
	}

	window := &ledger.DateRange{Start: day(1), End: day(30)}

	st, err := export.NewService(fl).Build(context.Background(), company, window)
	require.NoError(t, err)

	return st, fl
}

func TestService_Build(t *testing.T) {
	st, fl := sampleStatement(t)

	assert.Len(t, st.Events, 2)
	assert.Equal(t, int64(70600), st.Summary.NetCashflow)
	require.NotNil(t, fl.lastFilter.StartDate)
	assert.Equal(t, day(1), *fl.lastFilter.StartDate)
	assert.Equal(t, day(30), *fl.lastFilter.EndDate)
	assert.False(t, st.GeneratedAt.IsZero())
}

func TestService_BuildError(t *testing.T) {
	fl := &fakeLedger{err: ledger.ErrCrossTenant}

	_, err := export.NewService(fl).Build(context.Background(), uuid.New(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrCrossTenant))
}

func TestTextBody(t *testing.T) {
	st, _ := sampleStatement(t)

	body := export.TextBody(st)

	assert.Contains(t, body, "Period: 2024-06-01 to 2024-06-30\n")
	assert.Contains(t, body, "Net cashflow: 706.00 €\n")
	assert.Contains(t, body, "Accounts receivable: 500.00 €\n")
	assert.Contains(t, body, "* 2024-06-03 | fuel | Gasóleo Porto → Lisboa | -294.00 €\n")
	assert.Contains(t, body, "* 2024-06-02 | revenue | ACME payment | +1000.00 €\n")
}

func TestTextBody_AllTime(t *testing.T) {
	body := export.TextBody(&export.Statement{})
	assert.True(t, strings.HasPrefix(body, "Period: all time\n"))
}

func TestXLSX(t *testing.T) {
	st, _ := sampleStatement(t)

	data, err := export.XLSX(st)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)

	defer f.Close()

	assert.Equal(t, []string{"summary", "events"}, f.GetSheetList())

	title, err := f.GetCellValue("summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Ledger Statement", title)

	net, err := f.GetCellValue("summary", "B7")
	require.NoError(t, err)
	assert.Equal(t, "706", net)

	rows, err := f.GetRows("events")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Direction", "Category", "Type", "Description", "Amount"}, rows[0])
	assert.Equal(t, "2024-06-03", rows[1][0])
	assert.Equal(t, "-294", rows[1][5])
	assert.Equal(t, "1000", rows[2][5])
}

func TestPDF(t *testing.T) {
	st, _ := sampleStatement(t)

	data, err := export.PDF(st)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
