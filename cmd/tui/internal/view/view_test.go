package view

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fleetledger/internal/fleet"
	"github.com/MrJamesThe3rd/fleetledger/internal/fuel"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

func TestFuelModel_Estimate(t *testing.T) {
	vehicleID := uuid.New()
	vehicles := []*fleet.Vehicle{{
		ID:      vehicleID,
		Plate:   "AA-00-BB",
		Profile: fuel.Profile{EmptyKmPerLiter: 3.5, LoadedKmPerLiter: 2.5},
	}}

	type testCase struct {
		name      string
		fields    plannerFields
		wantTotal float64
		wantErr   bool
	}

	tests := []testCase{
		{
			name:      "ManualProfile",
			fields:    plannerFields{vehicle: manualVehicle, distance: "700", load: fuel.LoadStatusLoaded, buffer: "5", emptyKPL: "3,5", loadKPL: "2.5"},
			wantTotal: 294,
		},
		{
			name:      "RegisteredVehicle",
			fields:    plannerFields{vehicle: vehicleID.String(), distance: "700", load: fuel.LoadStatusEmpty, buffer: "0"},
			wantTotal: 200,
		},
		{
			name:    "UnknownVehicle",
			fields:  plannerFields{vehicle: uuid.NewString(), distance: "700", load: fuel.LoadStatusEmpty, buffer: "0"},
			wantErr: true,
		},
		{
			name:    "ZeroDistance",
			fields:  plannerFields{vehicle: manualVehicle, distance: "0", load: fuel.LoadStatusLoaded, buffer: "5", emptyKPL: "3.5", loadKPL: "2.5"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewFuelModel(nil, uuid.New(), 5)
			m.vehicles = vehicles
			m.fields = &tt.fields

			plan, cmp, err := m.estimate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.wantTotal, plan.TotalLiters, 1e-9)
			assert.Greater(t, cmp.Loaded.TotalLiters, cmp.Empty.TotalLiters)
		})
	}
}

func TestListModel_ApplyFilter(t *testing.T) {
	m := NewListModel(nil, uuid.New())
	m.categoryFilterIdx = 2
	m.dateFilterIdx = 2

	m.applyFilter(time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC))

	require.NotNil(t, m.filter.Category)
	assert.Equal(t, ledger.CategoryFuel, *m.filter.Category)
	require.NotNil(t, m.filter.StartDate)
	require.NotNil(t, m.filter.EndDate)
	assert.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), *m.filter.StartDate)
	assert.Equal(t, time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), *m.filter.EndDate)

	m.categoryFilterIdx = 0
	m.dateFilterIdx = 0
	m.applyFilter(time.Now())

	assert.Nil(t, m.filter.Category)
	assert.Nil(t, m.filter.StartDate)
	assert.Nil(t, m.filter.EndDate)
}

func TestFormatSigned(t *testing.T) {
	assert.Equal(t, "-12.34", FormatSigned(ledger.Event{Amount: 1234, Direction: ledger.DirectionOut}))
	assert.Equal(t, "+0.05", FormatSigned(ledger.Event{Amount: 5, Direction: ledger.DirectionIn}))
}

func TestWindowFor(t *testing.T) {
	now := time.Date(2024, time.March, 14, 22, 30, 0, 0, time.FixedZone("WET", 0))
	utc := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	type testCase struct {
		name string
		tf   Timeframe
		want *ledger.DateRange
	}

	tests := []testCase{
		{name: "ThisMonth", tf: TimeframeThisMonth, want: &ledger.DateRange{Start: utc(2024, 3, 1), End: utc(2024, 3, 14)}},
		{name: "LastMonthLeapYear", tf: TimeframeLastMonth, want: &ledger.DateRange{Start: utc(2024, 2, 1), End: utc(2024, 2, 29)}},
		{name: "YearToDate", tf: TimeframeYearToDate, want: &ledger.DateRange{Start: utc(2024, 1, 1), End: utc(2024, 3, 14)}},
		{name: "LastYear", tf: TimeframeLastYear, want: &ledger.DateRange{Start: utc(2023, 1, 1), End: utc(2023, 12, 31)}},
		{name: "AllTime", tf: TimeframeAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, windowFor(tt.tf, now))
		})
	}
}

func TestParseCustomRange(t *testing.T) {
	got, err := parseCustomRange(" 2024-01-05", "2024-01-31 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC), got.End)

	_, err = parseCustomRange("2024-02-01", "2024-01-31")
	assert.EqualError(t, err, "end date is before start date")

	_, err = parseCustomRange("05/01/2024", "2024-01-31")
	assert.Error(t, err)
}
