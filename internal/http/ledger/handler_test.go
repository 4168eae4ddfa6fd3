package ledger_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/fleetledger/internal/auth"
	ledgerHandler "github.com/MrJamesThe3rd/fleetledger/internal/http/ledger"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

var (
	company = uuid.New()
	other   = uuid.New()
)

func day(d int) time.Time {
	return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
}

func newRouter(t *testing.T) (*ledger.MockRepository, http.Handler) {
	repo := ledger.NewMockRepository(gomock.NewController(t))

	r := chi.NewRouter()
	r.Route("/ledger", ledgerHandler.NewHandler(ledger.NewService(repo, ledger.NewAggregator(0, 1))).Routes)

	return repo, r
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(auth.WithIdentity(req.Context(), company, "accountant"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func ev(dir ledger.Direction, cat ledger.Category, typ ledger.Type, amount int64, date time.Time) ledger.Event {
	return ledger.Event{
		ID:        uuid.New(),
		CompanyID: company,
		EventDate: date,
		CreatedAt: date,
		Amount:    amount,
		Direction: dir,
		Category:  cat,
		Type:      typ,
	}
}

func TestHandler_Record(t *testing.T) {
	type testCase struct {
		name      string
		body      string
		setupMock func(m *ledger.MockRepository)
		wantCode  int
	}

	tests := []testCase{
		{
			name: "Created",
			body: `{"event_date":"2024-06-01","amount":15075,"direction":"out","category":"fuel","type":"fuel_purchase","description":"Diesel"}`,
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e *ledger.Event) error {
					assert.Equal(t, company, e.CompanyID)
					assert.Equal(t, day(1), e.EventDate)

					return nil
				})
			},
			wantCode: http.StatusCreated,
		},
		{
			name:     "NegativeAmount",
			body:     `{"event_date":"2024-06-01","amount":-5,"direction":"out","category":"fuel","type":"fuel_purchase"}`,
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "UnknownCategory",
			body:     `{"event_date":"2024-06-01","amount":5,"direction":"out","category":"snacks","type":"fuel_purchase"}`,
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "BadDate",
			body:     `{"event_date":"01/06/2024","amount":5,"direction":"out","category":"fuel","type":"fuel_purchase"}`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, router := newRouter(t)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			rec := do(router, http.MethodPost, "/ledger/events", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHandler_Summary(t *testing.T) {
	repo, router := newRouter(t)

	events := []ledger.Event{
		ev(ledger.DirectionIn, ledger.CategoryRevenue, ledger.TypeInvoiceIssued, 50000, day(1)),
		ev(ledger.DirectionIn, ledger.CategoryRevenue, ledger.TypeCustomerPayment, 30000, day(5)),
		ev(ledger.DirectionOut, ledger.CategoryFuel, ledger.TypeFuelPurchase, 29400, day(6)),
	}

	repo.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, f ledger.ListFilter) ([]ledger.Event, error) {
		require.NotNil(t, f.StartDate)
		assert.Equal(t, day(1), *f.StartDate)
		assert.Equal(t, day(30), *f.EndDate)

		return events, nil
	})

	rec := do(router, http.MethodGet, "/ledger/summary?start_date=2024-06-01&end_date=2024-06-30", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got ledger.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, int64(80000), got.TotalIncome)
	assert.Equal(t, int64(29400), got.TotalExpenses)
	assert.Equal(t, int64(50600), got.NetCashflow)
	assert.Equal(t, int64(20000), got.AccountsReceivable)
	assert.Equal(t, int64(29400), got.FuelExpenses)
	assert.Equal(t, 3, got.EventCount)
}

func TestHandler_SummaryCrossTenant(t *testing.T) {
	repo, router := newRouter(t)

	leaked := ev(ledger.DirectionIn, ledger.CategoryRevenue, ledger.TypeCustomerPayment, 100, day(1))
	leaked.CompanyID = other

	repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]ledger.Event{leaked}, nil)

	rec := do(router, http.MethodGet, "/ledger/summary", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), other.String())
}

func TestHandler_SummaryBadWindow(t *testing.T) {
	_, router := newRouter(t)

	for _, q := range []string{"start_date=2024-06-01", "start_date=2024-06-30&end_date=2024-06-01", "start_date=x&end_date=y"} {
		rec := do(router, http.MethodGet, "/ledger/summary?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestHandler_Reverse(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *ledger.MockRepository, orig *ledger.Event)
		wantCode  int
	}

	tests := []testCase{
		{
			name: "Created",
			setupMock: func(m *ledger.MockRepository, orig *ledger.Event) {
				m.EXPECT().Get(gomock.Any(), company, orig.ID).Return(orig, nil)
				m.EXPECT().FindReversal(gomock.Any(), company, orig.ID).Return(nil, nil)
				m.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: http.StatusCreated,
		},
		{
			name: "AlreadyReversed",
			setupMock: func(m *ledger.MockRepository, orig *ledger.Event) {
				existing := ev(ledger.DirectionOut, ledger.CategoryRevenue, ledger.TypeReversal, orig.Amount, day(2))
				existing.ReversalOf = &orig.ID

				m.EXPECT().Get(gomock.Any(), company, orig.ID).Return(orig, nil)
				m.EXPECT().FindReversal(gomock.Any(), company, orig.ID).Return(&existing, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "NotFound",
			setupMock: func(m *ledger.MockRepository, orig *ledger.Event) {
				m.EXPECT().Get(gomock.Any(), company, orig.ID).Return(nil, ledger.ErrNotFound)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, router := newRouter(t)

			orig := ev(ledger.DirectionIn, ledger.CategoryRevenue, ledger.TypeCustomerPayment, 10000, day(1))
			tt.setupMock(repo, &orig)

			rec := do(router, http.MethodPost, "/ledger/events/"+orig.ID.String()+"/reversal", `{"description":"duplicate"}`)
			require.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode != http.StatusCreated {
				return
			}

			var got struct {
				Direction  ledger.Direction `json:"direction"`
				Type       ledger.Type      `json:"type"`
				ReversalOf *uuid.UUID       `json:"reversal_of"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, ledger.DirectionOut, got.Direction)
			assert.Equal(t, ledger.TypeReversal, got.Type)
			require.NotNil(t, got.ReversalOf)
			assert.Equal(t, orig.ID, *got.ReversalOf)
		})
	}
}

func TestHandler_InvoiceFlow(t *testing.T) {
	repo, router := newRouter(t)
	client, invoice := uuid.New(), uuid.New()

	repo.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	rec := do(router, http.MethodPost, "/ledger/invoices",
		`{"invoice_id":"`+invoice.String()+`","client_id":"`+client.String()+`","date":"2024-06-01","amount":50000}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(router, http.MethodPost, "/ledger/invoices/"+invoice.String()+"/payments",
		`{"client_id":"`+client.String()+`","date":"2024-06-05","amount":30000}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	issued := ev(ledger.DirectionIn, ledger.CategoryRevenue, ledger.TypeInvoiceIssued, 50000, day(1))
	issued.InvoiceID, issued.ClientID = &invoice, &client
	paid := ev(ledger.DirectionIn, ledger.CategoryRevenue, ledger.TypeCustomerPayment, 30000, day(5))
	paid.InvoiceID, paid.ClientID = &invoice, &client

	repo.EXPECT().List(gomock.Any(), ledger.ListFilter{CompanyID: company, InvoiceID: &invoice}).Return([]ledger.Event{issued, paid}, nil)

	rec = do(router, http.MethodGet, "/ledger/invoices/"+invoice.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status ledger.InvoiceStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, int64(20000), status.Outstanding)
	assert.False(t, status.IsPaid)

	repo.EXPECT().List(gomock.Any(), ledger.ListFilter{CompanyID: company}).Return([]ledger.Event{issued, paid}, nil)

	rec = do(router, http.MethodGet, "/ledger/clients", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var balances []struct {
		ClientID uuid.UUID `json:"client_id"`
		Balance  int64     `json:"balance"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&balances))
	require.Len(t, balances, 1)
	assert.Equal(t, client, balances[0].ClientID)
	assert.Equal(t, int64(20000), balances[0].Balance)
}

func TestHandler_UnknownInvoice(t *testing.T) {
	repo, router := newRouter(t)
	invoice := uuid.New()

	repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)

	rec := do(router, http.MethodGet, "/ledger/invoices/"+invoice.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ListFilters(t *testing.T) {
	repo, router := newRouter(t)
	vehicle := uuid.New()

	older := ev(ledger.DirectionOut, ledger.CategoryFuel, ledger.TypeFuelPurchase, 100, day(1))
	newer := ev(ledger.DirectionOut, ledger.CategoryFuel, ledger.TypeFuelPurchase, 200, day(9))

	repo.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, f ledger.ListFilter) ([]ledger.Event, error) {
		require.NotNil(t, f.VehicleID)
		assert.Equal(t, vehicle, *f.VehicleID)
		require.NotNil(t, f.Category)
		assert.Equal(t, ledger.CategoryFuel, *f.Category)

		return []ledger.Event{older, newer}, nil
	})

	rec := do(router, http.MethodGet, "/ledger/events?category=fuel&vehicle_id="+vehicle.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []struct {
		ID        uuid.UUID `json:"id"`
		EventDate string    `json:"event_date"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, "2024-06-09", got[0].EventDate)

	rec = do(router, http.MethodGet, "/ledger/events?category=snacks", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
