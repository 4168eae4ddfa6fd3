package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/fleetledger/internal/auth"
	"github.com/MrJamesThe3rd/fleetledger/internal/export"
	"github.com/MrJamesThe3rd/fleetledger/internal/fleet"
	fleethttp "github.com/MrJamesThe3rd/fleetledger/internal/http"
	exportHandler "github.com/MrJamesThe3rd/fleetledger/internal/http/export"
	fleetHandler "github.com/MrJamesThe3rd/fleetledger/internal/http/fleet"
	fuelHandler "github.com/MrJamesThe3rd/fleetledger/internal/http/fuel"
	importHandler "github.com/MrJamesThe3rd/fleetledger/internal/http/importcsv"
	ledgerHandler "github.com/MrJamesThe3rd/fleetledger/internal/http/ledger"
	matchingHandler "github.com/MrJamesThe3rd/fleetledger/internal/http/matching"
	"github.com/MrJamesThe3rd/fleetledger/internal/importer"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
	"github.com/MrJamesThe3rd/fleetledger/internal/matching"
)

var secret = []byte("router-secret")

type nopMatching struct{}

func (nopMatching) FindMatch(context.Context, uuid.UUID, string) (ledger.Category, error) {
	return "", nil
}

func (nopMatching) CreateMapping(context.Context, uuid.UUID, string, ledger.Category) error {
	return nil
}

func newServer(t *testing.T) (*ledger.MockRepository, http.Handler) {
	ctrl := gomock.NewController(t)
	ledgerRepo := ledger.NewMockRepository(ctrl)

	ledgerSvc := ledger.NewService(ledgerRepo, ledger.NewAggregator(0, 1))
	fleetSvc := fleet.NewService(fleet.NewMockRepository(ctrl), ledgerSvc)
	matchingSvc := matching.NewService(nopMatching{})

	router := fleethttp.New(fleethttp.Options{
		JWTSecret:      secret,
		JWTIssuer:      "fleetledger",
		AllowedOrigins: []string{"https://app.example"},
	}, fleethttp.Handlers{
		Fuel:     fuelHandler.NewHandler(5),
		Fleet:    fleetHandler.NewHandler(fleetSvc, 5),
		Ledger:   ledgerHandler.NewHandler(ledgerSvc),
		Import:   importHandler.NewHandler(importer.NewService(fleetSvc, matchingSvc, ledgerSvc)),
		Matching: matchingHandler.NewHandler(matchingSvc),
		Export:   exportHandler.NewHandler(export.NewService(ledgerSvc)),
	})

	return ledgerRepo, router
}

func TestRouter_Public(t *testing.T) {
	_, router := newServer(t)

	for _, path := range []string{"/healthz", "/metrics"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	body := `{"distance_km":560,"load_status":"loaded","profile":{"empty_km_per_liter":2.5,"loaded_km_per_liter":2.0},"buffer_percent":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fuel/estimate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequiresToken(t *testing.T) {
	_, router := newServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ledger/summary", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ScopesToTokenCompany(t *testing.T) {
	repo, router := newServer(t)
	company := uuid.New()

	token, err := auth.NewToken(secret, "fleetledger", company, "user-1", time.Hour)
	require.NoError(t, err)

	repo.EXPECT().List(gomock.Any(), ledger.ListFilter{CompanyID: company}).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger/summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	_, router := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fuel/estimate", strings.NewReader("distance=5"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	_, router := newServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/ledger/summary", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
