package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/auth"
	"github.com/MrJamesThe3rd/fleetledger/internal/fleet"
	"github.com/MrJamesThe3rd/fleetledger/internal/fuel"
	"github.com/MrJamesThe3rd/fleetledger/internal/importer/statement"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
	"github.com/MrJamesThe3rd/fleetledger/internal/matching"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error maps domain errors onto status codes. Anything unrecognised is logged and hidden behind a 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, fuel.ErrInvalidInput),
		errors.Is(err, fleet.ErrInvalidVehicle),
		errors.Is(err, fleet.ErrInvalidTrip),
		errors.Is(err, matching.ErrInvalidMapping),
		errors.Is(err, statement.ErrUnknownFormat),
		errors.Is(err, statement.ErrMalformedRow):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, fleet.ErrNotFound),
		errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, ledger.ErrUnknownInvoice):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, fleet.ErrDuplicatePlate):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ledger.ErrAlreadyReversed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ledger.ErrMalformedEvent):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ledger.ErrCrossTenant):
		slog.Error("cross tenant data in store", "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// CompanyID returns the company the request is scoped to, writing a 401 when there is none.
func CompanyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := auth.CompanyIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
	}

	return id, ok
}

// DateWindow reads start_date and end_date (YYYY-MM-DD). Both or neither must be set.
func DateWindow(r *http.Request) (*ledger.DateRange, error) {
	start, end := r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date")
	if start == "" && end == "" {
		return nil, nil
	}

	if start == "" || end == "" {
		return nil, errors.New("start_date and end_date must be given together")
	}

	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return nil, errors.New("invalid start_date")
	}

	e, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return nil, errors.New("invalid end_date")
	}

	if e.Before(s) {
		return nil, errors.New("end_date is before start_date")
	}

	return &ledger.DateRange{Start: s, End: e}, nil
}

// OptionalUUID parses an optional uuid query parameter.
func OptionalUUID(r *http.Request, name string) (*uuid.UUID, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, errors.New("invalid " + name)
	}

	return &id, nil
}
