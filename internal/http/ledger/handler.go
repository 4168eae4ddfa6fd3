package ledger

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/http/respond"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
	"github.com/MrJamesThe3rd/fleetledger/internal/metrics"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/events", h.record)
	r.Get("/events", h.list)
	r.Get("/events/{id}", h.get)
	r.Post("/events/{id}/reversal", h.reverse)
	r.Post("/expenses", h.expense)
	r.Post("/invoices", h.issueInvoice)
	r.Get("/invoices/{id}", h.invoiceStatus)
	r.Post("/invoices/{id}/payments", h.receivePayment)
	r.Get("/summary", h.summary)
	r.Get("/clients", h.clients)
}

// date accepts "2006-01-02" in request bodies.
type date struct{ time.Time }

func (d *date) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"`+time.DateOnly+`"`, string(b))
	if err != nil {
		return err
	}

	d.Time = t

	return nil
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

type recordRequest struct {
	EventDate   date             `json:"event_date"`
	Amount      int64            `json:"amount"`
	Direction   ledger.Direction `json:"direction"`
	Category    ledger.Category  `json:"category"`
	Type        ledger.Type      `json:"type"`
	Description string           `json:"description"`
	InvoiceID   *uuid.UUID       `json:"invoice_id,omitempty"`
	ClientID    *uuid.UUID       `json:"client_id,omitempty"`
	SupplierID  *uuid.UUID       `json:"supplier_id,omitempty"`
	VehicleID   *uuid.UUID       `json:"vehicle_id,omitempty"`
	DriverID    *uuid.UUID       `json:"driver_id,omitempty"`
	TripID      *uuid.UUID       `json:"trip_id,omitempty"`
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := h.svc.Record(r.Context(), ledger.RecordParams{
		CompanyID:   companyID,
		EventDate:   req.EventDate.Time,
		Amount:      req.Amount,
		Direction:   req.Direction,
		Category:    req.Category,
		Type:        req.Type,
		Description: req.Description,
		InvoiceID:   req.InvoiceID,
		ClientID:    req.ClientID,
		SupplierID:  req.SupplierID,
		VehicleID:   req.VehicleID,
		DriverID:    req.DriverID,
		TripID:      req.TripID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	filter := ledger.ListFilter{CompanyID: companyID}

	window, err := respond.DateWindow(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if window != nil {
		filter.StartDate = &window.Start
		filter.EndDate = &window.End
	}

	for name, dst := range map[string]**uuid.UUID{
		"invoice_id": &filter.InvoiceID,
		"client_id":  &filter.ClientID,
		"vehicle_id": &filter.VehicleID,
	} {
		if *dst, err = respond.OptionalUUID(r, name); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if s := r.URL.Query().Get("category"); s != "" {
		c := ledger.Category(s)
		if !c.Valid() {
			http.Error(w, "invalid category", http.StatusBadRequest)
			return
		}

		filter.Category = &c
	}

	events, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(events))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	e, err := h.svc.Get(r.Context(), companyID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(e))
}

type reverseRequest struct {
	Description string `json:"description"`
}

func (h *Handler) reverse(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req reverseRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	e, err := h.svc.Reverse(r.Context(), companyID, id, strings.TrimSpace(req.Description))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(e))
}

type expenseRequest struct {
	Date        date            `json:"date"`
	Amount      int64           `json:"amount"`
	Category    ledger.Category `json:"category"`
	Description string          `json:"description"`
	SupplierID  *uuid.UUID      `json:"supplier_id,omitempty"`
	VehicleID   *uuid.UUID      `json:"vehicle_id,omitempty"`
}

func (h *Handler) expense(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := h.svc.RecordExpense(r.Context(), ledger.ExpenseParams{
		CompanyID:   companyID,
		Date:        req.Date.Time,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		SupplierID:  req.SupplierID,
		VehicleID:   req.VehicleID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(e))
}

type invoiceRequest struct {
	InvoiceID   uuid.UUID `json:"invoice_id"`
	ClientID    uuid.UUID `json:"client_id"`
	Date        date      `json:"date"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
}

func (h *Handler) issueInvoice(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.InvoiceID == uuid.Nil {
		req.InvoiceID = uuid.New()
	}

	if req.ClientID == uuid.Nil {
		http.Error(w, "client_id is required", http.StatusBadRequest)
		return
	}

	e, err := h.svc.IssueInvoice(r.Context(), ledger.InvoiceParams{
		CompanyID:   companyID,
		InvoiceID:   req.InvoiceID,
		ClientID:    req.ClientID,
		Date:        req.Date.Time,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) receivePayment(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	invoiceID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.ClientID == uuid.Nil {
		http.Error(w, "client_id is required", http.StatusBadRequest)
		return
	}

	e, err := h.svc.ReceivePayment(r.Context(), ledger.InvoiceParams{
		CompanyID:   companyID,
		InvoiceID:   invoiceID,
		ClientID:    req.ClientID,
		Date:        req.Date.Time,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) invoiceStatus(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	start := time.Now()
	status, err := h.svc.InvoiceStatus(r.Context(), companyID, id)
	metrics.ObserveLedgerAggregation("invoice_status", 0, time.Since(start), err)

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, status)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	window, err := respond.DateWindow(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	summary, err := h.svc.Summary(r.Context(), companyID, window)
	metrics.ObserveLedgerAggregation("summary", summary.EventCount, time.Since(start), err)

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, summary)
}

func (h *Handler) clients(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	start := time.Now()
	balances, err := h.svc.ClientBalances(r.Context(), companyID)
	metrics.ObserveLedgerAggregation("client_balances", 0, time.Since(start), err)

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]clientBalanceResponse, 0, len(balances))
	for id, b := range balances {
		resp = append(resp, clientBalanceResponse{ClientID: id, ClientBalance: b})
	}

	slices.SortFunc(resp, func(a, b clientBalanceResponse) int {
		return strings.Compare(a.ClientID.String(), b.ClientID.String())
	})

	respond.JSON(w, http.StatusOK, resp)
}
