package fleet

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/fleet"
	"github.com/MrJamesThe3rd/fleetledger/internal/fuel"
	"github.com/MrJamesThe3rd/fleetledger/internal/http/respond"
	"github.com/MrJamesThe3rd/fleetledger/internal/metrics"
)

type Handler struct {
	svc           *fleet.Service
	defaultBuffer int
}

func NewHandler(svc *fleet.Service, defaultBufferPercent int) *Handler {
	return &Handler{svc: svc, defaultBuffer: defaultBufferPercent}
}

func (h *Handler) VehicleRoutes(r chi.Router) {
	r.Post("/", h.createVehicle)
	r.Get("/", h.listVehicles)
	r.Get("/{id}", h.getVehicle)
	r.Post("/{id}/plan", h.plan)
	r.Post("/{id}/compare", h.compare)
}

func (h *Handler) TripRoutes(r chi.Router) {
	r.Post("/", h.deploy)
	r.Get("/", h.listTrips)
	r.Get("/{id}", h.getTrip)
	r.Post("/{id}/refuel", h.refuel)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

type createVehicleRequest struct {
	Plate   string       `json:"plate"`
	Name    string       `json:"name"`
	Profile fuel.Profile `json:"profile"`
}

func (h *Handler) createVehicle(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	var req createVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	v, err := h.svc.CreateVehicle(r.Context(), fleet.CreateVehicleParams{
		CompanyID: companyID,
		Plate:     req.Plate,
		Name:      req.Name,
		Profile:   req.Profile,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toVehicleResponse(v))
}

func (h *Handler) listVehicles(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	vehicles, err := h.svc.ListVehicles(r.Context(), companyID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]vehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		resp = append(resp, toVehicleResponse(v))
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getVehicle(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	v, err := h.svc.GetVehicle(r.Context(), companyID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toVehicleResponse(v))
}

type planRequest struct {
	DistanceKm    float64         `json:"distance_km"`
	LoadStatus    fuel.LoadStatus `json:"load_status"`
	BufferPercent *int            `json:"buffer_percent,omitempty"`
}

func (h *Handler) buffer(p *int) int {
	if p != nil {
		return *p
	}

	return h.defaultBuffer
}

func (h *Handler) plan(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	plan, err := h.svc.PlanTrip(r.Context(), companyID, fleet.PlanParams{
		VehicleID:     id,
		DistanceKm:    req.DistanceKm,
		LoadStatus:    req.LoadStatus,
		BufferPercent: h.buffer(req.BufferPercent),
	})
	metrics.ObserveFuelEstimate("estimate", err)

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, plan)
}

func (h *Handler) compare(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmp, err := h.svc.CompareLoads(r.Context(), companyID, id, req.DistanceKm, h.buffer(req.BufferPercent))
	metrics.ObserveFuelEstimate("compare", err)

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, cmp)
}

type deployRequest struct {
	VehicleID     uuid.UUID       `json:"vehicle_id"`
	DriverID      *uuid.UUID      `json:"driver_id,omitempty"`
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	DistanceKm    float64         `json:"distance_km"`
	LoadStatus    fuel.LoadStatus `json:"load_status"`
	BufferPercent *int            `json:"buffer_percent,omitempty"`
	DepartureAt   *time.Time      `json:"departure_at,omitempty"`
}

func (h *Handler) deploy(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	var req deployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	trip, err := h.svc.DeployTrip(r.Context(), fleet.DeployParams{
		CompanyID:     companyID,
		VehicleID:     req.VehicleID,
		DriverID:      req.DriverID,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DistanceKm:    req.DistanceKm,
		LoadStatus:    req.LoadStatus,
		BufferPercent: h.buffer(req.BufferPercent),
		DepartureAt:   req.DepartureAt,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toTripResponse(trip))
}

func (h *Handler) listTrips(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	vehicleID, err := respond.OptionalUUID(r, "vehicle_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	window, err := respond.DateWindow(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filter := fleet.TripFilter{CompanyID: companyID, VehicleID: vehicleID}
	if window != nil {
		filter.StartDate = &window.Start
		filter.EndDate = &window.End
	}

	trips, err := h.svc.ListTrips(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]tripResponse, 0, len(trips))
	for _, t := range trips {
		resp = append(resp, toTripResponse(t))
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getTrip(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	trip, err := h.svc.GetTrip(r.Context(), companyID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toTripResponse(trip))
}

type refuelRequest struct {
	Amount      int64      `json:"amount"`
	Date        time.Time  `json:"date"`
	SupplierID  *uuid.UUID `json:"supplier_id,omitempty"`
	Description string     `json:"description"`
}

func (h *Handler) refuel(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req refuelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := h.svc.RecordRefuel(r.Context(), fleet.RefuelParams{
		CompanyID:   companyID,
		TripID:      id,
		SupplierID:  req.SupplierID,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toRefuelResponse(e))
}
