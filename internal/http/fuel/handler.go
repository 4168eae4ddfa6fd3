package fuel

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/fleetledger/internal/fuel"
	"github.com/MrJamesThe3rd/fleetledger/internal/http/respond"
	"github.com/MrJamesThe3rd/fleetledger/internal/metrics"
)

// Handler serves ad hoc estimates for a profile given in the request, no vehicle needed.
type Handler struct {
	defaultBuffer int
}

func NewHandler(defaultBufferPercent int) *Handler {
	return &Handler{defaultBuffer: defaultBufferPercent}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/estimate", h.estimate)
	r.Post("/compare", h.compare)
}

type estimateRequest struct {
	DistanceKm    float64         `json:"distance_km"`
	LoadStatus    fuel.LoadStatus `json:"load_status"`
	Profile       fuel.Profile    `json:"profile"`
	BufferPercent *int            `json:"buffer_percent,omitempty"`
}

func (h *Handler) buffer(req estimateRequest) int {
	if req.BufferPercent != nil {
		return *req.BufferPercent
	}

	return h.defaultBuffer
}

func (h *Handler) estimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	plan, err := fuel.Estimate(req.DistanceKm, req.LoadStatus, req.Profile, h.buffer(req))
	metrics.ObserveFuelEstimate("estimate", err)

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, plan)
}

func (h *Handler) compare(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmp, err := fuel.CompareLoadedVsEmpty(req.DistanceKm, req.Profile, h.buffer(req))
	metrics.ObserveFuelEstimate("compare", err)

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, cmp)
}
