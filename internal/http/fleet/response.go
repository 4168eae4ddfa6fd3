package fleet

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/fleet"
	"github.com/MrJamesThe3rd/fleetledger/internal/fuel"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

type vehicleResponse struct {
	ID        uuid.UUID    `json:"id"`
	Plate     string       `json:"plate"`
	Name      string       `json:"name"`
	Profile   fuel.Profile `json:"profile"`
	CreatedAt time.Time    `json:"created_at"`
}

func toVehicleResponse(v *fleet.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:        v.ID,
		Plate:     v.Plate,
		Name:      v.Name,
		Profile:   v.Profile,
		CreatedAt: v.CreatedAt,
	}
}

type tripResponse struct {
	ID            uuid.UUID       `json:"id"`
	VehicleID     uuid.UUID       `json:"vehicle_id"`
	DriverID      *uuid.UUID      `json:"driver_id,omitempty"`
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	DistanceKm    float64         `json:"distance_km"`
	LoadStatus    fuel.LoadStatus `json:"load_status"`
	BufferPercent int             `json:"buffer_percent"`
	Fuel          fuel.Plan       `json:"fuel"`
	DepartureAt   *time.Time      `json:"departure_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toTripResponse(t *fleet.Trip) tripResponse {
	return tripResponse{
		ID:            t.ID,
		VehicleID:     t.VehicleID,
		DriverID:      t.DriverID,
		Origin:        t.Origin,
		Destination:   t.Destination,
		DistanceKm:    t.DistanceKm,
		LoadStatus:    t.LoadStatus,
		BufferPercent: t.BufferPercent,
		Fuel:          t.Fuel,
		DepartureAt:   t.DepartureAt,
		CreatedAt:     t.CreatedAt,
	}
}

type refuelResponse struct {
	EventID   uuid.UUID `json:"event_id"`
	TripID    uuid.UUID `json:"trip_id"`
	Amount    int64     `json:"amount"`
	EventDate time.Time `json:"event_date"`
}

func toRefuelResponse(e *ledger.Event) refuelResponse {
	resp := refuelResponse{
		EventID:   e.ID,
		Amount:    e.Amount,
		EventDate: e.EventDate,
	}

	if e.TripID != nil {
		resp.TripID = *e.TripID
	}

	return resp
}
