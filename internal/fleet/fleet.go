package fleet

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/fuel"
)

var (
	ErrNotFound       = errors.New("fleet: not found")
	ErrInvalidVehicle = errors.New("fleet: invalid vehicle")
	ErrInvalidTrip    = errors.New("fleet: invalid trip")
	ErrDuplicatePlate = errors.New("fleet: plate already registered")
)

// Vehicle is a registered vehicle and its fuel consumption profile.
type Vehicle struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Plate     string
	Name      string
	Profile   fuel.Profile
	CreatedAt time.Time
}

// Trip is a deployed dispatch together with the fuel plan it was deployed with.
type Trip struct {
	ID            uuid.UUID
	CompanyID     uuid.UUID
	VehicleID     uuid.UUID
	DriverID      *uuid.UUID
	Origin        string
	Destination   string
	DistanceKm    float64
	LoadStatus    fuel.LoadStatus
	BufferPercent int
	Fuel          fuel.Plan
	DepartureAt   *time.Time
	CreatedAt     time.Time
}
