package fleet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/fuel"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=fleet
type Repository interface {
	CreateVehicle(ctx context.Context, v *Vehicle) error
	GetVehicle(ctx context.Context, companyID, id uuid.UUID) (*Vehicle, error)
	FindVehicleByPlate(ctx context.Context, companyID uuid.UUID, plate string) (*Vehicle, error)
	ListVehicles(ctx context.Context, companyID uuid.UUID) ([]*Vehicle, error)

	CreateTrip(ctx context.Context, t *Trip) error
	GetTrip(ctx context.Context, companyID, id uuid.UUID) (*Trip, error)
	ListTrips(ctx context.Context, filter TripFilter) ([]*Trip, error)
}

// EventRecorder appends financial events produced by fleet actions.
type EventRecorder interface {
	Record(ctx context.Context, params ledger.RecordParams) (*ledger.Event, error)
}

type Service struct {
	repo   Repository
	events EventRecorder
}

func NewService(repo Repository, events EventRecorder) *Service {
	return &Service{repo: repo, events: events}
}

type TripFilter struct {
	CompanyID uuid.UUID
	VehicleID *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

type CreateVehicleParams struct {
	CompanyID uuid.UUID
	Plate     string
	Name      string
	Profile   fuel.Profile
}

// CreateVehicle registers a vehicle. Consumption profiles are checked here so the
// estimator can rely on loaded efficiency never beating empty efficiency.
func (s *Service) CreateVehicle(ctx context.Context, params CreateVehicleParams) (*Vehicle, error) {
	plate := normalizePlate(params.Plate)
	if plate == "" {
		return nil, fmt.Errorf("%w: plate is required", ErrInvalidVehicle)
	}

	p := params.Profile
	if p.EmptyKmPerLiter <= 0 || p.LoadedKmPerLiter <= 0 {
		return nil, fmt.Errorf("%w: consumption figures must be positive", ErrInvalidVehicle)
	}

	if p.LoadedKmPerLiter > p.EmptyKmPerLiter {
		return nil, fmt.Errorf("%w: loaded efficiency %.2f km/L exceeds empty efficiency %.2f km/L",
			ErrInvalidVehicle, p.LoadedKmPerLiter, p.EmptyKmPerLiter)
	}

	v := &Vehicle{
		CompanyID: params.CompanyID,
		Plate:     plate,
		Name:      params.Name,
		Profile:   p,
	}
	if err := s.repo.CreateVehicle(ctx, v); err != nil {
		return nil, err
	}

	return v, nil
}

func (s *Service) GetVehicle(ctx context.Context, companyID, id uuid.UUID) (*Vehicle, error) {
	return s.repo.GetVehicle(ctx, companyID, id)
}

// VehicleByPlate resolves a plate as printed on statements to a vehicle.
func (s *Service) VehicleByPlate(ctx context.Context, companyID uuid.UUID, plate string) (*Vehicle, error) {
	return s.repo.FindVehicleByPlate(ctx, companyID, normalizePlate(plate))
}

func (s *Service) ListVehicles(ctx context.Context, companyID uuid.UUID) ([]*Vehicle, error) {
	return s.repo.ListVehicles(ctx, companyID)
}

type PlanParams struct {
	VehicleID     uuid.UUID
	DistanceKm    float64
	LoadStatus    fuel.LoadStatus
	BufferPercent int
}

// PlanTrip estimates fuel for a trip using the vehicle's consumption profile.
func (s *Service) PlanTrip(ctx context.Context, companyID uuid.UUID, params PlanParams) (fuel.Plan, error) {
	v, err := s.repo.GetVehicle(ctx, companyID, params.VehicleID)
	if err != nil {
		return fuel.Plan{}, err
	}

	return fuel.Estimate(params.DistanceKm, params.LoadStatus, v.Profile, params.BufferPercent)
}

// CompareLoads estimates the same route loaded and empty for a vehicle.
func (s *Service) CompareLoads(ctx context.Context, companyID, vehicleID uuid.UUID, distanceKm float64, bufferPercent int) (fuel.Comparison, error) {
	v, err := s.repo.GetVehicle(ctx, companyID, vehicleID)
	if err != nil {
		return fuel.Comparison{}, err
	}

	return fuel.CompareLoadedVsEmpty(distanceKm, v.Profile, bufferPercent)
}

type DeployParams struct {
	CompanyID     uuid.UUID
	VehicleID     uuid.UUID
	DriverID      *uuid.UUID
	Origin        string
	Destination   string
	DistanceKm    float64
	LoadStatus    fuel.LoadStatus
	BufferPercent int
	DepartureAt   *time.Time
}

// DeployTrip computes the fuel plan and persists the trip with it.
func (s *Service) DeployTrip(ctx context.Context, params DeployParams) (*Trip, error) {
	if strings.TrimSpace(params.Origin) == "" || strings.TrimSpace(params.Destination) == "" {
		return nil, fmt.Errorf("%w: origin and destination are required", ErrInvalidTrip)
	}

	plan, err := s.PlanTrip(ctx, params.CompanyID, PlanParams{
		VehicleID:     params.VehicleID,
		DistanceKm:    params.DistanceKm,
		LoadStatus:    params.LoadStatus,
		BufferPercent: params.BufferPercent,
	})
	if err != nil {
		return nil, err
	}

	t := &Trip{
		CompanyID:     params.CompanyID,
		VehicleID:     params.VehicleID,
		DriverID:      params.DriverID,
		Origin:        strings.TrimSpace(params.Origin),
		Destination:   strings.TrimSpace(params.Destination),
		DistanceKm:    params.DistanceKm,
		LoadStatus:    params.LoadStatus,
		BufferPercent: params.BufferPercent,
		Fuel:          plan,
		DepartureAt:   params.DepartureAt,
	}
	if err := s.repo.CreateTrip(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) GetTrip(ctx context.Context, companyID, id uuid.UUID) (*Trip, error) {
	return s.repo.GetTrip(ctx, companyID, id)
}

func (s *Service) ListTrips(ctx context.Context, filter TripFilter) ([]*Trip, error) {
	return s.repo.ListTrips(ctx, filter)
}

type RefuelParams struct {
	CompanyID   uuid.UUID
	TripID      uuid.UUID
	SupplierID  *uuid.UUID
	Amount      int64 // Amount in cents
	Date        time.Time
	Description string
}

// RecordRefuel books a fuel purchase made during a trip as a ledger expense.
func (s *Service) RecordRefuel(ctx context.Context, params RefuelParams) (*ledger.Event, error) {
	t, err := s.repo.GetTrip(ctx, params.CompanyID, params.TripID)
	if err != nil {
		return nil, err
	}

	desc := params.Description
	if desc == "" {
		desc = fmt.Sprintf("Fuel %s → %s", t.Origin, t.Destination)
	}

	return s.events.Record(ctx, ledger.RecordParams{
		CompanyID:   params.CompanyID,
		EventDate:   params.Date,
		Amount:      params.Amount,
		Direction:   ledger.DirectionOut,
		Category:    ledger.CategoryFuel,
		Type:        ledger.TypeFuelPurchase,
		Description: desc,
		SupplierID:  params.SupplierID,
		VehicleID:   &t.VehicleID,
		DriverID:    t.DriverID,
		TripID:      &t.ID,
	})
}

func normalizePlate(plate string) string {
	return strings.ToUpper(strings.Join(strings.Fields(plate), ""))
}
