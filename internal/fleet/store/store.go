package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/fleetledger/internal/fleet"
	"github.com/MrJamesThe3rd/fleetledger/internal/fuel"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectVehicleColumns = `
	v.id, v.company_id, v.plate, v.name, v.empty_km_per_liter, v.loaded_km_per_liter, v.created_at
`

func scanVehicle(s scanner) (*fleet.Vehicle, error) {
	var v fleet.Vehicle

	if err := s.Scan(
		&v.ID, &v.CompanyID, &v.Plate, &v.Name,
		&v.Profile.EmptyKmPerLiter, &v.Profile.LoadedKmPerLiter, &v.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &v, nil
}

const selectTripColumns = `
	t.id, t.company_id, t.vehicle_id, t.driver_id, t.origin, t.destination, t.distance_km,
	t.load_status, t.buffer_percent, t.efficiency_km_per_liter, t.base_liters, t.buffer_liters,
	t.total_liters, t.departure_at, t.created_at
`

func scanTrip(s scanner) (*fleet.Trip, error) {
	var t fleet.Trip

	var loadStatus string

	if err := s.Scan(
		&t.ID, &t.CompanyID, &t.VehicleID, &t.DriverID, &t.Origin, &t.Destination, &t.DistanceKm,
		&loadStatus, &t.BufferPercent, &t.Fuel.EfficiencyKmPerLiter, &t.Fuel.BaseLiters, &t.Fuel.BufferLiters,
		&t.Fuel.TotalLiters, &t.DepartureAt, &t.CreatedAt,
	); err != nil {
		return nil, err
	}

	t.LoadStatus = fuel.LoadStatus(loadStatus)
	t.Fuel.DistanceKm = t.DistanceKm
	t.Fuel.LoadStatus = t.LoadStatus
	t.Fuel.BufferPercent = t.BufferPercent

	return &t, nil
}

func (s *Store) CreateVehicle(ctx context.Context, v *fleet.Vehicle) error {
	query := `
		INSERT INTO vehicles (company_id, plate, name, empty_km_per_liter, loaded_km_per_liter, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		v.CompanyID,
		v.Plate,
		v.Name,
		v.Profile.EmptyKmPerLiter,
		v.Profile.LoadedKmPerLiter,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", fleet.ErrDuplicatePlate, v.Plate)
		}

		return fmt.Errorf("creating vehicle: %w", err)
	}

	return nil
}

func (s *Store) GetVehicle(ctx context.Context, companyID, id uuid.UUID) (*fleet.Vehicle, error) {
	query := `SELECT ` + selectVehicleColumns + `
		FROM vehicles v
		WHERE v.id = $1 AND v.company_id = $2`

	v, err := scanVehicle(s.db.QueryRowContext(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fleet.ErrNotFound
		}

		return nil, fmt.Errorf("getting vehicle: %w", err)
	}

	return v, nil
}

func (s *Store) FindVehicleByPlate(ctx context.Context, companyID uuid.UUID, plate string) (*fleet.Vehicle, error) {
	query := `SELECT ` + selectVehicleColumns + `
		FROM vehicles v
		WHERE v.plate = $1 AND v.company_id = $2`

	v, err := scanVehicle(s.db.QueryRowContext(ctx, query, plate, companyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fleet.ErrNotFound
		}

		return nil, fmt.Errorf("finding vehicle by plate: %w", err)
	}

	return v, nil
}

func (s *Store) ListVehicles(ctx context.Context, companyID uuid.UUID) ([]*fleet.Vehicle, error) {
	query := `SELECT ` + selectVehicleColumns + `
		FROM vehicles v
		WHERE v.company_id = $1
		ORDER BY v.plate ASC`

	rows, err := s.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*fleet.Vehicle

	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning vehicle: %w", err)
		}

		vehicles = append(vehicles, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vehicle rows: %w", err)
	}

	return vehicles, nil
}

func (s *Store) CreateTrip(ctx context.Context, t *fleet.Trip) error {
	query := `
		INSERT INTO trips (
			company_id, vehicle_id, driver_id, origin, destination, distance_km, load_status, buffer_percent,
			efficiency_km_per_liter, base_liters, buffer_liters, total_liters, departure_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		t.CompanyID,
		t.VehicleID,
		t.DriverID,
		t.Origin,
		t.Destination,
		t.DistanceKm,
		t.LoadStatus,
		t.BufferPercent,
		t.Fuel.EfficiencyKmPerLiter,
		t.Fuel.BaseLiters,
		t.Fuel.BufferLiters,
		t.Fuel.TotalLiters,
		t.DepartureAt,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating trip: %w", err)
	}

	return nil
}

func (s *Store) GetTrip(ctx context.Context, companyID, id uuid.UUID) (*fleet.Trip, error) {
	query := `SELECT ` + selectTripColumns + `
		FROM trips t
		WHERE t.id = $1 AND t.company_id = $2`

	t, err := scanTrip(s.db.QueryRowContext(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fleet.ErrNotFound
		}

		return nil, fmt.Errorf("getting trip: %w", err)
	}

	return t, nil
}

func (s *Store) ListTrips(ctx context.Context, filter fleet.TripFilter) ([]*fleet.Trip, error) {
	query := `SELECT ` + selectTripColumns + `
		FROM trips t
		WHERE t.company_id = $1`

	args := []any{filter.CompanyID}

	argIdx := 2

	if filter.VehicleID != nil {
		query += fmt.Sprintf(" AND t.vehicle_id = $%d", argIdx)

		args = append(args, *filter.VehicleID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.created_at >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.created_at <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY t.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing trips: %w", err)
	}
	defer rows.Close()

	var trips []*fleet.Trip

	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning trip: %w", err)
		}

		trips = append(trips, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trip rows: %w", err)
	}

	return trips, nil
}
