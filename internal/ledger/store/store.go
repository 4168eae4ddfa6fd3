package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

const uniqueViolation = "23505"

// Store persists ledger events. It only ever inserts and reads.
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

const selectEventColumns = `
	e.id, e.company_id, e.event_date, e.created_at, e.amount, e.direction, e.category, e.type,
	e.description, e.invoice_id, e.client_id, e.supplier_id, e.vehicle_id, e.driver_id, e.trip_id,
	e.reversal_of
`

// scanEvent expects the column order of selectEventColumns.
func scanEvent(s scanner) (ledger.Event, error) {
	var e ledger.Event

	var direction, category, typ string

	var desc sql.NullString

	if err := s.Scan(
		&e.ID, &e.CompanyID, &e.EventDate, &e.CreatedAt, &e.Amount, &direction, &category, &typ,
		&desc, &e.InvoiceID, &e.ClientID, &e.SupplierID, &e.VehicleID, &e.DriverID, &e.TripID,
		&e.ReversalOf,
	); err != nil {
		return ledger.Event{}, err
	}

	e.Direction = ledger.Direction(direction)
	e.Category = ledger.Category(category)
	e.Type = ledger.Type(typ)
	e.Description = desc.String

	return e, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) Append(ctx context.Context, e *ledger.Event) error {
	return insertEvent(ctx, s.db, e)
}

func insertEvent(ctx context.Context, q querier, e *ledger.Event) error {
	query := `
		INSERT INTO ledger_events (
			id, company_id, event_date, amount, direction, category, type, description,
			invoice_id, client_id, supplier_id, vehicle_id, driver_id, trip_id, reversal_of, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
		RETURNING created_at
	`

	err := q.QueryRowContext(ctx, query,
		e.ID,
		e.CompanyID,
		e.EventDate,
		e.Amount,
		e.Direction,
		e.Category,
		e.Type,
		e.Description,
		e.InvoiceID,
		e.ClientID,
		e.SupplierID,
		e.VehicleID,
		e.DriverID,
		e.TripID,
		e.ReversalOf,
	).Scan(&e.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if e.ReversalOf != nil && errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ledger.ErrAlreadyReversed, *e.ReversalOf)
		}

		return fmt.Errorf("appending event: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, companyID, id uuid.UUID) (*ledger.Event, error) {
	query := `SELECT ` + selectEventColumns + `
		FROM ledger_events e
		WHERE e.id = $1 AND e.company_id = $2`

	e, err := scanEvent(s.db.QueryRowContext(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting event: %w", err)
	}

	return &e, nil
}

func (s *Store) FindReversal(ctx context.Context, companyID, id uuid.UUID) (*ledger.Event, error) {
	query := `SELECT ` + selectEventColumns + `
		FROM ledger_events e
		WHERE e.reversal_of = $1 AND e.company_id = $2`

	e, err := scanEvent(s.db.QueryRowContext(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding reversal: %w", err)
	}

	return &e, nil
}

func (s *Store) List(ctx context.Context, filter ledger.ListFilter) ([]ledger.Event, error) {
	query := `SELECT ` + selectEventColumns + `
		FROM ledger_events e
		WHERE e.company_id = $1`

	args := []any{filter.CompanyID}

	argIdx := 2

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND e.event_date >= $%d", argIdx)

		args = append(args, filter.StartDate.Format("2006-01-02"))
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND e.event_date <= $%d", argIdx)

		args = append(args, filter.EndDate.Format("2006-01-02"))
		argIdx++
	}

	if filter.InvoiceID != nil {
		query += fmt.Sprintf(" AND e.invoice_id = $%d", argIdx)

		args = append(args, *filter.InvoiceID)
		argIdx++
	}

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND e.client_id = $%d", argIdx)

		args = append(args, *filter.ClientID)
		argIdx++
	}

	if filter.VehicleID != nil {
		query += fmt.Sprintf(" AND e.vehicle_id = $%d", argIdx)

		args = append(args, *filter.VehicleID)
		argIdx++
	}

	if filter.Category != nil {
		query += fmt.Sprintf(" AND e.category = $%d", argIdx)

		args = append(args, *filter.Category)
		argIdx++
	}

	query += " ORDER BY e.event_date DESC, e.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []ledger.Event

	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}

		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}

	return events, nil
}

// batchLockKey serialises concurrent batches of one company.
func batchLockKey(companyID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("ledger_batch"))
	h.Write(companyID[:])

	return int64(h.Sum64())
}

type batchTx struct {
	tx        *sql.Tx
	companyID uuid.UUID
	window    ledger.DateRange
}

func (s *Store) BeginBatch(ctx context.Context, companyID uuid.UUID, window ledger.DateRange) (ledger.BatchTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning batch tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", batchLockKey(companyID)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring batch lock: %w", err)
	}

	return &batchTx{tx: dbTx, companyID: companyID, window: window}, nil
}

func (b *batchTx) Commit() error   { return b.tx.Commit() }
func (b *batchTx) Rollback() error { return b.tx.Rollback() }

// FindDuplicates matches on date, amount, direction and description. Reversals never match.
func (b *batchTx) FindDuplicates(ctx context.Context, events []*ledger.Event) ([]ledger.Event, error) {
	if len(events) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		Date        string
		Amount      int64
		Direction   ledger.Direction
		Description string
	}

	keySet := make(map[lookupKey]struct{}, len(events))
	for _, e := range events {
		keySet[lookupKey{
			Date:        e.EventDate.Format("2006-01-02"),
			Amount:      e.Amount,
			Direction:   e.Direction,
			Description: e.Description,
		}] = struct{}{}
	}

	query := `SELECT ` + selectEventColumns + `
		FROM ledger_events e
		WHERE e.company_id = $1 AND e.event_date >= $2 AND e.event_date <= $3
			AND e.reversal_of IS NULL
		ORDER BY e.event_date ASC`

	rows, err := b.tx.QueryContext(ctx, query,
		b.companyID,
		b.window.Start.Format("2006-01-02"),
		b.window.End.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []ledger.Event

	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}

		k := lookupKey{
			Date:        e.EventDate.Format("2006-01-02"),
			Amount:      e.Amount,
			Direction:   e.Direction,
			Description: e.Description,
		}

		if _, found := keySet[k]; !found {
			continue
		}

		duplicates = append(duplicates, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (b *batchTx) AppendAll(ctx context.Context, events []*ledger.Event) error {
	for _, e := range events {
		if err := insertEvent(ctx, b.tx, e); err != nil {
			return err
		}
	}

	return nil
}
