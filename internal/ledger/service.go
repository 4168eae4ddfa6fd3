package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	Append(ctx context.Context, e *Event) error
	Get(ctx context.Context, companyID, id uuid.UUID) (*Event, error)
	List(ctx context.Context, filter ListFilter) ([]Event, error)
	// FindReversal returns the event reversing id, or nil when there is none.
	FindReversal(ctx context.Context, companyID, id uuid.UUID) (*Event, error)
	// BeginBatch opens a transaction holding the company's batch lock until Commit or Rollback.
	BeginBatch(ctx context.Context, companyID uuid.UUID, window DateRange) (BatchTx, error)
}

type BatchTx interface {
	// FindDuplicates returns stored events inside the batch window sharing a duplicate key with any of events.
	FindDuplicates(ctx context.Context, events []*Event) ([]Event, error)
	AppendAll(ctx context.Context, events []*Event) error
	Commit() error
	Rollback() error
}

type ListFilter struct {
	CompanyID uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	InvoiceID *uuid.UUID
	ClientID  *uuid.UUID
	VehicleID *uuid.UUID
	Category  *Category
}

type Service struct {
	repo Repository
	agg  *Aggregator
	now  func() time.Time
}

func NewService(repo Repository, agg *Aggregator) *Service {
	return &Service{repo: repo, agg: agg, now: time.Now}
}

type RecordParams struct {
	CompanyID   uuid.UUID
	EventDate   time.Time
	Amount      int64
	Direction   Direction
	Category    Category
	Type        Type
	Description string

	InvoiceID  *uuid.UUID
	ClientID   *uuid.UUID
	SupplierID *uuid.UUID
	VehicleID  *uuid.UUID
	DriverID   *uuid.UUID
	TripID     *uuid.UUID
}

// Record appends a new event. Reversals must go through Reverse.
func (s *Service) Record(ctx context.Context, params RecordParams) (*Event, error) {
	e, err := newEvent(params)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Append(ctx, e); err != nil {
		return nil, fmt.Errorf("append event: %w", err)
	}

	return e, nil
}

func newEvent(params RecordParams) (*Event, error) {
	if params.Type == TypeReversal {
		return nil, fmt.Errorf("%w: use reverse to record a reversal", ErrMalformedEvent)
	}

	e := &Event{
		ID:          uuid.New(),
		CompanyID:   params.CompanyID,
		EventDate:   params.EventDate,
		Amount:      params.Amount,
		Direction:   params.Direction,
		Category:    params.Category,
		Type:        params.Type,
		Description: params.Description,
		InvoiceID:   params.InvoiceID,
		ClientID:    params.ClientID,
		SupplierID:  params.SupplierID,
		VehicleID:   params.VehicleID,
		DriverID:    params.DriverID,
		TripID:      params.TripID,
	}

	if err := Validate(e); err != nil {
		return nil, err
	}

	return e, nil
}

// Conflict pairs an incoming line with the stored event it duplicates.
type Conflict struct {
	Incoming RecordParams
	Existing Event
}

// BatchResult holds either the recorded events or, when any line duplicates
// a stored event, the conflicts and the lines that would have been new.
type BatchResult struct {
	Recorded  []*Event
	Pending   []RecordParams
	Conflicts []Conflict
}

type dupKey struct {
	Date        string
	Amount      int64
	Direction   Direction
	Description string
}

func keyOf(e *Event) dupKey {
	return dupKey{
		Date:        e.EventDate.Format(time.DateOnly),
		Amount:      e.Amount,
		Direction:   e.Direction,
		Description: e.Description,
	}
}

// RecordBatch appends params in one transaction. Nothing is written when any
// line is invalid, duplicates a stored event, or fails to append.
func (s *Service) RecordBatch(ctx context.Context, params []RecordParams) (*BatchResult, error) {
	if len(params) == 0 {
		return &BatchResult{}, nil
	}

	events := make([]*Event, len(params))

	for i, p := range params {
		e, err := newEvent(p)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		if i > 0 && e.CompanyID != events[0].CompanyID {
			return nil, fmt.Errorf("record %d: %w", i, ErrCrossTenant)
		}

		events[i] = e
	}

	btx, err := s.repo.BeginBatch(ctx, events[0].CompanyID, batchWindow(events))
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	defer btx.Rollback()

	duplicates, err := btx.FindDuplicates(ctx, events)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]Event, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOf(&d)] = d
	}

	var (
		pending   []RecordParams
		conflicts []Conflict
	)

	for i, e := range events {
		if existing, found := lookup[keyOf(e)]; found {
			conflicts = append(conflicts, Conflict{Incoming: params[i], Existing: existing})
			continue
		}

		pending = append(pending, params[i])
	}

	if len(conflicts) > 0 {
		return &BatchResult{Pending: pending, Conflicts: conflicts}, nil
	}

	if err := btx.AppendAll(ctx, events); err != nil {
		return nil, fmt.Errorf("append events: %w", err)
	}

	if err := btx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	return &BatchResult{Recorded: events}, nil
}

func batchWindow(events []*Event) DateRange {
	w := DateRange{Start: events[0].EventDate, End: events[0].EventDate}

	for _, e := range events[1:] {
		if e.EventDate.Before(w.Start) {
			w.Start = e.EventDate
		}

		if e.EventDate.After(w.End) {
			w.End = e.EventDate
		}
	}

	return w
}

// Reverse appends an event cancelling eventID: same amount, category and references, opposite direction.
func (s *Service) Reverse(ctx context.Context, companyID, eventID uuid.UUID, description string) (*Event, error) {
	orig, err := s.repo.Get(ctx, companyID, eventID)
	if err != nil {
		return nil, err
	}

	if orig.IsReversal() {
		return nil, fmt.Errorf("%w: %s is a reversal", ErrAlreadyReversed, orig.ID)
	}

	existing, err := s.repo.FindReversal(ctx, companyID, eventID)
	if err != nil {
		return nil, fmt.Errorf("find reversal: %w", err)
	}

	if existing != nil {
		return nil, fmt.Errorf("%w: %s reversed by %s", ErrAlreadyReversed, orig.ID, existing.ID)
	}

	if description == "" {
		description = "Reversal of " + orig.Description
	}

	e := &Event{
		ID:          uuid.New(),
		CompanyID:   orig.CompanyID,
		EventDate:   dateOnly(s.now()),
		Amount:      orig.Amount,
		Direction:   orig.Direction.Opposite(),
		Category:    orig.Category,
		Type:        TypeReversal,
		Description: description,
		InvoiceID:   orig.InvoiceID,
		ClientID:    orig.ClientID,
		SupplierID:  orig.SupplierID,
		VehicleID:   orig.VehicleID,
		DriverID:    orig.DriverID,
		TripID:      orig.TripID,
		ReversalOf:  &orig.ID,
	}

	if err := Validate(e); err != nil {
		return nil, err
	}

	if err := s.repo.Append(ctx, e); err != nil {
		if errors.Is(err, ErrAlreadyReversed) {
			return nil, err
		}

		return nil, fmt.Errorf("append reversal: %w", err)
	}

	return e, nil
}

func (s *Service) Get(ctx context.Context, companyID, id uuid.UUID) (*Event, error) {
	return s.repo.Get(ctx, companyID, id)
}

// List returns the company's events newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Event, error) {
	events, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	if err := CheckScope(events, filter.CompanyID); err != nil {
		return nil, err
	}

	SortNewestFirst(events)

	return events, nil
}

// Summary recomputes the ledger summary from the company's events.
func (s *Service) Summary(ctx context.Context, companyID uuid.UUID, window *DateRange) (Summary, error) {
	filter := ListFilter{CompanyID: companyID}
	if window != nil {
		filter.StartDate = &window.Start
		filter.EndDate = &window.End
	}

	events, err := s.repo.List(ctx, filter)
	if err != nil {
		return Summary{}, fmt.Errorf("list events: %w", err)
	}

	return s.agg.Summarize(events, companyID, window)
}

func (s *Service) ClientBalances(ctx context.Context, companyID uuid.UUID) (map[uuid.UUID]ClientBalance, error) {
	events, err := s.repo.List(ctx, ListFilter{CompanyID: companyID})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return s.agg.ClientBalances(events, companyID)
}

func (s *Service) InvoiceStatus(ctx context.Context, companyID, invoiceID uuid.UUID) (InvoiceStatus, error) {
	events, err := s.repo.List(ctx, ListFilter{CompanyID: companyID, InvoiceID: &invoiceID})
	if err != nil {
		return InvoiceStatus{}, fmt.Errorf("list events: %w", err)
	}

	if err := CheckScope(events, companyID); err != nil {
		return InvoiceStatus{}, err
	}

	return s.agg.InvoicePaymentStatus(events, invoiceID)
}

type InvoiceParams struct {
	CompanyID   uuid.UUID
	InvoiceID   uuid.UUID
	ClientID    uuid.UUID
	Date        time.Time
	Amount      int64
	Description string
}

// IssueInvoice records an invoice as receivable revenue.
func (s *Service) IssueInvoice(ctx context.Context, params InvoiceParams) (*Event, error) {
	return s.Record(ctx, RecordParams{
		CompanyID:   params.CompanyID,
		EventDate:   params.Date,
		Amount:      params.Amount,
		Direction:   DirectionIn,
		Category:    CategoryRevenue,
		Type:        TypeInvoiceIssued,
		Description: params.Description,
		InvoiceID:   &params.InvoiceID,
		ClientID:    &params.ClientID,
	})
}

// ReceivePayment records money received from a client against an invoice.
func (s *Service) ReceivePayment(ctx context.Context, params InvoiceParams) (*Event, error) {
	return s.Record(ctx, RecordParams{
		CompanyID:   params.CompanyID,
		EventDate:   params.Date,
		Amount:      params.Amount,
		Direction:   DirectionIn,
		Category:    CategoryRevenue,
		Type:        TypeCustomerPayment,
		Description: params.Description,
		InvoiceID:   &params.InvoiceID,
		ClientID:    &params.ClientID,
	})
}

type ExpenseParams struct {
	CompanyID   uuid.UUID
	Date        time.Time
	Amount      int64
	Category    Category
	Description string
	SupplierID  *uuid.UUID
	VehicleID   *uuid.UUID
}

var expenseTypes = map[Category]Type{
	CategoryFuel:        TypeFuelPurchase,
	CategoryMaintenance: TypeMaintenanceExpense,
	CategoryInventory:   TypeInventoryPurchase,
	CategoryPayroll:     TypePayroll,
	CategoryCostOfSales: TypeSupplierPayment,
}

// RecordExpense records an outgoing payment, picking the event type from the category.
func (s *Service) RecordExpense(ctx context.Context, params ExpenseParams) (*Event, error) {
	typ, ok := expenseTypes[params.Category]
	if !ok {
		typ = TypeOperatingExpense
	}

	return s.Record(ctx, RecordParams{
		CompanyID:   params.CompanyID,
		EventDate:   params.Date,
		Amount:      params.Amount,
		Direction:   DirectionOut,
		Category:    params.Category,
		Type:        typ,
		Description: params.Description,
		SupplierID:  params.SupplierID,
		VehicleID:   params.VehicleID,
	})
}
