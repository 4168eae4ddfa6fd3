package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/google/uuid"

	enc "github.com/MrJamesThe3rd/fleetledger/internal/encoding"
	"github.com/MrJamesThe3rd/fleetledger/internal/fleet"
	"github.com/MrJamesThe3rd/fleetledger/internal/importer/statement"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

type Service struct {
	parser     Importer
	vehicles   VehicleResolver
	categories CategorySuggester
	events     EventRecorder
}

type Option func(*Service)

// WithParser replaces the default statement parser, e.g. one built with extra profiles.
func WithParser(p Importer) Option {
	return func(s *Service) {
		s.parser = p
	}
}

func NewService(vehicles VehicleResolver, categories CategorySuggester, events EventRecorder, opts ...Option) *Service {
	s := &Service{
		parser:     statement.NewParser(),
		vehicles:   vehicles,
		categories: categories,
		events:     events,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ErrDuplicateLines is returned by Import when some lines are already in the
// ledger. The Result still lists them in Conflicts.
var ErrDuplicateLines = errors.New("importer: statement lines already recorded")

// Result pairs every parsed line with its ledger params. Events is filled only once recorded, in the same order.
type Result struct {
	Profile       string
	Charset       enc.Charset
	Params        []ledger.RecordParams
	Events        []*ledger.Event
	Conflicts     []ledger.Conflict
	UnknownPlates []string
}

// Preview parses a statement and maps every line onto ledger params without recording anything.
func (s *Service) Preview(ctx context.Context, companyID uuid.UUID, r io.Reader) (*Result, error) {
	st, err := s.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse statement: %w", err)
	}

	res := &Result{
		Profile: st.Profile,
		Charset: st.Charset,
		Params:  make([]ledger.RecordParams, 0, len(st.Lines)),
	}

	for _, line := range st.Lines {
		params, err := s.mapLine(ctx, companyID, st.Kind, line, res)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line.Row, err)
		}

		res.Params = append(res.Params, params)
	}

	return res, nil
}

// Import records every line of the statement in the ledger, or none of them.
// Lines matching stored events are returned as conflicts with ErrDuplicateLines.
func (s *Service) Import(ctx context.Context, companyID uuid.UUID, r io.Reader) (*Result, error) {
	res, err := s.Preview(ctx, companyID, r)
	if err != nil {
		return nil, err
	}

	batch, err := s.events.RecordBatch(ctx, res.Params)
	if err != nil {
		return nil, fmt.Errorf("record statement: %w", err)
	}

	if len(batch.Conflicts) > 0 {
		res.Conflicts = batch.Conflicts
		return res, fmt.Errorf("%w: %d of %d", ErrDuplicateLines, len(batch.Conflicts), len(res.Params))
	}

	res.Events = batch.Recorded

	return res, nil
}

func (s *Service) mapLine(ctx context.Context, companyID uuid.UUID, kind statement.Kind, line statement.Line, res *Result) (ledger.RecordParams, error) {
	params := ledger.RecordParams{
		CompanyID:   companyID,
		EventDate:   line.Date,
		Amount:      line.Amount,
		Direction:   line.Direction,
		Description: line.Description,
	}

	if !line.Liters.IsZero() {
		params.Description = fmt.Sprintf("%s (%s L)", line.Description, line.Liters.String())
	}

	if line.Plate != "" {
		v, err := s.vehicles.VehicleByPlate(ctx, companyID, line.Plate)
		switch {
		case errors.Is(err, fleet.ErrNotFound):
			if !slices.Contains(res.UnknownPlates, line.Plate) {
				res.UnknownPlates = append(res.UnknownPlates, line.Plate)
			}
		case err != nil:
			return ledger.RecordParams{}, fmt.Errorf("resolve plate %q: %w", line.Plate, err)
		default:
			params.VehicleID = &v.ID
		}
	}

	category, err := s.categories.Suggest(ctx, companyID, line.Description)
	if err != nil {
		return ledger.RecordParams{}, fmt.Errorf("suggest category: %w", err)
	}

	if !category.Valid() {
		category = defaultCategory(kind, line.Direction)
	}

	params.Category = category
	params.Type = eventType(category, line.Direction)

	return params, nil
}

func defaultCategory(kind statement.Kind, dir ledger.Direction) ledger.Category {
	switch {
	case kind == statement.KindFuelCard:
		return ledger.CategoryFuel
	case dir == ledger.DirectionIn:
		return ledger.CategoryRevenue
	default:
		return ledger.CategoryOther
	}
}

// eventType picks the event type implied by a category. Money coming back
// under an expense category (refunds) is booked as an adjustment.
func eventType(category ledger.Category, dir ledger.Direction) ledger.Type {
	if dir == ledger.DirectionIn {
		if category == ledger.CategoryRevenue {
			return ledger.TypeCustomerPayment
		}

		return ledger.TypeAdjustment
	}

	switch category {
	case ledger.CategoryFuel:
		return ledger.TypeFuelPurchase
	case ledger.CategoryMaintenance:
		return ledger.TypeMaintenanceExpense
	case ledger.CategoryInventory:
		return ledger.TypeInventoryPurchase
	case ledger.CategoryPayroll:
		return ledger.TypePayroll
	case ledger.CategoryCostOfSales:
		return ledger.TypeSupplierPayment
	default:
		return ledger.TypeOperatingExpense
	}
}
