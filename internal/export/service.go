package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

type Ledger interface {
	List(ctx context.Context, filter ledger.ListFilter) ([]ledger.Event, error)
	Summary(ctx context.Context, companyID uuid.UUID, window *ledger.DateRange) (ledger.Summary, error)
}

// Statement is a company's ledger summary plus the events behind it, newest first.
type Statement struct {
	CompanyID   uuid.UUID
	Window      *ledger.DateRange
	Summary     ledger.Summary
	Events      []ledger.Event
	GeneratedAt time.Time
}

type Service struct {
	ledger Ledger
	now    func() time.Time
}

func NewService(l Ledger) *Service {
	return &Service{ledger: l, now: time.Now}
}

// Build collects the statement for companyID. A nil window covers the whole ledger.
func (s *Service) Build(ctx context.Context, companyID uuid.UUID, window *ledger.DateRange) (*Statement, error) {
	summary, err := s.ledger.Summary(ctx, companyID, window)
	if err != nil {
		return nil, fmt.Errorf("summarizing ledger: %w", err)
	}

	filter := ledger.ListFilter{CompanyID: companyID}
	if window != nil {
		filter.StartDate = &window.Start
		filter.EndDate = &window.End
	}

	events, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	return &Statement{
		CompanyID:   companyID,
		Window:      window,
		Summary:     summary,
		Events:      events,
		GeneratedAt: s.now(),
	}, nil
}

// TextBody renders the statement as plain text suitable for an email body.
func TextBody(st *Statement) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Period: %s\n", periodLabel(st.Window)))
	sb.WriteString(fmt.Sprintf("Income: %s €\n", formatCents(st.Summary.TotalIncome)))
	sb.WriteString(fmt.Sprintf("Expenses: %s €\n", formatCents(st.Summary.TotalExpenses)))
	sb.WriteString(fmt.Sprintf("Net cashflow: %s €\n", formatCents(st.Summary.NetCashflow)))
	sb.WriteString(fmt.Sprintf("Accounts receivable: %s €\n", formatCents(st.Summary.AccountsReceivable)))
	sb.WriteString("\n")

	for _, e := range st.Events {
		sb.WriteString(fmt.Sprintf("* %s | %s | %s | %s €\n",
			e.EventDate.Format(time.DateOnly), e.Category, e.Description, signedAmount(e)))
	}

	return sb.String()
}

func periodLabel(window *ledger.DateRange) string {
	if window == nil {
		return "all time"
	}

	return window.Start.Format(time.DateOnly) + " to " + window.End.Format(time.DateOnly)
}

func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func signedAmount(e ledger.Event) string {
	if e.Direction == ledger.DirectionOut {
		return "-" + formatCents(e.Amount)
	}

	return "+" + formatCents(e.Amount)
}
