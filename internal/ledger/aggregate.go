package ledger

import (
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelThreshold is the event count above which Summarize folds in shards.
const DefaultParallelThreshold = 50_000

// Summary is a derived view over a set of events. It is never stored as a source of truth.
type Summary struct {
	TotalIncome         int64              `json:"total_income"`
	TotalExpenses       int64              `json:"total_expenses"`
	NetCashflow         int64              `json:"net_cashflow"`
	Invoiced            int64              `json:"invoiced"`
	PaymentsReceived    int64              `json:"payments_received"`
	AccountsReceivable  int64              `json:"accounts_receivable"`
	FuelExpenses        int64              `json:"fuel_expenses"`
	MaintenanceExpenses int64              `json:"maintenance_expenses"`
	ExpensesByCategory  map[Category]int64 `json:"expenses_by_category"`
	IncomeByCategory    map[Category]int64 `json:"income_by_category"`
	EventCount          int                `json:"event_count"`
}

func newSummary() Summary {
	return Summary{
		ExpensesByCategory: make(map[Category]int64),
		IncomeByCategory:   make(map[Category]int64),
	}
}

func (s *Summary) add(e *Event) {
	s.EventCount++

	switch e.Direction {
	case DirectionIn:
		s.TotalIncome += e.Amount
		s.IncomeByCategory[e.Category] += e.Amount
	case DirectionOut:
		s.TotalExpenses += e.Amount
		s.ExpensesByCategory[e.Category] += e.Amount
	}

	switch e.Type {
	case TypeInvoiceIssued:
		s.Invoiced += e.Amount
	case TypeCustomerPayment:
		s.PaymentsReceived += e.Amount
	}
}

// merge folds other into s. Every field is a sum, so merge order does not matter.
func (s *Summary) merge(other Summary) {
	s.EventCount += other.EventCount
	s.TotalIncome += other.TotalIncome
	s.TotalExpenses += other.TotalExpenses
	s.Invoiced += other.Invoiced
	s.PaymentsReceived += other.PaymentsReceived

	for c, v := range other.IncomeByCategory {
		s.IncomeByCategory[c] += v
	}

	for c, v := range other.ExpensesByCategory {
		s.ExpensesByCategory[c] += v
	}
}

func (s *Summary) finish() {
	s.NetCashflow = s.TotalIncome - s.TotalExpenses
	s.AccountsReceivable = s.Invoiced - s.PaymentsReceived
	s.FuelExpenses = s.ExpensesByCategory[CategoryFuel]
	s.MaintenanceExpenses = s.ExpensesByCategory[CategoryMaintenance]
}

// Aggregator folds events into summaries and balances.
type Aggregator struct {
	parallelThreshold int
	shards            int
}

// NewAggregator returns an Aggregator that splits inputs larger than
// parallelThreshold into shards folded concurrently. A threshold <= 0 disables sharding.
func NewAggregator(parallelThreshold, shards int) *Aggregator {
	if shards < 1 {
		shards = 1
	}

	return &Aggregator{parallelThreshold: parallelThreshold, shards: shards}
}

// Summarize validates and folds events for companyID, optionally restricted to window.
// Reversal events are summed like any other event, so a reversal nets out the event it cancels.
func (a *Aggregator) Summarize(events []Event, companyID uuid.UUID, window *DateRange) (Summary, error) {
	if a.parallelThreshold <= 0 || len(events) <= a.parallelThreshold || a.shards == 1 {
		return summarizeRange(events, companyID, window)
	}

	size := (len(events) + a.shards - 1) / a.shards
	partials := make([]Summary, a.shards)

	var g errgroup.Group

	for i := range a.shards {
		lo := i * size
		if lo >= len(events) {
			partials[i] = newSummary()
			continue
		}

		hi := min(lo+size, len(events))

		g.Go(func() error {
			s, err := fold(events[lo:hi], companyID, window)
			partials[i] = s

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	out := newSummary()
	for _, p := range partials {
		out.merge(p)
	}

	out.finish()

	return out, nil
}

func summarizeRange(events []Event, companyID uuid.UUID, window *DateRange) (Summary, error) {
	s, err := fold(events, companyID, window)
	if err != nil {
		return Summary{}, err
	}

	s.finish()

	return s, nil
}

func fold(events []Event, companyID uuid.UUID, window *DateRange) (Summary, error) {
	s := newSummary()

	for i := range events {
		e := &events[i]
		if err := checkScope(e, companyID); err != nil {
			return Summary{}, err
		}

		if window != nil && !window.Contains(e.EventDate) {
			continue
		}

		s.add(e)
	}

	return s, nil
}

// ClientBalance is what a client was invoiced, what they paid, and what they still owe.
type ClientBalance struct {
	Invoiced int64 `json:"invoiced"`
	Paid     int64 `json:"paid"`
	Balance  int64 `json:"balance"`
}

// ClientBalances groups invoices and customer payments by client.
// Clients without any invoice or payment are absent from the result.
func (a *Aggregator) ClientBalances(events []Event, companyID uuid.UUID) (map[uuid.UUID]ClientBalance, error) {
	for i := range events {
		if err := checkScope(&events[i], companyID); err != nil {
			return nil, err
		}
	}

	types := typesByID(events)
	balances := make(map[uuid.UUID]ClientBalance)

	for i := range events {
		e := &events[i]
		if e.ClientID == nil {
			continue
		}

		typ, amount := entityEffect(e, types)

		switch typ {
		case TypeInvoiceIssued:
			b := balances[*e.ClientID]
			b.Invoiced += amount
			b.Balance = b.Invoiced - b.Paid
			balances[*e.ClientID] = b
		case TypeCustomerPayment:
			b := balances[*e.ClientID]
			b.Paid += amount
			b.Balance = b.Invoiced - b.Paid
			balances[*e.ClientID] = b
		}
	}

	return balances, nil
}

func typesByID(events []Event) map[uuid.UUID]Type {
	types := make(map[uuid.UUID]Type, len(events))
	for i := range events {
		types[events[i].ID] = events[i].Type
	}

	return types
}

// entityEffect returns the type an event counts under in per-client and
// per-invoice views and its signed amount there. A reversal counts negatively
// under the type of the event it cancels; one whose original is not in the
// input counts nowhere.
func entityEffect(e *Event, types map[uuid.UUID]Type) (Type, int64) {
	if e.ReversalOf == nil {
		return e.Type, e.Amount
	}

	orig, ok := types[*e.ReversalOf]
	if !ok {
		return TypeReversal, 0
	}

	return orig, -e.Amount
}

// InvoiceStatus reports how much of an invoice has been paid.
type InvoiceStatus struct {
	InvoiceID   uuid.UUID `json:"invoice_id"`
	Invoiced    int64     `json:"invoiced"`
	Paid        int64     `json:"paid"`
	Outstanding int64     `json:"outstanding"`
	IsPaid      bool      `json:"is_paid"`
}

// InvoicePaymentStatus sums the issued and paid amounts tagged with invoiceID, net of reversals.
// Amounts are integer cents, so IsPaid is an exact comparison.
func (a *Aggregator) InvoicePaymentStatus(events []Event, invoiceID uuid.UUID) (InvoiceStatus, error) {
	for i := range events {
		if err := Validate(&events[i]); err != nil {
			return InvoiceStatus{}, err
		}
	}

	status := InvoiceStatus{InvoiceID: invoiceID}
	types := typesByID(events)
	seen := false

	for i := range events {
		e := &events[i]
		if e.InvoiceID == nil || *e.InvoiceID != invoiceID {
			continue
		}

		seen = true

		typ, amount := entityEffect(e, types)

		switch typ {
		case TypeInvoiceIssued:
			status.Invoiced += amount
		case TypeCustomerPayment:
			status.Paid += amount
		}
	}

	if !seen {
		return InvoiceStatus{}, ErrUnknownInvoice
	}

	status.Outstanding = status.Invoiced - status.Paid
	status.IsPaid = status.Outstanding <= 0

	return status, nil
}
