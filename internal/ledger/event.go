package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Direction tells whether money enters or leaves the company. Amounts are always positive.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Opposite returns the direction that cancels d.
func (d Direction) Opposite() Direction {
	if d == DirectionIn {
		return DirectionOut
	}

	return DirectionIn
}

// Category classifies the economic nature of an event.
type Category string

const (
	CategoryRevenue          Category = "revenue"
	CategoryCostOfSales      Category = "cost_of_sales"
	CategoryOperatingExpense Category = "operating_expense"
	CategoryFuel             Category = "fuel"
	CategoryMaintenance      Category = "maintenance"
	CategoryInventory        Category = "inventory"
	CategoryPayroll          Category = "payroll"
	CategoryAdmin            Category = "admin"
	CategoryOther            Category = "other"
)

var categories = map[Category]struct{}{
	CategoryRevenue:          {},
	CategoryCostOfSales:      {},
	CategoryOperatingExpense: {},
	CategoryFuel:             {},
	CategoryMaintenance:      {},
	CategoryInventory:        {},
	CategoryPayroll:          {},
	CategoryAdmin:            {},
	CategoryOther:            {},
}

func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// Type is the source action that produced an event.
type Type string

const (
	TypeInvoiceIssued      Type = "invoice_issued"
	TypeCustomerPayment    Type = "customer_payment"
	TypeSupplierPayment    Type = "supplier_payment"
	TypeOperatingExpense   Type = "operating_expense"
	TypeFuelPurchase       Type = "fuel_purchase"
	TypeMaintenanceExpense Type = "maintenance_expense"
	TypeInventoryPurchase  Type = "inventory_purchase"
	TypePayroll            Type = "payroll"
	TypeAdjustment         Type = "adjustment"
	TypeReversal           Type = "reversal"
)

var types = map[Type]struct{}{
	TypeInvoiceIssued:      {},
	TypeCustomerPayment:    {},
	TypeSupplierPayment:    {},
	TypeOperatingExpense:   {},
	TypeFuelPurchase:       {},
	TypeMaintenanceExpense: {},
	TypeInventoryPurchase:  {},
	TypePayroll:            {},
	TypeAdjustment:         {},
	TypeReversal:           {},
}

func (t Type) Valid() bool {
	_, ok := types[t]
	return ok
}

// Event is an immutable financial fact. Corrections are new events pointing
// at the corrected one through ReversalOf; stored events are never edited.
type Event struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID
	EventDate   time.Time
	CreatedAt   time.Time
	Amount      int64 // Amount in cents
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
	ReversalOf *uuid.UUID
}

// IsReversal reports whether e cancels another event.
func (e *Event) IsReversal() bool {
	return e.ReversalOf != nil
}

// SortNewestFirst orders events by event date descending, then creation time descending.
func SortNewestFirst(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].EventDate.Equal(events[j].EventDate) {
			return events[i].EventDate.After(events[j].EventDate)
		}

		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
}

// DateRange is an inclusive calendar-date window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls on a calendar day within the range, both ends included.
func (r DateRange) Contains(t time.Time) bool {
	day := dateOnly(t)

	return !day.Before(dateOnly(r.Start)) && !day.After(dateOnly(r.End))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
