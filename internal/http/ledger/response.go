package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

type eventResponse struct {
	ID          uuid.UUID        `json:"id"`
	EventDate   string           `json:"event_date"`
	CreatedAt   time.Time        `json:"created_at"`
	Amount      int64            `json:"amount"`
	Direction   ledger.Direction `json:"direction"`
	Category    ledger.Category  `json:"category"`
	Type        ledger.Type      `json:"type"`
	Description string           `json:"description"`
	InvoiceID   *uuid.UUID       `json:"invoice_id,omitempty"`
	ClientID    *uuid.UUID       `json:"client_id,omitempty"`
	SupplierID  *uuid.UUID       `json:"supplier_id,omitempty"`
	VehicleID   *uuid.UUID       `json:"vehicle_id,omitempty"`
	DriverID    *uuid.UUID       `json:"driver_id,omitempty"`
	TripID      *uuid.UUID       `json:"trip_id,omitempty"`
	ReversalOf  *uuid.UUID       `json:"reversal_of,omitempty"`
}

func toResponse(e *ledger.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		EventDate:   e.EventDate.Format(time.DateOnly),
		CreatedAt:   e.CreatedAt,
		Amount:      e.Amount,
		Direction:   e.Direction,
		Category:    e.Category,
		Type:        e.Type,
		Description: e.Description,
		InvoiceID:   e.InvoiceID,
		ClientID:    e.ClientID,
		SupplierID:  e.SupplierID,
		VehicleID:   e.VehicleID,
		DriverID:    e.DriverID,
		TripID:      e.TripID,
		ReversalOf:  e.ReversalOf,
	}
}

func toResponseList(events []ledger.Event) []eventResponse {
	resp := make([]eventResponse, len(events))
	for i := range events {
		resp[i] = toResponse(&events[i])
	}

	return resp
}

type clientBalanceResponse struct {
	ClientID uuid.UUID `json:"client_id"`
	ledger.ClientBalance
}
