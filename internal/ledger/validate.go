package ledger

import (
	"github.com/google/uuid"
)

// Validate checks that e carries every required field with a known value.
func Validate(e *Event) error {
	if e.ID == uuid.Nil {
		return malformed(e.ID, "missing id")
	}

	if e.CompanyID == uuid.Nil {
		return malformed(e.ID, "missing company id")
	}

	if e.EventDate.IsZero() {
		return malformed(e.ID, "missing event date")
	}

	if e.Amount <= 0 {
		return malformed(e.ID, "amount must be positive, got %d", e.Amount)
	}

	if !e.Direction.Valid() {
		return malformed(e.ID, "unknown direction %q", e.Direction)
	}

	if !e.Category.Valid() {
		return malformed(e.ID, "unknown category %q", e.Category)
	}

	if !e.Type.Valid() {
		return malformed(e.ID, "unknown type %q", e.Type)
	}

	if e.Type == TypeReversal && e.ReversalOf == nil {
		return malformed(e.ID, "reversal without reversed event")
	}

	if e.ReversalOf != nil && *e.ReversalOf == e.ID {
		return malformed(e.ID, "event reverses itself")
	}

	return nil
}

// checkScope validates e and ensures it belongs to companyID.
func checkScope(e *Event, companyID uuid.UUID) error {
	if err := Validate(e); err != nil {
		return err
	}

	if e.CompanyID != companyID {
		return &EventError{
			EventID: e.ID,
			Detail:  "expected company " + companyID.String() + ", got " + e.CompanyID.String(),
			Err:     ErrCrossTenant,
		}
	}

	return nil
}

// CheckScope validates every event and ensures all of them belong to companyID.
func CheckScope(events []Event, companyID uuid.UUID) error {
	for i := range events {
		if err := checkScope(&events[i], companyID); err != nil {
			return err
		}
	}

	return nil
}
