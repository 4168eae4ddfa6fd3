package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrMalformedEvent is returned when an event is missing a required field or carries an unknown value.
	ErrMalformedEvent = errors.New("ledger: malformed event")
	// ErrCrossTenant is returned when an event belongs to a different company than the one requested.
	ErrCrossTenant = errors.New("ledger: event belongs to another company")
	// ErrNotFound is returned when an event does not exist for the company.
	ErrNotFound = errors.New("ledger: event not found")
	// ErrAlreadyReversed is returned when reversing an event that was already reversed, or a reversal itself.
	ErrAlreadyReversed = errors.New("ledger: event already reversed")
	// ErrUnknownInvoice is returned when no event references the requested invoice.
	ErrUnknownInvoice = errors.New("ledger: no events for invoice")
)

// EventError identifies the event that made an aggregation fail.
type EventError struct {
	EventID uuid.UUID
	Detail  string
	Err     error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("%s: event %s: %s", e.Err, e.EventID, e.Detail)
}

func (e *EventError) Unwrap() error {
	return e.Err
}

func malformed(id uuid.UUID, format string, args ...any) error {
	return &EventError{EventID: id, Detail: fmt.Sprintf(format, args...), Err: ErrMalformedEvent}
}
