package order

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPlaced     Status = "PLACED"
	StatusPaid       Status = "PAID"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var ErrInvalidStatus = errors.New("invalid order status")

// transitions is the total legal-transition table. Terminal states map to an
// empty set.
var transitions = map[Status][]Status{
	StatusPlaced:     {StatusPaid, StatusCancelled},
	StatusPaid:       {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusCompleted},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// ParseStatus converts a raw string to a Status.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPlaced, StatusPaid, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// Statuses returns every lifecycle state in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusPlaced,
		StatusPaid,
		StatusProcessing,
		StatusShipped,
		StatusCompleted,
		StatusCancelled,
	}
}

// NextStatuses returns the set of states s may legally transition to.
func (s Status) NextStatuses() []Status {
	next := make([]Status, len(transitions[s]))
	copy(next, transitions[s])

	return next
}

// CanTransitionTo reports whether the transition s -> next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Cancellable reports whether an order in state s may still be cancelled.
func (s Status) Cancellable() bool {
	return s.CanTransitionTo(StatusCancelled)
}
