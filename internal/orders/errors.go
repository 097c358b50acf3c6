package orders

import (
	"errors"
	"strings"
)

var (
	// ErrOrderNotFound is returned when a lifecycle operation references an unknown ID.
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateOrder is returned by Store.Create on an ID collision; the caller
	// should regenerate the ID and retry.
	ErrDuplicateOrder = errors.New("order id already exists")
	// ErrInvalidTransition is wrapped with the specific unmet precondition.
	ErrInvalidTransition = errors.New("illegal transition")
)

// ValidationError carries every violation found in a checkout request, not just
// the first, so the customer can fix all issues in one round trip.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid order: " + strings.Join(e.Violations, "; ")
}
