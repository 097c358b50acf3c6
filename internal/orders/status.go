package orders

import "fmt"

// Status is the fulfilment axis of an order's lifecycle.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusDispatched Status = "DISPATCHED"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// PaymentStatus is tracked independently of Status but constrains
// which fulfilment transitions are legal.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// PaymentMethod is stored opaquely; the gateway integration lives outside this core.
type PaymentMethod string

const (
	PaymentMethodStripe       PaymentMethod = "stripe"
	PaymentMethodPayPal       PaymentMethod = "paypal"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// statusTransitions is the single source of truth for legal fulfilment
// transitions. Ship and deliver may skip intermediate steps (a small shop
// sometimes marks an order shipped without a separate dispatch event), but
// terminal states admit nothing, including cancellation.
var statusTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusDispatched, StatusShipped, StatusCancelled},
	StatusProcessing: {StatusDispatched, StatusShipped, StatusCancelled},
	StatusDispatched: {StatusShipped, StatusDelivered, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:  {PaymentPaid, PaymentFailed},
	PaymentPaid:     {PaymentRefunded},
	PaymentFailed:   {},
	PaymentRefunded: {},
}

// IsTerminal reports whether no further fulfilment transition is possible.
func (s Status) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

func (s Status) String() string { return string(s) }

// CanTransition checks the transition table for from -> to.
func CanTransition(from, to Status) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanTransitionPayment checks the payment transition table for from -> to.
func CanTransitionPayment(from, to PaymentStatus) bool {
	for _, allowed := range paymentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionTo mutates the status after consulting the table. Every lifecycle
// operation goes through here so no operation can silently allow an illegal move.
func (o *Order) TransitionTo(to Status) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: cannot move order from %s to %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	return nil
}

// TransitionPaymentTo mutates the payment status after consulting its table.
func (o *Order) TransitionPaymentTo(to PaymentStatus) error {
	if !CanTransitionPayment(o.PaymentStatus, to) {
		return fmt.Errorf("%w: cannot move payment from %s to %s", ErrInvalidTransition, o.PaymentStatus, to)
	}
	o.PaymentStatus = to
	return nil
}

// ValidPaymentMethod reports whether m is one of the supported methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodStripe, PaymentMethodPayPal, PaymentMethodBankTransfer:
		return true
	}
	return false
}
