package orders

import (
	"errors"
	"testing"
)

func TestCanTransition_HappyPath(t *testing.T) {
	chain := []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusDispatched, StatusShipped, StatusDelivered}
	for i := 0; i < len(chain)-1; i++ {
		if !CanTransition(chain[i], chain[i+1]) {
			t.Fatalf("expected %s -> %s to be legal", chain[i], chain[i+1])
		}
	}
}

func TestCanTransition_NoSkippingBackwards(t *testing.T) {
	if CanTransition(StatusShipped, StatusPending) {
		t.Fatal("shipped -> pending must be illegal")
	}
	if CanTransition(StatusDelivered, StatusShipped) {
		t.Fatal("delivered -> shipped must be illegal")
	}
	if CanTransition(StatusPending, StatusDispatched) {
		t.Fatal("pending -> dispatched must be illegal without confirmation")
	}
}

func TestCancel_FromTerminalStates(t *testing.T) {
	for _, s := range []Status{StatusDelivered, StatusCancelled} {
		if CanTransition(s, StatusCancelled) {
			t.Fatalf("cancel from %s must be illegal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusDispatched, StatusShipped} {
		if !CanTransition(s, StatusCancelled) {
			t.Fatalf("cancel from %s must be legal", s)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !StatusDelivered.IsTerminal() || !StatusCancelled.IsTerminal() {
		t.Fatal("delivered and cancelled are terminal")
	}
	if StatusPending.IsTerminal() || StatusShipped.IsTerminal() {
		t.Fatal("pending and shipped are not terminal")
	}
}

func TestTransitionTo_RejectsIllegalMove(t *testing.T) {
	o := Order{Status: StatusPending}
	err := o.TransitionTo(StatusShipped)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if o.Status != StatusPending {
		t.Fatalf("status must be unchanged after rejected transition, got %s", o.Status)
	}
}

func TestTransitionPaymentTo(t *testing.T) {
	o := Order{PaymentStatus: PaymentPending}
	if err := o.TransitionPaymentTo(PaymentPaid); err != nil {
		t.Fatalf("pending -> paid: %v", err)
	}
	if err := o.TransitionPaymentTo(PaymentRefunded); err != nil {
		t.Fatalf("paid -> refunded: %v", err)
	}
	if err := o.TransitionPaymentTo(PaymentPaid); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("refunded -> paid must be illegal, got %v", err)
	}
}
