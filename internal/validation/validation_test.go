package validation

import "testing"

func validCheckout() CheckoutRequest {
	return CheckoutRequest{
		Customer: CustomerRequest{
			FirstName: "Ada",
			LastName:  "Byron",
			Email:     "ada@example.com",
			Address: AddressRequest{
				Line1:      "1 Mill Lane",
				City:       "Camberwell",
				PostalCode: "SE5 8QU",
				Country:    "GB",
			},
		},
		Items: []CartLineRequest{
			{BookID: "b1", Quantity: 2},
			{BookID: "b2", Quantity: 1},
		},
		PaymentMethod: "stripe",
	}
}

func TestCheckoutRequest_Valid(t *testing.T) {
	v := New()
	if err := v.Struct(validCheckout()); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestCheckoutRequest_MissingFields(t *testing.T) {
	v := New()
	req := validCheckout()
	req.Customer.Email = ""
	req.Customer.Address.Country = ""
	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation failure for missing fields")
	}
}

func TestCheckoutRequest_EmptyCart(t *testing.T) {
	v := New()
	req := validCheckout()
	req.Items = nil
	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation failure for empty cart")
	}
}

func TestCheckoutRequest_BadQuantity(t *testing.T) {
	v := New()
	req := validCheckout()
	req.Items[0].Quantity = 0
	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation failure for zero quantity")
	}
}

func TestCheckoutRequest_UnknownPaymentMethod(t *testing.T) {
	v := New()
	req := validCheckout()
	req.PaymentMethod = "cheque"
	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation failure for unknown payment method")
	}
}

func TestCheckoutRequest_DuplicateBookIDs(t *testing.T) {
	v := New()
	req := validCheckout()
	req.Items = []CartLineRequest{
		{BookID: "b1", Quantity: 1},
		{BookID: "b1", Quantity: 2},
	}
	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation failure for duplicate book ids")
	}
}

func TestCancelRequest_RequiresReason(t *testing.T) {
	v := New()
	if err := v.Struct(CancelRequest{}); err == nil {
		t.Fatal("expected validation failure for empty reason")
	}
	if err := v.Struct(CancelRequest{Reason: "out of stock"}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}
