package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/cambermillbooks/order-service/internal/orders"
)

func sampleOrder() orders.Order {
	eta := time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC)
	return orders.Order{
		ID: "CMB-TEST1",
		Customer: orders.Customer{
			FirstName: "Ada",
			LastName:  "Byron",
			Email:     "ada@example.com",
		},
		Items: []orders.Item{
			{BookID: "b1", Title: "The Riverbank Almanac", Author: "J. Heron", Quantity: 2, UnitPriceCents: 1499},
			{BookID: "b2", Title: "Mill Lane Baking", Author: "R. Crumb", Quantity: 1, UnitPriceCents: 2250},
		},
		SubtotalCents:     5248,
		ShippingCents:     0,
		TotalCents:        5248,
		Status:            orders.StatusDispatched,
		PaymentStatus:     orders.PaymentPaid,
		PaymentMethod:     orders.PaymentMethodStripe,
		TrackingNumber:    "RM123456789GB",
		EstimatedDelivery: &eta,
	}
}

func TestRender_AllKinds(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	o := sampleOrder()

	for _, kind := range Kinds {
		email, err := r.Render(kind, o)
		if err != nil {
			t.Fatalf("render %s: %v", kind, err)
		}
		if !strings.Contains(email.Subject, o.ID) {
			t.Fatalf("%s: subject %q missing order id", kind, email.Subject)
		}
		if email.HTML == "" || email.Text == "" {
			t.Fatalf("%s: empty body (html=%d text=%d)", kind, len(email.HTML), len(email.Text))
		}
		// every fact in the text body must also be in the html body
		for _, fact := range []string{o.ID, "Ada Byron", "The Riverbank Almanac", "52.48"} {
			if !strings.Contains(email.HTML, fact) {
				t.Fatalf("%s: html missing %q", kind, fact)
			}
			if !strings.Contains(email.Text, fact) {
				t.Fatalf("%s: text missing %q", kind, fact)
			}
		}
	}
}

func TestRender_ItemisedSummary(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	email, err := r.Render(KindOrderConfirmation, sampleOrder())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"14.99", // unit price
		"29.98", // line total for qty 2
		"22.50",
		"0.00",  // free shipping
		"52.48", // total
	} {
		if !strings.Contains(email.Text, want) {
			t.Fatalf("text summary missing %q:\n%s", want, email.Text)
		}
		if !strings.Contains(email.HTML, want) {
			t.Fatalf("html summary missing %q", want)
		}
	}
}

func TestRender_PaymentKindNamesMethod(t *testing.T) {
	r, _ := NewRenderer()
	email, err := r.Render(KindPaymentConfirmation, sampleOrder())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(email.Text, "Card (Stripe)") || !strings.Contains(email.HTML, "Card (Stripe)") {
		t.Fatal("payment confirmation should name the payment method")
	}
}

func TestRender_DispatchCarriesTrackingAndETA(t *testing.T) {
	r, _ := NewRenderer()
	o := sampleOrder()

	for _, kind := range []Kind{KindDispatchConfirmation, KindShippingConfirmation} {
		email, err := r.Render(kind, o)
		if err != nil {
			t.Fatalf("render %s: %v", kind, err)
		}
		if !strings.Contains(email.Text, "RM123456789GB") {
			t.Fatalf("%s: text missing tracking number", kind)
		}
		if !strings.Contains(email.Text, "Friday 6 March 2026") {
			t.Fatalf("%s: text missing estimated delivery date:\n%s", kind, email.Text)
		}
	}
}

func TestRender_DispatchWithoutTracking(t *testing.T) {
	r, _ := NewRenderer()
	o := sampleOrder()
	o.TrackingNumber = ""
	o.EstimatedDelivery = nil

	email, err := r.Render(KindDispatchConfirmation, o)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(email.Text, "Tracking") {
		t.Fatalf("tracking block should be omitted when there is no number:\n%s", email.Text)
	}
}

func TestRender_UnknownKind(t *testing.T) {
	r, _ := NewRenderer()
	if _, err := r.Render(Kind("bogus"), sampleOrder()); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
