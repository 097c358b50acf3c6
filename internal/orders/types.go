package orders

import (
	"fmt"
	"time"
)

// Address is the customer's postal address. Line2 is optional.
type Address struct {
	Line1      string `json:"line1" dynamodbav:"line1"`
	Line2      string `json:"line2,omitempty" dynamodbav:"line2,omitempty"`
	City       string `json:"city" dynamodbav:"city"`
	Region     string `json:"region,omitempty" dynamodbav:"region,omitempty"`
	PostalCode string `json:"postal_code" dynamodbav:"postal_code"`
	Country    string `json:"country" dynamodbav:"country"`
}

// Customer is snapshotted onto the order at creation and never mutated
// afterwards; a change of details means a new order.
type Customer struct {
	FirstName string  `json:"first_name" dynamodbav:"first_name"`
	LastName  string  `json:"last_name" dynamodbav:"last_name"`
	Email     string  `json:"email" dynamodbav:"email"`
	Phone     string  `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	Address   Address `json:"address" dynamodbav:"address"`
}

// FullName joins first and last name for display.
func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Item is a line item carrying a denormalized snapshot of the catalog entry
// at order time, so later catalog edits never alter historical orders.
type Item struct {
	BookID         string `json:"book_id" dynamodbav:"book_id"`
	Title          string `json:"title" dynamodbav:"title"`
	Author         string `json:"author,omitempty" dynamodbav:"author,omitempty"`
	Quantity       int    `json:"quantity" dynamodbav:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents" dynamodbav:"unit_price_cents"`
}

// LineTotalCents is quantity times unit price.
func (i Item) LineTotalCents() int64 {
	return int64(i.Quantity) * i.UnitPriceCents
}

// Notifications records which lifecycle emails have been sent for an order.
// Each flag flips to true at most once and never reverts.
type Notifications struct {
	OrderConfirmation    bool `json:"order_confirmation" dynamodbav:"order_confirmation"`
	PaymentConfirmation  bool `json:"payment_confirmation" dynamodbav:"payment_confirmation"`
	DispatchConfirmation bool `json:"dispatch_confirmation" dynamodbav:"dispatch_confirmation"`
	ShippingConfirmation bool `json:"shipping_confirmation" dynamodbav:"shipping_confirmation"`
	DeliveryConfirmation bool `json:"delivery_confirmation" dynamodbav:"delivery_confirmation"`
}

// Order is the central aggregate persisted by the store.
type Order struct {
	ID                string        `json:"order_id" dynamodbav:"order_id"` // PK
	Customer          Customer      `json:"customer" dynamodbav:"customer"`
	Items             []Item        `json:"items" dynamodbav:"items"`
	SubtotalCents     int64         `json:"subtotal_cents" dynamodbav:"subtotal_cents"`
	ShippingCents     int64         `json:"shipping_cents" dynamodbav:"shipping_cents"`
	TotalCents        int64         `json:"total_cents" dynamodbav:"total_cents"`
	Status            Status        `json:"status" dynamodbav:"status"`
	PaymentStatus     PaymentStatus `json:"payment_status" dynamodbav:"payment_status"`
	PaymentMethod     PaymentMethod `json:"payment_method" dynamodbav:"payment_method"`
	PaymentIntentID   string        `json:"payment_intent_id,omitempty" dynamodbav:"payment_intent_id,omitempty"`
	PayPalOrderID     string        `json:"paypal_order_id,omitempty" dynamodbav:"paypal_order_id,omitempty"`
	TrackingNumber    string        `json:"tracking_number,omitempty" dynamodbav:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time    `json:"estimated_delivery,omitempty" dynamodbav:"estimated_delivery,omitempty"`
	Notes             string        `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
	Notifications     Notifications `json:"email_notifications" dynamodbav:"email_notifications"`
	CreatedAt         time.Time     `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" dynamodbav:"updated_at"`
	Version           int64         `json:"version" dynamodbav:"version"` // optimistic concurrency token
}

// Clone returns a deep copy so store snapshots never alias the canonical record.
func (o Order) Clone() Order {
	cp := o
	cp.Items = make([]Item, len(o.Items))
	copy(cp.Items, o.Items)
	if o.EstimatedDelivery != nil {
		t := *o.EstimatedDelivery
		cp.EstimatedDelivery = &t
	}
	return cp
}

// FormatCents renders a cents amount as a 2-decimal string, e.g. 1250 -> "12.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
