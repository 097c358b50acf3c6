package validation

// CartLineRequest is one line of the incoming cart; prices are resolved
// against the catalog server-side, never trusted from the client.
type CartLineRequest struct {
	BookID   string `json:"book_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// AddressRequest mirrors the customer's postal address form.
type AddressRequest struct {
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// CustomerRequest is the customer record collected at checkout.
type CustomerRequest struct {
	FirstName string         `json:"first_name" validate:"required"`
	LastName  string         `json:"last_name" validate:"required"`
	Email     string         `json:"email" validate:"required,email"`
	Phone     string         `json:"phone,omitempty"`
	Address   AddressRequest `json:"address" validate:"required"`
}

// CheckoutRequest is the payload for POST /orders.
type CheckoutRequest struct {
	Customer      CustomerRequest   `json:"customer" validate:"required"`
	Items         []CartLineRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=stripe paypal bank_transfer"`
}

// PaymentWebhookRequest is the gateway callback body. Authenticity checks
// (webhook signatures) happen upstream of this core.
type PaymentWebhookRequest struct {
	ExternalRef string `json:"external_ref" validate:"required"`
}

// FulfilmentRequest covers dispatch/ship operations.
type FulfilmentRequest struct {
	TrackingNumber string `json:"tracking_number,omitempty"`
}

// CancelRequest carries the cancellation reason recorded on the order.
type CancelRequest struct {
	Reason string `json:"reason" validate:"required"`
}
