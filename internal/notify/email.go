// Package notify renders and dispatches the lifecycle emails of an order.
package notify

// Kind identifies a lifecycle email.
type Kind string

const (
	KindOrderConfirmation    Kind = "orderConfirmation"
	KindPaymentConfirmation  Kind = "paymentConfirmation"
	KindDispatchConfirmation Kind = "dispatchConfirmation"
	KindShippingConfirmation Kind = "shippingConfirmation"
	KindDeliveryConfirmation Kind = "deliveryConfirmation"
)

// Kinds lists every lifecycle email in transition order.
var Kinds = []Kind{
	KindOrderConfirmation,
	KindPaymentConfirmation,
	KindDispatchConfirmation,
	KindShippingConfirmation,
	KindDeliveryConfirmation,
}

// Email is a fully rendered message. Text carries the same facts as HTML for
// clients that cannot render markup; that parity is a correctness requirement.
type Email struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}
