package notify

import (
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/cambermillbooks/order-service/internal/orders"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// itemView is one rendered line item.
type itemView struct {
	Title     string
	Author    string
	Quantity  int
	UnitPrice string
	LineTotal string
}

// emailView is the data handed to the template files. All money fields are
// pre-formatted strings so html and text renderings cannot diverge.
type emailView struct {
	OrderID           string
	CustomerName      string
	Items             []itemView
	Subtotal          string
	Shipping          string
	Total             string
	PaymentMethod     string
	TrackingNumber    string
	EstimatedDelivery string
}

var subjects = map[Kind]string{
	KindOrderConfirmation:    "Your Camber Mill Books order %s",
	KindPaymentConfirmation:  "Payment received for order %s",
	KindDispatchConfirmation: "Your order %s has been dispatched",
	KindShippingConfirmation: "Your order %s is on its way",
	KindDeliveryConfirmation: "Your order %s has been delivered",
}

// templates/<file> holds the body for each kind; html and text variants share
// the same view so every fact appears in both.
var templateFiles = map[Kind]string{
	KindOrderConfirmation:    "order_confirmation",
	KindPaymentConfirmation:  "payment_confirmation",
	KindDispatchConfirmation: "dispatch_confirmation",
	KindShippingConfirmation: "shipping_confirmation",
	KindDeliveryConfirmation: "delivery_confirmation",
}

// Renderer produces emails from order snapshots. Construct once and share;
// it is stateless after parsing.
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// NewRenderer parses the embedded template files.
func NewRenderer() (*Renderer, error) {
	h, err := htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	t, err := texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	return &Renderer{html: h, text: t}, nil
}

// Render maps an order snapshot to a fully rendered email for the given kind.
// Pure function of the snapshot; the order is never mutated.
func (r *Renderer) Render(kind Kind, o orders.Order) (Email, error) {
	base, ok := templateFiles[kind]
	if !ok {
		return Email{}, fmt.Errorf("unknown notification kind %q", kind)
	}

	view := buildView(o)
	var html, text strings.Builder
	if err := r.html.ExecuteTemplate(&html, base+".html.tmpl", view); err != nil {
		return Email{}, fmt.Errorf("render %s html: %w", kind, err)
	}
	if err := r.text.ExecuteTemplate(&text, base+".txt.tmpl", view); err != nil {
		return Email{}, fmt.Errorf("render %s text: %w", kind, err)
	}

	return Email{
		Subject: fmt.Sprintf(subjects[kind], o.ID),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

func buildView(o orders.Order) emailView {
	items := make([]itemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, itemView{
			Title:     it.Title,
			Author:    it.Author,
			Quantity:  it.Quantity,
			UnitPrice: orders.FormatCents(it.UnitPriceCents),
			LineTotal: orders.FormatCents(it.LineTotalCents()),
		})
	}
	view := emailView{
		OrderID:        o.ID,
		CustomerName:   o.Customer.FullName(),
		Items:          items,
		Subtotal:       orders.FormatCents(o.SubtotalCents),
		Shipping:       orders.FormatCents(o.ShippingCents),
		Total:          orders.FormatCents(o.TotalCents),
		PaymentMethod:  paymentMethodLabel(o.PaymentMethod),
		TrackingNumber: o.TrackingNumber,
	}
	if o.EstimatedDelivery != nil {
		view.EstimatedDelivery = o.EstimatedDelivery.Format("Monday 2 January 2006")
	}
	return view
}

func paymentMethodLabel(m orders.PaymentMethod) string {
	switch m {
	case orders.PaymentMethodStripe:
		return "Card (Stripe)"
	case orders.PaymentMethodPayPal:
		return "PayPal"
	case orders.PaymentMethodBankTransfer:
		return "Bank transfer"
	}
	return string(m)
}
