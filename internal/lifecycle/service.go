// Package lifecycle is the controller that moves an order through its
// statuses, enforcing preconditions and firing the matching notification as a
// side effect of each transition.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cambermillbooks/order-service/internal/aws"
	"github.com/cambermillbooks/order-service/internal/catalog"
	"github.com/cambermillbooks/order-service/internal/notify"
	"github.com/cambermillbooks/order-service/internal/orders"
)

// estimatedDeliveryOffset is a fixed policy value, not a carrier estimate.
const estimatedDeliveryOffset = 5 * 24 * time.Hour

// idRetries bounds regeneration after an order-ID collision.
const idRetries = 3

// Config groups the service dependencies.
type Config struct {
	Store      orders.Store
	Catalog    catalog.Catalog
	Renderer   *notify.Renderer
	Dispatcher notify.Dispatcher
	Metrics    aws.Metrics
	Logger     *slog.Logger
}

// Service is the lifecycle controller.
type Service struct {
	store      orders.Store
	catalog    catalog.Catalog
	renderer   *notify.Renderer
	dispatcher notify.Dispatcher
	metrics    aws.Metrics
	log        *slog.Logger
	nowFunc    func() time.Time
	newID      func() string
}

// New wires a Service; Metrics and Logger may be nil.
func New(cfg Config) *Service {
	m := cfg.Metrics
	if m == nil {
		m = aws.NopMetrics{}
	}
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Service{
		store:      cfg.Store,
		catalog:    cfg.Catalog,
		renderer:   cfg.Renderer,
		dispatcher: cfg.Dispatcher,
		metrics:    m,
		log:        l,
		nowFunc:    time.Now,
		newID:      orders.NewOrderID,
	}
}

// CheckoutInput is a cart plus customer record entering the core.
type CheckoutInput struct {
	Lines         []orders.CartLine
	Customer      orders.Customer
	PaymentMethod orders.PaymentMethod
	CorrelationID string
}

// Create validates the input, prices the cart, persists a pending order and
// fires the order-confirmation email. No order is ever partially created: a
// validation failure returns before the store is touched.
func (s *Service) Create(ctx context.Context, in CheckoutInput) (orders.Order, error) {
	violations := orders.ValidateInput(in.Lines, in.Customer, s.catalog)
	if !orders.ValidPaymentMethod(in.PaymentMethod) {
		violations = append(violations, fmt.Sprintf("Unsupported payment method %q", in.PaymentMethod))
	}
	if len(violations) > 0 {
		return orders.Order{}, &orders.ValidationError{Violations: violations}
	}

	items := orders.ResolveItems(in.Lines, s.catalog)
	totals := orders.ComputeTotals(items)
	now := s.nowFunc()

	order := orders.Order{
		Customer:      in.Customer,
		Items:         items,
		SubtotalCents: totals.SubtotalCents,
		ShippingCents: totals.ShippingCents,
		TotalCents:    totals.TotalCents,
		Status:        orders.StatusPending,
		PaymentStatus: orders.PaymentPending,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// IDs are collision-resistant, not collision-proof; regenerate on the
	// store's duplicate check.
	var err error
	for attempt := 0; attempt < idRetries; attempt++ {
		order.ID = s.newID()
		err = s.store.Create(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, orders.ErrDuplicateOrder) {
			return orders.Order{}, err
		}
	}
	if err != nil {
		return orders.Order{}, fmt.Errorf("allocate order id: %w", err)
	}

	s.metrics.Count(ctx, "OrdersCreated", 1)
	s.log.Info("order created", "order_id", order.ID, "total", orders.FormatCents(order.TotalCents))

	return s.sendNotification(ctx, order, notify.KindOrderConfirmation, in.CorrelationID), nil
}

// ConfirmPayment records a successful payment callback: status -> confirmed,
// payment -> paid, and the payment-confirmation email is sent. externalRef is
// the gateway's opaque reference (payment intent or PayPal order ID).
func (s *Service) ConfirmPayment(ctx context.Context, id, externalRef, correlationID string) (orders.Order, error) {
	updated, err := s.store.Update(ctx, id, func(o *orders.Order) error {
		if err := o.TransitionTo(orders.StatusConfirmed); err != nil {
			return err
		}
		if err := o.TransitionPaymentTo(orders.PaymentPaid); err != nil {
			return err
		}
		if o.PaymentMethod == orders.PaymentMethodPayPal {
			o.PayPalOrderID = externalRef
		} else {
			o.PaymentIntentID = externalRef
		}
		return nil
	})
	if err != nil {
		return orders.Order{}, err
	}
	return s.sendNotification(ctx, updated, notify.KindPaymentConfirmation, correlationID), nil
}

// Process moves a paid order into preparation. This step sends no email;
// customers only hear about payment and shipping events.
func (s *Service) Process(ctx context.Context, id string) (orders.Order, error) {
	return s.store.Update(ctx, id, func(o *orders.Order) error {
		if o.PaymentStatus != orders.PaymentPaid {
			return fmt.Errorf("%w: cannot process unpaid order", orders.ErrInvalidTransition)
		}
		return o.TransitionTo(orders.StatusProcessing)
	})
}

// Dispatch marks a paid order as dispatched, stamping tracking details and a
// fixed five-day delivery estimate, then sends the dispatch email.
func (s *Service) Dispatch(ctx context.Context, id, trackingNumber, correlationID string) (orders.Order, error) {
	updated, err := s.store.Update(ctx, id, func(o *orders.Order) error {
		if o.PaymentStatus != orders.PaymentPaid {
			return fmt.Errorf("%w: cannot dispatch unpaid order", orders.ErrInvalidTransition)
		}
		if err := o.TransitionTo(orders.StatusDispatched); err != nil {
			return err
		}
		if trackingNumber != "" {
			o.TrackingNumber = trackingNumber
		}
		eta := s.nowFunc().Add(estimatedDeliveryOffset)
		o.EstimatedDelivery = &eta
		return nil
	})
	if err != nil {
		return orders.Order{}, err
	}
	return s.sendNotification(ctx, updated, notify.KindDispatchConfirmation, correlationID), nil
}

// Ship marks the order shipped and sends the shipping email.
func (s *Service) Ship(ctx context.Context, id, trackingNumber, correlationID string) (orders.Order, error) {
	updated, err := s.store.Update(ctx, id, func(o *orders.Order) error {
		if err := o.TransitionTo(orders.StatusShipped); err != nil {
			return err
		}
		if trackingNumber != "" {
			o.TrackingNumber = trackingNumber
		}
		eta := s.nowFunc().Add(estimatedDeliveryOffset)
		o.EstimatedDelivery = &eta
		return nil
	})
	if err != nil {
		return orders.Order{}, err
	}
	return s.sendNotification(ctx, updated, notify.KindShippingConfirmation, correlationID), nil
}

// Deliver marks the order delivered and sends the delivery email.
func (s *Service) Deliver(ctx context.Context, id, correlationID string) (orders.Order, error) {
	updated, err := s.store.Update(ctx, id, func(o *orders.Order) error {
		return o.TransitionTo(orders.StatusDelivered)
	})
	if err != nil {
		return orders.Order{}, err
	}
	return s.sendNotification(ctx, updated, notify.KindDeliveryConfirmation, correlationID), nil
}

// Cancel marks a non-terminal order cancelled, recording the reason. Orders
// are never physically deleted.
func (s *Service) Cancel(ctx context.Context, id, reason string) (orders.Order, error) {
	return s.store.Update(ctx, id, func(o *orders.Order) error {
		if err := o.TransitionTo(orders.StatusCancelled); err != nil {
			return err
		}
		o.Notes = reason
		return nil
	})
}

// GetOrder returns a snapshot of one order.
func (s *Service) GetOrder(ctx context.Context, id string) (orders.Order, error) {
	return s.store.Get(ctx, id)
}

// GetOrdersByEmail returns snapshots of every order placed with the email.
func (s *Service) GetOrdersByEmail(ctx context.Context, email string) ([]orders.Order, error) {
	return s.store.GetByEmail(ctx, email)
}

// GetAllOrders returns snapshots of every order.
func (s *Service) GetAllOrders(ctx context.Context) ([]orders.Order, error) {
	return s.store.List(ctx)
}

// sendNotification renders and dispatches one lifecycle email, flipping the
// matching flag only after the dispatcher accepts the message. Failures are
// logged and swallowed: the state transition is already durable and must not
// be rolled back, and the flag stays false so an external retry can resend.
// A flag already set means the email went out earlier; nothing is re-sent.
func (s *Service) sendNotification(ctx context.Context, o orders.Order, kind notify.Kind, correlationID string) orders.Order {
	if notificationSent(o, kind) {
		return o
	}
	email, err := s.renderer.Render(kind, o)
	if err != nil {
		s.log.Error("render notification failed", "order_id", o.ID, "kind", kind, "err", err)
		return o
	}
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	job := notify.Job{
		OrderID:       o.ID,
		Kind:          kind,
		To:            o.Customer.Email,
		Email:         email,
		CorrelationID: correlationID,
	}
	if err := s.dispatcher.Send(ctx, job); err != nil {
		s.log.Warn("notification delivery failed", "order_id", o.ID, "kind", kind, "err", err)
		s.metrics.Count(ctx, "NotificationSendFailed", 1)
		return o
	}
	s.metrics.Count(ctx, "NotificationSent", 1)

	updated, err := s.store.Update(ctx, o.ID, func(ord *orders.Order) error {
		markNotificationSent(ord, kind)
		return nil
	})
	if err != nil {
		s.log.Error("mark notification flag failed", "order_id", o.ID, "kind", kind, "err", err)
		return o
	}
	return updated
}

func notificationSent(o orders.Order, kind notify.Kind) bool {
	switch kind {
	case notify.KindOrderConfirmation:
		return o.Notifications.OrderConfirmation
	case notify.KindPaymentConfirmation:
		return o.Notifications.PaymentConfirmation
	case notify.KindDispatchConfirmation:
		return o.Notifications.DispatchConfirmation
	case notify.KindShippingConfirmation:
		return o.Notifications.ShippingConfirmation
	case notify.KindDeliveryConfirmation:
		return o.Notifications.DeliveryConfirmation
	}
	return false
}

func markNotificationSent(o *orders.Order, kind notify.Kind) {
	switch kind {
	case notify.KindOrderConfirmation:
		o.Notifications.OrderConfirmation = true
	case notify.KindPaymentConfirmation:
		o.Notifications.PaymentConfirmation = true
	case notify.KindDispatchConfirmation:
		o.Notifications.DispatchConfirmation = true
	case notify.KindShippingConfirmation:
		o.Notifications.ShippingConfirmation = true
	case notify.KindDeliveryConfirmation:
		o.Notifications.DeliveryConfirmation = true
	}
}
