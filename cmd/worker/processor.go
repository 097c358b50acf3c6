package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/cambermillbooks/order-service/internal/aws"
	"github.com/cambermillbooks/order-service/internal/notify"
)

// Transport performs the final handoff of a rendered email to a mail
// provider. The real provider is an external collaborator; the default
// transport simulates delivery.
type Transport interface {
	Deliver(ctx context.Context, job notify.Job) error
}

// LogTransport writes the email to the log and reports success. Swapped for a
// real provider adapter in production.
type LogTransport struct {
	Log *slog.Logger
}

func (t *LogTransport) Deliver(ctx context.Context, job notify.Job) error {
	t.Log.Info("delivering email",
		"order_id", job.OrderID, "kind", job.Kind, "to", job.To,
		"subject", job.Email.Subject, "correlation_id", job.CorrelationID)
	return nil
}

// Processor consumes email jobs from the notification queue.
type Processor struct {
	transport Transport
	metrics   aws.Metrics
	log       *slog.Logger
}

// NewProcessor wires a processor; metrics may be nil.
func NewProcessor(transport Transport, metrics aws.Metrics, log *slog.Logger) *Processor {
	if metrics == nil {
		metrics = aws.NopMetrics{}
	}
	return &Processor{transport: transport, metrics: metrics, log: log}
}

// Handle processes an SQS batch. A delivery failure returns an error so the
// runtime retries the message and eventually parks it on the DLQ; order state
// is unaffected either way.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.log.Error("email delivery failed", "err", err)
			p.metrics.Count(ctx, "EmailsFailed", 1)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var job notify.Job
	if err := json.Unmarshal([]byte(rec.Body), &job); err != nil {
		return fmt.Errorf("invalid email job body: %w", err)
	}

	p.log.Info("email job received", "order_id", job.OrderID, "kind", job.Kind, "correlation_id", job.CorrelationID)

	if err := p.transport.Deliver(ctx, job); err != nil {
		return fmt.Errorf("deliver %s for order %s: %w", job.Kind, job.OrderID, err)
	}

	p.metrics.Count(ctx, "EmailsDelivered", 1)
	return nil
}
