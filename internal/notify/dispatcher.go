package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/cambermillbooks/order-service/internal/aws"
)

// Job is the delivery unit handed to the mail worker: a rendered email plus
// routing metadata.
type Job struct {
	OrderID       string `json:"order_id"`
	Kind          Kind   `json:"kind"`
	To            string `json:"to"`
	Email         Email  `json:"email"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Dispatcher accepts a rendered email for delivery. A nil return means the
// message was accepted for delivery, which is the signal the lifecycle
// controller needs before flipping a notification flag. A non-nil return
// leaves the flag untouched so an external retry can resend.
type Dispatcher interface {
	Send(ctx context.Context, job Job) error
}

// SQSDispatcher enqueues jobs onto the notification queue; the worker owns
// the actual handoff to the mail transport.
type SQSDispatcher struct {
	client   aws.SQSAPI
	queueURL string
}

// NewSQSDispatcher binds a dispatcher to a queue URL.
func NewSQSDispatcher(client aws.SQSAPI, queueURL string) *SQSDispatcher {
	return &SQSDispatcher{client: client, queueURL: queueURL}
}

func (d *SQSDispatcher) Send(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}
	bodyStr := string(body)

	input := &sqs.SendMessageInput{
		QueueUrl:    &d.queueURL,
		MessageBody: &bodyStr,
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"order_id": {DataType: awsString("String"), StringValue: &job.OrderID},
			"kind":     {DataType: awsString("String"), StringValue: awsString(string(job.Kind))},
		},
	}
	if job.CorrelationID != "" {
		input.MessageAttributes["correlation_id"] = sqstypes.MessageAttributeValue{
			DataType: awsString("String"), StringValue: &job.CorrelationID,
		}
	}

	if _, err := d.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("send email job: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }

// LogDispatcher records emails to the log instead of a queue; used for local
// runs without AWS and as the simulated transport in development.
type LogDispatcher struct {
	Log *slog.Logger
}

func (d *LogDispatcher) Send(ctx context.Context, job Job) error {
	d.Log.Info("email accepted (log dispatcher)",
		"order_id", job.OrderID, "kind", job.Kind, "to", job.To, "subject", job.Email.Subject)
	return nil
}
