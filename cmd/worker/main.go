package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/cambermillbooks/order-service/internal/aws"
	"github.com/cambermillbooks/order-service/internal/logging"
)

func main() {
	logger := logging.Init("mail-worker", "")

	var metrics aws.Metrics = aws.NopMetrics{}
	if ns := os.Getenv("METRICS_NAMESPACE"); ns != "" {
		clients, err := aws.NewClients(context.Background())
		if err != nil {
			log.Fatalf("failed to init aws clients: %v", err)
		}
		metrics = aws.NewCloudWatchMetrics(clients.CloudWatch, ns)
	}

	p := NewProcessor(&LogTransport{Log: logger}, metrics, logger)

	// RUN_LOCAL simulates a single queue event for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"order_id":"CMB-LOCAL1","kind":"orderConfirmation","to":"dev@example.com","email":{"subject":"test","html":"<p>test</p>","text":"test"}}`
		}
		event := events.SQSEvent{Records: []events.SQSMessage{{Body: body}}}
		if err := p.Handle(context.Background(), event); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(p.Handle)
}
