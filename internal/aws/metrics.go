package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metrics is the port the lifecycle service and worker use to count events.
type Metrics interface {
	Count(ctx context.Context, name string, value float64)
}

// CloudWatchMetrics emits counters to a CloudWatch namespace.
type CloudWatchMetrics struct {
	client    CloudWatchAPI
	namespace string
}

// NewCloudWatchMetrics returns an emitter bound to a namespace.
func NewCloudWatchMetrics(client CloudWatchAPI, namespace string) *CloudWatchMetrics {
	return &CloudWatchMetrics{client: client, namespace: namespace}
}

// Count emits a single datum. Failures are dropped; metrics must never block
// or fail order processing.
func (m *CloudWatchMetrics) Count(ctx context.Context, name string, value float64) {
	now := time.Now()
	_, _ = m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &m.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &name,
				Value:      &value,
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitCount,
			},
		},
	})
}

// NopMetrics discards every datum; used when CloudWatch is not configured.
type NopMetrics struct{}

func (NopMetrics) Count(ctx context.Context, name string, value float64) {}
