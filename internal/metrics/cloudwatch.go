package metrics

import (
	"context"
	"log/slog"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/imrishuroy/go-order-notify/internal/aws"
)

const cloudWatchTimeout = 2 * time.Second

// CloudWatch publishes send observations as custom metrics. Publishing failures are
// logged and never affect the send itself.
type CloudWatch struct {
	client    aws.CloudWatchAPI
	namespace string
	logger    *slog.Logger
}

func NewCloudWatch(client aws.CloudWatchAPI, namespace string, logger *slog.Logger) *CloudWatch {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatch{client: client, namespace: namespace, logger: logger}
}

func (c *CloudWatch) ObserveSend(recipient, outcome string, took time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), cloudWatchTimeout)
	defer cancel()

	dims := []cwtypes.Dimension{
		{Name: sdkaws.String("Recipient"), Value: sdkaws.String(recipient)},
		{Name: sdkaws.String("Outcome"), Value: sdkaws.String(outcome)},
	}
	_, err := c.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(c.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: sdkaws.String("EmailSends"),
				Dimensions: dims,
				Unit:       cwtypes.StandardUnitCount,
				Value:      sdkaws.Float64(1),
			},
			{
				MetricName: sdkaws.String("EmailSendLatency"),
				Dimensions: dims[:1],
				Unit:       cwtypes.StandardUnitMilliseconds,
				Value:      sdkaws.Float64(float64(took.Milliseconds())),
			},
		},
	})
	if err != nil {
		c.logger.Warn("put metric data failed", "namespace", c.namespace, "error", err)
	}
}
