// Package metrics publishes operational metrics to CloudWatch.
package metrics

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/rs/zerolog"
)

const logWriteFailureMetric = "LogWriteFailure"

// Publisher emits metrics under the application's namespace. Publish
// failures are logged and dropped; metrics must never fail a handler.
type Publisher struct {
	client    cloudwatchiface.CloudWatchAPI
	namespace string
	log       zerolog.Logger
}

func New(client cloudwatchiface.CloudWatchAPI, namespace string, log zerolog.Logger) *Publisher {
	return &Publisher{client: client, namespace: namespace, log: log}
}

// LogWriteFailure counts one swallowed log-store write failure.
func (p *Publisher) LogWriteFailure(table string) {
	_, err := p.client.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace: aws.String(p.namespace),
		MetricData: []*cloudwatch.MetricDatum{{
			MetricName: aws.String(logWriteFailureMetric),
			Dimensions: []*cloudwatch.Dimension{{
				Name:  aws.String("Table"),
				Value: aws.String(table),
			}},
			Unit:  aws.String(cloudwatch.StandardUnitCount),
			Value: aws.Float64(1),
		}},
	})
	if err != nil {
		p.log.Error().Err(err).Str("metric", logWriteFailureMetric).Msg("metric publish failed")
	}
}
