// Package observability holds the service's Prometheus metrics, logger
// construction, and error reporting.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	webhookDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activityweather",
		Subsystem: "webhook",
		Name:      "deliveries_total",
		Help:      "Webhook event deliveries accepted, by object and aspect type.",
	}, []string{"object_type", "aspect_type"})

	pipelineOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activityweather",
		Subsystem: "pipeline",
		Name:      "outcomes_total",
		Help:      "Enrichment pipeline runs, by terminal outcome.",
	}, []string{"outcome"})

	tokenRefreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activityweather",
		Subsystem: "oauth",
		Name:      "token_refreshes_total",
		Help:      "OAuth refresh-token grants, by result.",
	}, []string{"result"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activityweather",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Inbound HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(webhookDeliveries, pipelineOutcomes, tokenRefreshes, httpDuration)
}

// RecordWebhookDelivery counts an accepted webhook event.
func RecordWebhookDelivery(objectType, aspectType string) {
	webhookDeliveries.WithLabelValues(objectType, aspectType).Inc()
}

// RecordPipelineOutcome counts a finished pipeline run.
func RecordPipelineOutcome(outcome string) {
	pipelineOutcomes.WithLabelValues(outcome).Inc()
}

// RecordTokenRefresh counts a refresh attempt; result is "success" or "failure".
func RecordTokenRefresh(result string) {
	tokenRefreshes.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest records the latency of one inbound request.
func ObserveHTTPRequest(method, route, status string, d time.Duration) {
	httpDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}
