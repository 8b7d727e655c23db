package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialhub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// NotificationsEmitted counts persisted notifications by type.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_notifications_emitted_total",
		Help: "Total number of notifications persisted",
	}, []string{"type"})

	// ToggleOutcomes counts toggle mutations by kind and resulting state.
	ToggleOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_toggle_outcomes_total",
		Help: "Total number of toggle mutations by kind and resulting state",
	}, []string{"kind", "state"})

	// UploadsTotal counts stored images by detected content type.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_uploads_total",
		Help: "Total number of images stored",
	}, []string{"content_type"})

	// EventPublishFailures counts domain events that could not be published.
	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_event_publish_failures_total",
		Help: "Total number of domain events that failed to publish",
	}, []string{"backend", "event"})

	// RateLimitRejections counts requests rejected by the per-route limiter.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_rate_limit_rejections_total",
		Help: "Total number of requests rejected by rate limiting",
	}, []string{"route"})
)

// ToggleState renders a toggle result as a metric label.
func ToggleState(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
