package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AIMetrics records generation pipeline outcomes per variant.
type AIMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewAIMetrics registers the AI pipeline metrics on the provided registerer.
func NewAIMetrics(reg prometheus.Registerer) *AIMetrics {
	if reg == nil {
		return &AIMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ai_generation_duration_seconds",
		Help:    "Duration of AI generation requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"variant"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_generation_success_total",
		Help: "Successful AI generation requests.",
	}, []string{"variant"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_generation_failure_total",
		Help: "Failed AI generation requests.",
	}, []string{"variant", "kind"})
	reg.MustRegister(duration, success, failure)
	return &AIMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named variant.
func (m *AIMetrics) ObserveDuration(variant string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(variant)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named variant.
func (m *AIMetrics) IncSuccess(variant string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(variant)).Inc()
}

// IncFailure increments the failure counter for the named variant and kind.
func (m *AIMetrics) IncFailure(variant, kind string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(variant), normalizeLabel(kind)).Inc()
}

// WebhookMetrics tracks reconciler outcomes per event type.
type WebhookMetrics struct {
	processed *prometheus.CounterVec
	dropped   *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_processed_total",
		Help: "Webhook events that resulted in a profile mutation.",
	}, []string{"event_type"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_dropped_total",
		Help: "Webhook events acknowledged without mutation (missing data or unknown type).",
	}, []string{"event_type", "reason"})
	reg.MustRegister(processed, dropped)
	return &WebhookMetrics{processed: processed, dropped: dropped}
}

// IncProcessed counts a mutation-producing event.
func (m *WebhookMetrics) IncProcessed(eventType string) {
	if m == nil || m.processed == nil {
		return
	}
	m.processed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncDropped counts an acknowledged-without-mutation event. The dropped
// counter is the alerting hook for malformed provider payloads.
func (m *WebhookMetrics) IncDropped(eventType, reason string) {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.WithLabelValues(normalizeLabel(eventType), normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
