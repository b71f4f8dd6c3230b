package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EscrowMetrics records escrow lifecycle and gateway instrumentation.
type EscrowMetrics struct {
	transitions    *prometheus.CounterVec
	webhookResults *prometheus.CounterVec
	gatewayLatency *prometheus.HistogramVec
}

// NewEscrowMetrics registers the escrow metrics on the provided registerer.
func NewEscrowMetrics(reg prometheus.Registerer) *EscrowMetrics {
	if reg == nil {
		return &EscrowMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_transitions_total",
		Help: "Escrow transaction status transitions.",
	}, []string{"from", "to"})
	webhookResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_webhook_results_total",
		Help: "Gateway webhook deliveries by outcome.",
	}, []string{"result"})
	gatewayLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_order_duration_seconds",
		Help:    "Duration of gateway order creation calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(transitions, webhookResults, gatewayLatency)
	return &EscrowMetrics{
		transitions:    transitions,
		webhookResults: webhookResults,
		gatewayLatency: gatewayLatency,
	}
}

// IncTransition increments the transition counter for a from/to status pair.
func (m *EscrowMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncWebhookResult increments the webhook outcome counter.
func (m *EscrowMetrics) IncWebhookResult(result string) {
	if m == nil || m.webhookResults == nil {
		return
	}
	m.webhookResults.WithLabelValues(normalizeLabel(result)).Inc()
}

// ObserveGatewayOrder records the latency of a gateway order creation call.
func (m *EscrowMetrics) ObserveGatewayOrder(outcome string, duration time.Duration) {
	if m == nil || m.gatewayLatency == nil {
		return
	}
	m.gatewayLatency.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
