package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics counts payment-intent creation and webhook outcomes.
type PaymentMetrics struct {
	intentsCreated *prometheus.CounterVec
	webhookEvents  *prometheus.CounterVec
	deadLetters    prometheus.Counter
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	intents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_intents_created_total",
		Help: "Payment intents created, by result.",
	}, []string{"result"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Verified webhook events, by disposition.",
	}, []string{"disposition"})
	dead := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_dead_letters_total",
		Help: "Webhook events routed to the dead-letter table.",
	})
	reg.MustRegister(intents, events, dead)
	return &PaymentMetrics{
		intentsCreated: intents,
		webhookEvents:  events,
		deadLetters:    dead,
	}
}

// IncIntentCreated counts an intent-creation attempt by result label.
func (m *PaymentMetrics) IncIntentCreated(result string) {
	if m == nil || m.intentsCreated == nil {
		return
	}
	m.intentsCreated.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncWebhookEvent counts a verified webhook event by disposition
// (processed, duplicate, ignored).
func (m *PaymentMetrics) IncWebhookEvent(disposition string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(disposition)).Inc()
}

// IncDeadLetter counts an event routed to the dead-letter table.
func (m *PaymentMetrics) IncDeadLetter() {
	if m == nil || m.deadLetters == nil {
		return
	}
	m.deadLetters.Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
