package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for the receptionist's
// conversation turns and clinic backend tool calls. All methods are nil-safe
// so wiring metrics stays optional.
type ConversationMetrics struct {
	turnsTotal     *prometheus.CounterVec
	toolCallsTotal *prometheus.CounterVec
	modelLatency   *prometheus.HistogramVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total processed conversation turns",
		}, []string{"language", "path"}),
		toolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "conversation",
			Name:      "tool_calls_total",
			Help:      "Total tool calls requested by the model",
		}, []string{"tool", "status"}),
		modelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "receptionist",
			Subsystem: "conversation",
			Name:      "model_latency_seconds",
			Help:      "Latency of chat completion calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.toolCallsTotal, m.modelLatency)
	return m
}

// ObserveTurn counts a finished turn. path is "model" for turns answered by
// the language model and "selection" for turns consumed by the clinic/doctor
// selection flow.
func (m *ConversationMetrics) ObserveTurn(language, path string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(language, path).Inc()
}

func (m *ConversationMetrics) ObserveToolCall(tool, status string) {
	if m == nil {
		return
	}
	m.toolCallsTotal.WithLabelValues(tool, status).Inc()
}

// ObserveModelLatency records one chat completion round-trip. phase is
// "tools" for the first call and "synthesis" for the follow-up.
func (m *ConversationMetrics) ObserveModelLatency(phase string, seconds float64) {
	if m == nil {
		return
	}
	m.modelLatency.WithLabelValues(phase).Observe(seconds)
}
