package metrics

import "github.com/prometheus/client_golang/prometheus"

// WizardMetrics exposes counters/histograms for booking wizard flows.
type WizardMetrics struct {
	sessionsStarted  *prometheus.CounterVec
	submissionsTotal *prometheus.CounterVec
	submitLatency    prometheus.Histogram
}

func NewWizardMetrics(reg prometheus.Registerer) *WizardMetrics {
	m := &WizardMetrics{
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salonsuite",
			Subsystem: "wizard",
			Name:      "sessions_started_total",
			Help:      "Total wizard sessions opened",
		}, []string{"variant"}),
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salonsuite",
			Subsystem: "wizard",
			Name:      "submissions_total",
			Help:      "Total booking submissions by outcome",
		}, []string{"outcome"}),
		submitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "salonsuite",
			Subsystem: "wizard",
			Name:      "submit_latency_seconds",
			Help:      "Latency of booking submission calls",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsStarted, m.submissionsTotal, m.submitLatency)
	return m
}

func (m *WizardMetrics) ObserveSessionStarted(variant string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(variant).Inc()
}

func (m *WizardMetrics) ObserveSubmission(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
	m.submitLatency.Observe(seconds)
}

// ChatMetrics exposes counters for the team chat module.
type ChatMetrics struct {
	messagesTotal    *prometheus.CounterVec
	assistantLatency prometheus.Histogram
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salonsuite",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Total chat messages by kind",
		}, []string{"kind"}),
		assistantLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "salonsuite",
			Subsystem: "chat",
			Name:      "assistant_latency_seconds",
			Help:      "Latency of assistant completions",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.assistantLatency)
	return m
}

func (m *ChatMetrics) ObserveMessage(kind string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(kind).Inc()
}

func (m *ChatMetrics) ObserveAssistantLatency(seconds float64) {
	if m == nil {
		return
	}
	m.assistantLatency.Observe(seconds)
}
