package metrics

import "github.com/prometheus/client_golang/prometheus"

// ServiceMetrics exposes counters for store mutations, notification fan-out
// and assistant calls. All observe methods are safe on a nil receiver so
// callers never need to guard.
type ServiceMetrics struct {
	mutationsTotal     *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	assistantTotal     *prometheus.CounterVec
	loginsTotal        *prometheus.CounterVec
}

func NewServiceMetrics(reg prometheus.Registerer) *ServiceMetrics {
	m := &ServiceMetrics{
		mutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospice",
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "Total entity store mutations",
		}, []string{"collection", "op"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospice",
			Subsystem: "notify",
			Name:      "fanout_total",
			Help:      "Total notifications appended to the log",
		}, []string{"role"}),
		assistantTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospice",
			Subsystem: "assistant",
			Name:      "requests_total",
			Help:      "Total assistant chat requests",
		}, []string{"outcome"}),
		loginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospice",
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Total login attempts",
		}, []string{"kind", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.mutationsTotal, m.notificationsTotal, m.assistantTotal, m.loginsTotal)
	return m
}

func (m *ServiceMetrics) ObserveMutation(collection, op string) {
	if m == nil {
		return
	}
	m.mutationsTotal.WithLabelValues(collection, op).Inc()
}

func (m *ServiceMetrics) ObserveNotification(role string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(role).Inc()
}

func (m *ServiceMetrics) ObserveAssistant(outcome string) {
	if m == nil {
		return
	}
	m.assistantTotal.WithLabelValues(outcome).Inc()
}

func (m *ServiceMetrics) ObserveLogin(kind, outcome string) {
	if m == nil {
		return
	}
	m.loginsTotal.WithLabelValues(kind, outcome).Inc()
}
