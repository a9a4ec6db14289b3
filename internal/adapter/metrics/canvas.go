package metrics

import "github.com/prometheus/client_golang/prometheus"

// CanvasMetrics tracks the autosave controllers.
type CanvasMetrics struct {
	Writes         *prometheus.CounterVec
	CoalescedEdits prometheus.Counter
	ActiveSessions prometheus.Gauge
}

func NewCanvasMetrics(reg prometheus.Registerer) *CanvasMetrics {
	m := &CanvasMetrics{
		Writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "canvas",
			Name:      "writes_total",
			Help:      "Total number of note writes, by patch kind and result.",
		}, []string{"kind", "result"}),
		CoalescedEdits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "canvas",
			Name:      "coalesced_edits_total",
			Help:      "Total number of edits that replaced a pending debounced write.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "canvas",
			Name:      "active_sessions",
			Help:      "Number of open canvas sessions.",
		}),
	}

	reg.MustRegister(m.Writes, m.CoalescedEdits, m.ActiveSessions)
	return m
}

func (m *CanvasMetrics) WriteFinished(kind string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.Writes.WithLabelValues(kind, result).Inc()
}

func (m *CanvasMetrics) EditCoalesced() {
	m.CoalescedEdits.Inc()
}
