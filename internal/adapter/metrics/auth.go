package metrics

import "github.com/prometheus/client_golang/prometheus"

// AuthMetrics counts identity operations.
type AuthMetrics struct {
	Attempts *prometheus.CounterVec
}

func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Total number of identity operations, by operation and result.",
		}, []string{"operation", "result"}),
	}

	reg.MustRegister(m.Attempts)
	return m
}

func (m *AuthMetrics) Attempt(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.Attempts.WithLabelValues(operation, result).Inc()
}
