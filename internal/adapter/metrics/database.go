package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DatabaseMetrics holds Prometheus metrics for PostgreSQL queries.
type DatabaseMetrics struct {
	QueryDuration *prometheus.HistogramVec
	QueryErrors   *prometheus.CounterVec
}

func NewDatabaseMetrics(reg prometheus.Registerer) *DatabaseMetrics {
	m := &DatabaseMetrics{
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds, by statement verb.",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"query"}),
		QueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Total number of failed database queries, by statement verb.",
		}, []string{"query"}),
	}

	reg.MustRegister(m.QueryDuration, m.QueryErrors)
	return m
}

func (m *DatabaseMetrics) QueryFinished(query string, elapsed time.Duration, err error) {
	m.QueryDuration.WithLabelValues(query).Observe(elapsed.Seconds())
	if err != nil {
		m.QueryErrors.WithLabelValues(query).Inc()
	}
}
