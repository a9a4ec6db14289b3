package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebSocketMetrics holds Prometheus metrics for canvas socket traffic.
type WebSocketMetrics struct {
	ActiveConnections prometheus.Gauge
	MessagesReceived  *prometheus.CounterVec
	MessagesDropped   prometheus.Counter
}

func NewWebSocketMetrics(reg prometheus.Registerer) *WebSocketMetrics {
	m := &WebSocketMetrics{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "active_connections",
			Help:      "Number of active WebSocket connections.",
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "messages_received_total",
			Help:      "Total number of inbound WebSocket messages, by event type.",
		}, []string{"type"}),
		MessagesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "messages_dropped_total",
			Help:      "Total number of outbound messages dropped because the client was too slow.",
		}),
	}

	reg.MustRegister(m.ActiveConnections, m.MessagesReceived, m.MessagesDropped)
	return m
}
