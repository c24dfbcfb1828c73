package gigevision

//
// Optional Prometheus metrics. Nil-safe throughout: a [GVCPClient] or
// [Receiver] with no metrics attached pays no instrumentation cost.
//

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the counters exported for one GVCP connection plus
// its associated GVSP receiver.
type Metrics struct {
	requestsTotal         *prometheus.CounterVec
	ackErrorsTotal        *prometheus.CounterVec
	heartbeatFailuresTotal prometheus.Counter
	framesDeliveredTotal  prometheus.Counter
	framesLostTotal       prometheus.Counter
}

// NewMetrics constructs a fresh, unregistered [Metrics] bundle.
func NewMetrics() *Metrics {
	return &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gigevision",
			Name:      "gvcp_requests_total",
			Help:      "GVCP requests sent, by command name.",
		}, []string{"command"}),
		ackErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gigevision",
			Name:      "gvcp_ack_errors_total",
			Help:      "GVCP acknowledgements received with the severity bit set, by status name.",
		}, []string{"status"}),
		heartbeatFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gigevision",
			Name:      "gvcp_heartbeat_failures_total",
			Help:      "Heartbeat cycles that observed a lost control privilege.",
		}),
		framesDeliveredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gigevision",
			Name:      "gvsp_frames_delivered_total",
			Help:      "GVSP frames successfully reassembled and delivered.",
		}),
		framesLostTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gigevision",
			Name:      "gvsp_frames_lost_total",
			Help:      "GVSP frames discarded for missing data packets.",
		}),
	}
}

// MustRegister registers every collector in m with reg.
func (m *Metrics) MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(
		m.requestsTotal,
		m.ackErrorsTotal,
		m.heartbeatFailuresTotal,
		m.framesDeliveredTotal,
		m.framesLostTotal,
	)
}

// WithMetrics attaches m to a [GVCPClient].
func WithMetrics(m *Metrics) GVCPClientOption {
	return func(c *GVCPClient) { c.metrics = m }
}

func (c *GVCPClient) observeRequest(cmd uint16) {
	if c.metrics != nil {
		c.metrics.requestsTotal.WithLabelValues(formatCmdAckName(cmd)).Inc()
	}
}

func (c *GVCPClient) observeAckError(err *AckError) {
	if c.metrics != nil {
		c.metrics.ackErrorsTotal.WithLabelValues(err.StatusName).Inc()
	}
}

func (c *GVCPClient) observeHeartbeatFailure() {
	if c.metrics != nil {
		c.metrics.heartbeatFailuresTotal.Inc()
	}
}

// SetMetrics attaches m to the receiver.
func (r *Receiver) SetMetrics(m *Metrics) {
	r.metrics = m
}
