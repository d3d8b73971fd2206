package pool

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes per-endpoint pool gauges, mirroring the counters the
// teacher's stats package keeps for its own connection pools. Wiring this
// is optional — a nil *Metrics (the default) costs nothing on the hot path.
type Metrics struct {
	idle  *prometheus.GaugeVec
	inUse *prometheus.GaugeVec
	total *prometheus.GaugeVec
}

// NewMetrics registers the pool gauges with reg (pass
// prometheus.DefaultRegisterer for the global registry, or a fresh
// *prometheus.Registry in tests to avoid collisions).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		idle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fastdfs", Subsystem: "pool", Name: "idle_connections",
			Help: "Idle connections currently held per endpoint.",
		}, []string{"endpoint"}),
		inUse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fastdfs", Subsystem: "pool", Name: "in_use_connections",
			Help: "Connections currently borrowed per endpoint.",
		}, []string{"endpoint"}),
		total: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fastdfs", Subsystem: "pool", Name: "total_connections",
			Help: "Live connections (idle + in-use) per endpoint.",
		}, []string{"endpoint"}),
	}
	reg.MustRegister(m.idle, m.inUse, m.total)
	return m
}

func (m *Metrics) set(endpoint string, s Stats) {
	m.idle.WithLabelValues(endpoint).Set(float64(s.Idle))
	m.inUse.WithLabelValues(endpoint).Set(float64(s.InUse))
	m.total.WithLabelValues(endpoint).Set(float64(s.Total))
}
