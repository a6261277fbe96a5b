package core

import "github.com/prometheus/client_golang/prometheus"

// engineMetrics are the Prometheus instruments an Engine updates as it
// runs, giving an operator embedding this engine visibility into registry
// growth, pool pressure and forced closes.
type engineMetrics struct {
	registryCapacity prometheus.Gauge
	openConnections  prometheus.Gauge
	poolInUse        prometheus.Gauge
	forcedCloses     prometheus.Counter
}

func newEngineMetrics() engineMetrics {
	return engineMetrics{
		registryCapacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gofacil",
			Subsystem: "core",
			Name:      "registry_capacity",
			Help:      "Current size of the connection registry table.",
		}),
		openConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gofacil",
			Subsystem: "core",
			Name:      "open_connections",
			Help:      "Number of registry slots currently marked open.",
		}),
		poolInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gofacil",
			Subsystem: "core",
			Name:      "pool_packets_in_use",
			Help:      "Number of packets currently checked out of the static pool.",
		}),
		forcedCloses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gofacil",
			Subsystem: "core",
			Name:      "forced_closes_total",
			Help:      "Total number of connections force-closed due to a fatal I/O error.",
		}),
	}
}

func (m engineMetrics) observeRegistryCapacity(n int) {
	m.registryCapacity.Set(float64(n))
}

func (m engineMetrics) incOpenConnections() {
	m.openConnections.Inc()
}

func (m engineMetrics) decOpenConnections() {
	m.openConnections.Dec()
}

func (m engineMetrics) incForcedCloses() {
	m.forcedCloses.Inc()
}

// Collectors returns the Prometheus collectors backing this engine's
// metrics, for a caller to register with their own registry.
func (e *Engine) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		e.metrics.registryCapacity,
		e.metrics.openConnections,
		e.metrics.poolInUse,
		e.metrics.forcedCloses,
	}
}
