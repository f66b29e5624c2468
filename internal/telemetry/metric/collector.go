package metric

import "github.com/prometheus/client_golang/prometheus"

// ConnectionSource is the read side of the connection registry.
type ConnectionSource interface {
	Count() (int, error)
	Closed() bool
}

// Collector reads registry state at scrape time.
type Collector struct {
	source ConnectionSource

	registered *prometheus.Desc
	available  *prometheus.Desc
}

// NewCollector creates a collector over source.
func NewCollector(source ConnectionSource) *Collector {
	return &Collector{
		source: source,
		registered: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "registry", "connections"),
			"Connections currently held by the registry.",
			nil, nil,
		),
		available: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "registry", "available"),
			"1 while the registry accepts operations, 0 after shutdown began.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.registered
	ch <- c.available
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	available := 1.0
	if c.source.Closed() {
		available = 0
	}
	ch <- prometheus.MustNewConstMetric(c.available, prometheus.GaugeValue, available)

	if n, err := c.source.Count(); err == nil {
		ch <- prometheus.MustNewConstMetric(c.registered, prometheus.GaugeValue, float64(n))
	}
}
