package metric

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pinger is implemented by storage backends.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreCollector reports store reachability at scrape time.
type StoreCollector struct {
	store   Pinger
	timeout time.Duration
	up      *prometheus.Desc
}

// NewStoreCollector creates a collector that pings store on every scrape.
func NewStoreCollector(store Pinger, backend string) *StoreCollector {
	return &StoreCollector{
		store:   store,
		timeout: 2 * time.Second,
		up: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "up"),
			"Whether the message store answered a ping (1) or not (0)",
			nil, prometheus.Labels{"backend": backend},
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.up
}

// Collect implements prometheus.Collector.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	up := 1.0
	if err := c.store.Ping(ctx); err != nil {
		up = 0
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, up)
}

// RegisterStore registers a StoreCollector for store on r.
func (r *Registry) RegisterStore(store Pinger, backend string) {
	r.registry.MustRegister(NewStoreCollector(store, backend))
}
