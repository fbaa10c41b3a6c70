// Package metric provides Prometheus metrics for sigstream.
//
//   - prometheus.go: registry, typed recorders and the /metrics handler
//   - collector.go: scrape-time collector for store health
//
// Metrics are exposed at /metrics in Prometheus text format. All recorder
// methods are safe on a nil *Registry, which records nothing.
package metric
