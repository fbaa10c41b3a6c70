package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sigstream"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Message metrics
	MessagesAppended prometheus.Counter
	MessagesRead     prometheus.Counter
	MessageErrors    *prometheus.CounterVec

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with Go runtime and process collectors and
// all sigstream metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		MessagesAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_appended_total",
			Help:      "Total messages appended to streams",
		}),
		MessagesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_read_total",
			Help:      "Total messages returned by stream reads",
		}),
		MessageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "message_errors_total",
			Help:      "Stream operation failures by error code",
		}, []string{"operation", "code"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total requests by protocol, method and status",
		}, []string{"protocol", "method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"protocol", "method"}),
	}

	reg.MustRegister(
		r.MessagesAppended,
		r.MessagesRead,
		r.MessageErrors,
		r.RequestsTotal,
		r.RequestDuration,
	)
	return r
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler serves the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler serves r in Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registerer exposes the underlying registry for components that register
// their own collectors (e.g. the Badger log).
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// IncMessagesAppended counts one appended message.
func (r *Registry) IncMessagesAppended() {
	if r == nil {
		return
	}
	r.MessagesAppended.Inc()
}

// AddMessagesRead counts n messages returned by a read.
func (r *Registry) AddMessagesRead(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.MessagesRead.Add(float64(n))
}

// RecordMessageError counts a failed operation ("append" or "list").
// code is a domain error code, or "store" for backend failures.
func (r *Registry) RecordMessageError(operation, code string) {
	if r == nil {
		return
	}
	r.MessageErrors.WithLabelValues(operation, code).Inc()
}

// RecordRequest counts one request.
func (r *Registry) RecordRequest(protocol, method, status string) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(protocol, method, status).Inc()
}

// ObserveRequestDuration records one request latency in seconds.
func (r *Registry) ObserveRequestDuration(protocol, method string, seconds float64) {
	if r == nil {
		return
	}
	r.RequestDuration.WithLabelValues(protocol, method).Observe(seconds)
}
