/*
Package metrics exposes Prometheus instrumentation for the chat relay.

A Recorder owns its own registry so tests and multiple servers in one process never
collide on metric registration. All Recorder methods are safe on a nil receiver,
which lets components run uninstrumented.
*/
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "geochat"

// Message kinds used as the "kind" label of the messages counter.
const (
	KindChat     = "chat"
	KindLocation = "location"
	KindNotice   = "notice"
)

// Recorder groups the relay's collectors.
type Recorder struct {
	registry *prometheus.Registry

	connections prometheus.Gauge
	roomUsers   prometheus.Gauge
	joins       prometheus.Counter
	rejections  *prometheus.CounterVec
	messages    *prometheus.CounterVec
}

// NewRecorder creates a Recorder with a fresh registry, including the Go runtime collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		registry: reg,
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of open WebSocket connections.",
		}),
		roomUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "room_users",
			Help:      "Number of users currently joined to any room.",
		}),
		joins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "joins_total",
			Help:      "Number of successful room joins.",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Number of rejected client requests by operation and error code.",
		}, []string{"operation", "code"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Number of events fanned out to rooms by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.connections,
		r.roomUsers,
		r.joins,
		r.rejections,
		r.messages,
	)

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ConnectionOpened increments the active connection gauge.
func (r *Recorder) ConnectionOpened() {
	if r == nil {
		return
	}
	r.connections.Inc()
}

// ConnectionClosed decrements the active connection gauge.
func (r *Recorder) ConnectionClosed() {
	if r == nil {
		return
	}
	r.connections.Dec()
}

// Joined records a successful join and the resulting registry size.
func (r *Recorder) Joined(total int) {
	if r == nil {
		return
	}
	r.joins.Inc()
	r.roomUsers.Set(float64(total))
}

// Departed records the registry size after a user left or disconnected.
func (r *Recorder) Departed(total int) {
	if r == nil {
		return
	}
	r.roomUsers.Set(float64(total))
}

// Rejected counts a rejected request for the given operation.
func (r *Recorder) Rejected(operation string, code int) {
	if r == nil {
		return
	}
	r.rejections.WithLabelValues(operation, strconv.Itoa(code)).Inc()
}

// Delivered counts one fanned-out event of the given kind.
func (r *Recorder) Delivered(kind string) {
	if r == nil {
		return
	}
	r.messages.WithLabelValues(kind).Inc()
}
