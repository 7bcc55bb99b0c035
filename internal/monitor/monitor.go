// Package monitor exposes Prometheus metrics for rooms, connections,
// actions and persistence.
package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name
const DefaultNamespace = "bwgame"

// Action results
const (
	ResultOK      = "ok"
	ResultWaiting = "waiting"
	ResultError   = "error"
)

// Monitor owns a private registry so several can coexist in tests
type Monitor struct {
	registry *prometheus.Registry

	activeRooms      prometheus.Gauge
	connectedClients prometheus.Gauge
	actions          *prometheus.CounterVec
	actionLatency    *prometheus.HistogramVec
	saves            *prometheus.CounterVec
	saveLatency      prometheus.Histogram
}

// New creates a Monitor and registers its collectors, plus the Go runtime
// and process collectors
func New(namespace string) *Monitor {
	m := &Monitor{
		registry: prometheus.NewRegistry(),
		activeRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of rooms held by the registry",
		}),
		connectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Number of open WebSocket connections",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Room actions handled, by action and result",
		}, []string{"action", "result"}),
		actionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_latency_seconds",
			Help:      "Room action processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}, []string{"action"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_saves_total",
			Help:      "State saves attempted, by result",
		}, []string{"result"}),
		saveLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "persistence_save_seconds",
			Help:      "State save latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}

	m.registry.MustRegister(
		m.activeRooms,
		m.connectedClients,
		m.actions,
		m.actionLatency,
		m.saves,
		m.saveLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Monitor) SetActiveRooms(count int) {
	m.activeRooms.Set(float64(count))
}

func (m *Monitor) ClientConnected() {
	m.connectedClients.Inc()
}

func (m *Monitor) ClientDisconnected() {
	m.connectedClients.Dec()
}

// ObserveAction counts one handled action and records its latency
func (m *Monitor) ObserveAction(action, result string, d time.Duration) {
	m.actions.WithLabelValues(action, result).Inc()
	m.actionLatency.WithLabelValues(action).Observe(d.Seconds())
}

// ObserveSave records one persistence attempt
func (m *Monitor) ObserveSave(ok bool, d time.Duration) {
	result := ResultOK
	if !ok {
		result = ResultError
	}
	m.saves.WithLabelValues(result).Inc()
	m.saveLatency.Observe(d.Seconds())
}
