package oidcrp

import (
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/auth0/go-oidc-rp/discovery"
)

// Metric names recorded by the Client. Discovery metrics are named in the
// discovery package.
const (
	MetricTokenExchangeTotal    = "oidc_token_exchange_total"
	MetricTokenExchangeDuration = "oidc_token_exchange_duration_seconds"
	MetricUserinfoRequestsTotal = "oidc_userinfo_requests_total"
	MetricUserinfoDuration      = "oidc_userinfo_duration_seconds"
)

var metricHelp = map[string]string{
	discovery.MetricRequestsTotal:   "Provider discovery requests by result.",
	discovery.MetricRequestDuration: "Provider discovery latency.",
	discovery.MetricCachedIssuers:   "Issuers held in the discovery cache.",
	MetricTokenExchangeTotal:        "Authorization code exchanges by result.",
	MetricTokenExchangeDuration:     "Authorization code exchange latency.",
	MetricUserinfoRequestsTotal:     "UserInfo requests by result.",
	MetricUserinfoDuration:          "UserInfo request latency.",
}

// Metrics is a generic metrics interface.
type Metrics interface {
	IncCounter(name string, tags map[string]string)
	ObserveHistogram(name string, value float64, tags map[string]string)
	SetGauge(name string, value float64, tags map[string]string)
}

// NoopMetrics is a metrics implementation that does nothing.
type NoopMetrics struct{}

func (m *NoopMetrics) IncCounter(name string, tags map[string]string)                      {}
func (m *NoopMetrics) ObserveHistogram(name string, value float64, tags map[string]string) {}
func (m *NoopMetrics) SetGauge(name string, value float64, tags map[string]string)         {}

// PrometheusMetrics implements Metrics using Prometheus. Collectors are
// created and registered the first time a name is used; the label set of
// that first call fixes the labels for the name.
type PrometheusMetrics struct {
	registerer prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
}

// NewPrometheusMetrics returns a Metrics implementation that registers its
// collectors with registerer, or prometheus.DefaultRegisterer when nil.
func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &PrometheusMetrics{
		registerer: registerer,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}
}

func (m *PrometheusMetrics) IncCounter(name string, tags map[string]string) {
	m.mu.Lock()
	vec, ok := m.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help(name, "counter")}, keys(tags))
		m.registerer.MustRegister(vec)
		m.counters[name] = vec
	}
	m.mu.Unlock()
	vec.With(tags).Inc()
}

func (m *PrometheusMetrics) ObserveHistogram(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	vec, ok := m.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    name,
			Help:    help(name, "histogram"),
			Buckets: prometheus.DefBuckets,
		}, keys(tags))
		m.registerer.MustRegister(vec)
		m.histograms[name] = vec
	}
	m.mu.Unlock()
	vec.With(tags).Observe(value)
}

func (m *PrometheusMetrics) SetGauge(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	vec, ok := m.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help(name, "gauge")}, keys(tags))
		m.registerer.MustRegister(vec)
		m.gauges[name] = vec
	}
	m.mu.Unlock()
	vec.With(tags).Set(value)
}

func help(name, kind string) string {
	if h, ok := metricHelp[name]; ok {
		return h
	}
	return name + " " + kind
}

func keys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
