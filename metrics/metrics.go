package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the catalog collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	productLoads    *prometheus.CounterVec
	productsLoaded  prometheus.Gauge
	filterOps       *prometheus.CounterVec
	barcodeLookups  *prometheus.CounterVec
	scannerSessions *prometheus.CounterVec
}

// New creates the collectors on a dedicated registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		productLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "katalog_product_loads_total",
			Help: "Product collection loads by result.",
		}, []string{"result"}),
		productsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "katalog_products_loaded",
			Help: "Number of products in the last successful load.",
		}),
		filterOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "katalog_filter_operations_total",
			Help: "Filter operations applied to the catalog view.",
		}, []string{"operation"}),
		barcodeLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "katalog_barcode_lookups_total",
			Help: "Barcode lookups by result.",
		}, []string{"result"}),
		scannerSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "katalog_scanner_sessions_total",
			Help: "Scanner sessions by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.productLoads,
		m.productsLoaded,
		m.filterOps,
		m.barcodeLookups,
		m.scannerSessions,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry for scraping
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) LoadSucceeded(count int) {
	if m == nil {
		return
	}
	m.productLoads.WithLabelValues("success").Inc()
	m.productsLoaded.Set(float64(count))
}

func (m *Metrics) LoadFailed() {
	if m == nil {
		return
	}
	m.productLoads.WithLabelValues("error").Inc()
}

func (m *Metrics) FilterApplied(operation string) {
	if m == nil {
		return
	}
	m.filterOps.WithLabelValues(operation).Inc()
}

func (m *Metrics) BarcodeLookup(found bool) {
	if m == nil {
		return
	}
	result := "not_found"
	if found {
		result = "found"
	}
	m.barcodeLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ScannerSession(outcome string) {
	if m == nil {
		return
	}
	m.scannerSessions.WithLabelValues(outcome).Inc()
}
