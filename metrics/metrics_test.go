package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordOnRegistry(t *testing.T) {
	m := New()
	m.LoadSucceeded(3)
	m.LoadFailed()
	m.FilterApplied("search")
	m.FilterApplied("search")
	m.BarcodeLookup(true)
	m.ScannerSession("decoded")

	expected := `
# HELP katalog_product_loads_total Product collection loads by result.
# TYPE katalog_product_loads_total counter
katalog_product_loads_total{result="error"} 1
katalog_product_loads_total{result="success"} 1
# HELP katalog_products_loaded Number of products in the last successful load.
# TYPE katalog_products_loaded gauge
katalog_products_loaded 3
# HELP katalog_filter_operations_total Filter operations applied to the catalog view.
# TYPE katalog_filter_operations_total counter
katalog_filter_operations_total{operation="search"} 2
# HELP katalog_barcode_lookups_total Barcode lookups by result.
# TYPE katalog_barcode_lookups_total counter
katalog_barcode_lookups_total{result="found"} 1
# HELP katalog_scanner_sessions_total Scanner sessions by outcome.
# TYPE katalog_scanner_sessions_total counter
katalog_scanner_sessions_total{outcome="decoded"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"katalog_product_loads_total",
		"katalog_products_loaded",
		"katalog_filter_operations_total",
		"katalog_barcode_lookups_total",
		"katalog_scanner_sessions_total",
	))
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.LoadSucceeded(1)
		m.LoadFailed()
		m.FilterApplied("category")
		m.BarcodeLookup(false)
		m.ScannerSession("stopped")
	})
	assert.Nil(t, m.Registry())
	assert.NotNil(t, m.Handler())
}
