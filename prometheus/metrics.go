package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector of the service. They are registered on the registerer given to
// NewMetrics so tests can use a private registry.
type Metrics struct {
	// HTTP request metrics
	HttpRequestsTotal         *prometheus.CounterVec
	HttpRequestDuration       *prometheus.HistogramVec
	StatusCodeCategoryCounter *prometheus.CounterVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Catalog metrics
	ProductOperationsCounter  *prometheus.CounterVec
	CategoryOperationsCounter *prometheus.CounterVec
	CompanyOperationsCounter  *prometheus.CounterVec
	ImageUploadsCounter       *prometheus.CounterVec
	ProductInventoryGauge     *prometheus.GaugeVec
	ProductViewsCounter       *prometheus.CounterVec
}

// NewMetrics creates the collectors with the given name prefix
func NewMetrics(prefix string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HttpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HttpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		StatusCodeCategoryCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_status_category_total",
				Help: "Total number of responses by status category (2xx, 3xx, 4xx, 5xx)",
			},
			[]string{"category", "method", "path"},
		),
		AuthAttemptsCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_attempts_total",
				Help: "Total number of authentication attempts",
			},
		),
		AuthSuccessCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_success_total",
				Help: "Total number of successful authentications",
			},
		),
		AuthErrorsCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_errors_total",
				Help: "Total number of authentication errors",
			},
		),
		DbOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		),
		ProductOperationsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_product_operations_total",
				Help: "Total number of product operations",
			},
			[]string{"operation"},
		),
		CategoryOperationsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_category_operations_total",
				Help: "Total number of category operations",
			},
			[]string{"operation"},
		),
		CompanyOperationsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_company_operations_total",
				Help: "Total number of company operations",
			},
			[]string{"operation"},
		),
		ImageUploadsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_image_uploads_total",
				Help: "Total number of product image uploads by result",
			},
			[]string{"result"},
		),
		ProductInventoryGauge: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + "_product_inventory",
				Help: "Current inventory level for products",
			},
			[]string{"product_id", "product_name", "category"},
		),
		ProductViewsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_product_views_total",
				Help: "Total number of product views",
			},
			[]string{"product_id", "category"},
		),
	}
}

// TrackDBOperation returns a function that records the duration of a database operation
func (m *Metrics) TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		m.DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordHTTPRequest counts a finished request and its status category
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := strconv.Itoa(status)
	m.HttpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HttpRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration.Seconds())

	if status >= 200 && status < 600 {
		category := strconv.Itoa(status/100) + "xx"
		m.StatusCodeCategoryCounter.WithLabelValues(category, method, path).Inc()
	}
}

// RecordProductOperation increments the counter for product operations
func (m *Metrics) RecordProductOperation(operation string) {
	m.ProductOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordCategoryOperation increments the counter for category operations
func (m *Metrics) RecordCategoryOperation(operation string) {
	m.CategoryOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordCompanyOperation increments the counter for company operations
func (m *Metrics) RecordCompanyOperation(operation string) {
	m.CompanyOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordImageUpload counts an upload attempt; result is "success" or "error"
func (m *Metrics) RecordImageUpload(result string) {
	m.ImageUploadsCounter.WithLabelValues(result).Inc()
}

// UpdateProductInventory updates the gauge for product inventory. A product keeps one series,
// so a rename or category change replaces the previous one.
func (m *Metrics) UpdateProductInventory(productID uint, productName string, category string, count float64) {
	id := strconv.FormatUint(uint64(productID), 10)
	m.ProductInventoryGauge.DeletePartialMatch(prometheus.Labels{"product_id": id})
	m.ProductInventoryGauge.WithLabelValues(id, productName, category).Set(count)
}

// DeleteProductInventory drops the inventory series of a removed product
func (m *Metrics) DeleteProductInventory(productID uint) {
	m.ProductInventoryGauge.DeletePartialMatch(prometheus.Labels{"product_id": strconv.FormatUint(uint64(productID), 10)})
}

// RecordProductView increments the counter for product views
func (m *Metrics) RecordProductView(productID uint, category string) {
	m.ProductViewsCounter.WithLabelValues(strconv.FormatUint(uint64(productID), 10), category).Inc()
}

// Handler exposes the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
