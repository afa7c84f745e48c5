package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHTTPRequest(t *testing.T) {
	c := qt.New(t)
	m := NewMetrics("catalog", prometheus.NewRegistry())

	m.RecordHTTPRequest("GET", "/Products", 200, 10*time.Millisecond)
	m.RecordHTTPRequest("GET", "/Products", 200, 20*time.Millisecond)
	m.RecordHTTPRequest("POST", "/Products/Create", 303, time.Millisecond)
	m.RecordHTTPRequest("GET", "/Products/Details/:id", 404, time.Millisecond)

	c.Assert(testutil.ToFloat64(m.HttpRequestsTotal.WithLabelValues("GET", "/Products", "200")), qt.Equals, 2.0)
	c.Assert(testutil.ToFloat64(m.StatusCodeCategoryCounter.WithLabelValues("3xx", "POST", "/Products/Create")), qt.Equals, 1.0)
	c.Assert(testutil.ToFloat64(m.StatusCodeCategoryCounter.WithLabelValues("4xx", "GET", "/Products/Details/:id")), qt.Equals, 1.0)
	c.Assert(testutil.CollectAndCount(m.HttpRequestDuration), qt.Equals, 3)
}

func TestCatalogCounters(t *testing.T) {
	c := qt.New(t)
	m := NewMetrics("catalog", prometheus.NewRegistry())

	m.RecordProductOperation("create")
	m.RecordProductOperation("create")
	m.RecordCategoryOperation("delete")
	m.RecordCompanyOperation("update")
	m.RecordImageUpload("success")
	m.RecordProductView(3, "Tools")
	m.TrackDBOperation("product_list")(time.Now())

	c.Assert(testutil.ToFloat64(m.ProductOperationsCounter.WithLabelValues("create")), qt.Equals, 2.0)
	c.Assert(testutil.ToFloat64(m.CategoryOperationsCounter.WithLabelValues("delete")), qt.Equals, 1.0)
	c.Assert(testutil.ToFloat64(m.CompanyOperationsCounter.WithLabelValues("update")), qt.Equals, 1.0)
	c.Assert(testutil.ToFloat64(m.ImageUploadsCounter.WithLabelValues("success")), qt.Equals, 1.0)
	c.Assert(testutil.ToFloat64(m.ProductViewsCounter.WithLabelValues("3", "Tools")), qt.Equals, 1.0)
	c.Assert(testutil.CollectAndCount(m.DbOperationDuration), qt.Equals, 1)
}

func TestProductInventory(t *testing.T) {
	c := qt.New(t)
	m := NewMetrics("catalog", prometheus.NewRegistry())

	m.UpdateProductInventory(1, "Hammer", "Tools", 10)
	m.UpdateProductInventory(2, "Shovel", "Garden", 0)
	c.Assert(testutil.ToFloat64(m.ProductInventoryGauge.WithLabelValues("1", "Hammer", "Tools")), qt.Equals, 10.0)

	m.DeleteProductInventory(1)
	c.Assert(testutil.CollectAndCount(m.ProductInventoryGauge), qt.Equals, 1)
}

func TestProductInventoryFollowsRename(t *testing.T) {
	c := qt.New(t)
	m := NewMetrics("catalog", prometheus.NewRegistry())

	m.UpdateProductInventory(1, "Hammer", "Tools", 10)
	m.UpdateProductInventory(1, "Claw Hammer", "Garden", 4)

	c.Assert(testutil.CollectAndCount(m.ProductInventoryGauge), qt.Equals, 1)
	c.Assert(testutil.ToFloat64(m.ProductInventoryGauge.WithLabelValues("1", "Claw Hammer", "Garden")), qt.Equals, 4.0)
}

func TestHandlerExposesPrivateRegistry(t *testing.T) {
	c := qt.New(t)
	reg := prometheus.NewRegistry()
	m := NewMetrics("catalog", reg)
	m.RecordProductOperation("view")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(strings.Contains(rec.Body.String(), `catalog_product_operations_total{operation="view"} 1`), qt.IsTrue)
}
