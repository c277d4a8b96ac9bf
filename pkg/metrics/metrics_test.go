package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestFactory_RegistersOnRegistry(t *testing.T) {
	c := Factory.NewCounter(prometheus.CounterOpts{
		Name: "metrics_factory_check_total",
		Help: "Counter registered through Factory",
	})
	c.Add(2)
	t.Cleanup(func() { Registry.Unregister(c) })

	if err := Registry.Register(c); err == nil {
		t.Error("Register() of a Factory metric should report it as already registered")
	}

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body := w.Body.String()
	if !strings.Contains(body, "metrics_factory_check_total 2") {
		t.Errorf("Factory metric missing from /metrics output:\n%s", body)
	}
	if !strings.Contains(body, "promhttp_metric_handler_requests_total") {
		t.Error("handler should be instrumented on Registry")
	}
}

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/views/{id}", "200"))

	ObserveRequest("GET", "/views/{id}", http.StatusOK, 15*time.Millisecond)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/views/{id}", "200"))
	if after-before != 1 {
		t.Errorf("http_requests_total increased by %v, want 1", after-before)
	}
}

func TestObserveRequest_Unmatched(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))

	ObserveRequest("GET", "", http.StatusNotFound, time.Millisecond)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	if after-before != 1 {
		t.Errorf("unmatched counter increased by %v, want 1", after-before)
	}
}

func TestHandler(t *testing.T) {
	LiveViews.Set(3)
	defer LiveViews.Set(0)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(w.Result().Body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(string(body), "viewer_live_views 3") {
		t.Errorf("Expected live views gauge in output, got:\n%s", body)
	}
}
