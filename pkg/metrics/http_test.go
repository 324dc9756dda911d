package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequestCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest("GET", "/orders/", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "/orders/", 200, 20*time.Millisecond)
	m.ObserveRequest("POST", "/orders/create/", 201, 30*time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/orders/", "200")); got != 2 {
		t.Fatalf("expected 2 GET requests recorded, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("POST", "/orders/create/", "201")); got != 1 {
		t.Fatalf("expected 1 POST request recorded, got %v", got)
	}
}

func TestObserveRequestNilSafe(t *testing.T) {
	var m *HTTPMetrics
	m.ObserveRequest("GET", "/", 200, time.Millisecond)

	empty := NewHTTPMetrics(nil)
	empty.ObserveRequest("", "", 500, time.Millisecond)
}
