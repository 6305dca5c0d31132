package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordRequest(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/orders", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/orders", "GET", 200, 20*time.Millisecond)
	m.RecordRequest("/orders", "GET", 403, time.Millisecond)

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/orders", "200")); got != 2 {
		t.Fatalf("requests_total{200} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/orders", "403")); got != 1 {
		t.Fatalf("requests_total{403} = %v, want 1", got)
	}
}

func TestMetricsRecordError(t *testing.T) {
	m := NewMetrics()
	m.RecordError("/orders", "GET", "FORBIDDEN")

	if got := testutil.ToFloat64(m.errorsTotal.WithLabelValues("GET", "/orders", "FORBIDDEN")); got != 1 {
		t.Fatalf("errors_total = %v, want 1", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "INTERNAL_ERROR")
}
