package observability

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveEdgeCallResultLabels(t *testing.T) {
	before := testutil.ToFloat64(edgeCallTotal.WithLabelValues("test_endpoint", "transport_error"))
	ObserveEdgeCall("test_endpoint", false, 0, time.Millisecond)
	after := testutil.ToFloat64(edgeCallTotal.WithLabelValues("test_endpoint", "transport_error"))
	if after-before != 1 {
		t.Fatalf("transport_error delta: want=1 got=%v", after-before)
	}

	before = testutil.ToFloat64(edgeCallTotal.WithLabelValues("test_endpoint", "http_error"))
	ObserveEdgeCall("test_endpoint", false, 502, time.Millisecond)
	after = testutil.ToFloat64(edgeCallTotal.WithLabelValues("test_endpoint", "http_error"))
	if after-before != 1 {
		t.Fatalf("http_error delta: want=1 got=%v", after-before)
	}
}

func TestObserveOrchestrationAndHandler(t *testing.T) {
	ObserveOrchestration("legislation", errors.New("boom"), 10*time.Millisecond)
	if got := testutil.ToFloat64(orchestrationTotal.WithLabelValues("legislation", "error")); got < 1 {
		t.Fatalf("orchestration error count: want>=1 got=%v", got)
	}

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "execudex_orchestration_total") {
		t.Fatalf("exposition missing execudex_orchestration_total")
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{200: "2xx", 302: "3xx", 404: "4xx", 502: "5xx"}
	for in, want := range cases {
		if got := statusClass(in); got != want {
			t.Fatalf("statusClass(%d): want=%q got=%q", in, want, got)
		}
	}
}
