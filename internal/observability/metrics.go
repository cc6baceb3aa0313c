package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	edgeCallTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "execudex_edge_call_total",
		Help: "Edge function calls by endpoint and result",
	}, []string{"endpoint", "result"})

	edgeCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "execudex_edge_call_duration_seconds",
		Help:    "Edge function request duration, excluding queue wait",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 11), // 50ms to ~51s
	}, []string{"endpoint"})

	keyWaitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "execudex_profile_lock_wait_seconds",
		Help:    "Time spent waiting for a per-profile lock",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"scope"})

	orchestrationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "execudex_orchestration_total",
		Help: "Readiness orchestration runs by kind and result",
	}, []string{"kind", "result"})

	orchestrationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "execudex_orchestration_duration_seconds",
		Help:    "Readiness orchestration duration",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{"kind"})

	navigationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "execudex_navigation_total",
		Help: "Navigation gate outcomes by kind",
	}, []string{"kind", "result"})

	quotaDecisionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "execudex_quota_decision_total",
		Help: "Quota decisions by reason",
	}, []string{"allowed", "reason"})

	lockEvaluationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "execudex_lock_evaluation_total",
		Help: "Lock evaluations by kind and reason",
	}, []string{"kind", "reason"})

	httpRequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "execudex_http_requests_total",
		Help: "HTTP requests by route and status class",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "execudex_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func ObserveEdgeCall(endpoint string, ok bool, status int, took time.Duration) {
	result := "ok"
	switch {
	case ok:
	case status == 0:
		result = "transport_error"
	default:
		result = "http_error"
	}
	edgeCallTotal.WithLabelValues(endpoint, result).Inc()
	edgeCallDuration.WithLabelValues(endpoint).Observe(took.Seconds())
}

// KeyWaitObserver returns a callback for keymutex.WithWaitObserver. Keys are not used
// as labels; scope names the lock table.
func KeyWaitObserver(scope string) func(string, time.Duration) {
	h := keyWaitDuration.WithLabelValues(scope)
	return func(_ string, waited time.Duration) {
		h.Observe(waited.Seconds())
	}
}

func ObserveOrchestration(kind string, err error, took time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	orchestrationTotal.WithLabelValues(kind, result).Inc()
	orchestrationDuration.WithLabelValues(kind).Observe(took.Seconds())
}

func ObserveNavigation(kind, result string) {
	navigationTotal.WithLabelValues(kind, result).Inc()
}

func ObserveQuotaDecision(allowed bool, reason string) {
	a := "false"
	if allowed {
		a = "true"
	}
	if reason == "" {
		reason = "new_profile"
	}
	quotaDecisionTotal.WithLabelValues(a, reason).Inc()
}

func ObserveLockEvaluation(kind, reason string) {
	lockEvaluationTotal.WithLabelValues(kind, reason).Inc()
}

func ObserveHTTPRequest(method, route string, status int, took time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
