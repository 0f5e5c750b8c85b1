package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the storefront client collectors.
	Registry = prometheus.NewRegistry()

	sessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session lifecycle events by kind.",
		},
		[]string{"event"},
	)

	cartOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "operations_total",
			Help:      "Cart store operations by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	backgroundFetchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "fetch_failures_total",
			Help:      "Cart refreshes that failed and were not surfaced to the user.",
		},
	)

	remoteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "remote",
			Name:      "request_duration_seconds",
			Help:      "Duration of calls to the commerce API.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"op", "status"},
	)

	bridgeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "bridge",
			Name:      "requests_total",
			Help:      "Requests served by the local bridge.",
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	Registry.MustRegister(
		sessionTransitions,
		cartOperations,
		backgroundFetchFailures,
		remoteDuration,
		bridgeRequests,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

const (
	EventLogin        = "login"
	EventLoginFailure = "login_failure"
	EventLogout       = "logout"
	EventExpired      = "expired"
	EventRehydrated   = "rehydrated"
)

func ObserveSession(event string) {
	sessionTransitions.WithLabelValues(event).Inc()
}

const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
)

func ObserveCartOp(op, outcome string) {
	cartOperations.WithLabelValues(op, outcome).Inc()
}

func ObserveFetchFailure() {
	backgroundFetchFailures.Inc()
}

// ObserveRemote records one commerce API call. status is 0 for transport errors.
func ObserveRemote(op string, status int, started time.Time) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	remoteDuration.WithLabelValues(op, label).Observe(time.Since(started).Seconds())
}

// GinMiddleware counts bridge requests by matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		bridgeRequests.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
