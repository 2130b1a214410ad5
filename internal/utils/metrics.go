package utils

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tracks performance metrics across the system
type MetricsCollector struct {
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	engagement        *prometheus.CounterVec
	notifications     *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec

	systemStartTime time.Time
}

// NewMetricsCollector registers the collectors on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not panic.
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(reg)
	return &MetricsCollector{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inkwell_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		engagement: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_engagement_events_total",
			Help: "Committed engagement events by kind.",
		}, []string{"kind"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_notifications_total",
			Help: "Notification dispatch outcomes by action.",
		}, []string{"action", "result"}),
		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inkwell_operation_duration_seconds",
			Help:    "Latency of engine operations.",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		systemStartTime: time.Now(),
	}
}

func (mc *MetricsCollector) ObserveRequest(method, route string, status int, duration time.Duration) {
	mc.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	mc.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (mc *MetricsCollector) IncrementEngagement(kind string) {
	mc.engagement.WithLabelValues(kind).Inc()
}

func (mc *MetricsCollector) IncrementNotification(action, result string) {
	mc.notifications.WithLabelValues(action, result).Inc()
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.operationDuration.WithLabelValues(operationName).Observe(duration.Seconds())
}

func (mc *MetricsCollector) Uptime() time.Duration {
	return time.Since(mc.systemStartTime)
}
