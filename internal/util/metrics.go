package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Total number of completed order status transitions",
	}, []string{"from", "to"})

	TransitionsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_failed_total",
		Help: "Total number of failed order status transitions",
	}, []string{"reason"})

	TransitionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_transition_latency_seconds",
		Help:    "Latency of order status transitions",
		Buckets: prometheus.DefBuckets,
	})

	TransitionPartialAbortsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_transition_partial_aborts_total",
		Help: "Transitions aborted after some stock adjustments were already applied",
	})

	StockAdjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustments_total",
		Help: "Total number of article stock adjustments",
	}, []string{"direction"})

	InsufficientStockTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_adjustments_insufficient_total",
		Help: "Adjustments refused because they would drive stock negative",
	})

	StockAdjustLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stock_adjust_latency_seconds",
		Help:    "Latency of article stock adjustments",
		Buckets: prometheus.DefBuckets,
	})

	MalformedOrdersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "malformed_orders_total",
		Help: "Orders whose item list parsed into no recognized shape",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
