package aggregate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK        = "ok"
	outcomeEmpty     = "empty"
	outcomeTimeout   = "timeout"
	outcomePanic     = "panic"
	outcomeCancelled = "cancelled"
)

var (
	// adapterCalls counts adapter calls.
	// Labels: platform, outcome (ok, empty, timeout, cancelled, panic)
	adapterCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dishscout",
		Subsystem: "aggregate",
		Name:      "adapter_calls_total",
		Help:      "Platform adapter calls by outcome",
	}, []string{"platform", "outcome"})

	adapterLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dishscout",
		Subsystem: "aggregate",
		Name:      "adapter_latency_seconds",
		Help:      "Platform adapter call latency",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30},
	}, []string{"platform"})

	adapterProducts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dishscout",
		Subsystem: "aggregate",
		Name:      "adapter_products_total",
		Help:      "Raw products returned per platform",
	}, []string{"platform"})
)
