// Package metrics регистрирует prometheus-метрики запросов к апстримам.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_upstream_requests_total",
		Help: "Количество запросов к апстримам с результатом ok/error.",
	}, []string{"upstream", "function", "result"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_upstream_request_duration_seconds",
		Help:    "Длительность запросов к апстримам.",
		Buckets: prometheus.DefBuckets,
	}, []string{"upstream", "function"})
)

// ObserveUpstream фиксирует один вызов апстрима.
func ObserveUpstream(upstream, function string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	upstreamRequests.WithLabelValues(upstream, function, result).Inc()
	upstreamDuration.WithLabelValues(upstream, function).Observe(time.Since(start).Seconds())
}
