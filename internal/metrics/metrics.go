// Package metrics содержит Prometheus метрики сервиса.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "userpet"

// Значения метки outcome
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics хранит коллекторы сервиса в собственном реестре,
// чтобы тесты и несколько экземпляров приложения не конфликтовали.
type Metrics struct {
	registry *prometheus.Registry

	upstreamRequests    *prometheus.CounterVec
	upstreamDuration    *prometheus.HistogramVec
	aggregatedRecords   prometheus.Counter
	aggregationFailures prometheus.Counter
}

// New создает и регистрирует метрики
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Number of requests to upstream APIs by source and outcome.",
		}, []string{"source", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of upstream API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		aggregatedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregated_records_total",
			Help:      "Number of user-with-pet records returned to clients.",
		}),
		aggregationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_failures_total",
			Help:      "Number of aggregation requests that failed with an internal error.",
		}),
	}

	m.registry.MustRegister(
		m.upstreamRequests,
		m.upstreamDuration,
		m.aggregatedRecords,
		m.aggregationFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveUpstream фиксирует результат и длительность запроса к внешнему API.
// Безопасно вызывать на nil-получателе.
func (m *Metrics) ObserveUpstream(source string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.upstreamRequests.WithLabelValues(source, outcome).Inc()
	m.upstreamDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// AddAggregated увеличивает счетчик выданных записей
func (m *Metrics) AddAggregated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.aggregatedRecords.Add(float64(n))
}

// IncAggregationFailure увеличивает счетчик ошибок агрегации
func (m *Metrics) IncAggregationFailure() {
	if m == nil {
		return
	}
	m.aggregationFailures.Inc()
}

// Handler возвращает HTTP обработчик для /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
