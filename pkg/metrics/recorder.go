// Package metrics exposes Prometheus instrumentation for the engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder handles metrics recording and exposure.
type Recorder struct {
	// API metrics
	apiRequestCounter   *prometheus.CounterVec
	apiLatencyHistogram *prometheus.HistogramVec

	// Evaluation metrics
	evaluationCounter   *prometheus.CounterVec
	evaluationLatency   *prometheus.HistogramVec
	evaluationLegsGauge prometheus.Gauge

	// Stream metrics
	publishCounter *prometheus.CounterVec

	// WebSocket metrics
	wsClientsGauge prometheus.Gauge
}

// NewRecorder creates and registers all engine metrics.
func NewRecorder() *Recorder {
	return &Recorder{
		apiRequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payoff_api_requests_total",
				Help: "The total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		apiLatencyHistogram: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payoff_api_latency_seconds",
				Help:    "API request latency distribution",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // From 1ms to ~16s
			},
			[]string{"method", "path"},
		),
		evaluationCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payoff_evaluations_total",
				Help: "The total number of strategy evaluations",
			},
			[]string{"kind"},
		),
		evaluationLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payoff_evaluation_duration_seconds",
				Help:    "Time taken to compute curves and summaries",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
			[]string{"kind"},
		),
		evaluationLegsGauge: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "payoff_evaluation_legs",
				Help: "Number of legs in the most recent evaluation",
			},
		),
		publishCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payoff_stream_publishes_total",
				Help: "The total number of evaluation events published to Kafka",
			},
			[]string{"result"},
		),
		wsClientsGauge: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "payoff_websocket_clients",
				Help: "Number of connected WebSocket clients",
			},
		),
	}
}

// RecordAPIRequest records one HTTP request.
func (r *Recorder) RecordAPIRequest(method, path string, status int, duration time.Duration) {
	r.apiRequestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.apiLatencyHistogram.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordEvaluation records one computation. kind is "curves", "decay",
// "summary", or "full".
func (r *Recorder) RecordEvaluation(kind string, legs int, duration time.Duration) {
	r.evaluationCounter.WithLabelValues(kind).Inc()
	r.evaluationLatency.WithLabelValues(kind).Observe(duration.Seconds())
	r.evaluationLegsGauge.Set(float64(legs))
}

// RecordPublish records one Kafka publish attempt.
func (r *Recorder) RecordPublish(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.publishCounter.WithLabelValues(result).Inc()
}

// SetWebSocketClients sets the connected-client gauge.
func (r *Recorder) SetWebSocketClients(n int) {
	r.wsClientsGauge.Set(float64(n))
}
