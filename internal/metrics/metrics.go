// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnswerRequests counts pipeline runs by outcome:
	// answered, no_context, invalid, embedding_failed, retrieval_failed, generation_failed.
	AnswerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kpbu_answer_requests_total",
			Help: "Answering pipeline invocations by outcome",
		},
		[]string{"outcome"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kpbu_pipeline_stage_duration_seconds",
			Help:    "Duration of each remote pipeline stage",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	ChunksRetrieved = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kpbu_chunks_retrieved",
			Help:    "Number of chunks returned by the vector index per query",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 10},
		},
	)

	RecommendationsServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kpbu_recommendation_requests_total",
			Help: "Recommendation rankings computed",
		},
	)

	DocumentsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kpbu_documents_ingested_total",
			Help: "Documents processed by the ingestion path by result",
		},
		[]string{"result"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kpbu_circuit_breaker_state",
			Help: "Provider circuit breaker state",
		},
		[]string{"name"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kpbu_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
)
