// Package metrics provides centralized Prometheus metrics registry for the analysis engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartslip"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	LegsAnalyzedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "legs_analyzed_total",
		Help:      "Total number of legs scored, by outcome",
	}, []string{"outcome"})
	ParlaysAnalyzedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parlays_analyzed_total",
		Help:      "Total number of parlays analyzed, by verdict",
	}, []string{"verdict"})
	LookupFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lookup_failures_total",
		Help:      "Total number of failed data provider lookups, by operation",
	}, []string{"operation"})
	RecommendationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "movement_recommendations_total",
		Help:      "Total number of line movement recommendations, by kind",
	}, []string{"recommendation"})
	PriorCacheEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prior_cache_events_total",
		Help:      "Historical prior cache hits, misses and evictions",
	}, []string{"event"})
)

// Gauge metrics
var (
	PriorCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "prior_cache_hit_ratio",
		Help:      "Hit ratio of the historical prior cache",
	})
	PriorCacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "prior_cache_entries",
		Help:      "Number of entries held by the in-process prior cache",
	})
)

// Histogram metrics
var (
	AnalysisDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Duration of leg and parlay analysis in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"kind"})
	LookupLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "lookup_latency_seconds",
		Help:      "Latency of data provider lookups in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(LegsAnalyzedTotal)
		registry.MustRegister(ParlaysAnalyzedTotal)
		registry.MustRegister(LookupFailuresTotal)
		registry.MustRegister(RecommendationsTotal)
		registry.MustRegister(PriorCacheEventsTotal)

		registry.MustRegister(PriorCacheHitRatio)
		registry.MustRegister(PriorCacheEntries)

		registry.MustRegister(AnalysisDuration)
		registry.MustRegister(LookupLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordLegAnalyzed records a scored leg. outcome is "passed", "filtered" or "invalid".
func RecordLegAnalyzed(outcome string) {
	LegsAnalyzedTotal.WithLabelValues(outcome).Inc()
}

// RecordParlayAnalyzed records a parlay verdict.
func RecordParlayAnalyzed(verdict string) {
	ParlaysAnalyzedTotal.WithLabelValues(verdict).Inc()
}

// RecordLookupFailure records a failed provider lookup.
func RecordLookupFailure(operation string) {
	LookupFailuresTotal.WithLabelValues(operation).Inc()
}

// RecordLookupLatency records how long a provider lookup took.
func RecordLookupLatency(operation string, durationSeconds float64) {
	LookupLatency.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordMovementRecommendation records a hold/replace/hedge verdict.
func RecordMovementRecommendation(recommendation string) {
	RecommendationsTotal.WithLabelValues(recommendation).Inc()
}

// Analysis kinds
const (
	KindLegs   = "legs"
	KindParlay = "parlay"
)

// RecordAnalysisDuration records analysis latency. kind is KindLegs or KindParlay.
func RecordAnalysisDuration(kind string, durationSeconds float64) {
	AnalysisDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// RecordPriorCacheEvent records a prior cache hit, miss or eviction.
func RecordPriorCacheEvent(event string) {
	PriorCacheEventsTotal.WithLabelValues(event).Inc()
}

// UpdatePriorCache updates the prior cache gauges.
func UpdatePriorCache(hitRatio float64, entries int) {
	PriorCacheHitRatio.Set(hitRatio)
	PriorCacheEntries.Set(float64(entries))
}
