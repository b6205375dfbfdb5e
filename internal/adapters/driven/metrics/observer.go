// Package metrics exports matching engine events as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.MatchObserver = (*Observer)(nil)

const namespace = "syllabusmatch"

// Observer records engine events on its own registry.
type Observer struct {
	registry *prometheus.Registry

	decisions          *prometheus.CounterVec
	bestSimilarity     *prometheus.HistogramVec
	extractConfidence  prometheus.Histogram
	embeddingFallbacks prometheus.Counter
}

// NewObserver creates an observer with a fresh registry.
func NewObserver() *Observer {
	o := &Observer{
		registry: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Decisions made, by recommendation.",
		}, []string{"recommendation"}),
		bestSimilarity: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "best_match_similarity",
			Help:      "Similarity of the best match, by method.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}, []string{"method"}),
		extractConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_confidence",
			Help:      "Fraction of identity fields found per syllabus.",
			Buckets:   []float64{0, 0.2, 0.4, 0.6, 0.8, 1},
		}),
		embeddingFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_fallbacks_total",
			Help:      "Embeddings produced by the local fallback after a provider failure.",
		}),
	}
	o.registry.MustRegister(o.decisions, o.bestSimilarity, o.extractConfidence, o.embeddingFallbacks)
	return o
}

// ObserveExtraction records extraction confidence.
func (o *Observer) ObserveExtraction(confidence float64) {
	o.extractConfidence.Observe(confidence)
}

// ObserveDecision records the recommendation and best-match similarity.
func (o *Observer) ObserveDecision(rec domain.Recommendation, best *domain.MatchCandidate) {
	o.decisions.WithLabelValues(rec.String()).Inc()
	if best != nil {
		o.bestSimilarity.WithLabelValues(best.Method.String()).Observe(best.Similarity)
	}
}

// ObserveEmbeddingFallback counts provider fallbacks.
func (o *Observer) ObserveEmbeddingFallback(_ error) {
	o.embeddingFallbacks.Inc()
}

// Registry exposes the underlying registry.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}
