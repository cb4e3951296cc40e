// Package metrics holds the Prometheus collectors for the translation proxy
// and the generation calls behind it.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Translation outcomes used as the "outcome" label.
const (
	OutcomeSuccess            = "success"
	OutcomeDecodeError        = "decode_error"
	OutcomeGenerationError    = "generation_error"
	OutcomeNormalizationError = "normalization_error"
)

type Metrics struct {
	translationRequests *prometheus.CounterVec
	translationDuration *prometheus.HistogramVec
	generationDuration  *prometheus.HistogramVec
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		translationRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "genstudio_translation_requests_total",
				Help: "Total number of translation requests by outcome",
			},
			[]string{"outcome"},
		),
		translationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "genstudio_translation_duration_seconds",
				Help:    "Duration of translation requests in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"outcome"},
		),
		generationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "genstudio_generation_duration_seconds",
				Help:    "Duration of hosted model calls in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"kind"},
		),
	}
}

// ObserveTranslation records one finished translation request. Safe on a nil
// receiver so callers can run without metrics.
func (m *Metrics) ObserveTranslation(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.translationRequests.WithLabelValues(outcome).Inc()
	m.translationDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveGeneration records one model call of the given kind (text, image,
// recipe).
func (m *Metrics) ObserveGeneration(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.generationDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// TranslationRequests exposes the counter for tests.
func (m *Metrics) TranslationRequests() *prometheus.CounterVec {
	return m.translationRequests
}

// Handler serves the collected metrics in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
